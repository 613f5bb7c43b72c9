package models

import "image"

// BackgroundAsset holds the single decoded background image. A zero value
// (nil Image) means no background has been loaded yet; the preview falls
// back to a placeholder fill and export is refused.
type BackgroundAsset struct {
	DisplayName string      `json:"display_name"`
	ByteSize    int64       `json:"byte_size"`
	Image       image.Image `json:"-"`
}

func (b BackgroundAsset) Present() bool {
	return b.Image != nil
}
