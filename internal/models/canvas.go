package models

type CanvasSize struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

const DefaultCanvasID = "story"

var canvasSizes = []CanvasSize{
	{ID: "story", Label: "Instagram Story (1080×1920)", Width: 1080, Height: 1920},
	{ID: "tiktok", Label: "TikTok Video (1080×1920)", Width: 1080, Height: 1920},
	{ID: "square", Label: "Instagram Post (1080×1080)", Width: 1080, Height: 1080},
	{ID: "portrait", Label: "Instagram Portrait (1080×1350)", Width: 1080, Height: 1350},
}

// CanvasSizes returns the fixed canvas catalog in display order.
func CanvasSizes() []CanvasSize {
	out := make([]CanvasSize, len(canvasSizes))
	copy(out, canvasSizes)
	return out
}

func LookupCanvasSize(id string) (CanvasSize, bool) {
	for _, c := range canvasSizes {
		if c.ID == id {
			return c, true
		}
	}
	return CanvasSize{}, false
}
