package utils

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SanitizeBaseName strips the extension from an uploaded file name and
// collapses every run of characters outside [a-zA-Z0-9] into a single
// underscore. Leading and trailing runs are dropped rather than replaced.
// An empty result falls back to "story".
func SanitizeBaseName(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))

	var b strings.Builder
	gap := false
	for _, r := range base {
		alnum := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if !alnum {
			gap = true
			continue
		}
		if gap && b.Len() > 0 {
			b.WriteByte('_')
		}
		gap = false
		b.WriteRune(r)
	}

	if b.Len() == 0 {
		return "story"
	}
	return b.String()
}

// ExportFilename generates the output name for an export, for example
// "TSTW_beach_sunset_1080x1920.png". Width and height are the nominal
// canvas dimensions, not the density-multiplied pixel size.
func ExportFilename(displayName string, width, height int) string {
	return fmt.Sprintf("TSTW_%s_%dx%d.png", SanitizeBaseName(displayName), width, height)
}
