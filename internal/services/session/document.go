package session

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/tstw/storyframe/internal/models"
)

// Document is the TOML form of a composition, the file surface behind
// the CLI and watch mode. Every field is optional; nil means "leave the
// session value alone". The document is input only, session state is
// never written back to it.
type Document struct {
	// Canvas selects a canvas preset by ID (story, tiktok, square, portrait).
	Canvas *string `toml:"canvas"`
	// Preset applies a text preset, overwriting both content fields.
	Preset *string `toml:"preset"`
	// Background is a path to the background image file.
	Background *string `toml:"background"`
	// Density is the export pixel-density multiplier (1, 2 or 3).
	Density *int `toml:"density"`

	Top    *TextDocument  `toml:"top"`
	Bottom *TextDocument  `toml:"bottom"`
	Style  *StyleDocument `toml:"style"`
}

type TextDocument struct {
	Content   *string `toml:"content"`
	Alignment *string `toml:"alignment"`
	FontSize  *int    `toml:"font_size"`
}

type StyleDocument struct {
	Shadow *bool    `toml:"shadow"`
	Panel  *string  `toml:"panel"`
	Fit    *string  `toml:"fit"`
	Dim    *float64 `toml:"dim"`
}

// LoadDocument reads and parses a composition document.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read composition document: %w", err)
	}

	doc := &Document{}
	if err := toml.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("failed to parse composition document: %w", err)
	}
	return doc, nil
}

// ApplyDocument routes every present document field through the
// session's setters, so document input clamps and validates exactly
// like direct edits. The preset lands before the content fields; a
// document carrying both reads as "preset, then edits on top".
func (s *Session) ApplyDocument(doc *Document) error {
	if doc.Canvas != nil {
		if err := s.SetCanvas(*doc.Canvas); err != nil {
			return err
		}
	}
	if doc.Preset != nil {
		if err := s.ApplyTextPreset(*doc.Preset); err != nil {
			return err
		}
	}

	if doc.Top != nil {
		if doc.Top.Content != nil {
			s.SetTopText(*doc.Top.Content)
		}
		if doc.Top.Alignment != nil {
			if err := s.SetTopAlignment(models.Alignment(*doc.Top.Alignment)); err != nil {
				return err
			}
		}
		if doc.Top.FontSize != nil {
			s.SetTopFontSize(*doc.Top.FontSize)
		}
	}
	if doc.Bottom != nil {
		if doc.Bottom.Content != nil {
			s.SetBottomText(*doc.Bottom.Content)
		}
		if doc.Bottom.Alignment != nil {
			if err := s.SetBottomAlignment(models.Alignment(*doc.Bottom.Alignment)); err != nil {
				return err
			}
		}
		if doc.Bottom.FontSize != nil {
			s.SetBottomFontSize(*doc.Bottom.FontSize)
		}
	}

	if doc.Style != nil {
		if doc.Style.Shadow != nil {
			s.SetShadow(*doc.Style.Shadow)
		}
		if doc.Style.Panel != nil {
			if err := s.SetPanelStyle(models.PanelStyle(*doc.Style.Panel)); err != nil {
				return err
			}
		}
		if doc.Style.Fit != nil {
			if err := s.SetBackgroundFit(models.BackgroundFit(*doc.Style.Fit)); err != nil {
				return err
			}
		}
		if doc.Style.Dim != nil {
			s.SetDimOpacity(*doc.Style.Dim)
		}
	}

	return nil
}
