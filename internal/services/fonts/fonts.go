package fonts

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/tstw/storyframe/internal/config"
)

// Store parses one bold typeface and hands out faces by pixel size. At
// 72 DPI a point equals a pixel, so sizes are pixel sizes throughout.
// Faces are cached and reused; renders are serialized by the caller, so
// the unsynchronized face internals are never shared across goroutines.
type Store struct {
	font *opentype.Font

	mu    sync.Mutex
	faces map[float64]font.Face
}

// New loads the typeface named by cfg, or the embedded Go Bold face when
// no file is configured. Parsing and a probe face build happen here so a
// bad font fails startup instead of the first render.
func New(cfg config.FontConfig) (*Store, error) {
	data := gobold.TTF
	if cfg.File != "" {
		b, err := os.ReadFile(cfg.File)
		if err != nil {
			return nil, fmt.Errorf("failed to read font file: %w", err)
		}
		data = b
	}

	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}

	s := &Store{font: f, faces: make(map[float64]font.Face)}
	if _, err := s.Face(16); err != nil {
		return nil, err
	}
	return s, nil
}

// Face returns a cached face for the given pixel size. Hinting stays off
// so advances scale linearly with size and the preview measures exactly
// like the export.
func (s *Store) Face(sizePx float64) (font.Face, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if face, ok := s.faces[sizePx]; ok {
		return face, nil
	}
	face, err := opentype.NewFace(s.font, &opentype.FaceOptions{
		Size:    sizePx,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}
	s.faces[sizePx] = face
	return face, nil
}

// LineWidth returns the horizontal advance of one line at the given
// pixel size, including trackingPx per glyph gap.
func (s *Store) LineWidth(text string, sizePx, trackingPx float64) float64 {
	face, err := s.Face(sizePx)
	if err != nil {
		return 0
	}
	return WalkGlyphs(face, trackingPx, text, nil)
}

// LineMetrics returns the face ascent and descent in pixels.
func (s *Store) LineMetrics(sizePx float64) (ascent, descent float64) {
	face, err := s.Face(sizePx)
	if err != nil {
		return 0, 0
	}
	m := face.Metrics()
	return fixedToFloat(m.Ascent), fixedToFloat(m.Descent)
}

// WalkGlyphs calls fn with the pen offset of every drawable rune in text
// and returns the total advance. Offsets accumulate glyph advances,
// kerning and trackingPx per gap; measuring and drawing share this one
// accumulation so they can never disagree. Runes missing from the font
// are skipped the same way font.Drawer skips them.
func WalkGlyphs(face font.Face, trackingPx float64, text string, fn func(r rune, offset float64)) float64 {
	var x float64
	prev := rune(-1)
	for _, r := range text {
		adv, ok := face.GlyphAdvance(r)
		if !ok {
			continue
		}
		if prev >= 0 {
			x += fixedToFloat(face.Kern(prev, r)) + trackingPx
		}
		if fn != nil {
			fn(r, x)
		}
		x += fixedToFloat(adv)
		prev = r
	}
	return x
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
