package layout

import (
	"github.com/tstw/storyframe/internal/models"
)

// Geometry constants in canvas units. The catalog is 1080 wide across
// the board, so margins and anchors are fixed pixel values at that
// width; a future preset with a different native width would keep these
// as-is rather than scale them.
const (
	SafeMarginX      = 70.0
	SafeMarginTop    = 90.0
	SafeMarginBottom = 110.0

	TextInsetX    = 70.0 // left/right inset of both text regions
	TopAnchorY    = 86.0 // top block ink starts here, grows downward
	BottomAnchorY = 86.0 // bottom block ink ends here, grows upward

	PanelPadX   = 40.0
	PanelPadY   = 32.0
	PanelRadius = 24.0

	LineHeight = 1.05   // baseline-to-baseline distance, × font size
	TrackingEm = -0.015 // letter spacing per glyph gap, × font size

	BrandOffsetX  = 56.0 // from the right edge to the brand's right end
	BrandOffsetY  = 42.0 // from the bottom edge up to the brand baseline
	BrandFontSize = 28.0
	BrandAlpha    = 0.9

	VignetteInnerStop = 0.55 // fraction of the corner radius where falloff starts
	VignetteAlpha     = 0.32 // darkness at the corners
)

// Measurer supplies text metrics for a pixel size. The fonts store is
// the real implementation; tests substitute deterministic fakes.
type Measurer interface {
	LineWidth(text string, sizePx, trackingPx float64) float64
	LineMetrics(sizePx float64) (ascent, descent float64)
}

// Rect is an axis-aligned box in canvas units.
type Rect struct {
	X, Y, W, H float64
}

// Scaled returns the rect with every coordinate multiplied by s.
func (r Rect) Scaled(s float64) Rect {
	return Rect{r.X * s, r.Y * s, r.W * s, r.H * s}
}

// Line is one authored line of a text block, positioned absolutely.
type Line struct {
	Text     string
	Width    float64
	X        float64 // left edge of the line's advance
	Baseline float64
}

// TextBlock is the computed geometry of one non-empty text block.
// Bounds is the ink box (widest line by full line height span); Panel is
// Bounds grown by the fixed padding, nil when the panel style is none.
type TextBlock struct {
	Lines    []Line
	FontSize float64
	Tracking float64 // pixels per glyph gap at this font size
	Bounds   Rect
	Panel    *Rect
}

// Vignette is the fixed inward shade drawn over every composition.
type Vignette struct {
	InnerStop float64
	Alpha     float64
}

// Brand is the corner signature, positioned by its baseline-right point.
type Brand struct {
	Text     string
	FontSize float64
	Tracking float64
	X, Y     float64
	Alpha    float64
}

// Frame is the full computed geometry for one composition at the
// canvas's native resolution. Rendering at any output size multiplies
// this one geometry by a scale factor; no second layout path exists.
type Frame struct {
	Width, Height float64

	SafeArea   Rect
	Fit        models.BackgroundFit
	Dim        float64
	Vignette   Vignette
	PanelStyle models.PanelStyle
	Shadow     bool

	Top    *TextBlock
	Bottom *TextBlock
	Brand  Brand
}

// Compute lays out a composition. It is a pure function of the
// composition and the measurer; nothing here depends on the output
// scale, which keeps preview and export proportionally identical.
func Compute(comp models.Composition, m Measurer) Frame {
	w := float64(comp.Canvas.Width)
	h := float64(comp.Canvas.Height)

	f := Frame{
		Width:  w,
		Height: h,
		SafeArea: Rect{
			X: SafeMarginX,
			Y: SafeMarginTop,
			W: w - 2*SafeMarginX,
			H: h - SafeMarginTop - SafeMarginBottom,
		},
		Fit:        comp.Style.BackgroundFit,
		Dim:        comp.Style.DimOpacity,
		Vignette:   Vignette{InnerStop: VignetteInnerStop, Alpha: VignetteAlpha},
		PanelStyle: comp.Style.PanelStyle,
		Shadow:     comp.Style.ShadowEnabled,
		Brand: Brand{
			Text:     models.BrandMark,
			FontSize: BrandFontSize,
			Tracking: TrackingEm * BrandFontSize,
			X:        w - BrandOffsetX,
			Y:        h - BrandOffsetY,
			Alpha:    BrandAlpha,
		},
	}

	if !comp.Top.Empty() {
		f.Top = layoutBlock(comp.Top, comp.Style.PanelStyle, m, w, topBaselines{})
	}
	if !comp.Bottom.Empty() {
		f.Bottom = layoutBlock(comp.Bottom, comp.Style.PanelStyle, m, w, bottomBaselines{canvasHeight: h})
	}

	return f
}

// baseliner places the run of baselines for a block given its line count
// and metrics. The top block hangs from its anchor; the bottom block
// stacks up from its anchor.
type baseliner interface {
	first(lines int, ascent, descent, advance float64) float64
}

type topBaselines struct{}

func (topBaselines) first(_ int, ascent, _, _ float64) float64 {
	return TopAnchorY + ascent
}

type bottomBaselines struct {
	canvasHeight float64
}

func (b bottomBaselines) first(lines int, _, descent, advance float64) float64 {
	last := b.canvasHeight - BottomAnchorY - descent
	return last - float64(lines-1)*advance
}

func layoutBlock(spec models.TextBlockSpec, panel models.PanelStyle, m Measurer, canvasWidth float64, pos baseliner) *TextBlock {
	size := float64(spec.FontSize)
	tracking := TrackingEm * size
	ascent, descent := m.LineMetrics(size)
	advance := LineHeight * size

	raw := spec.Lines()
	first := pos.first(len(raw), ascent, descent, advance)

	block := &TextBlock{
		FontSize: size,
		Tracking: tracking,
		Lines:    make([]Line, 0, len(raw)),
	}

	minX, maxX := canvasWidth, 0.0
	for i, text := range raw {
		width := m.LineWidth(text, size, tracking)

		// Authored line breaks are final; an over-long line overflows
		// the inset instead of wrapping.
		var x float64
		switch spec.Alignment {
		case models.AlignLeft:
			x = TextInsetX
		case models.AlignRight:
			x = canvasWidth - TextInsetX - width
		default:
			x = (canvasWidth - width) / 2
		}

		block.Lines = append(block.Lines, Line{
			Text:     text,
			Width:    width,
			X:        x,
			Baseline: first + float64(i)*advance,
		})

		if width > 0 {
			if x < minX {
				minX = x
			}
			if x+width > maxX {
				maxX = x + width
			}
		}
	}
	if maxX < minX {
		// Every line measured zero, e.g. glyphs missing from the face.
		// Pin a zero-width box at center so the panel stays sane.
		minX, maxX = canvasWidth/2, canvasWidth/2
	}

	top := first - ascent
	bottom := block.Lines[len(block.Lines)-1].Baseline + descent
	block.Bounds = Rect{X: minX, Y: top, W: maxX - minX, H: bottom - top}

	if panel != models.PanelNone {
		p := Rect{
			X: block.Bounds.X - PanelPadX,
			Y: block.Bounds.Y - PanelPadY,
			W: block.Bounds.W + 2*PanelPadX,
			H: block.Bounds.H + 2*PanelPadY,
		}
		block.Panel = &p
	}

	return block
}
