package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"go.uber.org/zap"
	"golang.org/x/image/font"

	"github.com/tstw/storyframe/internal/models"
	"github.com/tstw/storyframe/internal/services/fonts"
	"github.com/tstw/storyframe/internal/services/layout"
)

// Rendering style constants in canvas units; each is multiplied by the
// output scale so preview and export shade identically.
const (
	placeholderHex = "#23272e"

	shadowSoftDY     = 2.0
	shadowSoftSigma  = 12.0
	shadowSoftAlpha  = 0.55
	shadowTightDY    = 1.0
	shadowTightSigma = 1.5
	shadowTightAlpha = 0.85

	panelSoftAlpha     = 0.35
	panelSoftBlurSigma = 7.0
	panelBoxAlpha      = 0.62
	panelBorderAlpha   = 0.82
	panelBorderWidth   = 2.0
)

// Renderer rasterizes a computed frame at an arbitrary scale. All
// geometry comes from the frame; the renderer multiplies, it never
// re-derives layout.
type Renderer struct {
	fonts  *fonts.Store
	logger *zap.Logger
}

func New(store *fonts.Store, logger *zap.Logger) *Renderer {
	return &Renderer{fonts: store, logger: logger}
}

// Render draws the frame onto a fresh canvas of width×height×scale
// pixels. background may be nil, in which case a placeholder fill
// stands in. Layer order: background, dim, vignette, then per block
// panel, glyph shadows and text, and finally the brand mark.
func (r *Renderer) Render(frame layout.Frame, background image.Image, scale float64) (image.Image, error) {
	if scale <= 0 {
		return nil, fmt.Errorf("scale must be positive, got %v", scale)
	}

	w := int(math.Round(frame.Width * scale))
	h := int(math.Round(frame.Height * scale))
	dc := gg.NewContext(w, h)

	drawBackground(dc, frame, background, w, h)
	drawDim(dc, frame, w, h)
	drawVignette(dc, frame, w, h)

	for _, block := range []*layout.TextBlock{frame.Top, frame.Bottom} {
		if block == nil {
			continue
		}
		drawPanel(dc, frame.PanelStyle, block, scale)
		if err := r.drawBlock(dc, frame, block, scale); err != nil {
			return nil, err
		}
	}

	if err := r.drawBrand(dc, frame, scale); err != nil {
		return nil, err
	}

	r.logger.Debug("rendered frame",
		zap.Int("width", w),
		zap.Int("height", h),
		zap.Float64("scale", scale))

	return dc.Image(), nil
}

func drawBackground(dc *gg.Context, frame layout.Frame, background image.Image, w, h int) {
	if background == nil {
		dc.SetHexColor(placeholderHex)
		dc.Clear()
		return
	}

	switch frame.Fit {
	case models.FitContain:
		// Aspect-fit with upscaling allowed, centered over black
		// letterboxing.
		b := background.Bounds()
		s := math.Min(float64(w)/float64(b.Dx()), float64(h)/float64(b.Dy()))
		tw := int(math.Round(float64(b.Dx()) * s))
		th := int(math.Round(float64(b.Dy()) * s))

		dc.SetRGB(0, 0, 0)
		dc.Clear()
		dc.DrawImageAnchored(imaging.Resize(background, tw, th, imaging.Lanczos), w/2, h/2, 0.5, 0.5)
	default:
		// Cover: scale up or down to fill, cropping the overflow.
		dc.DrawImage(imaging.Fill(background, w, h, imaging.Center, imaging.Lanczos), 0, 0)
	}
}

func drawDim(dc *gg.Context, frame layout.Frame, w, h int) {
	if frame.Dim <= 0 {
		return
	}
	dc.SetRGBA(0, 0, 0, frame.Dim)
	dc.DrawRectangle(0, 0, float64(w), float64(h))
	dc.Fill()
}

func drawVignette(dc *gg.Context, frame layout.Frame, w, h int) {
	cx, cy := float64(w)/2, float64(h)/2
	corner := math.Hypot(cx, cy)

	grad := gg.NewRadialGradient(cx, cy, corner*frame.Vignette.InnerStop, cx, cy, corner)
	grad.AddColorStop(0, color.NRGBA{})
	grad.AddColorStop(1, color.NRGBA{A: uint8(frame.Vignette.Alpha*255 + 0.5)})

	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, float64(w), float64(h))
	dc.Fill()
}

func drawPanel(dc *gg.Context, style models.PanelStyle, block *layout.TextBlock, scale float64) {
	if block.Panel == nil {
		return
	}
	p := block.Panel.Scaled(scale)
	radius := layout.PanelRadius * scale

	switch style {
	case models.PanelSoft:
		// Blur the backdrop under the panel before tinting it, so the
		// panel reads as translucent instead of flat.
		region := image.Rect(
			int(math.Floor(p.X)), int(math.Floor(p.Y)),
			int(math.Ceil(p.X+p.W)), int(math.Ceil(p.Y+p.H)),
		).Intersect(dc.Image().Bounds())
		if region.Empty() {
			return
		}
		blurred := imaging.Blur(imaging.Crop(dc.Image(), region), panelSoftBlurSigma*scale)

		dc.Push()
		dc.DrawRoundedRectangle(p.X, p.Y, p.W, p.H, radius)
		dc.Clip()
		dc.DrawImage(blurred, region.Min.X, region.Min.Y)
		dc.SetRGBA(0, 0, 0, panelSoftAlpha)
		dc.DrawRoundedRectangle(p.X, p.Y, p.W, p.H, radius)
		dc.Fill()
		dc.Pop()
	case models.PanelBox:
		dc.SetRGBA(0, 0, 0, panelBoxAlpha)
		dc.DrawRoundedRectangle(p.X, p.Y, p.W, p.H, radius)
		dc.Fill()

		dc.SetRGBA(1, 1, 1, panelBorderAlpha)
		dc.SetLineWidth(panelBorderWidth * scale)
		dc.DrawRoundedRectangle(p.X, p.Y, p.W, p.H, radius)
		dc.Stroke()
	}
}

// runLine is one positioned line of text in device pixels.
type runLine struct {
	text        string
	x, baseline float64
}

// textRun is a drawable piece of text with its face and ink box, shared
// by the shadow and main passes.
type textRun struct {
	face     font.Face
	tracking float64
	lines    []runLine
	ink      image.Rectangle
}

func (r *Renderer) blockRun(block *layout.TextBlock, scale float64) (textRun, error) {
	face, err := r.fonts.Face(block.FontSize * scale)
	if err != nil {
		return textRun{}, err
	}

	run := textRun{face: face, tracking: block.Tracking * scale}
	for _, line := range block.Lines {
		run.lines = append(run.lines, runLine{line.Text, line.X * scale, line.Baseline * scale})
	}

	b := block.Bounds.Scaled(scale)
	run.ink = image.Rect(
		int(math.Floor(b.X)), int(math.Floor(b.Y)),
		int(math.Ceil(b.X+b.W)), int(math.Ceil(b.Y+b.H)),
	)
	return run, nil
}

func (r *Renderer) brandRun(brand layout.Brand, scale float64) (textRun, error) {
	face, err := r.fonts.Face(brand.FontSize * scale)
	if err != nil {
		return textRun{}, err
	}

	tracking := brand.Tracking * scale
	width := fonts.WalkGlyphs(face, tracking, brand.Text, nil)
	ascent, descent := r.fonts.LineMetrics(brand.FontSize * scale)

	x := brand.X*scale - width
	y := brand.Y * scale
	return textRun{
		face:     face,
		tracking: tracking,
		lines:    []runLine{{brand.Text, x, y}},
		ink: image.Rect(
			int(math.Floor(x)), int(math.Floor(y-ascent)),
			int(math.Ceil(x+width)), int(math.Ceil(y+descent)),
		),
	}, nil
}

func (r *Renderer) drawBlock(dc *gg.Context, frame layout.Frame, block *layout.TextBlock, scale float64) error {
	run, err := r.blockRun(block, scale)
	if err != nil {
		return err
	}
	if frame.Shadow {
		drawShadow(dc, run, shadowSoftSigma*scale, shadowSoftAlpha, shadowSoftDY*scale)
		drawShadow(dc, run, shadowTightSigma*scale, shadowTightAlpha, shadowTightDY*scale)
	}
	drawRun(dc, run, 1)
	return nil
}

func (r *Renderer) drawBrand(dc *gg.Context, frame layout.Frame, scale float64) error {
	run, err := r.brandRun(frame.Brand, scale)
	if err != nil {
		return err
	}
	if frame.Shadow {
		drawShadow(dc, run, shadowSoftSigma*scale, shadowSoftAlpha, shadowSoftDY*scale)
		drawShadow(dc, run, shadowTightSigma*scale, shadowTightAlpha, shadowTightDY*scale)
	}
	drawRun(dc, run, frame.Brand.Alpha)
	return nil
}

// drawShadow rasterizes the run in black on an offscreen layer clipped
// to the ink box plus three sigmas, blurs it, and composites it under
// where the text will land.
func drawShadow(dc *gg.Context, run textRun, sigma, alpha, dy float64) {
	pad := int(math.Ceil(3*sigma+math.Abs(dy))) + 1
	region := run.ink.Inset(-pad)
	if region.Empty() {
		return
	}

	layer := gg.NewContext(region.Dx(), region.Dy())
	layer.SetFontFace(run.face)
	layer.SetRGBA(0, 0, 0, alpha)
	ox, oy := float64(region.Min.X), float64(region.Min.Y)
	for _, line := range run.lines {
		drawTracked(layer, run.face, line.text, line.x-ox, line.baseline-oy, run.tracking)
	}

	blurred := imaging.Blur(layer.Image(), sigma)
	dc.DrawImage(blurred, region.Min.X, region.Min.Y+int(math.Round(dy)))
}

func drawRun(dc *gg.Context, run textRun, alpha float64) {
	dc.SetFontFace(run.face)
	dc.SetRGBA(1, 1, 1, alpha)
	for _, line := range run.lines {
		drawTracked(dc, run.face, line.text, line.x, line.baseline, run.tracking)
	}
}

// drawTracked places each rune by the same advance accumulation the
// measurer uses, so drawn text matches measured geometry exactly.
func drawTracked(dc *gg.Context, face font.Face, text string, x, baseline, tracking float64) {
	fonts.WalkGlyphs(face, tracking, text, func(rn rune, off float64) {
		dc.DrawString(string(rn), x+off, baseline)
	})
}
