package layout

import (
	"math"
	"reflect"
	"testing"
	"unicode/utf8"

	"github.com/tstw/storyframe/internal/models"
)

// fakeMeasurer gives every rune half the font size and the fake face a
// 3:1 ascent/descent split, so expected geometry is easy to derive by
// hand.
type fakeMeasurer struct{}

func (fakeMeasurer) LineWidth(text string, sizePx, trackingPx float64) float64 {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	return float64(n)*sizePx*0.5 + float64(n-1)*trackingPx
}

func (fakeMeasurer) LineMetrics(sizePx float64) (float64, float64) {
	return sizePx * 0.75, sizePx * 0.25
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func rectAlmostEqual(a, b Rect) bool {
	return almostEqual(a.X, b.X) && almostEqual(a.Y, b.Y) &&
		almostEqual(a.W, b.W) && almostEqual(a.H, b.H)
}

func storyComposition() models.Composition {
	c := models.DefaultComposition()
	return c
}

func TestComputeSafeArea(t *testing.T) {
	tests := []struct {
		canvasID string
		want     Rect
	}{
		{"story", Rect{70, 90, 940, 1720}},
		{"tiktok", Rect{70, 90, 940, 1720}},
		{"square", Rect{70, 90, 940, 880}},
		{"portrait", Rect{70, 90, 940, 1150}},
	}

	for _, tt := range tests {
		t.Run(tt.canvasID, func(t *testing.T) {
			c := storyComposition()
			canvas, ok := models.LookupCanvasSize(tt.canvasID)
			if !ok {
				t.Fatalf("unknown canvas %q", tt.canvasID)
			}
			c.Canvas = canvas

			f := Compute(c, fakeMeasurer{})
			if !rectAlmostEqual(f.SafeArea, tt.want) {
				t.Errorf("SafeArea = %+v, want %+v", f.SafeArea, tt.want)
			}
		})
	}
}

func TestComputeTopBlock(t *testing.T) {
	c := storyComposition()
	c.Top = models.TextBlockSpec{Content: "Hi", Alignment: models.AlignCenter, FontSize: 64}
	c.Bottom.Content = ""

	f := Compute(c, fakeMeasurer{})
	if f.Top == nil {
		t.Fatal("Top block missing")
	}
	if f.Bottom != nil {
		t.Fatal("Bottom block should be absent for empty content")
	}

	// width = 2 runes × 32 + 1 gap × (−0.96) = 63.04
	wantWidth := 63.04
	wantX := (1080 - wantWidth) / 2
	wantBaseline := 86 + 0.75*64.0

	if len(f.Top.Lines) != 1 {
		t.Fatalf("len(Lines) = %d, want 1", len(f.Top.Lines))
	}
	line := f.Top.Lines[0]
	if !almostEqual(line.Width, wantWidth) {
		t.Errorf("line width = %v, want %v", line.Width, wantWidth)
	}
	if !almostEqual(line.X, wantX) {
		t.Errorf("line X = %v, want %v", line.X, wantX)
	}
	if !almostEqual(line.Baseline, wantBaseline) {
		t.Errorf("baseline = %v, want %v", line.Baseline, wantBaseline)
	}

	// Ink box spans anchor to baseline+descent at full font-size height.
	want := Rect{wantX, 86, wantWidth, 64}
	if !rectAlmostEqual(f.Top.Bounds, want) {
		t.Errorf("Bounds = %+v, want %+v", f.Top.Bounds, want)
	}
}

func TestComputeBottomBlockGrowsUpward(t *testing.T) {
	c := storyComposition()
	c.Top.Content = ""
	c.Bottom = models.TextBlockSpec{Content: "Turn on\nnotifications", Alignment: models.AlignCenter, FontSize: 44}

	f := Compute(c, fakeMeasurer{})
	if f.Bottom == nil {
		t.Fatal("Bottom block missing")
	}
	if len(f.Bottom.Lines) != 2 {
		t.Fatalf("len(Lines) = %d, want 2", len(f.Bottom.Lines))
	}

	descent := 0.25 * 44.0
	advance := 1.05 * 44.0
	wantLast := 1920 - 86 - descent
	wantFirst := wantLast - advance

	if !almostEqual(f.Bottom.Lines[0].Baseline, wantFirst) {
		t.Errorf("first baseline = %v, want %v", f.Bottom.Lines[0].Baseline, wantFirst)
	}
	if !almostEqual(f.Bottom.Lines[1].Baseline, wantLast) {
		t.Errorf("last baseline = %v, want %v", f.Bottom.Lines[1].Baseline, wantLast)
	}

	// The ink box must end exactly at the bottom anchor.
	if got := f.Bottom.Bounds.Y + f.Bottom.Bounds.H; !almostEqual(got, 1920-86) {
		t.Errorf("ink bottom = %v, want %v", got, 1920-86.0)
	}
}

func TestComputeAlignment(t *testing.T) {
	const size = 64
	// "Hook" = 4 runes × 32 + 3 × (−0.96) = 125.12
	width := 4*32.0 + 3*(-0.015*size)

	tests := []struct {
		align models.Alignment
		wantX float64
	}{
		{models.AlignLeft, 70},
		{models.AlignCenter, (1080 - width) / 2},
		{models.AlignRight, 1080 - 70 - width},
	}

	for _, tt := range tests {
		t.Run(string(tt.align), func(t *testing.T) {
			c := storyComposition()
			c.Top = models.TextBlockSpec{Content: "Hook", Alignment: tt.align, FontSize: size}

			f := Compute(c, fakeMeasurer{})
			if f.Top == nil {
				t.Fatal("Top block missing")
			}
			if got := f.Top.Lines[0].X; !almostEqual(got, tt.wantX) {
				t.Errorf("X = %v, want %v", got, tt.wantX)
			}
		})
	}
}

func TestComputeEmptyBlocksOmitted(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"spaces", "   "},
		{"whitespace mix", " \n\t "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := storyComposition()
			c.Top.Content = tt.content
			c.Style.PanelStyle = models.PanelBox

			f := Compute(c, fakeMeasurer{})
			if f.Top != nil {
				t.Errorf("Top = %+v, want nil for content %q", f.Top, tt.content)
			}
			if f.Bottom == nil {
				t.Error("Bottom should still be present")
			}
		})
	}
}

func TestComputePanels(t *testing.T) {
	c := storyComposition()
	c.Top = models.TextBlockSpec{Content: "Hi", Alignment: models.AlignCenter, FontSize: 64}

	c.Style.PanelStyle = models.PanelNone
	f := Compute(c, fakeMeasurer{})
	if f.Top.Panel != nil {
		t.Errorf("Panel = %+v, want nil for style none", f.Top.Panel)
	}

	for _, style := range []models.PanelStyle{models.PanelSoft, models.PanelBox} {
		c.Style.PanelStyle = style
		f = Compute(c, fakeMeasurer{})
		if f.Top.Panel == nil {
			t.Fatalf("Panel missing for style %q", style)
		}
		b := f.Top.Bounds
		want := Rect{b.X - PanelPadX, b.Y - PanelPadY, b.W + 2*PanelPadX, b.H + 2*PanelPadY}
		if !rectAlmostEqual(*f.Top.Panel, want) {
			t.Errorf("Panel = %+v, want %+v", *f.Top.Panel, want)
		}
	}
}

func TestComputeBlankInteriorLineKeepsSpacing(t *testing.T) {
	c := storyComposition()
	c.Top = models.TextBlockSpec{Content: "a\n\nb", Alignment: models.AlignCenter, FontSize: 64}

	f := Compute(c, fakeMeasurer{})
	if len(f.Top.Lines) != 3 {
		t.Fatalf("len(Lines) = %d, want 3", len(f.Top.Lines))
	}
	advance := 1.05 * 64.0
	if got := f.Top.Lines[2].Baseline - f.Top.Lines[0].Baseline; !almostEqual(got, 2*advance) {
		t.Errorf("baseline span = %v, want %v", got, 2*advance)
	}
	// The blank middle line carries no ink and must not widen the box.
	if f.Top.Lines[1].Width != 0 {
		t.Errorf("blank line width = %v, want 0", f.Top.Lines[1].Width)
	}
}

func TestComputeBrand(t *testing.T) {
	f := Compute(storyComposition(), fakeMeasurer{})

	if f.Brand.Text != models.BrandMark {
		t.Errorf("Brand.Text = %q, want %q", f.Brand.Text, models.BrandMark)
	}
	if !almostEqual(f.Brand.X, 1080-56) || !almostEqual(f.Brand.Y, 1920-42) {
		t.Errorf("Brand anchor = (%v, %v), want (1024, 1878)", f.Brand.X, f.Brand.Y)
	}
	if f.Brand.FontSize != BrandFontSize || f.Brand.Alpha != BrandAlpha {
		t.Errorf("Brand style = %+v", f.Brand)
	}
}

func TestComputeStylePassthrough(t *testing.T) {
	c := storyComposition()
	c.Style.DimOpacity = 0.35
	c.Style.BackgroundFit = models.FitContain
	c.Style.ShadowEnabled = false
	c.Style.PanelStyle = models.PanelSoft

	f := Compute(c, fakeMeasurer{})
	if f.Dim != 0.35 {
		t.Errorf("Dim = %v, want 0.35", f.Dim)
	}
	if f.Fit != models.FitContain {
		t.Errorf("Fit = %q, want contain", f.Fit)
	}
	if f.Shadow {
		t.Error("Shadow should be off")
	}
	if f.PanelStyle != models.PanelSoft {
		t.Errorf("PanelStyle = %q, want soft", f.PanelStyle)
	}
	if f.Vignette.InnerStop != VignetteInnerStop || f.Vignette.Alpha != VignetteAlpha {
		t.Errorf("Vignette = %+v", f.Vignette)
	}
}

// Compute never consults an output scale, so two calls with the same
// input must agree exactly whatever the caller later multiplies by.
func TestComputeScaleIndependent(t *testing.T) {
	c := storyComposition()
	a := Compute(c, fakeMeasurer{})
	b := Compute(c, fakeMeasurer{})
	if !reflect.DeepEqual(a, b) {
		t.Error("Compute is not deterministic for identical input")
	}
}

func TestRectScaled(t *testing.T) {
	r := Rect{70, 90, 940, 1720}
	for _, s := range []float64{1.0 / 3, 2, 3} {
		got := r.Scaled(s)
		want := Rect{70 * s, 90 * s, 940 * s, 1720 * s}
		if !rectAlmostEqual(got, want) {
			t.Errorf("Scaled(%v) = %+v, want %+v", s, got, want)
		}
	}
}
