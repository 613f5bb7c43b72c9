// Package integration exercises the full composition pipeline the way
// the CLI drives it: document on disk, background image on disk, then
// session, layout, render and export in one pass.
package integration

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"github.com/tstw/storyframe/internal/config"
	"github.com/tstw/storyframe/internal/models"
	"github.com/tstw/storyframe/internal/services/assets"
	"github.com/tstw/storyframe/internal/services/exporter"
	"github.com/tstw/storyframe/internal/services/fonts"
	"github.com/tstw/storyframe/internal/services/render"
	"github.com/tstw/storyframe/internal/services/session"
)

type stack struct {
	loader *assets.Loader
	sess   *session.Session
	exp    *exporter.Exporter
}

func newStack(t *testing.T, outDir string) *stack {
	t.Helper()

	store, err := fonts.New(config.FontConfig{})
	if err != nil {
		t.Fatalf("fonts.New() error = %v", err)
	}
	logger := zap.NewNop()
	renderer := render.New(store, logger)
	return &stack{
		loader: assets.NewLoader(config.AssetConfig{MaxUploadBytes: 25 * 1024 * 1024}, logger),
		sess:   session.New(logger),
		exp:    exporter.New(renderer, store, config.OutputConfig{Dir: outDir, PreviewWidth: 360}, logger),
	}
}

func writeBackground(t *testing.T, dir, name string, w, h int, c color.NRGBA) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := imaging.Save(imaging.New(w, h, c), path); err != nil {
		t.Fatalf("imaging.Save() error = %v", err)
	}
	return path
}

func decodePNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Open(%q) error = %v", path, err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	return img
}

// loadAndApply mirrors the CLI replay: parse the document, push it
// through the session, then load and attach the background it names.
func loadAndApply(t *testing.T, s *stack, docPath string) int {
	t.Helper()

	doc, err := session.LoadDocument(docPath)
	if err != nil {
		t.Fatalf("LoadDocument() error = %v", err)
	}
	if err := s.sess.ApplyDocument(doc); err != nil {
		t.Fatalf("ApplyDocument() error = %v", err)
	}

	density := models.DefaultDensity
	if doc.Density != nil {
		density = *doc.Density
	}
	if doc.Background != nil {
		asset, err := s.loader.Load(context.Background(), *doc.Background)
		if err != nil {
			t.Fatalf("loader.Load() error = %v", err)
		}
		s.sess.SetBackground(asset)
	}
	return density
}

func TestExportEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping full-resolution export in short mode")
	}

	dir := t.TempDir()
	outDir := filepath.Join(dir, "exports")
	bgPath := writeBackground(t, dir, "beach sunset.png", 64, 48, color.NRGBA{R: 230, G: 140, B: 40, A: 255})

	docPath := filepath.Join(dir, "story.toml")
	doc := "canvas = \"story\"\npreset = \"classic\"\ndensity = 2\nbackground = '" + bgPath + "'\n"
	if err := os.WriteFile(docPath, []byte(doc), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	s := newStack(t, outDir)
	density := loadAndApply(t, s, docPath)
	if density != 2 {
		t.Fatalf("density = %d, want 2", density)
	}

	path, err := s.exp.Export(context.Background(), models.ExportRequest{
		Composition: s.sess.Snapshot(),
		Density:     density,
	})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	wantName := "TSTW_beach_sunset_1080x1920.png"
	if got := filepath.Base(path); got != wantName {
		t.Errorf("export name = %q, want %q", got, wantName)
	}

	img := decodePNG(t, path)
	b := img.Bounds()
	if b.Dx() != 2160 || b.Dy() != 3840 {
		t.Fatalf("export size = %dx%d, want 2160x3840", b.Dx(), b.Dy())
	}

	// Every pixel must be opaque; sample corners and center.
	points := []image.Point{
		{0, 0}, {2159, 0}, {0, 3839}, {2159, 3839}, {1080, 1920},
	}
	for _, p := range points {
		if _, _, _, a := img.At(p.X, p.Y).RGBA(); a != 0xffff {
			t.Errorf("alpha at %v = %#x, want 0xffff", p, a)
		}
	}

	// The center carries the dimmed background, not the placeholder.
	r, g, bl, _ := img.At(1080, 1920).RGBA()
	if !(r > g && g > bl) {
		t.Errorf("center pixel = (%d,%d,%d), want orange ordering r > g > b", r>>8, g>>8, bl>>8)
	}
}

func TestWhitespaceBottomMatchesEmpty(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping full-resolution export in short mode")
	}

	dir := t.TempDir()
	bgPath := writeBackground(t, dir, "pier.png", 48, 48, color.NRGBA{R: 40, G: 90, B: 160, A: 255})

	export := func(outDir, bottom string) image.Image {
		s := newStack(t, outDir)
		asset, err := s.loader.Load(context.Background(), bgPath)
		if err != nil {
			t.Fatalf("loader.Load() error = %v", err)
		}
		s.sess.SetBackground(asset)
		s.sess.SetTopText("Morning light")
		s.sess.SetBottomText(bottom)

		path, err := s.exp.Export(context.Background(), models.ExportRequest{
			Composition: s.sess.Snapshot(),
			Density:     1,
		})
		if err != nil {
			t.Fatalf("Export() error = %v", err)
		}
		return decodePNG(t, path)
	}

	empty := export(filepath.Join(dir, "a"), "")
	blank := export(filepath.Join(dir, "b"), "   \n\t")

	// Whitespace-only content is omitted exactly like empty content,
	// so the two exports are pixel-identical.
	eb, bb := empty.Bounds(), blank.Bounds()
	if eb != bb {
		t.Fatalf("bounds differ: %v vs %v", eb, bb)
	}
	for y := eb.Min.Y; y < eb.Max.Y; y += 64 {
		for x := eb.Min.X; x < eb.Max.X; x += 64 {
			er, eg, ebl, ea := empty.At(x, y).RGBA()
			br, bg, bbl, ba := blank.At(x, y).RGBA()
			if er != br || eg != bg || ebl != bbl || ea != ba {
				t.Fatalf("pixel (%d,%d) differs: empty=(%d,%d,%d,%d) blank=(%d,%d,%d,%d)",
					x, y, er, eg, ebl, ea, br, bg, bbl, ba)
			}
		}
	}
}

func TestExportWithoutBackgroundInert(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "exports")

	s := newStack(t, outDir)
	_, err := s.exp.Export(context.Background(), models.ExportRequest{
		Composition: s.sess.Snapshot(),
		Density:     2,
	})
	if err != exporter.ErrNoBackground {
		t.Fatalf("Export() error = %v, want ErrNoBackground", err)
	}
	if _, err := os.Stat(outDir); !os.IsNotExist(err) {
		t.Errorf("output directory created for a refused export")
	}
}

func TestPreviewDimensionsPerCanvas(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		canvas     string
		wantWidth  int
		wantHeight int
	}{
		{"story", 360, 640},
		{"tiktok", 360, 640},
		{"square", 360, 360},
		{"portrait", 360, 450},
	}

	for _, tt := range tests {
		t.Run(tt.canvas, func(t *testing.T) {
			s := newStack(t, dir)
			if err := s.sess.SetCanvas(tt.canvas); err != nil {
				t.Fatalf("SetCanvas() error = %v", err)
			}
			s.sess.SetTopText("")
			s.sess.SetBottomText("")

			path := filepath.Join(dir, tt.canvas+".png")
			if err := s.exp.WritePreview(context.Background(), s.sess.Snapshot(), path); err != nil {
				t.Fatalf("WritePreview() error = %v", err)
			}

			img := decodePNG(t, path)
			b := img.Bounds()
			if b.Dx() != tt.wantWidth || b.Dy() != tt.wantHeight {
				t.Errorf("preview size = %dx%d, want %dx%d",
					b.Dx(), b.Dy(), tt.wantWidth, tt.wantHeight)
			}
		})
	}
}
