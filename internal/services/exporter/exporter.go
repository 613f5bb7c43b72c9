package exporter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tstw/storyframe/internal/config"
	"github.com/tstw/storyframe/internal/models"
	"github.com/tstw/storyframe/internal/services/fonts"
	"github.com/tstw/storyframe/internal/services/layout"
	"github.com/tstw/storyframe/internal/services/render"
	"github.com/tstw/storyframe/pkg/utils"
)

var (
	// ErrNoBackground refuses an export before any rendering starts.
	ErrNoBackground = errors.New("no background image loaded")
	// ErrExportInFlight rejects a second export while one is running.
	ErrExportInFlight = errors.New("an export is already in flight")
)

// Exporter turns composition snapshots into PNG files: full-resolution
// exports with the single-flight guard, and unguarded preview writes.
type Exporter struct {
	renderer     *render.Renderer
	fonts        *fonts.Store
	outDir       string
	previewWidth int
	logger       *zap.Logger

	inFlight atomic.Bool
}

func New(renderer *render.Renderer, store *fonts.Store, cfg config.OutputConfig, logger *zap.Logger) *Exporter {
	return &Exporter{
		renderer:     renderer,
		fonts:        store,
		outDir:       cfg.Dir,
		previewWidth: cfg.PreviewWidth,
		logger:       logger,
	}
}

// Export renders the request at its density multiplier and writes the
// PNG into the output directory, returning the written path. The file
// name carries the nominal canvas dimensions, not the multiplied pixel
// size. At most one export runs at a time; the guard clears on every
// exit path so a failed export never wedges the next one.
func (e *Exporter) Export(ctx context.Context, req models.ExportRequest) (string, error) {
	comp := req.Composition
	if !comp.Background.Present() {
		return "", ErrNoBackground
	}
	if !e.inFlight.CompareAndSwap(false, true) {
		return "", ErrExportInFlight
	}
	defer e.inFlight.Store(false)

	density := models.ClampDensity(req.Density)
	logger := e.logger.With(zap.String("job_id", uuid.New().String()[:8]))
	logger.Info("export started",
		zap.String("canvas", comp.Canvas.ID),
		zap.String("background", comp.Background.DisplayName),
		zap.Int("density", density))

	if err := ctx.Err(); err != nil {
		return "", err
	}

	frame := layout.Compute(comp, e.fonts)
	img, err := e.renderer.Render(frame, comp.Background.Image, float64(density))
	if err != nil {
		return "", fmt.Errorf("failed to render composition: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode png: %w", err)
	}

	if err := os.MkdirAll(e.outDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	name := utils.ExportFilename(comp.Background.DisplayName, comp.Canvas.Width, comp.Canvas.Height)
	path := filepath.Join(e.outDir, name)
	if err := utils.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return "", err
	}

	logger.Info("export complete",
		zap.String("path", path),
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("height", img.Bounds().Dy()),
		zap.Int("bytes", buf.Len()))

	return path, nil
}

// WritePreview renders the composition at the configured preview width
// and writes it to path atomically. Previews work without a background
// (the placeholder shows instead) and skip the export guard, so watch
// mode keeps refreshing while an export runs.
func (e *Exporter) WritePreview(ctx context.Context, comp models.Composition, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	frame := layout.Compute(comp, e.fonts)
	scale := float64(e.previewWidth) / frame.Width
	img, err := e.renderer.Render(frame, comp.Background.Image, scale)
	if err != nil {
		return fmt.Errorf("failed to render preview: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create preview directory: %w", err)
	}
	if err := utils.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return err
	}

	e.logger.Info("preview written",
		zap.String("path", path),
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("height", img.Bounds().Dy()))

	return nil
}
