package assets

import (
	"context"
	"fmt"
	"os"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"github.com/tstw/storyframe/internal/config"
	"github.com/tstw/storyframe/internal/models"
)

// Loader turns user-picked files into decoded background assets.
type Loader struct {
	maxBytes int64
	logger   *zap.Logger
}

func NewLoader(cfg config.AssetConfig, logger *zap.Logger) *Loader {
	return &Loader{maxBytes: cfg.MaxUploadBytes, logger: logger}
}

// Load reads and decodes the image at path. Display name and byte size
// come from file metadata and are logged before decoding starts, so the
// pick is visible even when the decode then fails. A failed decode is
// recoverable; the caller keeps the composition's background absent.
func (l *Loader) Load(ctx context.Context, path string) (*models.BackgroundAsset, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat image file: %w", err)
	}

	l.logger.Info("loading background",
		zap.String("name", info.Name()),
		zap.Int64("bytes", info.Size()))

	if l.maxBytes > 0 && info.Size() > l.maxBytes {
		return nil, fmt.Errorf("file size %d exceeds maximum allowed size %d", info.Size(), l.maxBytes)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// EXIF orientation is applied here so every later pass sees upright
	// pixels.
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	asset := &models.BackgroundAsset{
		DisplayName: info.Name(),
		ByteSize:    info.Size(),
		Image:       img,
	}

	l.logger.Info("background ready",
		zap.String("name", asset.DisplayName),
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("height", img.Bounds().Dy()))

	return asset, nil
}
