package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/tstw/storyframe/internal/config"
	"github.com/tstw/storyframe/internal/logging"
	"github.com/tstw/storyframe/internal/models"
	"github.com/tstw/storyframe/internal/services/assets"
	"github.com/tstw/storyframe/internal/services/exporter"
	"github.com/tstw/storyframe/internal/services/fonts"
	"github.com/tstw/storyframe/internal/services/render"
	"github.com/tstw/storyframe/internal/services/session"
	"github.com/tstw/storyframe/internal/services/watch"
)

const version = "1.0.0"

const previewFilename = "preview.png"

// cliFlags holds every flag value. Which of them actually override the
// composition document is decided by the explicit-set map from
// flag.Visit, not by comparing against defaults.
type cliFlags struct {
	configPath     string
	backgroundPath string
	size           string
	preset         string
	top            string
	bottom         string
	topSize        int
	bottomSize     int
	topAlign       string
	bottomAlign    string
	shadow         bool
	panel          string
	fit            string
	dim            float64
	density        int
	outDir         string
	preview        bool
	watch          bool
	version        bool
}

func parseFlags() (*cliFlags, map[string]bool) {
	fl := &cliFlags{}
	flag.StringVar(&fl.configPath, "config", "", "composition document (TOML)")
	flag.StringVar(&fl.backgroundPath, "background", "", "background image file")
	flag.StringVar(&fl.size, "size", "", "canvas size: story, tiktok, square or portrait")
	flag.StringVar(&fl.preset, "preset", "", "text preset: classic, announce or minimal")
	flag.StringVar(&fl.top, "top", "", "top caption text (\\n starts a new line)")
	flag.StringVar(&fl.bottom, "bottom", "", "bottom call-to-action text (\\n starts a new line)")
	flag.IntVar(&fl.topSize, "top-size", models.DefaultTopFontSize, "top caption font size in px")
	flag.IntVar(&fl.bottomSize, "bottom-size", models.DefaultBottomFontSize, "bottom text font size in px")
	flag.StringVar(&fl.topAlign, "top-align", "", "top alignment: left, center or right")
	flag.StringVar(&fl.bottomAlign, "bottom-align", "", "bottom alignment: left, center or right")
	flag.BoolVar(&fl.shadow, "shadow", true, "draw text shadows")
	flag.StringVar(&fl.panel, "panel", "", "text panel style: none, soft or box")
	flag.StringVar(&fl.fit, "fit", "", "background fit: cover or contain")
	flag.Float64Var(&fl.dim, "dim", models.DefaultDimOpacity, "backdrop dim opacity, 0 to 0.6")
	flag.IntVar(&fl.density, "density", models.DefaultDensity, "export density multiplier: 1, 2 or 3")
	flag.StringVar(&fl.outDir, "out", "", "output directory")
	flag.BoolVar(&fl.preview, "preview", false, "write the preview PNG instead of exporting")
	flag.BoolVar(&fl.watch, "watch", false, "keep re-rendering the preview as inputs change")
	flag.BoolVar(&fl.version, "version", false, "print the version and exit")
	flag.Parse()

	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return fl, set
}

func main() {
	fl, set := parseFlags()
	if fl.version {
		fmt.Println("storyframe " + version)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}
	if fl.outDir != "" {
		cfg.Output.Dir = fl.outDir
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	fontStore, err := fonts.New(cfg.Fonts)
	if err != nil {
		logger.Fatal("Failed to load typeface", zap.Error(err))
	}

	loader := assets.NewLoader(cfg.Assets, logger)
	renderer := render.New(fontStore, logger)
	sess := session.New(logger)
	exp := exporter.New(renderer, fontStore, cfg.Output, logger)

	ctx := context.Background()

	density, bgPath, err := rebuild(ctx, sess, loader, logger, fl, set)
	if err != nil {
		logger.Fatal("Failed to assemble composition", zap.Error(err))
	}

	snap := sess.Snapshot()
	logger.Debug("composition assembled", zap.Any("composition", snap))

	switch {
	case fl.watch:
		runWatch(ctx, cfg, sess, loader, exp, logger, fl, set, bgPath)
	case fl.preview:
		path := filepath.Join(cfg.Output.Dir, previewFilename)
		if err := exp.WritePreview(ctx, snap, path); err != nil {
			logger.Fatal("Failed to write preview", zap.Error(err))
		}
		fmt.Println(path)
	default:
		path, err := exp.Export(ctx, models.ExportRequest{Composition: snap, Density: density})
		if err != nil {
			logger.Fatal("Export failed", zap.Error(err))
		}
		fmt.Println(path)
	}
}

// rebuild restarts the session from defaults and replays the document,
// the explicitly set flags and the background load, in that order. The
// same replay serves startup and every watch-mode change, so deleting a
// key from the document really removes its effect.
func rebuild(ctx context.Context, sess *session.Session, loader *assets.Loader, logger *zap.Logger, fl *cliFlags, set map[string]bool) (density int, bgPath string, err error) {
	sess.Reset()
	density = models.DefaultDensity

	if fl.configPath != "" {
		doc, err := session.LoadDocument(fl.configPath)
		if err != nil {
			return 0, "", err
		}
		if err := sess.ApplyDocument(doc); err != nil {
			return 0, "", err
		}
		if doc.Density != nil {
			density = *doc.Density
		}
		if doc.Background != nil {
			bgPath = *doc.Background
		}
	}

	if err := applyFlags(sess, fl, set); err != nil {
		return 0, "", err
	}
	if set["density"] {
		density = fl.density
	}
	if set["background"] {
		bgPath = fl.backgroundPath
	}

	if bgPath != "" {
		asset, err := loader.Load(ctx, bgPath)
		if err != nil {
			// Decode failure leaves the background absent; preview
			// shows the placeholder and export fails its
			// precondition check.
			logger.Error("Failed to load background image",
				zap.String("path", bgPath), zap.Error(err))
			sess.SetBackground(nil)
		} else {
			sess.SetBackground(asset)
		}
	}

	return density, bgPath, nil
}

// applyFlags routes every explicitly set flag through the session
// setters, so CLI input clamps and validates exactly like document
// input. The preset lands before the text flags, so -top and -bottom
// override it.
func applyFlags(sess *session.Session, fl *cliFlags, set map[string]bool) error {
	if set["size"] {
		if err := sess.SetCanvas(fl.size); err != nil {
			return err
		}
	}
	if set["preset"] {
		if err := sess.ApplyTextPreset(fl.preset); err != nil {
			return err
		}
	}
	if set["top"] {
		sess.SetTopText(unescapeNewlines(fl.top))
	}
	if set["bottom"] {
		sess.SetBottomText(unescapeNewlines(fl.bottom))
	}
	if set["top-align"] {
		if err := sess.SetTopAlignment(models.Alignment(fl.topAlign)); err != nil {
			return err
		}
	}
	if set["bottom-align"] {
		if err := sess.SetBottomAlignment(models.Alignment(fl.bottomAlign)); err != nil {
			return err
		}
	}
	if set["top-size"] {
		sess.SetTopFontSize(fl.topSize)
	}
	if set["bottom-size"] {
		sess.SetBottomFontSize(fl.bottomSize)
	}
	if set["shadow"] {
		sess.SetShadow(fl.shadow)
	}
	if set["panel"] {
		if err := sess.SetPanelStyle(models.PanelStyle(fl.panel)); err != nil {
			return err
		}
	}
	if set["fit"] {
		if err := sess.SetBackgroundFit(models.BackgroundFit(fl.fit)); err != nil {
			return err
		}
	}
	if set["dim"] {
		sess.SetDimOpacity(fl.dim)
	}
	return nil
}

// unescapeNewlines turns the two-character sequence \n into a real
// line break so multi-line captions survive shell quoting.
func unescapeNewlines(s string) string {
	return strings.ReplaceAll(s, `\n`, "\n")
}

// runWatch keeps the preview current while the document or the
// background image change on disk. A malformed document mid-edit is
// logged and skipped, never fatal.
func runWatch(ctx context.Context, cfg *config.Config, sess *session.Session, loader *assets.Loader, exp *exporter.Exporter, logger *zap.Logger, fl *cliFlags, set map[string]bool, bgPath string) {
	previewPath := filepath.Join(cfg.Output.Dir, previewFilename)

	if fl.configPath == "" && bgPath == "" {
		logger.Warn("Nothing to watch, preview will not refresh")
	}

	// The watch set is fixed at startup. Pointing the document at a
	// different background re-renders once, but later edits to that
	// new file go unseen until restart.
	w, err := watch.New([]string{fl.configPath, bgPath}, cfg.Watch.Debounce, logger)
	if err != nil {
		logger.Fatal("Failed to start file watcher", zap.Error(err))
	}
	defer w.Close()

	if err := exp.WritePreview(ctx, sess.Snapshot(), previewPath); err != nil {
		logger.Fatal("Failed to write preview", zap.Error(err))
	}

	logger.Info("Watching for changes",
		zap.String("document", fl.configPath),
		zap.String("background", bgPath),
		zap.String("preview", previewPath),
		zap.Bool("polling", w.Polling()))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-quit:
			logger.Info("Shutting down")
			return
		case <-w.Events():
			if _, _, err := rebuild(ctx, sess, loader, logger, fl, set); err != nil {
				logger.Error("Failed to reload composition", zap.Error(err))
				continue
			}
			if err := exp.WritePreview(ctx, sess.Snapshot(), previewPath); err != nil {
				logger.Error("Failed to write preview", zap.Error(err))
			}
		}
	}
}
