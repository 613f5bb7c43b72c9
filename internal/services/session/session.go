package session

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/tstw/storyframe/internal/models"
)

// Session owns the single mutable composition. Every mutation goes
// through a typed setter that validates or clamps centrally, so values
// outside their documented ranges never enter the model. Render passes
// read a consistent copy via Snapshot.
type Session struct {
	mu     sync.Mutex
	comp   models.Composition
	logger *zap.Logger
}

func New(logger *zap.Logger) *Session {
	return &Session{comp: models.DefaultComposition(), logger: logger}
}

// Snapshot returns a copy of the current composition. The decoded
// background image is shared by reference and never mutated.
func (s *Session) Snapshot() models.Composition {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.comp
}

// SetCanvas switches the canvas preset. Unknown IDs are an error and
// leave the current canvas in place.
func (s *Session) SetCanvas(id string) error {
	canvas, ok := models.LookupCanvasSize(id)
	if !ok {
		return fmt.Errorf("unknown canvas size %q", id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comp.Canvas = canvas
	return nil
}

// ApplyTextPreset overwrites both text contents with the preset's
// bundled strings. This is a template switch, never a merge; earlier
// edits to either block are discarded.
func (s *Session) ApplyTextPreset(id string) error {
	preset, ok := models.LookupTextPreset(id)
	if !ok {
		return fmt.Errorf("unknown text preset %q", id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comp.Top.Content = preset.Top
	s.comp.Bottom.Content = preset.Bottom
	s.logger.Info("text preset applied", zap.String("preset", id))
	return nil
}

func (s *Session) SetTopText(content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comp.Top.Content = content
}

func (s *Session) SetBottomText(content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comp.Bottom.Content = content
}

func (s *Session) SetTopAlignment(a models.Alignment) error {
	if !a.Valid() {
		return fmt.Errorf("unknown alignment %q", a)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comp.Top.Alignment = a
	return nil
}

func (s *Session) SetBottomAlignment(a models.Alignment) error {
	if !a.Valid() {
		return fmt.Errorf("unknown alignment %q", a)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comp.Bottom.Alignment = a
	return nil
}

func (s *Session) SetTopFontSize(px int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comp.Top.FontSize = models.ClampTopFontSize(px)
}

func (s *Session) SetBottomFontSize(px int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comp.Bottom.FontSize = models.ClampBottomFontSize(px)
}

func (s *Session) SetShadow(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comp.Style.ShadowEnabled = enabled
}

func (s *Session) SetPanelStyle(p models.PanelStyle) error {
	if !p.Valid() {
		return fmt.Errorf("unknown panel style %q", p)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comp.Style.PanelStyle = p
	return nil
}

func (s *Session) SetBackgroundFit(f models.BackgroundFit) error {
	if !f.Valid() {
		return fmt.Errorf("unknown background fit %q", f)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comp.Style.BackgroundFit = f
	return nil
}

func (s *Session) SetDimOpacity(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comp.Style.DimOpacity = models.ClampDimOpacity(v)
}

// SetBackground replaces the background asset wholesale; the previous
// decoded image is released with it. nil clears the slot.
func (s *Session) SetBackground(asset *models.BackgroundAsset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if asset == nil {
		s.comp.Background = models.BackgroundAsset{}
		s.logger.Info("background cleared")
		return
	}
	s.comp.Background = *asset
	s.logger.Info("background replaced",
		zap.String("name", asset.DisplayName),
		zap.Int64("bytes", asset.ByteSize))
}

// Reset restores every field to its documented default and drops the
// loaded background.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comp = models.DefaultComposition()
	s.logger.Info("session reset")
}
