package models

// BrandMark is the fixed corner signature stamped on every render.
// It is not user-configurable.
const BrandMark = "@tstw"

// Composition is the complete description of one story image: canvas
// size, background, the two text blocks and the shared styling. It is a
// plain value; copying it yields an independent snapshot (the decoded
// background image is shared, never mutated).
type Composition struct {
	Canvas     CanvasSize      `json:"canvas"`
	Background BackgroundAsset `json:"background"`
	Style      StyleSpec       `json:"style"`
	Top        TextBlockSpec   `json:"top"`
	Bottom     TextBlockSpec   `json:"bottom"`
}

// DefaultComposition returns the startup state: story canvas, classic
// text preset, centered blocks, shadow on, no panel, cover fit, 20% dim
// and no background loaded.
func DefaultComposition() Composition {
	canvas, _ := LookupCanvasSize(DefaultCanvasID)
	preset, _ := LookupTextPreset(DefaultTextPresetID)

	return Composition{
		Canvas: canvas,
		Style: StyleSpec{
			ShadowEnabled: true,
			PanelStyle:    PanelNone,
			BackgroundFit: FitCover,
			DimOpacity:    DefaultDimOpacity,
		},
		Top: TextBlockSpec{
			Content:   preset.Top,
			Alignment: AlignCenter,
			FontSize:  DefaultTopFontSize,
		},
		Bottom: TextBlockSpec{
			Content:   preset.Bottom,
			Alignment: AlignCenter,
			FontSize:  DefaultBottomFontSize,
		},
	}
}
