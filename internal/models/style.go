package models

type PanelStyle string

const (
	PanelNone PanelStyle = "none"
	PanelSoft PanelStyle = "soft"
	PanelBox  PanelStyle = "box"
)

func (p PanelStyle) Valid() bool {
	switch p {
	case PanelNone, PanelSoft, PanelBox:
		return true
	}
	return false
}

type BackgroundFit string

const (
	FitCover   BackgroundFit = "cover"
	FitContain BackgroundFit = "contain"
)

func (f BackgroundFit) Valid() bool {
	return f == FitCover || f == FitContain
}

type StyleSpec struct {
	ShadowEnabled bool          `json:"shadow_enabled"`
	PanelStyle    PanelStyle    `json:"panel_style"`
	BackgroundFit BackgroundFit `json:"background_fit"`
	DimOpacity    float64       `json:"dim_opacity"`
}

const (
	DimOpacityMin     = 0.0
	DimOpacityMax     = 0.6
	DefaultDimOpacity = 0.2
)

func ClampDimOpacity(v float64) float64 {
	if v < DimOpacityMin {
		return DimOpacityMin
	}
	if v > DimOpacityMax {
		return DimOpacityMax
	}
	return v
}
