package models

// ExportRequest pairs a composition snapshot with the pixel-density
// multiplier for the output raster. Density scales pixels only; the
// export filename always carries the nominal canvas dimensions.
type ExportRequest struct {
	Composition Composition `json:"composition"`
	Density     int         `json:"density"`
}

const (
	DensityMin     = 1
	DensityMax     = 3
	DefaultDensity = 2
)

func ClampDensity(d int) int {
	return clampInt(d, DensityMin, DensityMax)
}
