// Package filmstock holds the FilmStock parameter bundle, its derived
// spectral matrix and coupling matrix, JSON/YAML preset loading, and the
// named preset table.
package filmstock

import (
	"encoding/json"

	"github.com/mlnoga/filmr/internal/filmerrors"
	"github.com/mlnoga/filmr/internal/spectrum"
	"gonum.org/v1/gonum/mat"
)

type StockType int

const (
	ColorNegative StockType = iota
	ColorPositive
	BlackWhiteNegative
)

// GrainParams parametrizes the density-dependent granularity model.
type GrainParams struct {
	Alpha              float32 `json:"alpha"`
	SigmaRead          float32 `json:"sigma_read"`
	Roughness          float32 `json:"roughness"`
	Monochrome         bool    `json:"monochrome"`
	ColorCorrelation   float32 `json:"color_correlation"`
	ShadowNoise        float32 `json:"shadow_noise"`
	HighlightCoarseness float32 `json:"highlight_coarseness"`
	RadiusPx           float32 `json:"radius_px"`
}

// HalationParams parametrizes the bloom/scatter stage.
type HalationParams struct {
	Threshold float32    `json:"threshold"`
	Sigma     float32    `json:"sigma"`
	Strength  float32    `json:"strength"`
	TintR     float32    `json:"tint_r"`
	TintG     float32    `json:"tint_g"`
	TintB     float32    `json:"tint_b"`
}

// ReciprocityParams parametrizes the Schwarzschild-exponent correction.
type ReciprocityParams struct {
	Beta float32 `json:"beta"`
}

// DynamicRangeMeta is descriptive metadata consumed only by the verifier.
type DynamicRangeMeta struct {
	LatitudeStops float32 `json:"latitude_stops"`
	Dmax          float32 `json:"dmax"`
	Dmin          float32 `json:"dmin"`
}

// FilmStock is the immutable parameter bundle for one named film. It is
// constructed once (from a preset or JSON/YAML file) and shared read-only
// across every goroutine and GPU dispatch processing a job.
type FilmStock struct {
	Manufacturer string    `json:"manufacturer"`
	Name         string    `json:"name"`
	Type         StockType `json:"type"`
	ISO          float32   `json:"iso"`

	SpectralParams spectrum.FilmSpectralParams `json:"spectral_params"`

	RCurve HDCurve `json:"r_curve"`
	GCurve HDCurve `json:"g_curve"`
	BCurve HDCurve `json:"b_curve"`

	// Coupling holds the row-major entries of the 3x3 inter-layer
	// inhibition matrix M.
	Coupling [9]float32 `json:"coupling"`

	Grain      GrainParams       `json:"grain"`
	Halation   HalationParams    `json:"halation"`
	Reciprocity ReciprocityParams `json:"reciprocity"`

	// ResolutionLinesPerMM drives the optional MTF softening stage; zero
	// disables it.
	ResolutionLinesPerMM float32 `json:"resolution_lines_per_mm"`

	// Output/paper projection calibration.
	TMin       float32 `json:"t_min"`
	TMax       float32 `json:"t_max"`
	PaperGamma float32 `json:"paper_gamma"`

	Range DynamicRangeMeta `json:"dynamic_range"`

	// derived, computed lazily by SpectralMatrix()/CouplingMatrix()
	sensitivities *spectrum.FilmSensitivities
	spectralMatrix *mat.Dense
	couplingMatrix *mat.Dense
}

// defaults mirrors the teacher's unmarshal-with-defaults idiom: unknown or
// missing JSON fields keep whatever the zero-value FilmStock already had
// (typically populated from a preset constructor before unmarshaling).
type defaults FilmStock

func (f *FilmStock) UnmarshalJSON(data []byte) error {
	def := defaults(*f)
	if err := json.Unmarshal(data, &def); err != nil {
		return err
	}
	*f = FilmStock(def)
	return nil
}

// Validate enforces every invariant in the data model before the stock is
// used by any stage.
func (f *FilmStock) Validate() error {
	if err := f.RCurve.Validate("r_curve"); err != nil {
		return err
	}
	if err := f.GCurve.Validate("g_curve"); err != nil {
		return err
	}
	if err := f.BCurve.Validate("b_curve"); err != nil {
		return err
	}
	if f.TMax <= f.TMin {
		return &filmerrors.ConfigurationError{Field: "t_min/t_max", Msg: "require t_max > t_min"}
	}
	if f.PaperGamma <= 0 {
		return &filmerrors.ConfigurationError{Field: "paper_gamma", Msg: "require paper_gamma > 0"}
	}
	if f.IsColor() {
		if f.SpectralParams.RPeak <= 0 || f.SpectralParams.GPeak <= 0 || f.SpectralParams.BPeak <= 0 {
			return &filmerrors.ConfigurationError{Field: "spectral_params", Msg: "color stock requires all three layers sensitive"}
		}
	}
	return nil
}

func (f *FilmStock) IsColor() bool { return f.Type != BlackWhiteNegative }

// Sensitivities lazily builds and caches the per-layer spectral
// sensitivity curves from SpectralParams. In practice the cache is always
// warm by the time a caller can reach it: finish (presets.go), the sole
// path every built-in and loaded FilmStock is constructed through,
// populates it before returning the stock, so this never races even
// though the field itself isn't mutex-guarded. Callers that need factors
// calibrated to a run-specific illuminant must Clone() the result first —
// mutating the shared FilmSensitivities in place would race with every
// other goroutine/stage reading it from this same *FilmStock.
func (f *FilmStock) Sensitivities() *spectrum.FilmSensitivities {
	if f.sensitivities == nil {
		f.sensitivities = spectrum.FromParams(f.SpectralParams)
	}
	return f.sensitivities
}

// CouplingMatrix returns the 3x3 inter-layer inhibition matrix as a
// gonum Dense, reused verbatim across every pixel of a run. Same
// always-warm-by-construction contract as Sensitivities.
func (f *FilmStock) CouplingMatrix() *mat.Dense {
	if f.couplingMatrix == nil {
		f.couplingMatrix = mat.NewDense(3, 3, toFloat64s(f.Coupling[:]))
	}
	return f.couplingMatrix
}

func toFloat64s(in []float32) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}

// IdentityCoupling returns a coupling matrix with diagonal 1 and no
// inter-layer inhibition, used for stocks that don't model IIE.
func IdentityCoupling() [9]float32 {
	return [9]float32{1, 0, 0, 0, 1, 0, 0, 0, 1}
}
