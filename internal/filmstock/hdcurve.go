package filmstock

import (
	"math"

	"github.com/mlnoga/filmr/internal/filmerrors"
)

// CurveFamily selects the response function backing an HDCurve. Sigmoid
// is the authoritative family; ERF is kept for stocks whose datasheet fit
// predates the switch and must not be silently re-fit.
type CurveFamily int

const (
	CurveSigmoid CurveFamily = iota
	CurveERF
)

// HDCurve is a single layer's Hurter-Driffield exposure/density response.
type HDCurve struct {
	DMin           float32     `json:"d_min"`
	DMax           float32     `json:"d_max"`
	Gamma          float32     `json:"gamma"`
	ExposureOffset float32     `json:"exposure_offset"`
	ShoulderPoint  float32     `json:"shoulder_point"`
	Family         CurveFamily `json:"family"`
}

// Validate enforces the invariants a FilmStock's curves must hold before
// any pixel work starts.
func (c *HDCurve) Validate(layer string) error {
	if !(c.DMax > c.DMin && c.DMin >= 0) {
		return &filmerrors.ConfigurationError{Field: layer + ".d_min/d_max", Msg: "require d_max > d_min >= 0"}
	}
	if c.Gamma <= 0 {
		return &filmerrors.ConfigurationError{Field: layer + ".gamma", Msg: "require gamma > 0"}
	}
	if c.ExposureOffset <= 0 {
		return &filmerrors.ConfigurationError{Field: layer + ".exposure_offset", Msg: "require exposure_offset > 0"}
	}
	if !(c.ShoulderPoint > c.DMin && c.ShoulderPoint <= c.DMax) {
		return &filmerrors.ConfigurationError{Field: layer + ".shoulder_point", Msg: "require shoulder_point in (d_min, d_max]"}
	}
	return nil
}

func sigmoid(u float32) float32 {
	return float32(1.0 / (1.0 + math.Exp(-float64(u))))
}

// Evaluate maps a log10 exposure value to optical density, applying the
// H-D response then shoulder softening. logExposure is log10(E).
func (c *HDCurve) Evaluate(logExposure float32) float32 {
	x := logExposure - float32(math.Log10(float64(c.ExposureOffset)))
	rangeD := c.DMax - c.DMin
	k := 4 * c.Gamma / rangeD

	var d float32
	switch c.Family {
	case CurveERF:
		// erf-family analogue of the sigmoid mapping, scaled to the same
		// range and kept only for legacy datasheet fits (see §Open Questions).
		d = c.DMin + rangeD*0.5*(1+erf(k*x/1.6551))
	default:
		d = c.DMin + rangeD*sigmoid(k*x)
	}
	return shoulderSoften(d, c.ShoulderPoint)
}

// LatitudeStops estimates usable exposure latitude in stops: the log2
// exposure range over which density stays within [d_min+0.05, d_max-0.05].
func (c *HDCurve) LatitudeStops() float32 {
	lo := c.solveForDensity(c.DMin + 0.05)
	hi := c.solveForDensity(c.DMax - 0.05)
	return (hi - lo) * float32(math.Log2(10))
}

// solveForDensity performs a bounded bisection to invert Evaluate, used
// only for latitude estimation and test scaffolding (not the hot path).
func (c *HDCurve) solveForDensity(target float32) float32 {
	lo, hi := float32(-8), float32(8)
	for i := 0; i < 40; i++ {
		mid := 0.5 * (lo + hi)
		if c.Evaluate(mid) < target {
			lo = mid
		} else {
			hi = mid
		}
	}
	return 0.5 * (lo + hi)
}
