package verify

import (
	"fmt"
	"math"

	"github.com/mlnoga/filmr/internal/colorimetry"
	"github.com/mlnoga/filmr/internal/filmstock"
	"github.com/mlnoga/filmr/internal/ops"
)

// reciprocityBehavior compares a mid-gray patch rendered at a normal
// handheld shutter speed against the same patch rendered at a long
// exposure time, isolating the Schwarzschild-exponent correction applied
// in Develop. Long exposures should read measurably darker (reciprocity
// failure) but the shift should stay bounded, and shouldn't blow out into
// an implausible color cast given this engine's single global beta.
// Grounded on the constant-exposure two-shutter-speed comparison in
// original_source/examples/verify_quality.rs's check_reciprocity_failure.
func reciprocityBehavior(film *filmstock.FilmStock, th Thresholds) LayerResult {
	metrics := map[string]float64{}
	ok := true
	var details []string

	shortOpts := ops.DefaultOptions()
	shortOpts.GrainEnabled = false
	shortOpts.HalationEnabled = false
	shortOpts.ExposureTimeSeconds = 1.0 / 125.0

	longOpts := ops.DefaultOptions()
	longOpts.GrainEnabled = false
	longOpts.HalationEnabled = false
	longOpts.ExposureTimeSeconds = 8.0

	shortOut, err := runPatch(film, shortOpts, 128, 128, 128, 4)
	if err != nil {
		return LayerResult{Name: "Reciprocity", Pass: false, Detail: fmt.Sprintf("short exposure render failed: %v", err), Metrics: metrics}
	}
	longOut, err := runPatch(film, longOpts, 128, 128, 128, 4)
	if err != nil {
		return LayerResult{Name: "Reciprocity", Pass: false, Detail: fmt.Sprintf("long exposure render failed: %v", err), Metrics: metrics}
	}

	shortLum := (float64(shortOut[0]) + float64(shortOut[1]) + float64(shortOut[2])) / 3.0 / 255.0
	longLum := (float64(longOut[0]) + float64(longOut[1]) + float64(longOut[2])) / 3.0 / 255.0
	drift := math.Abs(shortLum - longLum)
	metrics["luminance_drift"] = drift
	if film.Reciprocity.Beta > 0 && drift < 1e-4 {
		ok = false
		details = append(details, "declared reciprocity beta > 0 but long exposure shows no measurable density drift")
	}
	if drift > float64(th.ReciprocityDensityDriftMax) {
		ok = false
		details = append(details, fmt.Sprintf("luminance drift %.3f exceeds %.3f between 1/125s and 8s", drift, th.ReciprocityDensityDriftMax))
	}

	sr, sg, sb := colorimetry.SRGBToLinear(float32(shortOut[0])/255), colorimetry.SRGBToLinear(float32(shortOut[1])/255), colorimetry.SRGBToLinear(float32(shortOut[2])/255)
	lr, lg, lb := colorimetry.SRGBToLinear(float32(longOut[0])/255), colorimetry.SRGBToLinear(float32(longOut[1])/255), colorimetry.SRGBToLinear(float32(longOut[2])/255)
	de := colorimetry.DeltaE2000(sr, sg, sb, lr, lg, lb)
	metrics["color_shift_deltaE"] = de
	if de > th.ReciprocityDeltaEMax {
		ok = false
		details = append(details, fmt.Sprintf("reciprocity color shift deltaE %.2f exceeds %.2f", de, th.ReciprocityDeltaEMax))
	}

	detail := "reciprocity drift within bounds"
	if len(details) > 0 {
		detail = joinDetails(details)
	}
	return LayerResult{Name: "Reciprocity", Pass: ok, Detail: detail, Metrics: metrics}
}
