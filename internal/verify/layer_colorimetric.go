package verify

import (
	"fmt"

	"github.com/mlnoga/filmr/internal/colorimetry"
	"github.com/mlnoga/filmr/internal/filmstock"
	"github.com/mlnoga/filmr/internal/ops"
)

type colorPatch struct {
	name       string
	r, g, b    byte
}

// referencePatches is a small stand-in color checker: primaries,
// secondaries and a skin-tone approximation, enough to catch a color
// stock that badly misrenders hue without needing a full 24-patch chart.
var referencePatches = []colorPatch{
	{"red", 200, 40, 40},
	{"green", 40, 160, 60},
	{"blue", 40, 60, 200},
	{"yellow", 220, 200, 40},
	{"cyan", 40, 180, 190},
	{"magenta", 190, 50, 170},
	{"skin", 220, 170, 140},
	{"gray50", 128, 128, 128},
}

// colorimetricFidelity renders each reference patch through the full
// pipeline and measures the CIEDE2000 distance between the source sRGB
// color and the rendered result, both taken as linear-light triples
// through go-colorful's Lab machinery. A well-behaved film stock should
// keep every patch within DeltaE2000Max of its source hue: dramatic
// swings indicate a runaway coupling matrix or a saturated H-D curve.
// Grounded on the per-patch color-shift measurement in
// original_source/examples/verify_quality.rs's check_memory_color_shift.
func colorimetricFidelity(film *filmstock.FilmStock, th Thresholds) LayerResult {
	metrics := map[string]float64{}
	ok := true
	var details []string

	opts := ops.DefaultOptions()
	opts.GrainEnabled = false
	opts.HalationEnabled = false
	for _, p := range referencePatches {
		out, err := runPatch(film, opts, p.r, p.g, p.b, 4)
		if err != nil {
			ok = false
			details = append(details, fmt.Sprintf("%s failed to render: %v", p.name, err))
			continue
		}
		srcR, srcG, srcB := colorimetry.SRGBToLinear(float32(p.r)/255), colorimetry.SRGBToLinear(float32(p.g)/255), colorimetry.SRGBToLinear(float32(p.b)/255)
		dstR, dstG, dstB := colorimetry.SRGBToLinear(float32(out[0])/255), colorimetry.SRGBToLinear(float32(out[1])/255), colorimetry.SRGBToLinear(float32(out[2])/255)
		de := colorimetry.DeltaE2000(srcR, srcG, srcB, dstR, dstG, dstB)
		metrics["deltaE_"+p.name] = de
		if de > th.DeltaE2000Max {
			ok = false
			details = append(details, fmt.Sprintf("%s deltaE2000 %.2f exceeds %.2f", p.name, de, th.DeltaE2000Max))
		}
	}

	detail := "all reference patches within perceptual tolerance"
	if len(details) > 0 {
		detail = joinDetails(details)
	}
	return LayerResult{Name: "ColorimetricFidelity", Pass: ok, Detail: detail, Metrics: metrics}
}
