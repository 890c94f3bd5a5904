package verify

import (
	"fmt"
	"math"

	"github.com/mlnoga/filmr/internal/filmstock"
	"github.com/mlnoga/filmr/internal/ops"
)

// opticalOutput renders neutral gray patches through the full CPU pipeline
// and checks that they stay neutral in the final sRGB output, and reports
// the color-negative orange mask bias implied by the stock's base fog
// levels. Grounded on the rendered neutral-patch check in
// original_source/examples/verify_quality.rs's test_neutral_axis.
func opticalOutput(film *filmstock.FilmStock, th Thresholds) LayerResult {
	metrics := map[string]float64{}
	ok := true
	var details []string

	opts := ops.DefaultOptions()
	opts.GrainEnabled = false
	opts.HalationEnabled = false
	for _, v := range []byte{32, 96, 160, 224} {
		out, err := runPatch(film, opts, v, v, v, 4)
		if err != nil {
			ok = false
			details = append(details, fmt.Sprintf("patch v=%d failed to render: %v", v, err))
			continue
		}
		r, g, b := float64(out[0]), float64(out[1]), float64(out[2])
		spread := math.Max(math.Abs(r-g), math.Abs(g-b)) / 255.0
		metrics[fmt.Sprintf("neutral_spread_v%d", v)] = spread
		if spread > float64(th.NeutralDeltaMax) {
			ok = false
			details = append(details, fmt.Sprintf("v=%d neutral patch drifted to (%.0f,%.0f,%.0f)", v, r, g, b))
		}
	}

	if film.Type == filmstock.ColorNegative {
		maskBias := film.RCurve.DMin - film.BCurve.DMin
		metrics["orange_mask_bias"] = float64(maskBias)
		if maskBias < th.MaskBiasLow || maskBias > th.MaskBiasHigh {
			ok = false
			details = append(details, fmt.Sprintf("orange mask bias %.3f outside [%.2f,%.2f]", maskBias, th.MaskBiasLow, th.MaskBiasHigh))
		}
	}

	detail := "neutral axis and mask bias within bounds"
	if len(details) > 0 {
		detail = joinDetails(details)
	}
	return LayerResult{Name: "OpticalOutput", Pass: ok, Detail: detail, Metrics: metrics}
}
