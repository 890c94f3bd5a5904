package verify

import (
	"fmt"
	"math"

	"github.com/mlnoga/filmr/internal/filmstock"
)

// chemicalCoupling checks the inter-layer inhibition matrix: diagonal
// entries should dominate (a layer's own exposure is still its primary
// density driver) and off-diagonal inhibition should stay under the
// stock's declared bound, or dye coupling would visibly desaturate or
// recolor the image. Grounded on the diagonal-dominance check in
// original_source/examples/verify_quality.rs's check_interimage_effects.
func chemicalCoupling(film *filmstock.FilmStock, th Thresholds) LayerResult {
	m := film.Coupling
	metrics := map[string]float64{}
	ok := true
	var details []string

	for row := 0; row < 3; row++ {
		diag := m[row*3+row]
		metrics[fmt.Sprintf("diag_%d", row)] = float64(diag)
		if diag <= 0 {
			ok = false
			details = append(details, fmt.Sprintf("row %d diagonal %.3f is non-positive", row, diag))
			continue
		}
		for col := 0; col < 3; col++ {
			if col == row {
				continue
			}
			ratio := math.Abs(float64(m[row*3+col] / diag))
			key := fmt.Sprintf("inhibition_%d_%d", row, col)
			metrics[key] = ratio
			if ratio > float64(th.InterLayerInhibitionMax) {
				ok = false
				details = append(details, fmt.Sprintf("row %d col %d inhibition ratio %.3f exceeds %.3f", row, col, ratio, th.InterLayerInhibitionMax))
			}
		}
	}

	detail := "inter-layer inhibition within bounds"
	if len(details) > 0 {
		detail = joinDetails(details)
	}
	return LayerResult{Name: "ChemicalCoupling", Pass: ok, Detail: detail, Metrics: metrics}
}
