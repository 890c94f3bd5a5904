package verify

import (
	"fmt"
	"math"

	"github.com/mlnoga/filmr/internal/filmstock"
	"gonum.org/v1/gonum/optimize"
)

// exposureResponse samples each layer's H-D curve across an eight-stop
// exposure ramp, re-fits a sigmoid to the samples with a derivative-free
// optimizer, and checks both the fit's self-consistency (did shoulder
// softening or a bad shoulder point distort the curve past recognition?)
// and the declared parameters against the datasheet-plausible bounds a
// real film stock should fall within. Grounded on the step-wedge sampling
// in original_source/examples/verify_quality.rs's check_hd_curve.
func exposureResponse(film *filmstock.FilmStock, th Thresholds) LayerResult {
	metrics := map[string]float64{}
	ok := true
	var details []string

	curves := map[string]*filmstock.HDCurve{"r": &film.RCurve, "g": &film.GCurve, "b": &film.BCurve}
	for name, c := range curves {
		fitDMin, fitDMax, fitGamma, residual := fitSigmoid(c)
		metrics[name+"_fit_residual"] = residual
		if residual > 0.05 {
			ok = false
			details = append(details, fmt.Sprintf("%s curve fit residual %.4f too high, shoulder may be pathological", name, residual))
		}
		if math.Abs(float64(fitDMin-c.DMin)) > 0.05 || math.Abs(float64(fitDMax-c.DMax)) > 0.1 {
			ok = false
			details = append(details, fmt.Sprintf("%s curve fit (dmin=%.3f dmax=%.3f) diverges from declared (dmin=%.3f dmax=%.3f)", name, fitDMin, fitDMax, c.DMin, c.DMax))
		}
		if math.Abs(float64(fitGamma-c.Gamma)) > float64(th.GammaTolerance) {
			ok = false
			details = append(details, fmt.Sprintf("%s gamma fit %.3f drifted from declared %.3f", name, fitGamma, c.Gamma))
		}

		latitude := c.LatitudeStops()
		metrics[name+"_latitude_stops"] = float64(latitude)
		if latitude < th.LatitudeMinStops {
			ok = false
			details = append(details, fmt.Sprintf("%s latitude %.2f stops below minimum %.2f", name, latitude, th.LatitudeMinStops))
		}
	}

	if film.IsColor() {
		if film.RCurve.DMin < th.DMinLow || film.RCurve.DMin > th.DMinHigh {
			ok = false
			details = append(details, fmt.Sprintf("r_curve d_min %.3f outside plausible fog range [%.2f,%.2f]", film.RCurve.DMin, th.DMinLow, th.DMinHigh))
		}
		if film.RCurve.DMax < th.DMaxMinColor {
			ok = false
			details = append(details, fmt.Sprintf("r_curve d_max %.3f below minimum %.2f for a color stock", film.RCurve.DMax, th.DMaxMinColor))
		}
	}

	detail := "curve fits and datasheet bounds consistent"
	if len(details) > 0 {
		detail = joinDetails(details)
	}
	return LayerResult{Name: "ExposureResponse", Pass: ok, Detail: detail, Metrics: metrics}
}

// fitSigmoid samples c.Evaluate across an eight-stop ramp centered on its
// exposure offset and recovers (d_min, d_max, gamma) with Nelder-Mead,
// starting from the curve's own declared parameters as the initial guess.
func fitSigmoid(c *filmstock.HDCurve) (dMin, dMax, gamma float32, residual float64) {
	const n = 33
	logOffset := math.Log10(float64(c.ExposureOffset))
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i := 0; i < n; i++ {
		stops := -4.0 + 8.0*float64(i)/float64(n-1)
		logE := logOffset + stops*math.Log10(2)
		xs[i] = logE
		ys[i] = float64(c.Evaluate(float32(logE)))
	}

	model := func(x, dmin, dmax, g float64) float64 {
		rangeD := dmax - dmin
		if rangeD <= 1e-6 {
			rangeD = 1e-6
		}
		k := 4 * g / rangeD
		u := k * (x - logOffset)
		return dmin + rangeD/(1+math.Exp(-u))
	}

	obj := func(p []float64) float64 {
		sum := 0.0
		for i := range xs {
			d := model(xs[i], p[0], p[1], p[2])
			diff := d - ys[i]
			sum += diff * diff
		}
		return sum
	}

	init := []float64{float64(c.DMin), float64(c.DMax), float64(c.Gamma)}
	result, err := optimize.Minimize(optimize.Problem{Func: obj}, init, &optimize.Settings{MajorIterations: 300}, &optimize.NelderMead{})
	if err != nil || result == nil {
		return c.DMin, c.DMax, c.Gamma, 1.0
	}
	p := result.X
	residual = math.Sqrt(result.F / float64(n))
	return float32(p[0]), float32(p[1]), float32(p[2]), residual
}
