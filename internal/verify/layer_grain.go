package verify

import (
	"fmt"
	"math"

	"github.com/mlnoga/filmr/internal/filmstock"
	"github.com/mlnoga/filmr/internal/ops"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

// grainCharacter renders a flat mid-gray field with grain enabled and
// every other stochastic/blurring stage disabled, then checks that the
// resulting per-pixel deviation has a plausible RMS amplitude and a
// power spectral density that falls off with frequency the way real
// silver-halide grain does, rather than either vanishing (grain
// disabled by accident) or behaving as pure white noise (density term
// not actually varying with position). No analog exists in
// original_source/examples/verify_quality.rs, whose own checks run with
// enable_grain: false throughout; this layer is a supplement for the
// grain synthesis this engine adds, grounded instead on OpGrain's own
// density-dependent variance model in internal/ops/grain.go.
func grainCharacter(film *filmstock.FilmStock, th Thresholds) LayerResult {
	metrics := map[string]float64{}
	const n = 128

	opts := ops.DefaultOptions()
	opts.HalationEnabled = false
	opts.GrainEnabled = true
	opts.Seed = 1

	out, err := runPatch(film, opts, 128, 128, 128, n)
	if err != nil {
		return LayerResult{Name: "GrainCharacter", Pass: false, Detail: fmt.Sprintf("render failed: %v", err), Metrics: metrics}
	}

	grid := make([]float64, n*n)
	var mean float64
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			// green channel, deinterleaved
			v := float64(out[(y*n+x)*3+1])
			grid[y*n+x] = v
			mean += v
		}
	}
	mean /= float64(n * n)

	var sumSq float64
	for i := range grid {
		grid[i] -= mean
		sumSq += grid[i] * grid[i]
	}
	rms := math.Sqrt(sumSq/float64(n*n)) / 255.0
	metrics["rms_amplitude"] = rms

	ok := true
	var details []string
	if rms < 0.05/255.0*3 {
		ok = false
		details = append(details, fmt.Sprintf("grain RMS %.5f is implausibly small for a flat field", rms))
	}

	// Average 1D power spectrum across rows, then fit a log-log slope.
	fft := fourier.NewFFT(n)
	bins := n/2 + 1
	power := make([]float64, bins)
	for y := 0; y < n; y++ {
		row := grid[y*n : (y+1)*n]
		coeff := fft.Coefficients(nil, row)
		for k := 0; k < bins; k++ {
			mag := coeff[k]
			power[k] += real(mag)*real(mag) + imag(mag)*imag(mag)
		}
	}
	for k := range power {
		power[k] /= float64(n)
	}

	var freqs, logP []float64
	for k := 2; k < bins; k++ {
		if power[k] <= 0 {
			continue
		}
		freqs = append(freqs, math.Log(float64(k)))
		logP = append(logP, math.Log(power[k]))
	}

	slope := 0.0
	if len(freqs) >= 4 {
		_, beta := stat.LinearRegression(freqs, logP, nil, false)
		slope = beta
	}
	metrics["psd_log_log_slope"] = slope
	absSlope := math.Abs(slope)
	if absSlope < float64(th.GrainSlopeLow)-1.0 || absSlope > float64(th.GrainSlopeHigh)+1.0 {
		// Wide sanity band: silver-halide grain PSDs range from near-white
		// to noticeably pink depending on stock roughness and clumping.
		ok = false
		details = append(details, fmt.Sprintf("grain PSD slope magnitude %.2f is outside a plausible range", absSlope))
	}

	if !film.Grain.Monochrome && film.Grain.ColorCorrelation < 0 || film.Grain.ColorCorrelation > 1 {
		ok = false
		details = append(details, fmt.Sprintf("color_correlation %.2f outside [0,1]", film.Grain.ColorCorrelation))
	}

	detail := "grain amplitude and spectrum plausible"
	if len(details) > 0 {
		detail = joinDetails(details)
	}
	return LayerResult{Name: "GrainCharacter", Pass: ok, Detail: detail, Metrics: metrics}
}
