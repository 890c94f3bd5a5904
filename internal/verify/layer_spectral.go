package verify

import (
	"fmt"
	"math"

	"github.com/mlnoga/filmr/internal/filmstock"
	"github.com/mlnoga/filmr/internal/spectrum"
)

// spectralFidelity checks that each color layer's declared peak sits where
// the stock claims, that its FWHM is physically plausible for a dye-cloud
// absorption curve, and that adjacent layers don't overlap so much that
// color separation collapses. Grounded on the peak-range sanity checks in
// original_source/examples/verify_quality.rs's check_spectral_fidelity.
func spectralFidelity(film *filmstock.FilmStock, th Thresholds) LayerResult {
	p := film.SpectralParams
	sens := film.Sensitivities()
	metrics := map[string]float64{}
	ok := true
	var details []string

	check := func(name string, peak, width float32, s *spectrum.Spectrum) {
		if peak <= 0 {
			return
		}
		measuredPeak := s.PeakNM()
		peakDelta := float32(math.Abs(float64(measuredPeak - peak)))
		metrics[name+"_peak_delta_nm"] = float64(peakDelta)
		fwhm := width * 2.35482
		metrics[name+"_fwhm_nm"] = float64(fwhm)
		if peakDelta > th.SpectralPeakToleranceNM {
			ok = false
			details = append(details, fmt.Sprintf("%s peak drifted %.1fnm from declared %.0fnm", name, peakDelta, peak))
		}
		if fwhm < 10 || fwhm > 300 {
			ok = false
			details = append(details, fmt.Sprintf("%s FWHM %.1fnm is outside a plausible dye-cloud range", name, fwhm))
		}
	}
	check("red", p.RPeak, p.RWidth, sens.R)
	check("green", p.GPeak, p.GWidth, sens.G)
	check("blue", p.BPeak, p.BWidth, sens.B)

	// Cross-layer overlap: at the midpoint wavelength between two adjacent
	// sensitized layers, neither curve should still be delivering more
	// than SpectralOverlapMax of its own peak, or color separation
	// degrades toward panchromatic mush.
	if p.RPeak > 0 && p.GPeak > 0 {
		mid := (p.RPeak + p.GPeak) / 2
		overlap := float32(math.Max(float64(sampleFractionOfPeak(sens.R, mid)), float64(sampleFractionOfPeak(sens.G, mid))))
		metrics["red_green_overlap"] = float64(overlap)
		if overlap > th.SpectralOverlapMax {
			ok = false
			details = append(details, fmt.Sprintf("red/green overlap %.2f exceeds %.2f", overlap, th.SpectralOverlapMax))
		}
	}
	if p.GPeak > 0 && p.BPeak > 0 {
		mid := (p.GPeak + p.BPeak) / 2
		overlap := float32(math.Max(float64(sampleFractionOfPeak(sens.G, mid)), float64(sampleFractionOfPeak(sens.B, mid))))
		metrics["green_blue_overlap"] = float64(overlap)
		if overlap > th.SpectralOverlapMax {
			ok = false
			details = append(details, fmt.Sprintf("green/blue overlap %.2f exceeds %.2f", overlap, th.SpectralOverlapMax))
		}
	}

	detail := "all layers within tolerance"
	if len(details) > 0 {
		detail = joinDetails(details)
	}
	return LayerResult{Name: "SpectralFidelity", Pass: ok, Detail: detail, Metrics: metrics}
}

// sampleFractionOfPeak reads a spectrum's power at the sample bin nearest
// atNM and expresses it as a fraction of the curve's own peak power.
func sampleFractionOfPeak(s *spectrum.Spectrum, atNM float32) float32 {
	idx := int((atNM - spectrum.LambdaStartNM) / spectrum.LambdaStepNM)
	if idx < 0 {
		idx = 0
	}
	if idx >= spectrum.Bins {
		idx = spectrum.Bins - 1
	}
	var peak float32
	for _, v := range s.Power {
		if v > peak {
			peak = v
		}
	}
	if peak <= 0 {
		return 0
	}
	return s.Power[idx] / peak
}

func joinDetails(d []string) string {
	out := ""
	for i, s := range d {
		if i > 0 {
			out += "; "
		}
		out += s
	}
	return out
}
