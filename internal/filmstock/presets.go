package filmstock

import (
	"strings"

	"github.com/mlnoga/filmr/internal/spectrum"
)

// curveFor builds identical R/G/B HD curves, the common case for every
// preset below; stocks with per-layer datasheet differences override
// individual fields after calling this helper.
func curveFor(dMin, dMax, gamma, shoulderPoint, exposureOffset float32) HDCurve {
	return HDCurve{
		DMin: dMin, DMax: dMax, Gamma: gamma,
		ShoulderPoint: shoulderPoint, ExposureOffset: exposureOffset,
		Family: CurveSigmoid,
	}
}

// withDMin returns c with DMin shifted to newDMin, translating DMax and
// ShoulderPoint by the same offset so the curve's usable exposure range
// above the new floor is preserved rather than collapsed against it.
// Used to give a color-negative stock's R/G/B layers the differential
// base fog (the orange mask) real color-negative stock exhibits, which
// spec.md's verifier requires as a bounded D_R-D_B difference.
func withDMin(c HDCurve, newDMin float32) HDCurve {
	delta := newDMin - c.DMin
	c.DMin = newDMin
	c.DMax += delta
	c.ShoulderPoint += delta
	return c
}

// paperCalibration derives t_min/t_max from a curve's density range, the
// transmittance extremes a positive-mode paper projection normalizes
// against.
func paperCalibration(c HDCurve) (tMin, tMax float32) {
	tMax = DensityToTransmission(0)
	tMin = DensityToTransmission(c.DMax - c.DMin)
	return tMin, tMax
}

func negativeMatrix(diag, offdiag float32) [9]float32 {
	return [9]float32{
		diag, offdiag, offdiag,
		offdiag, diag, offdiag,
		offdiag, offdiag, diag,
	}
}

func finish(f FilmStock) *FilmStock {
	tMin, tMax := paperCalibration(f.RCurve)
	f.TMin, f.TMax = tMin, tMax
	if f.PaperGamma == 0 {
		if f.Type == ColorPositive {
			f.PaperGamma = 1.5
		} else {
			f.PaperGamma = 2.0
		}
	}
	f.Range = DynamicRangeMeta{
		LatitudeStops: f.RCurve.LatitudeStops(),
		Dmax:          f.RCurve.DMax,
		Dmin:          f.RCurve.DMin,
	}
	stock := &f
	// Populate the derived caches once, here, before this *FilmStock is
	// ever handed to a caller: every loader (Presets, LoadPresetsJSON,
	// LoadPresetsYAML) routes through finish, so by construction nothing
	// outside this package ever observes a FilmStock with a nil
	// sensitivities/couplingMatrix cache, and nothing writes to either
	// field again afterwards. That's what makes concurrent Sensitivities()/
	// CouplingMatrix() calls from multiple goroutines/stages safe without
	// a mutex, honoring the "shared read-only" contract on FilmStock's
	// doc comment.
	stock.Sensitivities()
	stock.CouplingMatrix()
	return stock
}

// KodakPortra400 is a medium-speed color negative with restrained,
// slightly desaturating inter-layer inhibition.
func KodakPortra400() *FilmStock {
	c := curveFor(0.12, 2.8, 0.65, 0.8, 0.05)
	return finish(FilmStock{
		Manufacturer: "Kodak", Name: "Portra 400", Type: ColorNegative, ISO: 400,
		SpectralParams: spectrum.PanchromaticParams(),
		RCurve: withDMin(c, 0.78), GCurve: c, BCurve: withDMin(c, 0.08),
		Coupling: negativeMatrix(1.07, -0.035),
		Grain: GrainParams{
			Alpha: 0.0121, SigmaRead: 0.005, Roughness: 0.45,
			ColorCorrelation: 0.8, ShadowNoise: 0.001, HighlightCoarseness: 0.05,
			RadiusPx: 0.5,
		},
		Halation:    HalationParams{Threshold: 0.85, Sigma: 0.014, Strength: 0.15, TintR: 1.0, TintG: 0.70, TintB: 0.50},
		Reciprocity: ReciprocityParams{Beta: 0.05},
		ResolutionLinesPerMM: 125.0,
	})
}

// KodakGold200 is a consumer-grade color negative.
func KodakGold200() *FilmStock {
	c := curveFor(0.12, 2.7, 0.65, 0.8, 0.10)
	return finish(FilmStock{
		Manufacturer: "Kodak", Name: "Gold 200", Type: ColorNegative, ISO: 200,
		SpectralParams: spectrum.PanchromaticParams(),
		RCurve: withDMin(c, 0.79), GCurve: c, BCurve: withDMin(c, 0.10),
		Coupling: negativeMatrix(1.06, -0.03),
		Grain: GrainParams{
			Alpha: 0.0100, SigmaRead: 0.005, Roughness: 0.4,
			ColorCorrelation: 0.8, ShadowNoise: 0.001, HighlightCoarseness: 0.05,
			RadiusPx: 0.5,
		},
		Halation:    HalationParams{Threshold: 0.86, Sigma: 0.014, Strength: 0.14, TintR: 1.0, TintG: 0.72, TintB: 0.52},
		Reciprocity: ReciprocityParams{Beta: 0.05},
		ResolutionLinesPerMM: 130.0,
	})
}

// KodakEktar100 is Kodak's finest-grained color negative, with the
// strongest inter-layer inhibition of the negative presets.
func KodakEktar100() *FilmStock {
	c := curveFor(0.12, 2.6, 0.65, 0.8, 0.20)
	return finish(FilmStock{
		Manufacturer: "Kodak", Name: "Ektar 100", Type: ColorNegative, ISO: 100,
		SpectralParams: spectrum.PanchromaticParams(),
		RCurve: withDMin(c, 0.75), GCurve: c, BCurve: withDMin(c, 0.07),
		Coupling: negativeMatrix(1.10, -0.05),
		Grain: GrainParams{
			Alpha: 0.0064, SigmaRead: 0.004, Roughness: 0.3,
			ColorCorrelation: 0.8, ShadowNoise: 0.001, HighlightCoarseness: 0.05,
			RadiusPx: 0.5,
		},
		Halation:    HalationParams{Threshold: 0.88, Sigma: 0.012, Strength: 0.12, TintR: 1.0, TintG: 0.72, TintB: 0.52},
		Reciprocity: ReciprocityParams{Beta: 0.05},
		ResolutionLinesPerMM: 145.0,
	})
}

// KodakTriX400 is a classic panchromatic black & white negative; its
// coupling matrix is the identity since B&W has a single density layer
// replicated across channels.
func KodakTriX400() *FilmStock {
	c := curveFor(0.10, 2.2, 0.70, 0.8, 0.05)
	return finish(FilmStock{
		Manufacturer: "Kodak", Name: "Tri-X 400", Type: BlackWhiteNegative, ISO: 400,
		SpectralParams: spectrum.PanchromaticParams(),
		RCurve: c, GCurve: c, BCurve: c,
		Coupling: IdentityCoupling(),
		Grain: GrainParams{
			Alpha: 0.0196, SigmaRead: 0.007, Roughness: 0.6, Monochrome: true,
			ColorCorrelation: 0.8, ShadowNoise: 0.001, HighlightCoarseness: 0.05,
			RadiusPx: 0.5,
		},
		Halation:    HalationParams{Threshold: 0.82, Sigma: 0.016, Strength: 0.20, TintR: 0.85, TintG: 0.85, TintB: 0.85},
		Reciprocity: ReciprocityParams{Beta: 0.05},
		ResolutionLinesPerMM: 115.0,
	})
}

// FujifilmVelvia50 is a high-saturation color slide film with the
// steepest gamma and strongest inter-layer coupling of the built-in
// presets.
func FujifilmVelvia50() *FilmStock {
	c := curveFor(0.10, 3.6, 1.4, 0.8, 0.40)
	return finish(FilmStock{
		Manufacturer: "Fujifilm", Name: "Velvia 50", Type: ColorPositive, ISO: 50,
		SpectralParams: spectrum.PanchromaticParams(),
		RCurve: c, GCurve: c, BCurve: c,
		Coupling: negativeMatrix(1.30, -0.15),
		Grain: GrainParams{
			Alpha: 0.0036, SigmaRead: 0.003, Roughness: 0.2,
			ColorCorrelation: 0.8, ShadowNoise: 0.001, HighlightCoarseness: 0.05,
			RadiusPx: 0.5,
		},
		Halation:    HalationParams{Threshold: 0.92, Sigma: 0.008, Strength: 0.08, TintR: 1.0, TintG: 0.4, TintB: 0.4},
		Reciprocity: ReciprocityParams{Beta: 0.05},
		ResolutionLinesPerMM: 160.0,
	})
}

// Presets returns every built-in FilmStock, keyed by a lower-case,
// hyphenated "manufacturer-name" slug such as "kodak-portra-400".
func Presets() map[string]*FilmStock {
	all := []*FilmStock{
		KodakPortra400(), KodakGold200(), KodakEktar100(), KodakTriX400(), FujifilmVelvia50(),
	}
	m := make(map[string]*FilmStock, len(all))
	for _, s := range all {
		key := strings.ToLower(strings.ReplaceAll(s.Manufacturer+" "+s.Name, " ", "-"))
		m[key] = s
	}
	return m
}
