package spectrum

// FilmSpectralParams parametrizes each layer's Gaussian sensitivity curve.
// A zero Peak marks a layer as insensitive (used by orthochromatic stocks).
type FilmSpectralParams struct {
	RPeak, RWidth float32
	GPeak, GWidth float32
	BPeak, BWidth float32
}

// PanchromaticParams is the default sensitivity profile: narrow, well
// separated Gaussians across red, green and blue.
func PanchromaticParams() FilmSpectralParams {
	return FilmSpectralParams{
		RPeak: 630.0, RWidth: 20.0,
		GPeak: 540.0, GWidth: 20.0,
		BPeak: 460.0, BWidth: 20.0,
	}
}

// OrthochromaticParams disables the red-sensitive layer entirely, matching
// early monochrome stocks that could not record red light.
func OrthochromaticParams() FilmSpectralParams {
	return FilmSpectralParams{
		RPeak: 0, RWidth: 0,
		GPeak: 540.0, GWidth: 40.0,
		BPeak: 440.0, BWidth: 40.0,
	}
}

// InfraredParams shifts the red-sensitive layer deep into the near-IR.
func InfraredParams() FilmSpectralParams {
	return FilmSpectralParams{
		RPeak: 720.0, RWidth: 60.0,
		GPeak: 540.0, GWidth: 40.0,
		BPeak: 440.0, BWidth: 40.0,
	}
}

// FilmSensitivities holds the three per-layer sensitivity curves along
// with calibration factors normalizing exposure of the D65 illuminant to
// [1,1,1].
type FilmSensitivities struct {
	R, G, B                *Spectrum
	RFactor, GFactor, BFactor float32
}

func FromParams(p FilmSpectralParams) *FilmSensitivities {
	s := &FilmSensitivities{
		RFactor: 1, GFactor: 1, BFactor: 1,
	}
	if p.RPeak > 0 {
		s.R = NewGaussian(p.RPeak, p.RWidth)
	} else {
		s.R = New()
	}
	if p.GPeak > 0 {
		s.G = NewGaussian(p.GPeak, p.GWidth)
	} else {
		s.G = New()
	}
	if p.BPeak > 0 {
		s.B = NewGaussian(p.BPeak, p.BWidth)
	} else {
		s.B = New()
	}
	if p.RPeak > 0 || p.GPeak > 0 || p.BPeak > 0 {
		s.CalibrateToWhitePoint(NewD65())
	}
	return s
}

// Clone returns a shallow copy with its own RFactor/GFactor/BFactor,
// safe for a caller to CalibrateToWhitePoint against a run-specific
// illuminant without mutating (and racing on) a FilmStock-shared
// original that other goroutines may be reading concurrently. R/G/B
// themselves are never mutated after construction, so sharing those
// pointers between the clone and the original is safe.
func (s *FilmSensitivities) Clone() *FilmSensitivities {
	c := *s
	return &c
}

// CalibrateToWhitePoint rescales the per-layer factors so exposing
// whitePoint yields [1,1,1] exactly, matching how the reference model
// re-derives its balance whenever the effective illuminant changes.
func (s *FilmSensitivities) CalibrateToWhitePoint(whitePoint *Spectrum) {
	const eps = 1e-6
	rResp := s.R.IntegrateProduct(whitePoint)
	gResp := s.G.IntegrateProduct(whitePoint)
	bResp := s.B.IntegrateProduct(whitePoint)
	s.RFactor = 1.0 / maxf(rResp, eps)
	s.GFactor = 1.0 / maxf(gResp, eps)
	s.BFactor = 1.0 / maxf(bResp, eps)
}

// Expose integrates light against each layer's sensitivity to yield the
// three raw exposure values E_r, E_g, E_b.
func (s *FilmSensitivities) Expose(light *Spectrum) [3]float32 {
	return [3]float32{
		s.R.IntegrateProduct(light) * s.RFactor,
		s.G.IntegrateProduct(light) * s.GFactor,
		s.B.IntegrateProduct(light) * s.BFactor,
	}
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
