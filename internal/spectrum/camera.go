package spectrum

// CameraSensitivities approximates sRGB/Rec.709 acquisition primaries,
// used to reconstruct a plausible incident spectrum from a linear RGB
// triple before it is re-exposed onto a film's own sensitivities.
type CameraSensitivities struct {
	R, G, B *Spectrum
}

// NewCameraSensitivitiesSRGB returns Gaussian-shaped sRGB primaries with
// peaks and widths tuned to keep cross-talk low while roughly balancing
// area under each curve.
func NewCameraSensitivitiesSRGB() *CameraSensitivities {
	return &CameraSensitivities{
		R: NewGaussianAmplitude(610.0, 30.0, 1.0),
		G: NewGaussianAmplitude(540.0, 30.0, 1.0),
		B: NewGaussianAmplitude(465.0, 25.0, 1.2),
	}
}

// Uplift reconstructs an estimated scene spectrum from a linear RGB pixel
// via superposition: L(lambda) = r*S_r(lambda) + g*S_g(lambda) + b*S_b(lambda).
func (c *CameraSensitivities) Uplift(r, g, b float32) *Spectrum {
	return c.R.Scale(r).Add(c.G.Scale(g)).Add(c.B.Scale(b))
}
