package colorimetry

import colorful "github.com/lucasb-eyer/go-colorful"

// DeltaE2000 returns the CIEDE2000 color difference between two linear
// RGB triples in [0,1], going through go-colorful's Lab machinery the
// same way the reference operator pipeline goes through HSLuv for its
// saturation and balance stages.
func DeltaE2000(r1, g1, b1, r2, g2, b2 float32) float64 {
	c1 := colorful.LinearRgb(float64(Clamp01(r1)), float64(Clamp01(g1)), float64(Clamp01(b1)))
	c2 := colorful.LinearRgb(float64(Clamp01(r2)), float64(Clamp01(g2)), float64(Clamp01(b2)))
	return c1.DistanceCIEDE2000(c2)
}

// Lab converts a linear RGB triple to CIE L*a*b*.
func Lab(r, g, b float32) (l, a, bb float64) {
	c := colorful.LinearRgb(float64(Clamp01(r)), float64(Clamp01(g)), float64(Clamp01(b)))
	return c.Lab()
}

// Saturation returns the HSL saturation of an RGB triple, computed on the
// values as given. Neither OpOutput nor the verifier calls it.
func Saturation(r, g, b float32) float64 {
	c := colorful.Color{R: float64(Clamp01(r)), G: float64(Clamp01(g)), B: float64(Clamp01(b))}
	_, s, _ := c.Hsl()
	return s
}
