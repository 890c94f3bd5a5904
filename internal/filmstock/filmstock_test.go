package filmstock

import (
	"testing"

	"github.com/mlnoga/filmr/internal/spectrum"
)

func TestPresetsValidate(t *testing.T) {
	for name, s := range Presets() {
		if err := s.Validate(); err != nil {
			t.Errorf("preset %s failed validation: %v", name, err)
		}
	}
}

func TestHDCurveMonotone(t *testing.T) {
	c := KodakPortra400().RCurve
	prev := float32(-1)
	for x := float32(-3); x <= 3; x += 0.1 {
		d := c.Evaluate(x)
		if d < prev {
			t.Fatalf("H-D curve not monotone at x=%.2f: %.4f < %.4f", x, d, prev)
		}
		prev = d
	}
}

func TestHDCurveRespectsDMin(t *testing.T) {
	c := KodakTriX400().RCurve
	d := c.Evaluate(-10)
	if d < c.DMin-1e-4 {
		t.Errorf("density %.4f fell below d_min-1e-4 (%.4f)", d, c.DMin-1e-4)
	}
}

func TestSpectralMatrixRowNormalizedForNeutralWhite(t *testing.T) {
	s := KodakPortra400()
	illuminant := spectrum.NewD65()
	a, err := s.SpectralMatrix(illuminant)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// row-normalized: A applied to uniform-energy white should give equal
	// exposures on all three rows within a tight tolerance.
	var e [3]float64
	for row := 0; row < 3; row++ {
		e[row] = a.At(row, 0) + a.At(row, 1) + a.At(row, 2)
	}
	if d01, d12 := e[0]-e[1], e[1]-e[2]; d01 > 1e-3 || d01 < -1e-3 || d12 > 1e-3 || d12 < -1e-3 {
		t.Errorf("expected equal layer exposure for neutral white, got %.4f, %.4f, %.4f", e[0], e[1], e[2])
	}
}

func TestOrthochromaticStockRejectedAsColor(t *testing.T) {
	s := KodakPortra400()
	s.SpectralParams = spectrum.OrthochromaticParams()
	if err := s.Validate(); err == nil {
		t.Errorf("expected validation failure for color stock with a disabled layer")
	}
}
