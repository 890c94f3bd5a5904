package spectrum

import "testing"

func TestGaussianPeak(t *testing.T) {
	s := NewGaussian(550.0, 20.0)
	got := s.PeakNM()
	if got < 545 || got > 555 {
		t.Errorf("expected peak near 550nm, got %.1f", got)
	}
}

func TestBlackbodyNormalizedToOne(t *testing.T) {
	s := NewBlackbody(6504.0)
	var maxVal float32
	for _, v := range s.Power {
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal < 0.999 || maxVal > 1.001 {
		t.Errorf("expected normalized peak of 1.0, got %.4f", maxVal)
	}
}

func TestIntegrateProductSymmetric(t *testing.T) {
	a := NewGaussian(500, 30)
	b := NewGaussian(600, 30)
	if a.IntegrateProduct(b) != b.IntegrateProduct(a) {
		t.Errorf("integrate product should be symmetric")
	}
}

func TestFlatSelfIntegral(t *testing.T) {
	flat := NewFlat(1.0)
	got := flat.integrate()
	want := float32(LambdaEndNM - LambdaStartNM)
	if diff := got - want; diff > 1e-2 || diff < -1e-2 {
		t.Errorf("integral of flat unit spectrum over band = %.2f, want %.2f", got, want)
	}
}

func TestCameraUpliftLinearInChannels(t *testing.T) {
	cam := NewCameraSensitivitiesSRGB()
	white := cam.Uplift(1, 1, 1)
	doubled := cam.Uplift(2, 2, 2)
	for i := range white.Power {
		if diff := doubled.Power[i] - 2*white.Power[i]; diff > 1e-4 || diff < -1e-4 {
			t.Fatalf("uplift is not linear at bin %d", i)
		}
	}
}

func TestOrthochromaticHasNoRedSensitivity(t *testing.T) {
	fs := FromParams(OrthochromaticParams())
	for _, v := range fs.R.Power {
		if v != 0 {
			t.Errorf("orthochromatic film should have zero red sensitivity, got %v", v)
		}
	}
}

func TestGaussianNormalizedConservesEnergy(t *testing.T) {
	for _, want := range []float32{1.0, 0.001, 500.0} {
		s := NewGaussianNormalized(550.0, 40.0, want)
		got := s.integrate()
		if diff := float64(got-want) / float64(want); diff > 1e-3 || diff < -1e-3 {
			t.Errorf("energy for target %.4f = %.4f, relative error %.5f exceeds 1e-3", want, got, diff)
		}
	}
}

func TestCalibrationYieldsUnitWhite(t *testing.T) {
	fs := FromParams(PanchromaticParams())
	d65 := NewD65()
	fs.CalibrateToWhitePoint(d65)
	e := fs.Expose(d65)
	for i, v := range e {
		if diff := v - 1.0; diff > 1e-3 || diff < -1e-3 {
			t.Errorf("channel %d exposure = %.4f, want 1.0", i, diff+1.0)
		}
	}
}
