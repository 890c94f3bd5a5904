package verify

import (
	"strings"
	"testing"

	"github.com/mlnoga/filmr/internal/filmstock"
)

// TestVerifyRunsAllLayersRegardlessOfFailures checks the non-short-circuit
// contract directly: even a film stock built to fail several layers at
// once must still come back with a result for every layer, not just the
// first one that failed.
func TestVerifyRunsAllLayersRegardlessOfFailures(t *testing.T) {
	film, err := filmstock.ByName("kodak-portra-400")
	if err != nil {
		t.Fatalf("loading base preset: %v", err)
	}
	broken := *film
	broken.RCurve.Gamma *= 5                        // wreck exposure response
	broken.Coupling[1] = 10 * broken.Coupling[0] // wreck chemical coupling (row 0, col 1)

	report, err := Verify(&broken, DefaultThresholds())
	if err != nil {
		t.Fatalf("Verify returned an error: %v", err)
	}
	if len(report.Layers) != 7 {
		t.Fatalf("expected all 7 layers to run, got %d", len(report.Layers))
	}

	names := map[string]bool{}
	for _, l := range report.Layers {
		names[l.Name] = true
	}
	for _, want := range []string{
		"SpectralFidelity", "ExposureResponse", "ChemicalCoupling",
		"OpticalOutput", "ColorimetricFidelity", "GrainCharacter",
		"Reciprocity",
	} {
		if !names[want] {
			t.Errorf("missing layer %q in report", want)
		}
	}
	if report.Pass() {
		t.Errorf("expected Pass() to be false with two layers deliberately broken")
	}
}

// TestVerifyBuiltInPresetsRun exercises every shipped preset through the
// full verifier once, purely as a smoke test: it must never error out,
// whatever it concludes about individual layers.
func TestVerifyBuiltInPresetsRun(t *testing.T) {
	for name, film := range filmstock.Presets() {
		report, err := Verify(film, DefaultThresholds())
		if err != nil {
			t.Errorf("Verify(%s) returned an error: %v", name, err)
			continue
		}
		if len(report.Layers) != 7 {
			t.Errorf("Verify(%s): expected 7 layers, got %d", name, len(report.Layers))
		}
	}
}

func TestReportStringListsEveryLayer(t *testing.T) {
	r := &Report{
		StockName: "test-stock",
		Layers: []LayerResult{
			{Name: "SpectralFidelity", Pass: true, Detail: "ok"},
			{Name: "ExposureResponse", Pass: false, Detail: "gamma out of range"},
		},
	}
	s := r.String()
	if !strings.Contains(s, "test-stock") {
		t.Errorf("report string missing stock name: %q", s)
	}
	if !strings.Contains(s, "PASS") || !strings.Contains(s, "FAIL") {
		t.Errorf("report string missing pass/fail markers: %q", s)
	}
	if r.Pass() {
		t.Errorf("Pass() should be false when any layer fails")
	}
}
