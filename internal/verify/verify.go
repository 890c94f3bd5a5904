package verify

import (
	"fmt"

	"github.com/mlnoga/filmr/internal/filmstock"
	"github.com/mlnoga/filmr/internal/ops"
)

// LayerResult is one verifier layer's outcome. Layers never short-circuit
// each other: every layer always runs and reports, even after an earlier
// layer fails, so a single report captures the full diagnostic picture.
type LayerResult struct {
	Name    string
	Pass    bool
	Detail  string
	Metrics map[string]float64
}

// Report is the full seven-layer verification result for one FilmStock.
type Report struct {
	StockName string
	Layers    []LayerResult
}

// Pass reports whether every layer passed.
func (r *Report) Pass() bool {
	for _, l := range r.Layers {
		if !l.Pass {
			return false
		}
	}
	return true
}

func (r *Report) String() string {
	s := fmt.Sprintf("verification report for %s:\n", r.StockName)
	for _, l := range r.Layers {
		status := "PASS"
		if !l.Pass {
			status = "FAIL"
		}
		s += fmt.Sprintf("  [%s] %-22s %s\n", status, l.Name, l.Detail)
	}
	return s
}

// Verify runs all seven diagnostic layers against film in order, collecting
// every result rather than stopping at the first failure.
func Verify(film *filmstock.FilmStock, th Thresholds) (*Report, error) {
	if err := film.Validate(); err != nil {
		return nil, err
	}
	r := &Report{StockName: film.Name}
	r.Layers = append(r.Layers, spectralFidelity(film, th))
	r.Layers = append(r.Layers, exposureResponse(film, th))
	r.Layers = append(r.Layers, chemicalCoupling(film, th))
	r.Layers = append(r.Layers, opticalOutput(film, th))
	r.Layers = append(r.Layers, colorimetricFidelity(film, th))
	r.Layers = append(r.Layers, grainCharacter(film, th))
	r.Layers = append(r.Layers, reciprocityBehavior(film, th))
	return r, nil
}

// runPatch is a small shared helper: renders an nxn solid sRGB patch
// through the default CPU pipeline, for layers that need to observe the
// pipeline's actual output rather than the stock's parameters directly.
func runPatch(film *filmstock.FilmStock, opts *ops.Options, r, g, b byte, n int) ([]byte, error) {
	img := make([]byte, n*n*3)
	for i := 0; i < n*n; i++ {
		img[i*3], img[i*3+1], img[i*3+2] = r, g, b
	}
	return ops.Process(img, n, n, film, opts, ops.NewContext(discardWriter{}))
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
