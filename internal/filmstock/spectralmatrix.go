package filmstock

import (
	"github.com/mlnoga/filmr/internal/filmerrors"
	"github.com/mlnoga/filmr/internal/spectrum"
	"gonum.org/v1/gonum/mat"
)

// ComputeSpectralMatrix computes the 3x3 matrix A mapping linear sRGB to
// per-layer exposure, integrating the sRGB primaries' reconstructed SPDs
// against sens under illuminant, then row-normalizing so a neutral
// illuminant-lit white maps to equal exposure on every layer. Callers
// that vary illuminant per run (Develop does, for warmth/color-temperature
// options) should call this directly rather than the cached method below.
func ComputeSpectralMatrix(sens *spectrum.FilmSensitivities, illuminant *spectrum.Spectrum) (*mat.Dense, error) {
	cam := spectrum.NewCameraSensitivitiesSRGB()

	primaryR := cam.Uplift(1, 0, 0).Multiply(illuminant)
	primaryG := cam.Uplift(0, 1, 0).Multiply(illuminant)
	primaryB := cam.Uplift(0, 0, 1).Multiply(illuminant)

	a := mat.NewDense(3, 3, nil)
	layers := [3]*spectrum.Spectrum{sens.R, sens.G, sens.B}
	primaries := [3]*spectrum.Spectrum{primaryR, primaryG, primaryB}
	for layer := 0; layer < 3; layer++ {
		for prim := 0; prim < 3; prim++ {
			v := layers[layer].IntegrateProduct(primaries[prim])
			if v == 0 && layer == prim {
				return nil, &filmerrors.ConfigurationError{
					Field: "spectral_sensitivities",
					Msg:   "degenerate layer sensitivity integrates to zero",
				}
			}
			a.Set(layer, prim, float64(v))
		}
	}

	white := cam.Uplift(1, 1, 1).Multiply(illuminant)
	for layer := 0; layer < 3; layer++ {
		exposure := layers[layer].IntegrateProduct(white)
		if exposure <= 0 {
			return nil, &filmerrors.ConfigurationError{
				Field: "spectral_sensitivities",
				Msg:   "layer does not respond to the reference illuminant",
			}
		}
		row := a.RawRowView(layer)
		for j := range row {
			row[j] /= float64(exposure)
		}
	}
	return a, nil
}

// SpectralMatrix computes and caches the D65-illuminated spectral matrix
// for convenience callers (tests, the verifier's static checks) that
// never vary illuminant mid-run.
func (f *FilmStock) SpectralMatrix(illuminant *spectrum.Spectrum) (*mat.Dense, error) {
	if f.spectralMatrix != nil {
		return f.spectralMatrix, nil
	}
	a, err := ComputeSpectralMatrix(f.Sensitivities(), illuminant)
	if err != nil {
		return nil, err
	}
	f.spectralMatrix = a
	return a, nil
}
