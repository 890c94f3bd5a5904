package ops

import (
	"math"

	"github.com/mlnoga/filmr/internal/filmstock"
	"github.com/mlnoga/filmr/internal/pixelbuf"
	"github.com/mlnoga/filmr/internal/spectrum"
	"github.com/mlnoga/filmr/internal/workpool"
	"gonum.org/v1/gonum/mat"
)

const exposureEpsilon = 1e-6

// OpDevelop is the exposure-to-density stage: linear RGB -> per-layer
// exposure -> log10 -> H-D curve -> shoulder soft-clip -> coupling
// matrix -> net density.
type OpDevelop struct {
	OpBase
}

func init() { SetStageFactory(func() Stage { return NewOpDevelopDefault() }) }

func NewOpDevelopDefault() *OpDevelop { return NewOpDevelop() }

func NewOpDevelop() *OpDevelop { return &OpDevelop{OpBase: OpBase{Type: "develop", Active: true}} }

// effectiveIlluminant builds the run illuminant, applying the warmth
// option as a color-temperature shift around the configured base.
func effectiveIlluminant(opts *Options) *spectrum.Spectrum {
	kelvin := float32(6504.0)
	if opts.Illuminant.Kind == IlluminantBlackbody && opts.Illuminant.KelvinTemp > 0 {
		kelvin = opts.Illuminant.KelvinTemp
	}
	if opts.Warmth != 0 {
		kelvin -= opts.Warmth * 2000.0
		if kelvin < 1000 {
			kelvin = 1000
		}
	}
	return spectrum.NewBlackbody(kelvin)
}

// whiteBalanceGains derives per-layer multiplicative gains. In Auto mode
// it samples the buffer's average per-layer exposure and computes gains
// that equalize channels, blended toward neutral by WhiteBalanceStrength.
func whiteBalanceGains(buf *pixelbuf.Buffer, a *mat.Dense, opts *Options) [3]float32 {
	if opts.WhiteBalance == WBOff {
		return [3]float32{1, 1, 1}
	}
	const stride = 17
	var sum [3]float64
	var n int
	for i := 0; i < len(buf.Pix); i += 3 * stride {
		r, g, b := buf.Pix[i], buf.Pix[i+1], buf.Pix[i+2]
		e := applyMatrix(a, r, g, b)
		sum[0] += float64(e[0])
		sum[1] += float64(e[1])
		sum[2] += float64(e[2])
		n++
	}
	if n == 0 {
		return [3]float32{1, 1, 1}
	}
	avg := [3]float64{sum[0] / float64(n), sum[1] / float64(n), sum[2] / float64(n)}
	mean := (avg[0] + avg[1] + avg[2]) / 3.0
	var gains [3]float32
	for i, v := range avg {
		if v <= 0 {
			gains[i] = 1
			continue
		}
		neutralGain := float32(mean / v)
		gains[i] = 1 + (neutralGain-1)*opts.WhiteBalanceStrength
	}
	return gains
}

func applyMatrix(a *mat.Dense, r, g, b float32) [3]float32 {
	rgb := mat.NewVecDense(3, []float64{float64(r), float64(g), float64(b)})
	var e mat.VecDense
	e.MulVec(a, rgb)
	return [3]float32{
		float32(math.Max(e.AtVec(0), 0)),
		float32(math.Max(e.AtVec(1), 0)),
		float32(math.Max(e.AtVec(2), 0)),
	}
}

func (op *OpDevelop) Run(buf *pixelbuf.Buffer, film *filmstock.FilmStock, opts *Options, c *Context) (*pixelbuf.Buffer, error) {
	illuminant := effectiveIlluminant(opts)
	// Clone before calibrating: film.Sensitivities() is cached on the
	// shared *FilmStock, and warmth/illuminant vary per run, so
	// calibrating it in place would race with every other concurrent
	// Run on the same stock.
	sens := film.Sensitivities().Clone()
	sens.CalibrateToWhitePoint(illuminant)
	a, err := filmstock.ComputeSpectralMatrix(sens, illuminant)
	if err != nil {
		return nil, err
	}
	wb := whiteBalanceGains(buf, a, opts)
	coupling := film.CouplingMatrix()

	t := opts.ExposureTimeSeconds
	if t <= 0 {
		t = 1.0 / 125.0
	}
	beta := film.Reciprocity.Beta
	tEff := float32(math.Pow(float64(t), float64(1+beta)))

	curves := [3]*filmstock.HDCurve{&film.RCurve, &film.GCurve, &film.BCurve}
	out := pixelbuf.New(buf.Width, buf.Height)

	workpool.Run(buf.Height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < buf.Width; x++ {
				r, g, b := buf.At(x, y)
				e := applyMatrix(a, r, g, b)
				e[0] *= wb[0] * tEff
				e[1] *= wb[1] * tEff
				e[2] *= wb[2] * tEff

				var density [3]float32
				for ch := 0; ch < 3; ch++ {
					logE := float32(math.Log10(math.Max(float64(e[ch]), exposureEpsilon)))
					density[ch] = curves[ch].Evaluate(logE)
				}

				net := mat.NewVecDense(3, []float64{
					math.Max(float64(density[0]-film.RCurve.DMin), 0),
					math.Max(float64(density[1]-film.GCurve.DMin), 0),
					math.Max(float64(density[2]-film.BCurve.DMin), 0),
				})
				var coupled mat.VecDense
				coupled.MulVec(coupling, net)

				out.Set(x, y,
					float32(coupled.AtVec(0))+film.RCurve.DMin,
					float32(coupled.AtVec(1))+film.GCurve.DMin,
					float32(coupled.AtVec(2))+film.BCurve.DMin,
				)
			}
		}
	})
	return out, nil
}
