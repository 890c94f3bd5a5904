package ops

import (
	"github.com/mlnoga/filmr/internal/colorimetry"
	"github.com/mlnoga/filmr/internal/filmstock"
	"github.com/mlnoga/filmr/internal/pixelbuf"
	"github.com/mlnoga/filmr/internal/workpool"
)

// OpOutput converts density to linear light: transmittance with dye
// self-absorption correction, negative/positive paper projection, then
// saturation. The sRGB encode itself is deferred to OpEncode, which runs
// after Halation and LightLeak so both operate in linear space.
type OpOutput struct {
	OpBase
}

func init() { SetStageFactory(func() Stage { return NewOpOutputDefault() }) }

func NewOpOutputDefault() *OpOutput { return NewOpOutput() }

func NewOpOutput() *OpOutput { return &OpOutput{OpBase: OpBase{Type: "output", Active: true}} }

func (op *OpOutput) Run(buf *pixelbuf.Buffer, film *filmstock.FilmStock, opts *Options, c *Context) (*pixelbuf.Buffer, error) {
	dMins := [3]float32{film.RCurve.DMin, film.GCurve.DMin, film.BCurve.DMin}
	out := pixelbuf.New(buf.Width, buf.Height)

	workpool.Run(buf.Height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < buf.Width; x++ {
				r, g, b := buf.At(x, y)
				d := [3]float32{r, g, b}
				var lin [3]float32
				for ch := 0; ch < 3; ch++ {
					net := d[ch] - dMins[ch]
					if net < 0 {
						net = 0
					}
					transmittance := filmstock.DensityToTransmission(net)
					transmittance = filmstock.DyeSelfAbsorption(net, transmittance)
					if opts.OutputMode == Negative {
						lin[ch] = colorimetry.Clamp01(transmittance)
					} else {
						denom := film.TMax - film.TMin
						if denom <= 0 {
							denom = 1e-6
						}
						n := (film.TMax - transmittance)
						if n < 0 {
							n = 0
						} else if n > denom {
							n = denom
						}
						n /= denom
						lin[ch] = powf(n, film.PaperGamma)
					}
				}

				lum := 0.2126*lin[0] + 0.7152*lin[1] + 0.0722*lin[2]
				sat := opts.Saturation
				if sat == 0 {
					sat = 1
				}
				for ch := 0; ch < 3; ch++ {
					lin[ch] = lum + (lin[ch]-lum)*sat
				}

				out.Set(x, y, lin[0], lin[1], lin[2])
			}
		}
	})
	return out, nil
}

func powf(base, exp float32) float32 {
	if base <= 0 {
		return 0
	}
	return floatPow(base, exp)
}
