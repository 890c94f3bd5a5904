package ops

import (
	"math"

	"github.com/mlnoga/filmr/internal/filmstock"
	"github.com/mlnoga/filmr/internal/kernels"
	"github.com/mlnoga/filmr/internal/pixelbuf"
	"github.com/mlnoga/filmr/internal/workpool"
)

// OpHalation extracts luminance-thresholded bright regions, blurs them,
// and adds them back as tinted scatter. Runs after Output in linear
// space, per the pipeline's chosen placement (see the orchestrator).
type OpHalation struct {
	OpBase
}

func init() { SetStageFactory(func() Stage { return NewOpHalationDefault() }) }

func NewOpHalationDefault() *OpHalation { return NewOpHalation() }

func NewOpHalation() *OpHalation { return &OpHalation{OpBase: OpBase{Type: "halation", Active: true}} }

func (op *OpHalation) Run(buf *pixelbuf.Buffer, film *filmstock.FilmStock, opts *Options, c *Context) (*pixelbuf.Buffer, error) {
	if !opts.HalationEnabled {
		return buf, nil
	}
	w, h := buf.Width, buf.Height
	original := buf // caller must have already isolated this buffer for us

	// Pass 1: threshold, per-channel, from the pristine buffer.
	thresholded := make([]float32, w*h*3)
	threshold := film.Halation.Threshold
	workpool.Run(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				r, g, b := original.At(x, y)
				lum := 0.2126*r + 0.7152*g + 0.0722*b
				idx := (y*w + x) * 3
				if lum < threshold {
					continue
				}
				thresholded[idx] = float32(math.Max(float64(r-threshold), 0))
				thresholded[idx+1] = float32(math.Max(float64(g-threshold), 0))
				thresholded[idx+2] = float32(math.Max(float64(b-threshold), 0))
			}
		}
	})

	// Two-pass separable blur, dynamic radius capped at spec's 50px bound
	// (enforced inside GaussianKernel1D).
	sigmaPx := film.Halation.Sigma * float32(w)
	planes := [3][]float32{make([]float32, w*h), make([]float32, w*h), make([]float32, w*h)}
	for i := 0; i < w*h; i++ {
		planes[0][i] = thresholded[i*3]
		planes[1][i] = thresholded[i*3+1]
		planes[2][i] = thresholded[i*3+2]
	}
	for ch := range planes {
		planes[ch] = kernels.BlurSeparable1Chan(planes[ch], w, h, sigmaPx)
	}

	tint := [3]float32{film.Halation.TintR, film.Halation.TintG, film.Halation.TintB}
	strength := film.Halation.Strength
	out := pixelbuf.New(w, h)
	workpool.Run(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				idx := y*w + x
				r, g, b := original.At(x, y)
				out.Set(x, y,
					r+planes[0][idx]*tint[0]*strength,
					g+planes[1][idx]*tint[1]*strength,
					b+planes[2][idx]*tint[2]*strength,
				)
			}
		}
	})
	return out, nil
}
