package ops

import (
	"github.com/mlnoga/filmr/internal/filmstock"
	"github.com/mlnoga/filmr/internal/kernels"
	"github.com/mlnoga/filmr/internal/pixelbuf"
)

// filmWidthMM is the assumed physical frame width (35mm full-frame) used
// to convert a stock's resolution in line-pairs/mm into a per-image blur
// radius in pixels.
const filmWidthMM = 36.0

// OpMTF softens the image by an emulsion-resolution-derived Gaussian
// blur, applied before density formation. A stock with
// ResolutionLinesPerMM == 0 disables the stage.
type OpMTF struct {
	OpBase
}

func init() { SetStageFactory(func() Stage { return NewOpMTFDefault() }) }

func NewOpMTFDefault() *OpMTF { return NewOpMTF() }

func NewOpMTF() *OpMTF { return &OpMTF{OpBase: OpBase{Type: "mtf", Active: true}} }

func (op *OpMTF) Run(buf *pixelbuf.Buffer, film *filmstock.FilmStock, opts *Options, c *Context) (*pixelbuf.Buffer, error) {
	if film.ResolutionLinesPerMM <= 0 {
		return buf, nil
	}
	pixelsPerMM := float32(buf.Width) / filmWidthMM
	sigma := (0.5 / film.ResolutionLinesPerMM) * pixelsPerMM
	if sigma <= 0.5 {
		return buf, nil
	}
	return blurBuffer(buf, sigma), nil
}

// blurBuffer runs the separable Gaussian blur independently on each of
// the three interleaved channels.
func blurBuffer(buf *pixelbuf.Buffer, sigma float32) *pixelbuf.Buffer {
	w, h := buf.Width, buf.Height
	planes := deinterleave(buf)
	for i := range planes {
		planes[i] = kernels.BlurSeparable1Chan(planes[i], w, h, sigma)
	}
	return reinterleave(w, h, planes)
}

func deinterleave(buf *pixelbuf.Buffer) [3][]float32 {
	n := buf.Width * buf.Height
	var planes [3][]float32
	for c := 0; c < 3; c++ {
		planes[c] = make([]float32, n)
	}
	for i := 0; i < n; i++ {
		planes[0][i] = buf.Pix[i*3]
		planes[1][i] = buf.Pix[i*3+1]
		planes[2][i] = buf.Pix[i*3+2]
	}
	return planes
}

func reinterleave(w, h int, planes [3][]float32) *pixelbuf.Buffer {
	out := pixelbuf.New(w, h)
	n := w * h
	for i := 0; i < n; i++ {
		out.Pix[i*3] = planes[0][i]
		out.Pix[i*3+1] = planes[1][i]
		out.Pix[i*3+2] = planes[2][i]
	}
	return out
}
