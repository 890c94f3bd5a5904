package ops

import (
	"github.com/mlnoga/filmr/internal/colorimetry"
	"github.com/mlnoga/filmr/internal/filmstock"
	"github.com/mlnoga/filmr/internal/pixelbuf"
	"github.com/mlnoga/filmr/internal/workpool"
)

// OpLinearize converts an sRGB u8-derived [0,1] buffer to linear light,
// the pipeline's first stage.
type OpLinearize struct {
	OpBase
}

func init() { SetStageFactory(func() Stage { return NewOpLinearizeDefault() }) }

func NewOpLinearizeDefault() *OpLinearize { return NewOpLinearize() }

func NewOpLinearize() *OpLinearize {
	return &OpLinearize{OpBase: OpBase{Type: "linearize", Active: true}}
}

func (op *OpLinearize) Run(buf *pixelbuf.Buffer, film *filmstock.FilmStock, opts *Options, c *Context) (*pixelbuf.Buffer, error) {
	out := pixelbuf.New(buf.Width, buf.Height)
	workpool.Run(buf.Height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			off := buf.RowOffset(y)
			for x := 0; x < buf.Width*3; x++ {
				out.Pix[off+x] = colorimetry.SRGBToLinear(buf.Pix[off+x])
			}
		}
	})
	return out, nil
}
