package ops

import (
	"github.com/mlnoga/filmr/internal/colorimetry"
	"github.com/mlnoga/filmr/internal/filmstock"
	"github.com/mlnoga/filmr/internal/pixelbuf"
	"github.com/mlnoga/filmr/internal/workpool"
)

// OpEncode applies the IEC 61966-2-1 sRGB transfer function, the
// pipeline's final stage after linear-space Halation and LightLeak.
type OpEncode struct {
	OpBase
}

func init() { SetStageFactory(func() Stage { return NewOpEncodeDefault() }) }

func NewOpEncodeDefault() *OpEncode { return NewOpEncode() }

func NewOpEncode() *OpEncode { return &OpEncode{OpBase: OpBase{Type: "encode", Active: true}} }

func (op *OpEncode) Run(buf *pixelbuf.Buffer, film *filmstock.FilmStock, opts *Options, c *Context) (*pixelbuf.Buffer, error) {
	out := pixelbuf.New(buf.Width, buf.Height)
	workpool.Run(buf.Height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			off := buf.RowOffset(y)
			for x := 0; x < buf.Width*3; x++ {
				out.Pix[off+x] = colorimetry.LinearToSRGBClamped(buf.Pix[off+x])
			}
		}
	})
	return out, nil
}
