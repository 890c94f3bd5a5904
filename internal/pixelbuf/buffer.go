// Package pixelbuf implements the dense row-major image tensor every
// pipeline stage reads and writes.
package pixelbuf

import "github.com/mlnoga/filmr/internal/filmerrors"

// Buffer is a W x H x 3 dense float32 tensor, channel-interleaved
// [R,G,B, R,G,B, ...] in row-major order. There is no alpha channel.
type Buffer struct {
	Width, Height int
	Pix           []float32 // len == Width*Height*3
}

func New(width, height int) *Buffer {
	return &Buffer{Width: width, Height: height, Pix: make([]float32, width*height*3)}
}

// FromSRGBBytes builds a Buffer directly from an sRGB u8 RGB byte slice
// (no linearization); the pipeline's own Linearize stage converts it
// afterwards into a new buffer.
func FromSRGBBytes(width, height int, rgb []byte) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, &filmerrors.DimensionError{Op: "FromSRGBBytes", W: width, H: height}
	}
	if len(rgb) != width*height*3 {
		return nil, &filmerrors.DimensionError{Op: "FromSRGBBytes", W: width, H: height}
	}
	b := New(width, height)
	for i, v := range rgb {
		b.Pix[i] = float32(v) / 255.0
	}
	return b, nil
}

func (b *Buffer) Validate(op string) error {
	if b.Width <= 0 || b.Height <= 0 || len(b.Pix) != b.Width*b.Height*3 {
		return &filmerrors.DimensionError{Op: op, W: b.Width, H: b.Height}
	}
	return nil
}

// Clone returns a deep copy, used to retain the pristine buffer across
// the halation composite.
func (b *Buffer) Clone() *Buffer {
	c := &Buffer{Width: b.Width, Height: b.Height, Pix: make([]float32, len(b.Pix))}
	copy(c.Pix, b.Pix)
	return c
}

// At returns the R,G,B triple at (x,y).
func (b *Buffer) At(x, y int) (r, g, bl float32) {
	i := (y*b.Width + x) * 3
	return b.Pix[i], b.Pix[i+1], b.Pix[i+2]
}

// Set writes the R,G,B triple at (x,y).
func (b *Buffer) Set(x, y int, r, g, bl float32) {
	i := (y*b.Width + x) * 3
	b.Pix[i], b.Pix[i+1], b.Pix[i+2] = r, g, bl
}

// RowOffset returns the Pix index of the first channel of row y.
func (b *Buffer) RowOffset(y int) int { return y * b.Width * 3 }

// ToSRGBBytes quantizes an already sRGB-encoded [0,1] buffer (i.e. after
// the Encode stage has run) to u8, clamping out-of-range values.
func (b *Buffer) ToSRGBBytes() []byte {
	out := make([]byte, len(b.Pix))
	for i, v := range b.Pix {
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		out[i] = byte(v*255.0 + 0.5)
	}
	return out
}
