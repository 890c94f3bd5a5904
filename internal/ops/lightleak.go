package ops

import (
	"math"

	"github.com/mlnoga/filmr/internal/filmstock"
	"github.com/mlnoga/filmr/internal/kernels"
	"github.com/mlnoga/filmr/internal/pixelbuf"
	"github.com/mlnoga/filmr/internal/workpool"
)

// OpLightLeak adds one or more parametric radial/linear/organic/plasma
// glow lobes in linear space. Leaks are purely additive and independent
// of each other and of pixel evaluation order.
type OpLightLeak struct {
	OpBase
}

func init() { SetStageFactory(func() Stage { return NewOpLightLeakDefault() }) }

func NewOpLightLeakDefault() *OpLightLeak { return NewOpLightLeak() }

func NewOpLightLeak() *OpLightLeak {
	return &OpLightLeak{OpBase: OpBase{Type: "lightleak", Active: true}}
}

func (op *OpLightLeak) Run(buf *pixelbuf.Buffer, film *filmstock.FilmStock, opts *Options, c *Context) (*pixelbuf.Buffer, error) {
	if len(opts.LightLeaks) == 0 {
		return buf, nil
	}
	w, h := buf.Width, buf.Height
	out := buf.Clone()
	diag := float32(math.Hypot(float64(w), float64(h)))

	for leakIdx, leak := range opts.LightLeaks {
		leakSeed := opts.Seed + uint64(leakIdx)*0x9e3779b97f4a7c15
		cx, cy := leak.X*float32(w), leak.Y*float32(h)
		radiusPx := leak.Radius * diag
		workpool.Run(h, func(y0, y1 int) {
			for y := y0; y < y1; y++ {
				for x := 0; x < w; x++ {
					falloff := leakFalloff(leak, float32(x), float32(y), cx, cy, radiusPx, leakSeed)
					if falloff <= 0 {
						continue
					}
					r, g, b := out.At(x, y)
					out.Set(x, y,
						r+leak.ColorR*leak.Intensity*falloff,
						g+leak.ColorG*leak.Intensity*falloff,
						b+leak.ColorB*leak.Intensity*falloff,
					)
				}
			}
		})
	}
	return out, nil
}

func leakFalloff(leak LeakSpec, x, y, cx, cy, radiusPx float32, seed uint64) float32 {
	dx, dy := x-cx, y-cy
	dist := float32(math.Hypot(float64(dx), float64(dy)))

	switch leak.Shape {
	case LeakLinear:
		nx := float32(math.Cos(float64(leak.Rotation)))
		ny := float32(math.Sin(float64(leak.Rotation)))
		proj := float32(math.Abs(float64(dx*nx + dy*ny)))
		t := proj / maxf32(radiusPx, 1e-6)
		return squareClamp(1 - t)

	case LeakOrganic:
		n := kernels.Hash01(int(x), int(y), seed)
		lo := 1 - leak.Roughness*0.5
		jitteredRadius := radiusPx * (lo + n*leak.Roughness)
		t := dist / maxf32(jitteredRadius, 1e-6)
		v := 1 - t
		if v < 0 {
			return 0
		}
		return v * v * v

	case LeakPlasma:
		t := dist / maxf32(radiusPx, 1e-6)
		base := squareClamp(1 - t)
		f := 0.1 / (leak.Radius + 0.01)
		v := 0.5 + 0.5*(float32(math.Sin(float64(x*f+leak.Rotation)))+float32(math.Cos(float64(y*f+leak.Rotation))))
		return base * ((1-leak.Roughness)*1 + v*leak.Roughness)

	default: // LeakCircle
		t := dist / maxf32(radiusPx, 1e-6)
		return squareClamp(1 - t)
	}
}

func squareClamp(v float32) float32 {
	if v < 0 {
		return 0
	}
	return v * v
}

func maxf32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
