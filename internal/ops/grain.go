package ops

import (
	"math"

	"github.com/mlnoga/filmr/internal/filmstock"
	"github.com/mlnoga/filmr/internal/kernels"
	"github.com/mlnoga/filmr/internal/pixelbuf"
	"github.com/mlnoga/filmr/internal/workpool"
)

const grainReferenceWidth = 2000.0

// densityReference normalizes density for the clumping term; grain
// datasheets are specified per D_max so we reuse it here rather than a
// fixed constant.
func densityReference(film *filmstock.FilmStock) float32 {
	return film.RCurve.DMax
}

// OpGrain adds density-dependent, spatially correlated Gaussian noise.
type OpGrain struct {
	OpBase
}

func init() { SetStageFactory(func() Stage { return NewOpGrainDefault() }) }

func NewOpGrainDefault() *OpGrain { return NewOpGrain() }

func NewOpGrain() *OpGrain { return &OpGrain{OpBase: OpBase{Type: "grain", Active: true}} }

func grainSigma(g filmstock.GrainParams, density, dRef float32) float32 {
	clamped := density
	if clamped < 0 {
		clamped = 0
	} else if clamped > 1 {
		clamped = 1
	}
	variance := (g.Alpha*float32(math.Pow(float64(density), 1.5)) + g.SigmaRead*g.SigmaRead) *
		(1 + g.Roughness*float32(math.Sin(float64(math.Pi)*float64(clamped))))
	variance += g.ShadowNoise / (density + 0.1)
	if variance < 0 {
		variance = 0
	}
	_ = dRef
	return float32(math.Sqrt(float64(variance)))
}

// rawNoise combines a fine per-pixel draw with a coarser, clumped draw,
// producing an approximately unit-variance field before per-pixel scaling
// and blur.
func rawNoise(x, y int, seed uint64, channel uint32, clumpIntensity float32) float32 {
	fine := kernels.BoxMuller(x, y, seed, channel)
	coarse := kernels.BoxMuller(x/3, y/3, seed, channel+10)
	return fine + clumpIntensity*coarse
}

func (op *OpGrain) Run(buf *pixelbuf.Buffer, film *filmstock.FilmStock, opts *Options, c *Context) (*pixelbuf.Buffer, error) {
	if !opts.GrainEnabled {
		return buf, nil
	}
	w, h := buf.Width, buf.Height
	scale := float32(w) / grainReferenceWidth
	dRef := densityReference(film)
	highlightCoarseness := film.Grain.HighlightCoarseness

	channels := 3
	if film.Grain.Monochrome {
		channels = 1
	}
	rawPlanes := make([][]float32, channels)
	for ch := range rawPlanes {
		rawPlanes[ch] = make([]float32, w*h)
	}
	sharedPlane := make([]float32, w*h)

	workpool.Run(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				idx := y*w + x
				r, g, b := buf.At(x, y)
				lum := 0.2126*r + 0.7152*g + 0.0722*b
				clump := float32(math.Pow(float64(lum/dRef), 2)) * highlightCoarseness
				sharedPlane[idx] = rawNoise(x, y, opts.Seed, 100, clump)
				for ch := 0; ch < channels; ch++ {
					rawPlanes[ch][idx] = rawNoise(x, y, opts.Seed, uint32(ch), clump)
				}
			}
		}
	})

	radius := film.Grain.RadiusPx * scale
	if radius > 0 {
		sharedPlane = kernels.BlurSeparable1Chan(sharedPlane, w, h, radius)
		for ch := range rawPlanes {
			rawPlanes[ch] = kernels.BlurSeparable1Chan(rawPlanes[ch], w, h, radius)
		}
	}

	corr := film.Grain.ColorCorrelation
	out := pixelbuf.New(w, h)
	workpool.Run(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < w; x++ {
				idx := y*w + x
				r, g, b := buf.At(x, y)
				dens := [3]float32{r, g, b}

				if film.Grain.Monochrome {
					sigma := grainSigma(film.Grain, dens[0], dRef) * scale
					n := rawPlanes[0][idx] * sigma
					out.Set(x, y, clampNonNeg(r+n), clampNonNeg(g+n), clampNonNeg(b+n))
					continue
				}

				var res [3]float32
				for ch := 0; ch < 3; ch++ {
					sigma := grainSigma(film.Grain, dens[ch], dRef) * scale
					shared := sharedPlane[idx]
					indep := rawPlanes[ch][idx]
					blended := corr*shared + (1-corr)*indep
					res[ch] = clampNonNeg(dens[ch] + blended*sigma)
				}
				out.Set(x, y, res[0], res[1], res[2])
			}
		}
	})
	return out, nil
}

func clampNonNeg(v float32) float32 {
	if v < 0 {
		return 0
	}
	return v
}
