package gpu

import (
	"github.com/mlnoga/filmr/internal/filmstock"
	"github.com/mlnoga/filmr/internal/ops"
	"github.com/mlnoga/filmr/internal/pixelbuf"
)

var sharedCache = newPipelineCache()

// Process runs Linearize and MTF on the CPU, then Develop, Grain and
// Output+Encode as GPU compute passes. Halation and LightLeak are not
// applied on this path (see the note in shaders.go). It returns a
// *filmerrors.BackendError, never a partial result, on any failure —
// callers with AllowCPUFallback set are expected to retry through
// ops.Process on that error, exactly like OpDevelop's CPU codepath.
func Process(imageU8 []byte, width, height int, film *filmstock.FilmStock, opts *ops.Options, c *ops.Context) ([]byte, error) {
	buf, err := pixelbuf.FromSRGBBytes(width, height, imageU8)
	if err != nil {
		return nil, err
	}
	if err := film.Validate(); err != nil {
		return nil, err
	}

	dev, err := Open()
	if err != nil {
		return nil, err
	}
	defer dev.Close()
	c.Log.Write([]byte("gpu device: " + dev.Info.String() + "\n"))

	develop, err := sharedCache.getOrCreate("develop", developWGSL)
	if err != nil {
		return nil, err
	}
	grain, err := sharedCache.getOrCreate("grain", grainWGSL)
	if err != nil {
		return nil, err
	}
	encode, err := sharedCache.getOrCreate("output-encode", outputEncodeWGSL)
	if err != nil {
		return nil, err
	}

	for _, pre := range []ops.Stage{ops.NewOpLinearize(), ops.NewOpMTF()} {
		if buf, err = pre.Run(buf, film, opts, c); err != nil {
			return nil, err
		}
	}

	scratch := make([]float32, len(buf.Pix))
	if err := develop.dispatch(dev, width, height, buf.Pix, scratch); err != nil {
		return nil, err
	}
	if opts.GrainEnabled {
		if err := grain.dispatch(dev, width, height, scratch, scratch); err != nil {
			return nil, err
		}
	}
	out := pixelbuf.New(width, height)
	if err := encode.dispatch(dev, width, height, scratch, out.Pix); err != nil {
		return nil, err
	}
	return out.ToSRGBBytes(), nil
}

// IsAvailable reports whether a GPU device can currently be opened,
// without doing any actual pipeline work. Used by the verifier and the
// CLI to decide whether to even attempt the GPU path.
func IsAvailable() bool {
	dev, err := Open()
	if err != nil {
		return false
	}
	dev.Close()
	return true
}
