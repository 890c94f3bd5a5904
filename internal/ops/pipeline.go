package ops

import (
	"encoding/json"
	"fmt"

	"github.com/mlnoga/filmr/internal/filmerrors"
	"github.com/mlnoga/filmr/internal/filmstock"
	"github.com/mlnoga/filmr/internal/pixelbuf"
)

// Pipeline is a totally ordered, flat list of stages — a configuration
// record, not a graph, per the stage abstraction's closed variant set.
type Pipeline struct {
	Stages []Stage
}

// DefaultPipeline realizes the chosen stage order: Linearize, MTF,
// Develop, Grain, Output, Halation, LightLeak, Encode. Halation and
// LightLeak run on Output's linear result, before the final sRGB encode —
// closer to how optical scatter and lens flare actually behave than
// compositing them in density space, and this call site documents that
// choice for anyone tempted to move them back.
func DefaultPipeline() *Pipeline {
	return &Pipeline{Stages: []Stage{
		NewOpLinearize(),
		NewOpMTF(),
		NewOpDevelop(),
		NewOpGrain(),
		NewOpOutput(),
		NewOpHalation(),
		NewOpLightLeak(),
		NewOpEncode(),
	}}
}

// PipelineFromTypes builds a custom-ordered pipeline from stage type
// names ("linearize", "mtf", "develop", "grain", "output", "halation",
// "lightleak", "encode"), resolving each one through the stage factory
// table every stage file's init() populates. There's no way to disable a
// stage through this path short of leaving it out of types, since the
// registry only knows how to build a fresh, active exemplar.
func PipelineFromTypes(types []string) (*Pipeline, error) {
	stages := make([]Stage, 0, len(types))
	for _, t := range types {
		factory := GetStageFactory(t)
		if factory == nil {
			return nil, &filmerrors.ConfigurationError{Field: "pipeline", Msg: fmt.Sprintf("unknown stage type %q", t)}
		}
		stages = append(stages, factory())
	}
	return &Pipeline{Stages: stages}, nil
}

// UnmarshalJSON accepts a JSON array of stage type names, e.g.
// ["linearize","mtf","develop","output","encode"], and resolves it into
// stages through PipelineFromTypes.
func (p *Pipeline) UnmarshalJSON(data []byte) error {
	var types []string
	if err := json.Unmarshal(data, &types); err != nil {
		return err
	}
	built, err := PipelineFromTypes(types)
	if err != nil {
		return err
	}
	*p = *built
	return nil
}

// Run executes every active stage in order, short-circuiting on the first
// error with the failing stage's type name attached.
func (p *Pipeline) Run(input *pixelbuf.Buffer, film *filmstock.FilmStock, opts *Options, c *Context) (*pixelbuf.Buffer, error) {
	if err := input.Validate("Pipeline.Run"); err != nil {
		return nil, err
	}
	if err := film.Validate(); err != nil {
		return nil, err
	}
	buf := input
	for _, stage := range p.Stages {
		if !stage.IsActive() {
			continue
		}
		next, err := stage.Run(buf, film, opts, c)
		if err != nil {
			return nil, fmt.Errorf("stage %s: %w", stage.GetType(), err)
		}
		if next == nil {
			return nil, &filmerrors.NumericalError{Stage: stage.GetType(), Detail: "stage returned a nil buffer"}
		}
		if err := next.Validate(stage.GetType()); err != nil {
			return nil, err
		}
		fmt.Fprintf(c.Log, "stage %s complete (%dx%d)\n", stage.GetType(), next.Width, next.Height)
		buf = next
	}
	return buf, nil
}

// Process is the library-level API entry point: sRGB u8 in, sRGB u8 out.
func Process(imageU8 []byte, width, height int, film *filmstock.FilmStock, opts *Options, c *Context) ([]byte, error) {
	buf, err := pixelbuf.FromSRGBBytes(width, height, imageU8)
	if err != nil {
		return nil, err
	}
	if opts == nil {
		opts = DefaultOptions()
	}
	pipeline := opts.Pipeline
	if pipeline == nil {
		pipeline = DefaultPipeline()
	}
	out, err := pipeline.Run(buf, film, opts, c)
	if err != nil {
		return nil, err
	}
	return out.ToSRGBBytes(), nil
}
