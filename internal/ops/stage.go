package ops

import (
	"fmt"

	"github.com/mlnoga/filmr/internal/filmstock"
	"github.com/mlnoga/filmr/internal/pixelbuf"
)

// Stage is the closed set of pipeline variants: Linearize, MTF, Develop,
// Grain, Output, Halation, LightLeak, Encode. A tagged-variant dispatch table is
// preferred here over an open interface hierarchy since new stage kinds
// are never added by a plugin, only by this package.
type Stage interface {
	GetType() string
	IsActive() bool
	Run(buf *pixelbuf.Buffer, film *filmstock.FilmStock, opts *Options, c *Context) (*pixelbuf.Buffer, error)
}

// OpBase carries the type tag and enable flag every stage embeds, so JSON
// pipeline configs round-trip through a single discriminated field.
type OpBase struct {
	Type   string `json:"type"`
	Active bool   `json:"active"`
}

func (op *OpBase) GetType() string { return op.Type }
func (op *OpBase) IsActive() bool  { return op.Active }

// StageFactory builds a zero-value exemplar of a stage type, used both to
// register the type string and to unmarshal pipeline configs from JSON.
type StageFactory func() Stage

var stageFactories = map[string]StageFactory{}

func GetStageFactory(t string) StageFactory { return stageFactories[t] }

func SetStageFactory(f StageFactory) {
	s := f()
	t := s.GetType()
	if GetStageFactory(t) != nil {
		panic(fmt.Sprintf("re-registering stage type %s", t))
	}
	stageFactories[t] = f
}
