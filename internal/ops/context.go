// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package ops implements the film pipeline's stages as a small closed set
// of tagged variants dispatched through a factory table, the same shape
// the reference stacking pipeline uses for its unary operators.
package ops

import (
	"io"
	"runtime"

	"github.com/pbnjay/memory"
)

// Context carries resources shared read-only across every stage of a run.
type Context struct {
	Log        io.Writer
	MemoryMB   int
	MaxThreads int
}

func NewContext(log io.Writer) *Context {
	return &Context{
		Log:        log,
		MemoryMB:   int(memory.TotalMemory() / 1024 / 1024),
		MaxThreads: runtime.GOMAXPROCS(0),
	}
}

type OutputMode int

const (
	Positive OutputMode = iota
	Negative
)

type WhiteBalanceMode int

const (
	WBAuto WhiteBalanceMode = iota
	WBOff
)

type IlluminantKind int

const (
	IlluminantD65 IlluminantKind = iota
	IlluminantBlackbody
)

type Illuminant struct {
	Kind       IlluminantKind `json:"kind"`
	KelvinTemp float32        `json:"kelvin,omitempty"`
}

type LeakShape int

const (
	LeakCircle LeakShape = iota
	LeakLinear
	LeakOrganic
	LeakPlasma
)

// LeakSpec describes one light leak lobe added by the LightLeak stage.
type LeakSpec struct {
	X         float32   `json:"x"`
	Y         float32   `json:"y"`
	Radius    float32   `json:"radius"`
	Intensity float32   `json:"intensity"`
	ColorR    float32   `json:"color_r"`
	ColorG    float32   `json:"color_g"`
	ColorB    float32   `json:"color_b"`
	Rotation  float32   `json:"rotation"`
	Roughness float32   `json:"roughness"`
	Shape     LeakShape `json:"shape"`
}

// Options is the per-run configuration the library-level API accepts,
// distinct from the FilmStock the run is processing with.
type Options struct {
	OutputMode          OutputMode
	ExposureTimeSeconds float32
	Illuminant          Illuminant
	Saturation          float32
	Warmth              float32
	GrainEnabled        bool
	HalationEnabled     bool
	LightLeaks          []LeakSpec
	Seed                uint64
	WhiteBalance        WhiteBalanceMode
	WhiteBalanceStrength float32
	AutoExposure        bool
	AllowCPUFallback    bool
	UseGPU              bool

	// Pipeline overrides the stage order Process runs, built from a stage
	// type list via PipelineFromTypes. Nil means DefaultPipeline.
	Pipeline *Pipeline
}

// DefaultOptions matches the library API's stated defaults: positive
// output, a 1/125s exposure, neutral D65, grain and halation enabled,
// automatic white balance, and CPU-fallback-on-GPU-failure allowed.
func DefaultOptions() *Options {
	return &Options{
		OutputMode:          Positive,
		ExposureTimeSeconds: 1.0 / 125.0,
		Illuminant:          Illuminant{Kind: IlluminantD65},
		Saturation:          1.0,
		GrainEnabled:        true,
		HalationEnabled:     true,
		WhiteBalance:        WBAuto,
		WhiteBalanceStrength: 1.0,
		AllowCPUFallback:    true,
	}
}
