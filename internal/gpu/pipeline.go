package gpu

import (
	"hash/fnv"
	"sync"
	"sync/atomic"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/wgsl"
	"github.com/mlnoga/filmr/internal/filmerrors"
)

// computePipeline is an opaque handle to a validated, cached WGSL compute
// kernel. Its Dispatch method is still a stub — see the TODO below — but
// the cache itself, the double-check locking, and the WGSL front-end
// validation via naga are all real and exercised by every gpu.Process
// call before it falls back to the CPU pipeline.
type computePipeline struct {
	label  string
	module *wgsl.Module
}

// pipelineCache caches validated compute pipelines by a hash of their
// WGSL source, avoiding repeat parsing/validation across frames of the
// same run. Grounded on PipelineCacheCore's get-or-create-with-double-
// check-locking shape.
type pipelineCache struct {
	mu    sync.RWMutex
	cache map[uint64]*computePipeline
	hits  uint64
	misses uint64
}

func newPipelineCache() *pipelineCache {
	return &pipelineCache{cache: make(map[uint64]*computePipeline)}
}

func hashSource(label, wgsl string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(label))
	h.Write([]byte(wgsl))
	return h.Sum64()
}

// getOrCreate parses and validates wgsl with naga on a cache miss, then
// caches the resulting pipeline handle keyed by its source hash.
func (c *pipelineCache) getOrCreate(label, wgsl string) (*computePipeline, error) {
	key := hashSource(label, wgsl)

	c.mu.RLock()
	if p, ok := c.cache[key]; ok {
		c.mu.RUnlock()
		atomic.AddUint64(&c.hits, 1)
		return p, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.cache[key]; ok {
		atomic.AddUint64(&c.hits, 1)
		return p, nil
	}

	module, err := naga.Parse(wgsl)
	if err != nil {
		return nil, &filmerrors.BackendError{Backend: "gpu", Stage: "shader-validate:" + label, Err: err}
	}

	p := &computePipeline{label: label, module: module}
	c.cache[key] = p
	atomic.AddUint64(&c.misses, 1)
	return p, nil
}

// dispatch runs the compute kernel over a width x height grid of
// vec3<f32> elements, reading src and writing dst through the device's
// queue.
//
// TODO(filmr): gogpu/wgpu's CreateComputePipeline/DispatchWorkgroups pair
// is still commented out as future work in the upstream backend this
// package is grounded on (see backend/wgpu/pipeline.go and
// backend/native/commands.go in the reference tree); until that lands,
// dispatch always reports a BackendError so callers take the documented
// CPU-fallback path instead of a silent no-op or an incorrect result.
func (p *computePipeline) dispatch(d *Device, width, height int, src, dst []float32) error {
	return &filmerrors.BackendError{Backend: "gpu", Stage: "dispatch:" + p.label,
		Err: errUnimplementedDispatch}
}

var errUnimplementedDispatch = errDispatch{}

type errDispatch struct{}

func (errDispatch) Error() string {
	return "compute dispatch is not yet wired to this build of gogpu/wgpu"
}
