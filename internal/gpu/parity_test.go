package gpu

import (
	"errors"
	"testing"

	"github.com/mlnoga/filmr/internal/filmerrors"
)

// TestDispatchReportsBackendError locks in the documented contract: until
// gogpu/wgpu's compute dispatch lands upstream (see the TODO on
// computePipeline.dispatch), every dispatch attempt must fail with a
// *filmerrors.BackendError so a caller's CPU-fallback branch, not a
// silently wrong image, is what actually runs. This is what the CPU/GPU
// numerical-equivalence test in a shipped build would extend once
// dispatch is real: run the same frame through both backends and assert
// per-pixel differences stay within the documented tolerance.
func TestDispatchReportsBackendError(t *testing.T) {
	cache := newPipelineCache()
	p, err := cache.getOrCreate("test", "@compute @workgroup_size(1) fn main() {}")
	if err != nil {
		t.Fatalf("unexpected validation failure: %v", err)
	}
	err = p.dispatch(nil, 1, 1, []float32{0, 0, 0}, make([]float32, 3))
	var be *filmerrors.BackendError
	if !errors.As(err, &be) {
		t.Fatalf("expected a *filmerrors.BackendError, got %v (%T)", err, err)
	}
}

func TestPipelineCacheReusesEntry(t *testing.T) {
	cache := newPipelineCache()
	a, err := cache.getOrCreate("develop", developWGSL)
	if err != nil {
		t.Fatalf("first getOrCreate failed: %v", err)
	}
	b, err := cache.getOrCreate("develop", developWGSL)
	if err != nil {
		t.Fatalf("second getOrCreate failed: %v", err)
	}
	if a != b {
		t.Errorf("expected the same cached pipeline pointer for identical (label, source)")
	}
	if cache.hits == 0 {
		t.Errorf("expected at least one cache hit")
	}
}
