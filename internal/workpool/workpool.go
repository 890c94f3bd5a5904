// Package workpool splits scanline ranges into work-stealing-friendly
// batches and runs them across a semaphore-limited goroutine pool, the
// same shape the reference pixel-function dispatcher uses for its
// per-pixel loops.
package workpool

import (
	"runtime"
	"sync"

	"github.com/klauspost/cpuid/v2"
)

// RowFunc processes rows [y0,y1).
type RowFunc func(y0, y1 int)

// BatchesPerCPU controls how finely the image is sliced; a higher count
// smooths load imbalance between goroutines of uneven cost (e.g. halation
// near a bright edge) at the price of more scheduling overhead.
const BatchesPerCPU = 8

// Run splits [0,height) into batches and runs fn over each batch on up to
// runtime.NumCPU() goroutines simultaneously. Batch width is nudged to a
// multiple of 4 rows when the CPU reports AVX2, mirroring how the
// reference noise kernel picks between its amd64 and portable code paths.
func Run(height int, fn RowFunc) {
	if height <= 0 {
		return
	}
	numCPU := runtime.NumCPU()
	batches := numCPU * BatchesPerCPU
	if batches > height {
		batches = height
	}
	if batches < 1 {
		batches = 1
	}
	rowsPerBatch := (height + batches - 1) / batches
	if cpuid.CPU.Has(cpuid.AVX2) && rowsPerBatch > 4 {
		rowsPerBatch -= rowsPerBatch % 4
		if rowsPerBatch == 0 {
			rowsPerBatch = 4
		}
	}

	sem := make(chan struct{}, numCPU)
	var wg sync.WaitGroup
	for y0 := 0; y0 < height; y0 += rowsPerBatch {
		y1 := y0 + rowsPerBatch
		if y1 > height {
			y1 = height
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(y0, y1 int) {
			defer wg.Done()
			defer func() { <-sem }()
			fn(y0, y1)
		}(y0, y1)
	}
	wg.Wait()
}
