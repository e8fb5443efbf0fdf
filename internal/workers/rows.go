// Package workers splits grid passes into row bands processed concurrently.
package workers

import (
	"runtime"
	"sync"
)

// Rows calls fn over [0, n) split into contiguous bands, one goroutine per
// CPU, and returns once every band is done. Bands never overlap, so fn may
// write row-indexed output without locking.
func Rows(n int, fn func(y0, y1 int)) {
	if n <= 0 {
		return
	}
	numCPU := runtime.NumCPU()
	if numCPU > n {
		numCPU = n
	}
	if numCPU <= 1 {
		fn(0, n)
		return
	}
	rowsPer := (n + numCPU - 1) / numCPU
	var wg sync.WaitGroup
	for i := 0; i < numCPU; i++ {
		y0 := i * rowsPer
		if y0 >= n {
			break
		}
		y1 := y0 + rowsPer
		if y1 > n {
			y1 = n
		}
		wg.Add(1)
		go func(y0, y1 int) {
			defer wg.Done()
			fn(y0, y1)
		}(y0, y1)
	}
	wg.Wait()
}
