package workers

import (
	"sync/atomic"
	"testing"
)

func TestRowsCoversEveryRowOnce(t *testing.T) {
	for _, n := range []int{0, 1, 7, 64, 1000} {
		hits := make([]int32, n)
		Rows(n, func(y0, y1 int) {
			for y := y0; y < y1; y++ {
				atomic.AddInt32(&hits[y], 1)
			}
		})
		for y, h := range hits {
			if h != 1 {
				t.Fatalf("n=%d: row %d visited %d times", n, y, h)
			}
		}
	}
}
