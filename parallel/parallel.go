// Package parallel provides the row schedulers used by the filter strategies: a
// deterministic work partitioner over a worker set and a data-parallel loop.
package parallel

import (
	"fmt"
	"runtime"
	"sync"
)

// DefaultWorkers is used when the platform reports no usable CPU count.
const DefaultWorkers = 4

// Range is a half-open row interval [Start, End).
type Range struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end"   yaml:"end"`
}

// Len returns the number of rows in the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// Scheduler runs fn over the row interval [0, rows), possibly split into
// disjoint sub-ranges on several goroutines. Run returns only after every
// invocation of fn has returned.
type Scheduler interface {
	Run(rows int, fn func(start, end int))
}

// SchedulerFunc adapts a function to the Scheduler interface.
type SchedulerFunc func(rows int, fn func(start, end int))

// Run calls f(rows, fn).
func (f SchedulerFunc) Run(rows int, fn func(start, end int)) {
	f(rows, fn)
}

// Sequential runs every row on the calling goroutine.
var Sequential Scheduler = SchedulerFunc(func(rows int, fn func(start, end int)) {
	if rows > 0 {
		fn(0, rows)
	}
})

// HardwareConcurrency returns the number of logical CPUs, or DefaultWorkers
// when the runtime reports none.
func HardwareConcurrency() int {
	if n := runtime.NumCPU(); n > 0 {
		return n
	}
	return DefaultWorkers
}

// Partition splits [0, rows) into contiguous, non-overlapping ranges for the
// requested number of workers.
//
// Arguments:
// - rows: The number of rows to split.
// - workers: The requested worker count; <= 0 uses HardwareConcurrency.
//
// Returns:
// - The ranges, sorted by Start. The worker count is clamped to [1, rows], the
// first rows%workers ranges hold one extra row, and no ranges are returned when
// rows <= 0.
//
// @example
// parallel.Partition(10, 3) // [0,4) [4,7) [7,10)
func Partition(rows, workers int) []Range {
	if rows <= 0 {
		return nil
	}
	if workers <= 0 {
		workers = HardwareConcurrency()
	}
	if workers > rows {
		workers = rows
	}

	chunk := rows / workers
	remainder := rows % workers

	ranges := make([]Range, 0, workers)
	start := 0
	for w := 0; w < workers; w++ {
		end := start + chunk
		if w < remainder {
			end++
		}
		ranges = append(ranges, Range{Start: start, End: end})
		start = end
	}
	return ranges
}

// Run partitions [0, rows) across workers, launches one goroutine per range
// and joins all of them before returning. A panic inside fn is re-raised on the
// calling goroutine after every worker has finished.
//
// Arguments:
// - rows: The number of rows to process.
// - workers: The requested worker count; <= 0 uses HardwareConcurrency.
// - fn: The row worker, called once per range.
//
// @example
//
//	parallel.Run(img.Height, 0, func(start, end int) {
//	    for y := start; y < end; y++ {
//	        // Process row y
//	    }
//	})
func Run(rows, workers int, fn func(start, end int)) {
	ranges := Partition(rows, workers)
	if len(ranges) == 0 {
		return
	}
	runRanges(ranges, fn)
}

// runRanges runs fn once per range on its own goroutine and joins them. A
// single range runs inline. The first worker panic is re-raised after the join.
func runRanges(ranges []Range, fn func(start, end int)) {
	if len(ranges) == 1 {
		fn(ranges[0].Start, ranges[0].End)
		return
	}

	var (
		wg       sync.WaitGroup
		panicMu  sync.Mutex
		panicked any
	)
	wg.Add(len(ranges))
	for _, r := range ranges {
		go func(start, end int) {
			defer wg.Done()
			defer func() {
				if p := recover(); p != nil {
					panicMu.Lock()
					if panicked == nil {
						panicked = p
					}
					panicMu.Unlock()
				}
			}()
			fn(start, end)
		}(r.Start, r.End)
	}
	wg.Wait()

	if panicked != nil {
		panic(fmt.Sprintf("parallel worker panic: %v", panicked))
	}
}

// Partitioned is a Scheduler backed by Run with a fixed worker request.
type Partitioned struct {
	// Workers is the requested worker count; <= 0 uses HardwareConcurrency.
	Workers int
}

// Run implements Scheduler.
func (p Partitioned) Run(rows int, fn func(start, end int)) {
	Run(rows, p.Workers, fn)
}
