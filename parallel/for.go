package parallel

// Config controls data-parallel loop behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum rows per goroutine to avoid overhead.
}

// DefaultConfig returns defaults based on CPU count.
func DefaultConfig() Config {
	n := HardwareConcurrency()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 2,
	}
}

// For executes fn over contiguous blocks of [0, n) using up to cfg.NumWorkers
// goroutines and waits for all of them. It falls back to a single inline call
// when parallelism is disabled or n is too small to split.
//
// Arguments:
// - n: The size of the loop.
// - fn: Function to execute for each block (receives start and end indices).
// - cfg: The loop configuration.
//
// @example
//
//	parallel.For(height, func(start, end int) {
//	    for y := start; y < end; y++ {
//	        // Process row y
//	    }
//	}, parallel.DefaultConfig())
func For(n int, fn func(start, end int), cfg Config) {
	if n <= 0 {
		return
	}
	workers := cfg.NumWorkers
	if workers <= 0 {
		workers = HardwareConcurrency()
	}
	minChunk := cfg.MinChunkSize
	if minChunk < 1 {
		minChunk = 1
	}
	if !cfg.Enabled || workers == 1 || n < minChunk*2 {
		fn(0, n)
		return
	}

	chunkSize := max((n+workers-1)/workers, minChunk)

	ranges := make([]Range, 0, workers)
	for start := 0; start < n; start += chunkSize {
		ranges = append(ranges, Range{Start: start, End: min(start+chunkSize, n)})
	}
	runRanges(ranges, fn)
}

// DataParallel is a Scheduler backed by For.
type DataParallel struct {
	Config Config
}

// NewDataParallel returns a DataParallel scheduler using DefaultConfig.
func NewDataParallel() DataParallel {
	return DataParallel{Config: DefaultConfig()}
}

// Run implements Scheduler.
func (d DataParallel) Run(rows int, fn func(start, end int)) {
	For(rows, fn, d.Config)
}
