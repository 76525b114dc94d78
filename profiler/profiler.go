// Package profiler - runtime memory sampling and named operation timers used by
// the benchmark runner.
package profiler

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/nvr-ai/go-filters/logger"
	"github.com/sirupsen/logrus"
)

// RuntimeProfiler samples the Go runtime in the background and aggregates
// named operation timings and throughput metrics.
//
// All methods are safe for concurrent use.
type RuntimeProfiler struct {
	reportInterval time.Duration
	sampleInterval time.Duration
	maxSamples     int

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.RWMutex
	startTime time.Time
	running   bool

	memStats    runtime.MemStats
	peakHeap    uint64
	samples     []Sample
	lastGCCount uint32

	metrics    map[string]*MetricTracker
	operations map[string]*TimeTracker
}

// Sample is one background observation of the runtime.
type Sample struct {
	Timestamp  time.Time `json:"timestamp"  yaml:"timestamp"`
	Goroutines int       `json:"goroutines" yaml:"goroutines"`
	HeapAlloc  uint64    `json:"heap_alloc" yaml:"heap_alloc"`
}

// MetricTracker tracks a rolling window of a numeric metric.
type MetricTracker struct {
	values []float64
	sum    float64
	min    float64
	max    float64
	count  int64
}

// TimeTracker tracks a rolling window of operation durations.
type TimeTracker struct {
	durations []time.Duration
	totalTime time.Duration
	minTime   time.Duration
	maxTime   time.Duration
	count     int64
}

// OperationStats summarizes one named operation.
type OperationStats struct {
	Name  string        `json:"name"  yaml:"name"`
	Count int64         `json:"count" yaml:"count"`
	Avg   time.Duration `json:"avg"   yaml:"avg"`
	Min   time.Duration `json:"min"   yaml:"min"`
	Max   time.Duration `json:"max"   yaml:"max"`
}

// MetricStats summarizes one recorded metric over the retained window.
type MetricStats struct {
	Name    string  `json:"name"    yaml:"name"`
	Avg     float64 `json:"avg"     yaml:"avg"`
	Min     float64 `json:"min"     yaml:"min"`
	Max     float64 `json:"max"     yaml:"max"`
	Samples int     `json:"samples" yaml:"samples"`
}

// MemorySnapshot is a point-in-time view of the Go heap.
type MemorySnapshot struct {
	Alloc      uint64 `json:"alloc"       yaml:"alloc"`
	TotalAlloc uint64 `json:"total_alloc" yaml:"total_alloc"`
	Sys        uint64 `json:"sys"         yaml:"sys"`
	HeapAlloc  uint64 `json:"heap_alloc"  yaml:"heap_alloc"`
	PeakHeap   uint64 `json:"peak_heap"   yaml:"peak_heap"`
	NumGC      uint32 `json:"num_gc"      yaml:"num_gc"`
	Goroutines int    `json:"goroutines"  yaml:"goroutines"`
}

// Stats is the full profiler snapshot.
type Stats struct {
	Uptime     time.Duration    `json:"uptime"     yaml:"uptime"`
	Memory     MemorySnapshot   `json:"memory"     yaml:"memory"`
	Operations []OperationStats `json:"operations" yaml:"operations"`
	Metrics    []MetricStats    `json:"metrics"    yaml:"metrics"`
}

// ProfilingOptions configures the runtime profiler.
type ProfilingOptions struct {
	// ReportInterval specifies how often to log a status report (default: 2s)
	ReportInterval time.Duration
	// SampleInterval specifies how often to sample the runtime (default: 100ms)
	SampleInterval time.Duration
	// MaxSamples specifies the rolling window kept per tracker (default: 600)
	MaxSamples int
}

// NewRuntimeProfiler creates a new runtime profiler with the specified options.
//
// Arguments:
// - opts: Configuration options for the profiler
//
// Returns:
// - A configured RuntimeProfiler instance
func NewRuntimeProfiler(opts ProfilingOptions) *RuntimeProfiler {
	if opts.ReportInterval == 0 {
		opts.ReportInterval = 2 * time.Second
	}
	if opts.SampleInterval == 0 {
		opts.SampleInterval = 100 * time.Millisecond
	}
	if opts.MaxSamples == 0 {
		opts.MaxSamples = 600 // 1 minute of samples at 100ms intervals
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &RuntimeProfiler{
		reportInterval: opts.ReportInterval,
		sampleInterval: opts.SampleInterval,
		maxSamples:     opts.MaxSamples,
		ctx:            ctx,
		cancel:         cancel,
		startTime:      time.Now(),
		samples:        make([]Sample, 0, opts.MaxSamples),
		metrics:        make(map[string]*MetricTracker),
		operations:     make(map[string]*TimeTracker),
	}
}

// Start launches the sampling and reporting goroutines. Calling Start on a
// running profiler is a no-op.
func (rp *RuntimeProfiler) Start() {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	if rp.running {
		return
	}

	rp.running = true
	rp.startTime = time.Now()

	rp.wg.Add(2)
	go rp.sampleLoop()
	go func() {
		defer rp.wg.Done()

		ticker := time.NewTicker(rp.reportInterval)
		defer ticker.Stop()

		for {
			select {
			case <-rp.ctx.Done():
				return
			case <-ticker.C:
				rp.emitStatusReport()
			}
		}
	}()
}

// Stop stops the background goroutines and waits for them to exit.
func (rp *RuntimeProfiler) Stop() {
	rp.mu.Lock()
	if !rp.running {
		rp.mu.Unlock()
		return
	}
	rp.running = false
	rp.mu.Unlock()

	rp.cancel()
	rp.wg.Wait()
}

// RecordMetric records a value for a named metric, such as throughput in megapixels per second.
//
// Arguments:
// - name: The name of the metric
// - value: The metric value to record
func (rp *RuntimeProfiler) RecordMetric(name string, value float64) {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	tracker, exists := rp.metrics[name]
	if !exists {
		tracker = &MetricTracker{
			values: make([]float64, 0, rp.maxSamples),
			min:    value,
			max:    value,
		}
		rp.metrics[name] = tracker
	}

	tracker.values = append(tracker.values, value)
	tracker.sum += value
	if len(tracker.values) > rp.maxSamples {
		tracker.sum -= tracker.values[0]
		tracker.values = tracker.values[1:]
	}
	tracker.count++

	if value < tracker.min {
		tracker.min = value
	}
	if value > tracker.max {
		tracker.max = value
	}
}

// StartOperation begins timing an operation.
//
// Arguments:
// - name: The name of the operation to track, e.g. "Canny/Multithread"
//
// Returns:
// - A function to call when the operation completes; it returns the measured duration.
//
// @example
// done := prof.StartOperation("Canny/Multithread")
// lib.Canny(img, 50, 150)
// elapsed := done()
func (rp *RuntimeProfiler) StartOperation(name string) func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		duration := time.Since(start)
		rp.recordOperationTime(name, duration)
		return duration
	}
}

func (rp *RuntimeProfiler) recordOperationTime(name string, duration time.Duration) {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	tracker, exists := rp.operations[name]
	if !exists {
		tracker = &TimeTracker{
			minTime: duration,
			maxTime: duration,
		}
		rp.operations[name] = tracker
	}

	tracker.durations = append(tracker.durations, duration)
	tracker.totalTime += duration
	if len(tracker.durations) > rp.maxSamples {
		tracker.totalTime -= tracker.durations[0]
		tracker.durations = tracker.durations[1:]
	}
	tracker.count++

	if duration < tracker.minTime {
		tracker.minTime = duration
	}
	if duration > tracker.maxTime {
		tracker.maxTime = duration
	}
}

// sampleLoop reads runtime statistics every sample interval until Stop.
func (rp *RuntimeProfiler) sampleLoop() {
	defer rp.wg.Done()

	ticker := time.NewTicker(rp.sampleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rp.ctx.Done():
			return
		case <-ticker.C:
			rp.sample()
		}
	}
}

func (rp *RuntimeProfiler) sample() {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	runtime.ReadMemStats(&rp.memStats)
	if rp.memStats.HeapAlloc > rp.peakHeap {
		rp.peakHeap = rp.memStats.HeapAlloc
	}

	rp.samples = append(rp.samples, Sample{
		Timestamp:  time.Now(),
		Goroutines: runtime.NumGoroutine(),
		HeapAlloc:  rp.memStats.HeapAlloc,
	})
	if len(rp.samples) > rp.maxSamples {
		rp.samples = rp.samples[1:]
	}
}

// emitStatusReport logs the current memory and operation statistics.
func (rp *RuntimeProfiler) emitStatusReport() {
	stats := rp.GetCurrentStats()

	rp.mu.Lock()
	newGC := stats.Memory.NumGC - rp.lastGCCount
	rp.lastGCCount = stats.Memory.NumGC
	rp.mu.Unlock()

	logger.WithFields(logrus.Fields{
		"uptime":     stats.Uptime.Truncate(time.Millisecond).String(),
		"goroutines": stats.Memory.Goroutines,
		"heap_alloc": FormatBytes(stats.Memory.HeapAlloc),
		"peak_heap":  FormatBytes(stats.Memory.PeakHeap),
		"sys":        FormatBytes(stats.Memory.Sys),
		"gc_new":     newGC,
	}).Debug("profiler status")

	for _, op := range stats.Operations {
		logger.WithFields(logrus.Fields{
			"operation": op.Name,
			"avg":       op.Avg.Truncate(time.Microsecond).String(),
			"min":       op.Min.Truncate(time.Microsecond).String(),
			"max":       op.Max.Truncate(time.Microsecond).String(),
			"count":     op.Count,
		}).Debug("profiler operation")
	}
}

// FormatBytes formats byte counts in human-readable format.
func FormatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// Memory reads the heap statistics now.
func (rp *RuntimeProfiler) Memory() MemorySnapshot {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	return rp.readMemoryLocked()
}

func (rp *RuntimeProfiler) readMemoryLocked() MemorySnapshot {
	runtime.ReadMemStats(&rp.memStats)
	if rp.memStats.HeapAlloc > rp.peakHeap {
		rp.peakHeap = rp.memStats.HeapAlloc
	}
	return MemorySnapshot{
		Alloc:      rp.memStats.Alloc,
		TotalAlloc: rp.memStats.TotalAlloc,
		Sys:        rp.memStats.Sys,
		HeapAlloc:  rp.memStats.HeapAlloc,
		PeakHeap:   rp.peakHeap,
		NumGC:      rp.memStats.NumGC,
		Goroutines: runtime.NumGoroutine(),
	}
}

// Operation returns the statistics of one named operation.
func (rp *RuntimeProfiler) Operation(name string) (OperationStats, bool) {
	rp.mu.RLock()
	defer rp.mu.RUnlock()

	tracker, ok := rp.operations[name]
	if !ok || len(tracker.durations) == 0 {
		return OperationStats{}, false
	}
	return tracker.stats(name), true
}

func (t *TimeTracker) stats(name string) OperationStats {
	return OperationStats{
		Name:  name,
		Count: t.count,
		Avg:   t.totalTime / time.Duration(len(t.durations)),
		Min:   t.minTime,
		Max:   t.maxTime,
	}
}

// Samples returns a copy of the retained background samples.
func (rp *RuntimeProfiler) Samples() []Sample {
	rp.mu.RLock()
	defer rp.mu.RUnlock()
	return append([]Sample(nil), rp.samples...)
}

// GetCurrentStats returns the current profiling statistics as a snapshot.
// Operations and metrics are sorted by name.
//
// Returns:
// - Stats: The snapshot.
func (rp *RuntimeProfiler) GetCurrentStats() Stats {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	stats := Stats{
		Uptime: time.Since(rp.startTime),
		Memory: rp.readMemoryLocked(),
	}

	for name, tracker := range rp.operations {
		if len(tracker.durations) > 0 {
			stats.Operations = append(stats.Operations, tracker.stats(name))
		}
	}
	sort.Slice(stats.Operations, func(i, j int) bool {
		return stats.Operations[i].Name < stats.Operations[j].Name
	})

	for name, tracker := range rp.metrics {
		if len(tracker.values) > 0 {
			stats.Metrics = append(stats.Metrics, MetricStats{
				Name:    name,
				Avg:     tracker.sum / float64(len(tracker.values)),
				Min:     tracker.min,
				Max:     tracker.max,
				Samples: len(tracker.values),
			})
		}
	}
	sort.Slice(stats.Metrics, func(i, j int) bool {
		return stats.Metrics[i].Name < stats.Metrics[j].Name
	})

	return stats
}
