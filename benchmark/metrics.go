// Package benchmark - metric log, strategy comparisons, exports and the scenario runner.
package benchmark

import (
	"sync"
	"time"

	"github.com/nvr-ai/go-filters/processor"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Metric is one timed filter application.
type Metric struct {
	Filter    processor.FilterID   `json:"filter"    yaml:"filter"`
	Strategy  processor.StrategyID `json:"strategy"  yaml:"strategy"`
	TimeMs    float64              `json:"time_ms"   yaml:"time_ms"`
	Width     int                  `json:"width"     yaml:"width"`
	Height    int                  `json:"height"    yaml:"height"`
	Timestamp time.Time            `json:"timestamp" yaml:"timestamp"`
}

// Metrics is an append-only, mutex-guarded metric log.
type Metrics struct {
	mu      sync.RWMutex
	metrics []Metric
	now     func() time.Time
}

// NewMetrics creates an empty metric log.
func NewMetrics() *Metrics {
	return &Metrics{
		metrics: make([]Metric, 0),
		now:     time.Now,
	}
}

// RecordMetric appends a metric stamped with the current wall-clock time.
//
// Arguments:
// - f: The filter.
// - s: The strategy.
// - timeMs: The elapsed time in milliseconds.
// - width: The image width.
// - height: The image height.
func (m *Metrics) RecordMetric(f processor.FilterID, s processor.StrategyID, timeMs float64, width, height int) {
	m.Record(Metric{
		Filter:    f,
		Strategy:  s,
		TimeMs:    timeMs,
		Width:     width,
		Height:    height,
		Timestamp: m.now(),
	})
}

// Record appends a fully populated metric.
func (m *Metrics) Record(metric Metric) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics = append(m.metrics, metric)
}

// Clear removes every metric.
func (m *Metrics) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics = m.metrics[:0]
}

// Len returns the number of recorded metrics.
func (m *Metrics) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.metrics)
}

// All returns a copy of the log in recording order.
func (m *Metrics) All() []Metric {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Metric, len(m.metrics))
	copy(out, m.metrics)
	return out
}

// Times returns the recorded times of one (filter, strategy) pair, in recording order.
func (m *Metrics) Times(f processor.FilterID, s processor.StrategyID) []float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []float64
	for _, metric := range m.metrics {
		if metric.Filter == f && metric.Strategy == s {
			out = append(out, metric.TimeMs)
		}
	}
	return out
}

// Average returns the mean time of a pair, or 0 without samples.
func (m *Metrics) Average(f processor.FilterID, s processor.StrategyID) float64 {
	times := m.Times(f, s)
	if len(times) == 0 {
		return 0
	}
	return stat.Mean(times, nil)
}

// Min returns the fastest time of a pair, or 0 without samples.
func (m *Metrics) Min(f processor.FilterID, s processor.StrategyID) float64 {
	times := m.Times(f, s)
	if len(times) == 0 {
		return 0
	}
	return floats.Min(times)
}

// Max returns the slowest time of a pair, or 0 without samples.
func (m *Metrics) Max(f processor.FilterID, s processor.StrategyID) float64 {
	times := m.Times(f, s)
	if len(times) == 0 {
		return 0
	}
	return floats.Max(times)
}

// StdDev returns the sample standard deviation of a pair, or 0 with fewer than two samples.
func (m *Metrics) StdDev(f processor.FilterID, s processor.StrategyID) float64 {
	times := m.Times(f, s)
	if len(times) < 2 {
		return 0
	}
	return stat.StdDev(times, nil)
}
