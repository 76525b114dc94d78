package benchmark

import (
	"math"

	"github.com/nvr-ai/go-filters/processor"
)

// Comparison ranks the strategies of one filter by average time.
type Comparison struct {
	// The compared filter.
	Filter processor.FilterID `json:"filter" yaml:"filter"`
	// Average milliseconds of every strategy that has samples.
	Times map[processor.StrategyID]float64 `json:"times" yaml:"times"`
	// The strategy with the lowest average; Sequential when nothing was measured.
	Fastest processor.StrategyID `json:"fastest" yaml:"fastest"`
	// Sequential average divided by the fastest average; 0 when either is missing.
	SpeedupVsSequential float64 `json:"speedup_vs_sequential" yaml:"speedup_vs_sequential"`
}

// CompareProcessingTypes compares the strategies measured for filter f.
// Only strategies with a positive average take part. Ties keep the strategy
// listed first by processor.AllStrategies.
//
// Arguments:
// - f: The filter.
//
// Returns:
// - Comparison: The ranking.
//
// @example
// cmp := metrics.CompareProcessingTypes(processor.Canny)
// fmt.Printf("%s is %.2fx faster\n", cmp.Fastest, cmp.SpeedupVsSequential)
func (m *Metrics) CompareProcessingTypes(f processor.FilterID) Comparison {
	cmp := Comparison{
		Filter:  f,
		Times:   make(map[processor.StrategyID]float64),
		Fastest: processor.Sequential,
	}

	best := math.Inf(1)
	for _, s := range processor.AllStrategies() {
		avg := m.Average(f, s)
		if avg <= 0 {
			continue
		}
		cmp.Times[s] = avg
		if avg < best {
			best = avg
			cmp.Fastest = s
		}
	}

	if seq := m.Average(f, processor.Sequential); seq > 0 && !math.IsInf(best, 1) {
		cmp.SpeedupVsSequential = seq / best
	}
	return cmp
}

// AllComparisons compares every filter in catalog order.
func (m *Metrics) AllComparisons() []Comparison {
	filters := processor.AllFilters()
	out := make([]Comparison, 0, len(filters))
	for _, f := range filters {
		out = append(out, m.CompareProcessingTypes(f))
	}
	return out
}
