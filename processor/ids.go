// Package processor - dispatch of (filter, strategy) pairs with wall-clock timing.
package processor

import (
	"strings"

	"github.com/pkg/errors"
)

// FilterID identifies one of the 12 catalog filters.
type FilterID int

const (
	Grayscale FilterID = iota
	Blur
	GaussianBlur
	Sobel
	Canny
	Sharpen
	Emboss
	Negative
	Sepia
	Threshold
	Median
	Bilateral

	filterCount = iota
)

var filterNames = [filterCount]string{
	"Grayscale", "Blur", "GaussianBlur", "Sobel", "Canny", "Sharpen",
	"Emboss", "Negative", "Sepia", "Threshold", "Median", "Bilateral",
}

// String returns the display name, or "Unknown".
func (f FilterID) String() string {
	if f < 0 || int(f) >= filterCount {
		return "Unknown"
	}
	return filterNames[f]
}

// Valid reports whether f names a catalog filter.
func (f FilterID) Valid() bool {
	return f >= 0 && int(f) < filterCount
}

// MarshalText implements encoding.TextMarshaler.
func (f FilterID) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, errors.Errorf("unknown filter %d", int(f))
	}
	return []byte(f.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *FilterID) UnmarshalText(text []byte) error {
	v, err := ParseFilter(string(text))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// ParseFilter maps a filter name (case-insensitive) back to its ID.
//
// Arguments:
// - name: The filter name, e.g. "GaussianBlur".
//
// Returns:
// - FilterID: The filter.
// - error: An error for unknown names.
func ParseFilter(name string) (FilterID, error) {
	for i, n := range filterNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return FilterID(i), nil
		}
	}
	return 0, errors.Errorf("unknown filter %q", name)
}

// AllFilters lists every filter in catalog order.
func AllFilters() []FilterID {
	out := make([]FilterID, filterCount)
	for i := range out {
		out[i] = FilterID(i)
	}
	return out
}

// StrategyID identifies an execution strategy.
type StrategyID int

const (
	Sequential StrategyID = iota
	Parallel
	Multithread
	GPU

	strategyCount = iota
)

var strategyNames = [strategyCount]string{"Sequential", "Parallel", "Multithread", "GPU"}

// String returns the display name, or "Unknown".
func (s StrategyID) String() string {
	if s < 0 || int(s) >= strategyCount {
		return "Unknown"
	}
	return strategyNames[s]
}

// Valid reports whether s names a strategy.
func (s StrategyID) Valid() bool {
	return s >= 0 && int(s) < strategyCount
}

// MarshalText implements encoding.TextMarshaler.
func (s StrategyID) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, errors.Errorf("unknown strategy %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *StrategyID) UnmarshalText(text []byte) error {
	v, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseStrategy maps a strategy name (case-insensitive) back to its ID.
// "CUDA" is accepted as an alias of GPU.
func ParseStrategy(name string) (StrategyID, error) {
	name = strings.TrimSpace(name)
	if strings.EqualFold(name, "cuda") {
		return GPU, nil
	}
	for i, n := range strategyNames {
		if strings.EqualFold(n, name) {
			return StrategyID(i), nil
		}
	}
	return 0, errors.Errorf("unknown strategy %q", name)
}

// AllStrategies lists every strategy, Sequential first.
func AllStrategies() []StrategyID {
	out := make([]StrategyID, strategyCount)
	for i := range out {
		out[i] = StrategyID(i)
	}
	return out
}
