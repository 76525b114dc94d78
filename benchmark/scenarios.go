package benchmark

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/nvr-ai/go-filters/images"
	"github.com/nvr-ai/go-filters/processor"
	"github.com/pkg/errors"
)

// Scenario is one benchmark unit: a set of filters and strategies timed at a resolution.
type Scenario struct {
	Name       string                 `json:"name"        yaml:"name"`
	Filters    []processor.FilterID   `json:"filters"     yaml:"filters"`
	Strategies []processor.StrategyID `json:"strategies"  yaml:"strategies"`
	// Zero keeps the source frame size.
	Resolution images.Resolution `json:"resolution" yaml:"resolution"`
	Iterations int               `json:"iterations"  yaml:"iterations"`
	WarmupRuns int               `json:"warmup_runs" yaml:"warmup_runs"`
}

// Validate reports the first invalid field of the scenario.
func (s Scenario) Validate() error {
	if len(s.Filters) == 0 {
		return errors.Errorf("scenario %q has no filters", s.Name)
	}
	if len(s.Strategies) == 0 {
		return errors.Errorf("scenario %q has no strategies", s.Name)
	}
	if s.Iterations < 1 {
		return errors.Errorf("scenario %q: iterations must be > 0 (got %d)", s.Name, s.Iterations)
	}
	if s.WarmupRuns < 0 {
		return errors.Errorf("scenario %q: warmup runs must be >= 0 (got %d)", s.Name, s.WarmupRuns)
	}
	if s.Resolution.Pixels.Width < 0 || s.Resolution.Pixels.Height < 0 {
		return errors.Errorf("scenario %q: negative resolution", s.Name)
	}
	return nil
}

// ScenarioBuilder helps build scenarios with a fluent API.
type ScenarioBuilder struct {
	scenario Scenario
}

// NewScenarioBuilder creates a builder for every filter and strategy at the
// source size with DefaultIterations and one warmup run.
func NewScenarioBuilder(name string) *ScenarioBuilder {
	return &ScenarioBuilder{
		scenario: Scenario{
			Name:       name,
			Filters:    processor.AllFilters(),
			Strategies: processor.AllStrategies(),
			Iterations: DefaultIterations,
			WarmupRuns: 1,
		},
	}
}

// WithFilters sets the filters.
func (sb *ScenarioBuilder) WithFilters(filters ...processor.FilterID) *ScenarioBuilder {
	sb.scenario.Filters = filters
	return sb
}

// WithStrategies sets the strategies.
func (sb *ScenarioBuilder) WithStrategies(strategies ...processor.StrategyID) *ScenarioBuilder {
	sb.scenario.Strategies = strategies
	return sb
}

// WithResolution sets the frame size.
func (sb *ScenarioBuilder) WithResolution(res images.Resolution) *ScenarioBuilder {
	sb.scenario.Resolution = res
	return sb
}

// WithIterations sets the number of timed runs.
func (sb *ScenarioBuilder) WithIterations(iterations int) *ScenarioBuilder {
	sb.scenario.Iterations = iterations
	return sb
}

// WithWarmupRuns sets the number of warmup runs.
func (sb *ScenarioBuilder) WithWarmupRuns(warmups int) *ScenarioBuilder {
	sb.scenario.WarmupRuns = warmups
	return sb
}

// Build returns the configured scenario.
func (sb *ScenarioBuilder) Build() Scenario {
	return sb.scenario
}

// ScenariosFromConfig builds one scenario per configured resolution, or a
// single source-size scenario when none is configured.
func ScenariosFromConfig(cfg *Config) ([]Scenario, error) {
	resolutions, err := cfg.ParsedResolutions()
	if err != nil {
		return nil, err
	}
	if len(resolutions) == 0 {
		resolutions = []images.Resolution{{Name: "source"}}
	}

	out := make([]Scenario, 0, len(resolutions))
	for _, res := range resolutions {
		out = append(out, NewScenarioBuilder(res.Name).
			WithFilters(cfg.Filters...).
			WithStrategies(cfg.Strategies...).
			WithResolution(res).
			WithIterations(cfg.Iterations).
			WithWarmupRuns(cfg.Warmup).
			Build())
	}
	return out, nil
}

// ScenarioSet is a named collection of related scenarios.
type ScenarioSet struct {
	Name        string     `json:"name"        yaml:"name"`
	Description string     `json:"description" yaml:"description"`
	Scenarios   []Scenario `json:"scenarios"   yaml:"scenarios"`
}

// PredefinedScenarios contains common benchmark scenario sets.
type PredefinedScenarios struct{}

// GetQuickScenarios times every filter at VGA and 720p with few iterations.
func (ps *PredefinedScenarios) GetQuickScenarios() *ScenarioSet {
	scenarios := make([]Scenario, 0, 2)
	for _, alias := range []images.ResolutionAlias{images.ResolutionAliasVGA, images.ResolutionAlias720p} {
		res := images.Resolutions[alias]
		scenarios = append(scenarios, NewScenarioBuilder(fmt.Sprintf("quick_%s", alias)).
			WithResolution(res).
			WithIterations(3).
			WithWarmupRuns(1).
			Build())
	}

	return &ScenarioSet{
		Name:        "Quick Performance Test",
		Description: "Every filter and strategy at VGA and 720p",
		Scenarios:   scenarios,
	}
}

// GetComprehensiveScenarios times every filter at every catalogued resolution.
func (ps *PredefinedScenarios) GetComprehensiveScenarios() *ScenarioSet {
	all := images.SortedResolutions()
	scenarios := make([]Scenario, 0, len(all))
	for _, res := range all {
		scenarios = append(scenarios, NewScenarioBuilder(fmt.Sprintf("comprehensive_%dx%d", res.Pixels.Width, res.Pixels.Height)).
			WithResolution(res).
			WithIterations(10).
			WithWarmupRuns(2).
			Build())
	}

	return &ScenarioSet{
		Name:        "Comprehensive Performance Test",
		Description: "Every filter and strategy at every catalogued resolution",
		Scenarios:   scenarios,
	}
}

// GetResolutionComparisonScenarios times one filter across every catalogued resolution.
func (ps *PredefinedScenarios) GetResolutionComparisonScenarios(f processor.FilterID) *ScenarioSet {
	all := images.SortedResolutions()
	scenarios := make([]Scenario, 0, len(all))
	for _, res := range all {
		scenarios = append(scenarios, NewScenarioBuilder(fmt.Sprintf("resolution_%s_%dx%d", f, res.Pixels.Width, res.Pixels.Height)).
			WithFilters(f).
			WithResolution(res).
			Build())
	}

	return &ScenarioSet{
		Name:        fmt.Sprintf("Resolution Comparison - %s", f),
		Description: fmt.Sprintf("Compares frame sizes for the %s filter", f),
		Scenarios:   scenarios,
	}
}

// GetStrategyComparisonScenarios times every filter with one strategy per scenario.
func (ps *PredefinedScenarios) GetStrategyComparisonScenarios(res images.Resolution) *ScenarioSet {
	strategies := processor.AllStrategies()
	scenarios := make([]Scenario, 0, len(strategies))
	for _, s := range strategies {
		scenarios = append(scenarios, NewScenarioBuilder(fmt.Sprintf("strategy_%s_%dx%d", s, res.Pixels.Width, res.Pixels.Height)).
			WithStrategies(s).
			WithResolution(res).
			Build())
	}

	return &ScenarioSet{
		Name:        fmt.Sprintf("Strategy Comparison @ %s", res.Name),
		Description: fmt.Sprintf("Compares execution strategies at %dx%d", res.Pixels.Width, res.Pixels.Height),
		Scenarios:   scenarios,
	}
}

// SaveScenarioSet saves a scenario set to a JSON file.
func SaveScenarioSet(scenarioSet *ScenarioSet, filename string) error {
	data, err := json.MarshalIndent(scenarioSet, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal scenario set")
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write scenario file")
	}

	return nil
}

// LoadScenarioSet loads a scenario set from a JSON file.
func LoadScenarioSet(filename string) (*ScenarioSet, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read scenario file")
	}

	var scenarioSet ScenarioSet
	if err := json.Unmarshal(data, &scenarioSet); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal scenario set")
	}

	return &scenarioSet, nil
}
