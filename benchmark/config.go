package benchmark

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nvr-ai/go-filters/filters"
	"github.com/nvr-ai/go-filters/images"
	"github.com/nvr-ai/go-filters/processor"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Defaults used when neither the config file nor the environment set a value.
const (
	DefaultIterations = 5
	DefaultOutput     = "results/benchmark_results.csv"
	DefaultSeed       = 42
)

// Config describes one benchmark run.
type Config struct {
	// Filters to measure, in catalog order when empty.
	Filters []processor.FilterID `json:"filters" yaml:"filters"`
	// Strategies to measure; all four when empty.
	Strategies []processor.StrategyID `json:"strategies" yaml:"strategies"`
	// Timed runs per (filter, strategy, resolution).
	Iterations int `json:"iterations" yaml:"iterations"`
	// Untimed runs before the timed ones.
	Warmup int `json:"warmup" yaml:"warmup"`
	// Worker count for Multithread; 0 means hardware concurrency.
	Workers int `json:"workers" yaml:"workers"`
	// Resolution aliases or WxH strings; the source size when empty.
	Resolutions []string `json:"resolutions" yaml:"resolutions"`
	// Input image file or directory; a random image when empty.
	Input string `json:"input" yaml:"input"`
	// CSV destination.
	Output string `json:"output" yaml:"output"`
	// Write a JSON results file next to the CSV.
	JSON bool `json:"json" yaml:"json"`
	// Write a PNG bar chart next to the CSV.
	Chart bool `json:"chart" yaml:"chart"`
	// Seed of the random benchmark image.
	Seed int64 `json:"seed" yaml:"seed"`
	// Filter parameters.
	Params filters.Params `json:"params" yaml:"params"`
}

// DefaultConfig returns a config measuring every filter with every strategy.
func DefaultConfig() *Config {
	return &Config{
		Filters:    processor.AllFilters(),
		Strategies: processor.AllStrategies(),
		Iterations: DefaultIterations,
		Warmup:     1,
		Output:     DefaultOutput,
		Seed:       DefaultSeed,
		Params:     filters.DefaultParams(),
	}
}

// LoadConfig reads a YAML config over the defaults, then applies the
// BENCH_ITERATIONS, BENCH_OUTPUT and BENCH_WORKERS environment overrides.
//
// Arguments:
// - path: The YAML file; empty loads only defaults and environment.
//
// Returns:
// - *Config: The validated config.
// - error: An error if the file cannot be read or parsed or the result is invalid.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read config file")
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(err, "failed to parse config file")
		}
	}

	cfg.Iterations = parseIntOrDefault("BENCH_ITERATIONS", cfg.Iterations)
	cfg.Workers = parseIntOrDefault("BENCH_WORKERS", cfg.Workers)
	cfg.Output = getEnvOrDefault("BENCH_OUTPUT", cfg.Output)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config as YAML.
func (c *Config) Save(path string) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write config file")
	}
	return nil
}

// Validate fills empty filter and strategy lists and reports the first invalid field.
func (c *Config) Validate() error {
	if len(c.Filters) == 0 {
		c.Filters = processor.AllFilters()
	}
	if len(c.Strategies) == 0 {
		c.Strategies = processor.AllStrategies()
	}
	for _, f := range c.Filters {
		if !f.Valid() {
			return errors.Errorf("invalid filter %d", int(f))
		}
	}
	for _, s := range c.Strategies {
		if !s.Valid() {
			return errors.Errorf("invalid strategy %d", int(s))
		}
	}
	if c.Iterations < 1 {
		return errors.Errorf("iterations must be > 0 (got %d)", c.Iterations)
	}
	if c.Warmup < 0 {
		return errors.Errorf("warmup must be >= 0 (got %d)", c.Warmup)
	}
	if c.Workers < 0 {
		return errors.Errorf("workers must be >= 0 (got %d)", c.Workers)
	}
	if strings.TrimSpace(c.Output) == "" {
		return errors.New("output path must not be empty")
	}
	if _, err := c.ParsedResolutions(); err != nil {
		return err
	}
	return errors.Wrap(c.Params.Validate(), "params")
}

// ParsedResolutions resolves the configured resolution names.
func (c *Config) ParsedResolutions() ([]images.Resolution, error) {
	out := make([]images.Resolution, 0, len(c.Resolutions))
	for _, name := range c.Resolutions {
		res, err := images.ParseResolution(name)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

// JSONPath is the output path with a .json extension.
func (c *Config) JSONPath() string {
	return withExt(c.Output, ".json")
}

// ChartPath is the output path with a .png extension.
func (c *Config) ChartPath() string {
	return withExt(c.Output, ".png")
}

func withExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return intValue
		}
	}
	return defaultValue
}
