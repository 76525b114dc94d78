package benchmark

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/nvr-ai/go-filters/profiler"
	"github.com/pkg/errors"
)

// CSVHeader is the first line of every exported CSV file.
const CSVHeader = "timestamp,filter,processing,time_ms,width,height\n"

// WriteCSV writes the header and one row per metric, with the timestamp in
// epoch seconds and the time in milliseconds with six decimals.
func (m *Metrics) WriteCSV(w io.Writer) error {
	if _, err := io.WriteString(w, CSVHeader); err != nil {
		return err
	}
	for _, metric := range m.All() {
		line := fmt.Sprintf("%d,%s,%s,%.6f,%d,%d\n",
			metric.Timestamp.Unix(),
			metric.Filter,
			metric.Strategy,
			metric.TimeMs,
			metric.Width,
			metric.Height,
		)
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	return nil
}

// ExportCSV writes the metric log to filename, creating parent directories.
//
// Arguments:
// - filename: The destination path.
//
// Returns:
// - error: An error if the directory or file cannot be written.
func (m *Metrics) ExportCSV(filename string) error {
	if err := ensureDir(filename); err != nil {
		return err
	}

	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrap(err, "failed to create CSV file")
	}
	defer file.Close()

	if err := m.WriteCSV(file); err != nil {
		return errors.Wrap(err, "failed to write CSV file")
	}
	return file.Close()
}

// Results is the JSON document written by SaveJSON.
type Results struct {
	GeneratedAt time.Time              `json:"generated_at"`
	Host        HostInfo               `json:"host"`
	Config      *Config                `json:"config,omitempty"`
	Comparisons []Comparison           `json:"comparisons"`
	Metrics     []Metric               `json:"metrics"`
	Profile     *profiler.Stats        `json:"profile,omitempty"`
	Scenarios   []ScenarioResult       `json:"scenarios,omitempty"`
	Extra       map[string]interface{} `json:"extra,omitempty"`
}

// NewResults collects the comparisons and raw metrics into a Results document.
func (m *Metrics) NewResults(host HostInfo) Results {
	return Results{
		GeneratedAt: time.Now(),
		Host:        host,
		Comparisons: m.AllComparisons(),
		Metrics:     m.All(),
	}
}

// SaveJSON writes results as indented JSON, creating parent directories.
func SaveJSON(filename string, results Results) error {
	if err := ensureDir(filename); err != nil {
		return err
	}

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal results")
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write results file")
	}
	return nil
}

// ensureDir creates the parent directory of filename.
func ensureDir(filename string) error {
	dir := filepath.Dir(filename)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "failed to create output directory")
	}
	return nil
}
