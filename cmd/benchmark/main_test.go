package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nvr-ai/go-filters/benchmark"
	"github.com/nvr-ai/go-filters/images"
	"github.com/nvr-ai/go-filters/logger"
	"github.com/nvr-ai/go-filters/processor"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tinyScenarios writes a one-scenario set that runs Negative on a 16x12 frame.
func tinyScenarios(t *testing.T, dir string) string {
	t.Helper()
	set := &benchmark.ScenarioSet{
		Name: "tiny",
		Scenarios: []benchmark.Scenario{
			benchmark.NewScenarioBuilder("tiny").
				WithFilters(processor.Negative).
				WithStrategies(processor.Sequential, processor.Parallel).
				WithResolution(images.Resolution{Name: "tiny", Pixels: images.Pixels{Width: 16, Height: 12}}).
				WithIterations(1).
				WithWarmupRuns(0).
				Build(),
		},
	}
	path := filepath.Join(dir, "scenarios.json")
	require.NoError(t, benchmark.SaveScenarioSet(set, path))
	return path
}

func testOptions(t *testing.T) options {
	t.Helper()
	logger.Logger.SetLevel(logrus.ErrorLevel)
	t.Cleanup(func() { logger.Logger.SetLevel(logrus.InfoLevel) })
	for _, key := range []string{"BENCH_ITERATIONS", "BENCH_WORKERS", "BENCH_OUTPUT"} {
		t.Setenv(key, "")
	}

	dir := t.TempDir()
	return options{
		scenarioFile: tinyScenarios(t, dir),
		outputPath:   filepath.Join(dir, "out", "results.csv"),
		timeout:      time.Minute,
	}
}

func TestRunWritesCSV(t *testing.T) {
	opts := testOptions(t)
	opts.json = true

	require.NoError(t, run(opts))

	data, err := os.ReadFile(opts.outputPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.TrimSpace(benchmark.CSVHeader), lines[0])
	assert.Contains(t, lines[1], ",Negative,Sequential,")
	assert.True(t, strings.HasSuffix(lines[1], ",16,12"))

	assert.FileExists(t, strings.TrimSuffix(opts.outputPath, ".csv")+".json")
}

func TestRunReturnsErrors(t *testing.T) {
	t.Run("missing config", func(t *testing.T) {
		opts := testOptions(t)
		opts.configFile = filepath.Join(t.TempDir(), "missing.yaml")
		err := run(opts)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load config")
	})

	t.Run("unwritable output", func(t *testing.T) {
		opts := testOptions(t)
		blocker := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
		opts.outputPath = filepath.Join(blocker, "results.csv")

		err := run(opts)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to export CSV")
	})
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"720p", "1080p", "320x240"}, splitList(" 720p, 1080p,,320x240 "))
	assert.Empty(t, splitList(" , "))
}
