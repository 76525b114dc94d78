package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/nvr-ai/go-filters/accel"
	"github.com/nvr-ai/go-filters/benchmark"
	"github.com/nvr-ai/go-filters/images"
	"github.com/nvr-ai/go-filters/logger"
	"github.com/nvr-ai/go-filters/processor"
	"github.com/nvr-ai/go-filters/profiler"
	"github.com/nvr-ai/go-filters/util"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// options holds the parsed command-line flags.
type options struct {
	configFile   string
	imagePath    string
	outputPath   string
	iterations   int
	workers      int
	scenarioFile string
	quick        bool
	resolutions  string
	chart        bool
	json         bool
	verify       bool
	timeout      time.Duration
}

func main() {
	var (
		opts     options
		logLevel = flag.String("log-level", "", "Log level: debug, info, warn, error")
	)
	flag.StringVar(&opts.configFile, "c", "", "Path to a YAML benchmark configuration (shorthand)")
	flag.StringVar(&opts.configFile, "config", "", "Path to a YAML benchmark configuration")
	flag.StringVar(&opts.imagePath, "i", "", "Input image file or directory (shorthand)")
	flag.StringVar(&opts.imagePath, "image", "", "Input image file or directory; a random 1920x1080 image when empty")
	flag.StringVar(&opts.outputPath, "o", "", "CSV output path (shorthand)")
	flag.StringVar(&opts.outputPath, "output", "", "CSV output path (default "+benchmark.DefaultOutput+")")
	flag.IntVar(&opts.iterations, "n", 0, "Timed iterations per filter and strategy (shorthand)")
	flag.IntVar(&opts.iterations, "iterations", 0, fmt.Sprintf("Timed iterations per filter and strategy (default %d)", benchmark.DefaultIterations))
	flag.IntVar(&opts.workers, "w", 0, "Multithread worker count (shorthand)")
	flag.IntVar(&opts.workers, "workers", 0, "Multithread worker count; 0 uses every hardware thread")
	flag.StringVar(&opts.scenarioFile, "scenarios", "", "Path to a JSON scenario set")
	flag.BoolVar(&opts.quick, "quick", false, "Run the quick predefined scenarios (VGA and 720p)")
	flag.StringVar(&opts.resolutions, "resolutions", "", "Comma-separated resolutions, e.g. 720p,1080p,320x240")
	flag.BoolVar(&opts.chart, "chart", false, "Write a PNG bar chart next to the CSV")
	flag.BoolVar(&opts.json, "json", false, "Write a JSON results file next to the CSV")
	flag.BoolVar(&opts.verify, "verify", false, "Check that every strategy produces identical output before timing")
	flag.DurationVar(&opts.timeout, "timeout", 30*time.Minute, "Benchmark timeout duration")
	flag.Parse()

	if *logLevel != "" {
		logger.SetLevel(*logLevel)
	}

	if err := run(opts); err != nil {
		logger.WithError(err).Fatal("benchmark failed")
	}
}

// run executes the benchmark; deferred cleanup completes before it returns.
func run(opts options) error {
	cfg, err := benchmark.LoadConfig(opts.configFile)
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	// Flags override the file and environment.
	if opts.imagePath != "" {
		cfg.Input = opts.imagePath
	}
	if opts.outputPath != "" {
		cfg.Output = opts.outputPath
	}
	if opts.iterations > 0 {
		cfg.Iterations = opts.iterations
	}
	if opts.workers > 0 {
		cfg.Workers = opts.workers
	}
	if opts.resolutions != "" {
		cfg.Resolutions = splitList(opts.resolutions)
	}
	cfg.Chart = cfg.Chart || opts.chart
	cfg.JSON = cfg.JSON || opts.json
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}

	capability := accel.Probe(accel.DefaultOptions())
	host := benchmark.DetectHost(capability.String())
	logger.WithFields(logrus.Fields{
		"host":        host.String(),
		"accelerated": capability.Available(),
	}).Info("starting benchmark")

	proc := processor.New(
		processor.WithParams(cfg.Params),
		processor.WithWorkers(cfg.Workers),
		processor.WithAccelerator(capability),
	)

	var corpus []*images.Image
	if cfg.Input != "" {
		corpus, err = util.LoadImages(cfg.Input)
		if err != nil {
			return errors.Wrap(err, "failed to load input images")
		}
		logger.WithField("images", len(corpus)).Info("loaded corpus")
	}

	prof := profiler.NewRuntimeProfiler(profiler.ProfilingOptions{})
	prof.Start()
	defer prof.Stop()

	runner := benchmark.NewRunner(benchmark.RunnerArgs{
		Processor: proc,
		Profiler:  prof,
		Corpus:    corpus,
		Seed:      cfg.Seed,
	})

	if opts.verify {
		sample := benchmark.RandomImage(cfg.Seed)
		if len(corpus) > 0 {
			sample = corpus[0]
		}
		if err := benchmark.VerifyStrategies(proc, sample, cfg.Filters); err != nil {
			return errors.Wrap(err, "strategy outputs differ")
		}
		logger.Logger.Info("all strategies produce identical output")
	}

	scenarios, err := loadScenarios(cfg, opts.scenarioFile, opts.quick)
	if err != nil {
		return errors.Wrap(err, "failed to build scenarios")
	}
	for _, sc := range scenarios {
		runner.AddScenario(sc)
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	start := time.Now()
	results, err := runner.Run(ctx)
	if err != nil {
		logger.WithError(err).Error("benchmark interrupted, writing partial results")
	}
	logger.WithField("duration", time.Since(start).String()).Info("benchmark complete")

	metrics := runner.Metrics()
	fmt.Println()
	if err := metrics.WriteComparisonTable(os.Stdout, cfg.Strategies); err != nil {
		logger.WithError(err).Error("failed to print comparison table")
	}
	fmt.Println()
	fmt.Print(metrics.Report(host))

	if err := metrics.ExportCSV(cfg.Output); err != nil {
		return errors.Wrap(err, "failed to export CSV")
	}
	logger.WithField("path", cfg.Output).Info("metrics exported")

	if cfg.JSON {
		stats := prof.GetCurrentStats()
		doc := metrics.NewResults(host)
		doc.Config = cfg
		doc.Profile = &stats
		doc.Scenarios = results
		if err := benchmark.SaveJSON(cfg.JSONPath(), doc); err != nil {
			logger.WithError(err).Error("failed to write JSON results")
		} else {
			logger.WithField("path", cfg.JSONPath()).Info("results written")
		}
	}

	if cfg.Chart {
		if err := metrics.SaveChart(cfg.ChartPath(), cfg.Strategies); err != nil {
			logger.WithError(err).Error("failed to write chart")
		} else {
			logger.WithField("path", cfg.ChartPath()).Info("chart written")
		}
	}
	return nil
}

func loadScenarios(cfg *benchmark.Config, scenarioFile string, quick bool) ([]benchmark.Scenario, error) {
	switch {
	case scenarioFile != "":
		set, err := benchmark.LoadScenarioSet(scenarioFile)
		if err != nil {
			return nil, err
		}
		logger.WithFields(logrus.Fields{"set": set.Name, "scenarios": len(set.Scenarios)}).Info("loaded scenarios")
		return set.Scenarios, nil
	case quick:
		set := (&benchmark.PredefinedScenarios{}).GetQuickScenarios()
		return set.Scenarios, nil
	default:
		return benchmark.ScenariosFromConfig(cfg)
	}
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func init() {
	flag.Usage = func() {
		name := filepath.Base(os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", name)
		fmt.Fprintf(os.Stderr, "Times the image filter catalog under the Sequential, Parallel,\n")
		fmt.Fprintf(os.Stderr, "Multithread and GPU strategies and exports the measurements.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s -n 10 --chart\n", name)
		fmt.Fprintf(os.Stderr, "  %s -i ./frames -o results/frames.csv --json --resolutions 720p,1080p\n", name)
		fmt.Fprintf(os.Stderr, "  %s -c ./benchmark.yaml --verify\n", name)
	}
}
