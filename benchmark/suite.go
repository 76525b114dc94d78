package benchmark

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nvr-ai/go-filters/images"
	"github.com/nvr-ai/go-filters/logger"
	"github.com/nvr-ai/go-filters/processor"
	"github.com/nvr-ai/go-filters/profiler"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Size of the generated frame used when no input image is given.
const (
	RandomImageWidth  = 1920
	RandomImageHeight = 1080
)

// RandomImage returns the default 1920x1080 3-channel benchmark frame.
func RandomImage(seed int64) *images.Image {
	return images.Random(RandomImageWidth, RandomImageHeight, 3, seed)
}

// ScenarioResult summarizes one executed scenario.
type ScenarioResult struct {
	Scenario     Scenario                `json:"scenario"`
	Started      time.Time               `json:"started"`
	DurationMs   float64                 `json:"duration_ms"`
	Runs         int                     `json:"runs"`
	Failures     int                     `json:"failures"`
	Errors       []string                `json:"errors,omitempty"`
	MemoryBefore profiler.MemorySnapshot `json:"memory_before"`
	MemoryAfter  profiler.MemorySnapshot `json:"memory_after"`
}

// ErrorRate is the share of timed runs that failed.
func (r ScenarioResult) ErrorRate() float64 {
	if r.Runs == 0 {
		return 0
	}
	return float64(r.Failures) / float64(r.Runs)
}

// RunnerArgs configures a Runner.
type RunnerArgs struct {
	// Processor used for every run; a default processor when nil.
	Processor *processor.Processor
	// Metric log that receives every successful timed run; a new log when nil.
	Metrics *Metrics
	// Profiler that receives operation timings; a new profiler when nil.
	Profiler *profiler.RuntimeProfiler
	// Source frames, cycled across iterations; a random frame when empty.
	Corpus []*images.Image
	// Seed of the random frame.
	Seed int64
}

// Runner executes benchmark scenarios and records their metrics.
type Runner struct {
	proc      *processor.Processor
	metrics   *Metrics
	profiler  *profiler.RuntimeProfiler
	corpus    []*images.Image
	mu        sync.RWMutex
	scenarios []Scenario
	results   []ScenarioResult
}

// NewRunner creates a runner.
//
// Arguments:
// - args: The runner arguments.
//
// Returns:
// - *Runner: The runner.
func NewRunner(args RunnerArgs) *Runner {
	r := &Runner{
		proc:      args.Processor,
		metrics:   args.Metrics,
		profiler:  args.Profiler,
		scenarios: make([]Scenario, 0),
		results:   make([]ScenarioResult, 0),
	}
	if r.proc == nil {
		r.proc = processor.New()
	}
	if r.metrics == nil {
		r.metrics = NewMetrics()
	}
	if r.profiler == nil {
		r.profiler = profiler.NewRuntimeProfiler(profiler.ProfilingOptions{})
	}
	for _, img := range args.Corpus {
		if !img.Empty() {
			r.corpus = append(r.corpus, img)
		}
	}
	if len(r.corpus) == 0 {
		r.corpus = []*images.Image{RandomImage(args.Seed)}
	}
	return r
}

// Metrics returns the metric log the runner writes to.
func (r *Runner) Metrics() *Metrics {
	return r.metrics
}

// Profiler returns the runner's profiler.
func (r *Runner) Profiler() *profiler.RuntimeProfiler {
	return r.profiler
}

// AddScenario queues a scenario for Run.
func (r *Runner) AddScenario(scenario Scenario) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scenarios = append(r.scenarios, scenario)
}

// Results returns a copy of the results of every executed scenario.
func (r *Runner) Results() []ScenarioResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ScenarioResult, len(r.results))
	copy(out, r.results)
	return out
}

// Run executes every queued scenario in order.
//
// Arguments:
// - ctx: Cancels the run between filter applications.
//
// Returns:
// - []ScenarioResult: The results of the completed scenarios.
// - error: The context error if the run was cancelled.
func (r *Runner) Run(ctx context.Context) ([]ScenarioResult, error) {
	r.mu.RLock()
	scenarios := make([]Scenario, len(r.scenarios))
	copy(scenarios, r.scenarios)
	r.mu.RUnlock()

	out := make([]ScenarioResult, 0, len(scenarios))
	for _, sc := range scenarios {
		res, err := r.RunScenario(ctx, sc)
		if res != nil {
			out = append(out, *res)
		}
		if err != nil {
			return out, err
		}
	}
	return out, nil
}

// RunScenario executes a single scenario: warmup runs, then timed runs of every
// (filter, strategy) pair on every corpus frame scaled to the scenario resolution.
//
// Arguments:
// - ctx: Cancels the scenario between filter applications.
// - sc: The scenario.
//
// Returns:
// - *ScenarioResult: The summary, partial when cancelled.
// - error: An error if the scenario is invalid or ctx was cancelled.
func (r *Runner) RunScenario(ctx context.Context, sc Scenario) (*ScenarioResult, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	frames, err := r.frames(sc.Resolution)
	if err != nil {
		return nil, err
	}

	log := logger.WithFields(logrus.Fields{
		"scenario":   sc.Name,
		"iterations": sc.Iterations,
		"warmup":     sc.WarmupRuns,
		"size":       fmt.Sprintf("%dx%d", frames[0].Width, frames[0].Height),
	})
	log.Info("running scenario")

	res := &ScenarioResult{
		Scenario:     sc,
		Started:      time.Now(),
		MemoryBefore: r.profiler.Memory(),
	}
	defer func() {
		res.DurationMs = float64(time.Since(res.Started).Nanoseconds()) / 1e6
		res.MemoryAfter = r.profiler.Memory()
		r.mu.Lock()
		r.results = append(r.results, *res)
		r.mu.Unlock()
	}()

	for _, f := range sc.Filters {
		for _, s := range sc.Strategies {
			// Warmup runs are not recorded.
			for i := 0; i < sc.WarmupRuns; i++ {
				if err := ctx.Err(); err != nil {
					return res, err
				}
				r.proc.ApplyFilter(frames[i%len(frames)], f, s)
			}

			op := f.String() + "/" + s.String()
			for i := 0; i < sc.Iterations; i++ {
				if err := ctx.Err(); err != nil {
					return res, err
				}
				frame := frames[i%len(frames)]

				done := r.profiler.StartOperation(op)
				result := r.proc.ApplyFilter(frame, f, s)
				done()

				res.Runs++
				if !result.Success {
					res.Failures++
					res.Errors = append(res.Errors, fmt.Sprintf("%s: %s", op, result.Error))
					continue
				}
				r.metrics.RecordMetric(f, s, result.ElapsedMs, frame.Width, frame.Height)
				if result.ElapsedMs > 0 {
					mpx := float64(frame.Width*frame.Height) / 1e6
					r.profiler.RecordMetric(op+" mpx/s", mpx/(result.ElapsedMs/1000))
				}
			}

			log.WithFields(logrus.Fields{
				"filter":   f.String(),
				"strategy": s.String(),
				"avg_ms":   r.metrics.Average(f, s),
			}).Debug("measured")
		}
	}

	log.WithFields(logrus.Fields{
		"runs":     res.Runs,
		"failures": res.Failures,
	}).Info("scenario complete")
	return res, nil
}

// frames scales the corpus to res; a zero resolution keeps the source size.
func (r *Runner) frames(res images.Resolution) ([]*images.Image, error) {
	if res.Pixels.Width == 0 && res.Pixels.Height == 0 {
		return r.corpus, nil
	}
	out := make([]*images.Image, 0, len(r.corpus))
	for _, img := range r.corpus {
		scaled := images.RescaleTo(img, res)
		if scaled.Empty() {
			return nil, errors.Errorf("failed to scale frame to %dx%d", res.Pixels.Width, res.Pixels.Height)
		}
		out = append(out, scaled)
	}
	return out, nil
}

// VerifyStrategies applies every filter with every strategy to img and reports
// the first filter whose outputs differ from the Sequential output.
//
// Arguments:
// - proc: The processor.
// - img: The input image.
// - filters: The filters to check.
//
// Returns:
// - error: An error naming the first mismatching or failing combination.
func VerifyStrategies(proc *processor.Processor, img *images.Image, filters []processor.FilterID) error {
	for _, f := range filters {
		want := ""
		for _, s := range processor.AllStrategies() {
			res := proc.ApplyFilter(img, f, s)
			if !res.Success {
				return errors.Errorf("%s/%s failed: %s", f, s, res.Error)
			}
			sum := images.Checksum(res.Image)
			if s == processor.Sequential {
				want = sum
				continue
			}
			if sum != want {
				return errors.Errorf("%s/%s output differs from Sequential (%s != %s)", f, s, sum, want)
			}
		}
	}
	return nil
}
