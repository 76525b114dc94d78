package processor

import (
	"fmt"
	"sync"
	"time"

	"github.com/nvr-ai/go-filters/filters"
	"github.com/nvr-ai/go-filters/images"
	"github.com/nvr-ai/go-filters/logger"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	// ErrNoImage is reported when a filter is applied without an input image.
	ErrNoImage = errors.New("no image loaded")
	// ErrEmptyFrame is reported when an empty video frame is processed.
	ErrEmptyFrame = errors.New("empty frame")
)

// Func is one resolved (filter, strategy) cell of the dispatch table.
type Func func(in *images.Image) (*images.Image, error)

// Result is the outcome of one timed filter application.
type Result struct {
	// The filtered image; nil on failure.
	Image *images.Image `json:"-" yaml:"-"`
	// The wall-clock time of the dispatch in milliseconds; 0 when nothing ran.
	ElapsedMs float64 `json:"elapsed_ms" yaml:"elapsed_ms"`
	// The applied filter.
	Filter FilterID `json:"filter" yaml:"filter"`
	// The strategy used.
	Strategy StrategyID `json:"strategy" yaml:"strategy"`
	// Whether a non-empty image was produced without error.
	Success bool `json:"success" yaml:"success"`
	// The failure message, empty on success.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Option configures a Processor.
type Option func(*Processor)

// WithParams overrides the filter parameters.
func WithParams(p filters.Params) Option {
	return func(proc *Processor) { proc.params = p }
}

// WithWorkers sets the Multithread worker count (<= 0 uses the hardware concurrency).
func WithWorkers(n int) Option {
	return func(proc *Processor) { proc.workers = n }
}

// WithAccelerator sets the capability reported to the GPU strategy.
func WithAccelerator(a filters.Accelerator) Option {
	return func(proc *Processor) { proc.accel = a }
}

// Processor dispatches filters to strategy libraries and times each call.
// The dispatch table is immutable after New; ApplyFilter and ProcessFrame are
// safe for concurrent use. The loaded/processed image pair is guarded by a mutex.
type Processor struct {
	params  filters.Params
	workers int
	accel   filters.Accelerator

	libraries [strategyCount]filters.Operations
	table     [filterCount][strategyCount]Func

	mu        sync.RWMutex
	original  *images.Image
	processed *images.Image
}

// New builds a Processor with the complete 12x4 dispatch table.
// It panics if any (filter, strategy) cell is left unmapped.
//
// Arguments:
// - opts: Optional overrides; defaults are filters.DefaultParams, hardware
// concurrency and no accelerator.
//
// Returns:
// - *Processor: The processor.
//
// @example
// p := processor.New(processor.WithWorkers(8))
// res := p.ApplyFilter(img, processor.Canny, processor.Multithread)
func New(opts ...Option) *Processor {
	p := &Processor{params: filters.DefaultParams()}
	for _, opt := range opts {
		opt(p)
	}

	p.libraries = [strategyCount]filters.Operations{
		Sequential:  filters.NewSequential(),
		Parallel:    filters.NewParallel(),
		Multithread: filters.NewMultithread(p.workers),
		GPU:         filters.NewGPU(p.accel),
	}
	for s, ops := range p.libraries {
		for f := range p.table {
			p.table[f][s] = bind(FilterID(f), ops, p.params)
		}
	}
	for f := range p.table {
		for s := range p.table[f] {
			if p.table[f][s] == nil {
				panic(fmt.Sprintf("processor: no implementation for %s/%s", FilterID(f), StrategyID(s)))
			}
		}
	}
	return p
}

// bind closes a filter over its strategy library and parameters.
func bind(f FilterID, ops filters.Operations, p filters.Params) Func {
	plain := func(fn func(*images.Image) *images.Image) Func {
		return func(in *images.Image) (*images.Image, error) { return fn(in), nil }
	}
	switch f {
	case Grayscale:
		return plain(ops.Grayscale)
	case Blur:
		return func(in *images.Image) (*images.Image, error) { return ops.Blur(in, p.BlurSize) }
	case GaussianBlur:
		return func(in *images.Image) (*images.Image, error) { return ops.GaussianBlur(in, p.GaussianSize) }
	case Sobel:
		return plain(ops.Sobel)
	case Canny:
		return plain(func(in *images.Image) *images.Image { return ops.Canny(in, p.CannyLow, p.CannyHigh) })
	case Sharpen:
		return plain(ops.Sharpen)
	case Emboss:
		return plain(ops.Emboss)
	case Negative:
		return plain(ops.Negative)
	case Sepia:
		return plain(ops.Sepia)
	case Threshold:
		return plain(func(in *images.Image) *images.Image { return ops.Threshold(in, p.Threshold) })
	case Median:
		return func(in *images.Image) (*images.Image, error) { return ops.Median(in, p.MedianSize) }
	case Bilateral:
		return func(in *images.Image) (*images.Image, error) {
			return ops.Bilateral(in, p.BilateralDiameter, p.BilateralSigmaColor, p.BilateralSigmaSpace)
		}
	}
	return nil
}

// Params returns the filter parameters in use.
func (p *Processor) Params() filters.Params {
	return p.params
}

// Library returns the filter library behind a strategy, or nil for an unknown strategy.
func (p *Processor) Library(s StrategyID) filters.Operations {
	if !s.Valid() {
		return nil
	}
	return p.libraries[s]
}

// ApplyFilter runs filter f under strategy s and times the dispatch.
//
// Arguments:
// - img: The input image; it is never modified.
// - f: The filter.
// - s: The strategy.
//
// Returns:
// - Result: Success with the output image and elapsed milliseconds, or a failed
// result carrying the error message. An empty input fails with "no image loaded"
// and a malformed buffer fails with its validation error, both before the timer starts.
func (p *Processor) ApplyFilter(img *images.Image, f FilterID, s StrategyID) Result {
	return p.run(img, f, s, ErrNoImage)
}

// ProcessFrame is ApplyFilter for video frames; an empty frame fails with "empty frame".
func (p *Processor) ProcessFrame(frame *images.Image, f FilterID, s StrategyID) Result {
	return p.run(frame, f, s, ErrEmptyFrame)
}

func (p *Processor) run(img *images.Image, f FilterID, s StrategyID, emptyErr error) Result {
	res := Result{Filter: f, Strategy: s}
	if err := img.Validate(); err != nil {
		if errors.Is(err, images.ErrEmptyImage) {
			err = emptyErr
		}
		res.Error = err.Error()
		return res
	}
	if !f.Valid() || !s.Valid() {
		res.Error = fmt.Sprintf("unsupported combination %s/%s", f, s)
		return res
	}

	start := time.Now()
	out, err := p.dispatch(p.table[f][s], img)
	res.ElapsedMs = float64(time.Since(start).Nanoseconds()) / 1e6

	switch {
	case err != nil:
		res.Error = err.Error()
	case out.Empty():
		res.Error = images.ErrEmptyImage.Error()
	default:
		res.Image = out
		res.Success = true
		return res
	}

	logger.WithFields(logrus.Fields{
		"filter":   f.String(),
		"strategy": s.String(),
	}).Warn(res.Error)
	return res
}

// dispatch invokes fn and converts a panic into an error.
func (p *Processor) dispatch(fn Func, img *images.Image) (out *images.Image, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = errors.Errorf("filter panic: %v", r)
		}
	}()
	return fn(img)
}

// LoadImage stores a copy of img as the current original and clears the processed image.
func (p *Processor) LoadImage(img *images.Image) error {
	if err := img.Validate(); err != nil {
		if errors.Is(err, images.ErrEmptyImage) {
			return ErrNoImage
		}
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.original = img.Clone()
	p.processed = nil
	return nil
}

// Apply runs a filter on the loaded original and keeps the output as the processed image.
func (p *Processor) Apply(f FilterID, s StrategyID) Result {
	p.mu.RLock()
	original := p.original
	p.mu.RUnlock()

	res := p.ApplyFilter(original, f, s)
	if res.Success {
		p.mu.Lock()
		p.processed = res.Image
		p.mu.Unlock()
	}
	return res
}

// Original returns the loaded image, or nil.
func (p *Processor) Original() *images.Image {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.original
}

// Processed returns the last successful Apply output, or nil.
func (p *Processor) Processed() *images.Image {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.processed
}
