package filters

import (
	"github.com/nvr-ai/go-filters/images"
	"github.com/nvr-ai/go-filters/images/kernels"
	"github.com/nvr-ai/go-filters/parallel"
	"github.com/pkg/errors"
)

// Operations is the filter catalog. Every implementation returns a new image,
// never mutates its input, and returns nil for an empty input.
type Operations interface {
	Grayscale(in *images.Image) *images.Image
	Blur(in *images.Image, size int) (*images.Image, error)
	GaussianBlur(in *images.Image, size int) (*images.Image, error)
	Sobel(in *images.Image) *images.Image
	Canny(in *images.Image, low, high float64) *images.Image
	Sharpen(in *images.Image) *images.Image
	Emboss(in *images.Image) *images.Image
	Negative(in *images.Image) *images.Image
	Sepia(in *images.Image) *images.Image
	Threshold(in *images.Image, t int) *images.Image
	Median(in *images.Image, size int) (*images.Image, error)
	Bilateral(in *images.Image, d int, sigmaColor, sigmaSpace float64) (*images.Image, error)
}

// Library runs the filter catalog under one row scheduling strategy.
type Library struct {
	name  string
	sched parallel.Scheduler
}

var _ Operations = (*Library)(nil)

// NewSequential returns a Library that computes every row on the calling goroutine.
func NewSequential() *Library {
	return NewWithScheduler("Sequential", parallel.Sequential)
}

// NewParallel returns a Library backed by the data-parallel loop: contiguous row
// blocks fanned out over the hardware concurrency, inline for small images.
func NewParallel() *Library {
	return NewWithScheduler("Parallel", parallel.NewDataParallel())
}

// NewMultithread returns a Library that partitions rows across an explicit worker set.
//
// Arguments:
// - workers: The worker count; <= 0 uses the hardware concurrency.
//
// Returns:
// - *Library: The library.
//
// @example
// lib := filters.NewMultithread(8)
// out := lib.Sharpen(img)
func NewMultithread(workers int) *Library {
	return NewWithScheduler("Multithread", parallel.Partitioned{Workers: workers})
}

// NewWithScheduler returns a Library using a custom scheduler. A nil scheduler runs sequentially.
func NewWithScheduler(name string, sched parallel.Scheduler) *Library {
	if sched == nil {
		sched = parallel.Sequential
	}
	return &Library{name: name, sched: sched}
}

// Name returns the strategy name the library was built with.
func (l *Library) Name() string {
	return l.name
}

// Scheduler returns the row scheduler.
func (l *Library) Scheduler() parallel.Scheduler {
	return l.sched
}

// rows runs fn over every row of img through the scheduler.
func (l *Library) rows(img *images.Image, fn func(start, end int)) {
	l.sched.Run(img.Height, fn)
}

func (l *Library) convolve(in *images.Image, k *kernels.Kernel) *images.Image {
	return kernels.Convolve(in, k, kernels.Options{Scheduler: l.sched})
}

// Blur applies a size x size box (mean) filter.
//
// Arguments:
// - in: The source image.
// - size: The kernel size; must be odd and >= 1.
//
// Returns:
// - *images.Image: The blurred image, nil for an empty input.
// - error: ErrInvalidKernelSize for a bad size.
func (l *Library) Blur(in *images.Image, size int) (*images.Image, error) {
	if in.Empty() {
		return nil, nil
	}
	k, err := kernels.Box(size)
	if err != nil {
		return nil, errors.Wrap(err, "blur")
	}
	return l.convolve(in, k), nil
}

// GaussianBlur applies a normalized size x size Gaussian filter with the sigma
// derived from the size.
func (l *Library) GaussianBlur(in *images.Image, size int) (*images.Image, error) {
	if in.Empty() {
		return nil, nil
	}
	k, err := kernels.Gaussian(size, 0)
	if err != nil {
		return nil, errors.Wrap(err, "gaussian blur")
	}
	return l.convolve(in, k), nil
}

// Sharpen applies the unit-gain 3x3 sharpen kernel.
func (l *Library) Sharpen(in *images.Image) *images.Image {
	if in.Empty() {
		return nil
	}
	return l.convolve(in, kernels.Sharpen())
}
