package filters

import (
	"sync"

	"github.com/nvr-ai/go-filters/images"
	"github.com/nvr-ai/go-filters/logger"
	"github.com/sirupsen/logrus"
)

// Accelerator reports whether a GPU execution provider is usable.
type Accelerator interface {
	Available() bool
	String() string
}

// GPU is the accelerator strategy. No device kernels are shipped, so every
// operation runs on the sequential CPU library and results match it bit for bit.
// The first call on an instance without a usable accelerator logs one warning.
type GPU struct {
	cpu   *Library
	accel Accelerator
	once  sync.Once
}

var _ Operations = (*GPU)(nil)

// NewGPU returns the GPU strategy.
//
// Arguments:
// - a: The probed accelerator; nil means none.
//
// Returns:
// - *GPU: The strategy.
//
// @example
// gpu := filters.NewGPU(accel.Probe(accel.DefaultOptions()))
// out := gpu.Negative(img)
func NewGPU(a Accelerator) *GPU {
	return &GPU{cpu: NewSequential(), accel: a}
}

// Accelerated reports whether an accelerator was detected.
func (g *GPU) Accelerated() bool {
	return g.accel != nil && g.accel.Available()
}

// Name returns "GPU".
func (g *GPU) Name() string {
	return "GPU"
}

// fallback logs the accelerator state once per instance.
func (g *GPU) fallback() {
	g.once.Do(func() {
		fields := logrus.Fields{"strategy": "GPU"}
		if g.accel != nil {
			fields["accelerator"] = g.accel.String()
		}
		if !g.Accelerated() {
			logger.WithFields(fields).Warn("no GPU accelerator available, running filters on the CPU")
			return
		}
		logger.WithFields(fields).Info("GPU accelerator detected, filters still run on the CPU")
	})
}

// Grayscale converts to one luma channel on the CPU.
func (g *GPU) Grayscale(in *images.Image) *images.Image {
	g.fallback()
	return g.cpu.Grayscale(in)
}

// Blur applies a size x size box filter on the CPU.
func (g *GPU) Blur(in *images.Image, size int) (*images.Image, error) {
	g.fallback()
	return g.cpu.Blur(in, size)
}

// GaussianBlur applies a size x size Gaussian filter on the CPU.
func (g *GPU) GaussianBlur(in *images.Image, size int) (*images.Image, error) {
	g.fallback()
	return g.cpu.GaussianBlur(in, size)
}

// Sobel returns the clamped gradient magnitude on the CPU.
func (g *GPU) Sobel(in *images.Image) *images.Image {
	g.fallback()
	return g.cpu.Sobel(in)
}

// Canny returns a binary edge map using the low and high hysteresis thresholds.
func (g *GPU) Canny(in *images.Image, low, high float64) *images.Image {
	g.fallback()
	return g.cpu.Canny(in, low, high)
}

// Sharpen applies the 3x3 sharpen kernel on the CPU.
func (g *GPU) Sharpen(in *images.Image) *images.Image {
	g.fallback()
	return g.cpu.Sharpen(in)
}

// Emboss applies the 3x3 emboss kernel on the CPU.
func (g *GPU) Emboss(in *images.Image) *images.Image {
	g.fallback()
	return g.cpu.Emboss(in)
}

// Negative inverts every channel on the CPU.
func (g *GPU) Negative(in *images.Image) *images.Image {
	g.fallback()
	return g.cpu.Negative(in)
}

// Sepia applies the sepia tone matrix on the CPU.
func (g *GPU) Sepia(in *images.Image) *images.Image {
	g.fallback()
	return g.cpu.Sepia(in)
}

// Threshold binarizes the luma at t on the CPU.
func (g *GPU) Threshold(in *images.Image, t int) *images.Image {
	g.fallback()
	return g.cpu.Threshold(in, t)
}

// Median applies a size x size median filter on the CPU.
func (g *GPU) Median(in *images.Image, size int) (*images.Image, error) {
	g.fallback()
	return g.cpu.Median(in, size)
}

// Bilateral applies the edge-preserving bilateral filter on the CPU.
func (g *GPU) Bilateral(in *images.Image, d int, sigmaColor, sigmaSpace float64) (*images.Image, error) {
	g.fallback()
	return g.cpu.Bilateral(in, d, sigmaColor, sigmaSpace)
}
