package kernels

import (
	"github.com/nvr-ai/go-filters/images"
	"github.com/nvr-ai/go-filters/parallel"
)

// Options configures a convolution call.
type Options struct {
	// Scheduler decides which goroutine computes which output rows.
	// Nil runs every row on the calling goroutine.
	Scheduler parallel.Scheduler
}

// Convolve correlates src with k (no kernel flip) using replicate-border padding.
// Every output channel is the weighted neighborhood sum of the same input channel,
// saturated to [0, 255]. The output has src's dimensions and channel count.
//
// The schedule only decides which goroutine computes which rows; every
// scheduler produces bit-identical output.
//
// Arguments:
// - src: The source image.
// - k: The kernel.
// - opt: The convolution options.
//
// Returns:
// - A new image, or nil when src is empty or k is nil.
//
// @example
// k, _ := kernels.Gaussian(5, 0)
// out := kernels.Convolve(img, k, kernels.Options{Scheduler: parallel.Partitioned{}})
func Convolve(src *images.Image, k *Kernel, opt Options) *images.Image {
	if src.Empty() || k == nil {
		return nil
	}
	sched := opt.Scheduler
	if sched == nil {
		sched = parallel.Sequential
	}

	padded := images.PadReplicate(src, k.Center(), k.Center())
	dst := src.NewLike(src.Channels)
	weights := k.Weights()
	size := k.Size()

	sched.Run(dst.Height, func(start, end int) {
		convolveRows(padded, dst, weights, size, start, end)
	})
	return dst
}

// convolveRows computes output rows [start, end). The padded row y+ky holds the
// neighborhood row ky of output row y.
func convolveRows(padded, dst *images.Image, weights []float64, size, start, end int) {
	ch := dst.Channels
	sums := make([]float64, ch)

	for y := start; y < end; y++ {
		out := dst.Row(y)
		for x := 0; x < dst.Width; x++ {
			for c := range sums {
				sums[c] = 0
			}
			base := x * ch
			for ky := 0; ky < size; ky++ {
				prow := padded.Row(y + ky)
				wrow := weights[ky*size : (ky+1)*size]
				for kx, kv := range wrow {
					p := prow[base+kx*ch : base+kx*ch+ch]
					for c, v := range p {
						sums[c] += float64(v) * kv
					}
				}
			}
			for c, s := range sums {
				out[base+c] = images.Saturate(s)
			}
		}
	}
}
