package filters

import (
	"slices"

	"github.com/nvr-ai/go-filters/images"
	"github.com/nvr-ai/go-filters/images/kernels"
	"github.com/pkg/errors"
)

// Median replaces every channel value by the median of its size x size
// replicate-padded neighborhood (index n/2 of the sorted window).
//
// Arguments:
// - in: The source image.
// - size: The window size; must be odd and >= 1.
//
// Returns:
// - *images.Image: The filtered image, nil for an empty input.
// - error: ErrInvalidKernelSize for a bad size.
func (l *Library) Median(in *images.Image, size int) (*images.Image, error) {
	if in.Empty() {
		return nil, nil
	}
	if err := kernels.ValidateSize(size); err != nil {
		return nil, errors.Wrap(err, "median")
	}

	r := size / 2
	ch := in.Channels
	padded := images.PadReplicate(in, r, r)
	dst := in.NewLike(ch)
	n := size * size

	l.rows(in, func(start, end int) {
		// Window scratch is per worker.
		window := make([]uint8, n)
		for y := start; y < end; y++ {
			out := dst.Row(y)
			for x := 0; x < in.Width; x++ {
				for c := 0; c < ch; c++ {
					i := 0
					for ky := 0; ky < size; ky++ {
						prow := padded.Row(y + ky)
						for kx := 0; kx < size; kx++ {
							window[i] = prow[(x+kx)*ch+c]
							i++
						}
					}
					slices.Sort(window)
					out[x*ch+c] = window[n/2]
				}
			}
		}
	})
	return dst, nil
}
