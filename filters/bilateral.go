package filters

import (
	"math"

	"github.com/nvr-ai/go-filters/images"
	"github.com/nvr-ai/go-filters/images/kernels"
	"github.com/pkg/errors"
)

// Bilateral smooths while preserving edges. Each neighbor is weighted by a
// spatial Gaussian (sigmaSpace) times a per-channel range Gaussian on the value
// difference to the center (sigmaColor).
//
// Arguments:
// - in: The source image.
// - d: The neighborhood diameter; must be odd and >= 1.
// - sigmaColor: The range sigma; must be positive.
// - sigmaSpace: The spatial sigma; must be positive.
//
// Returns:
// - *images.Image: The filtered image, nil for an empty input.
// - error: ErrInvalidKernelSize or ErrInvalidParameter.
//
// @example
// out, err := lib.Bilateral(img, 9, 75, 75)
func (l *Library) Bilateral(in *images.Image, d int, sigmaColor, sigmaSpace float64) (*images.Image, error) {
	if in.Empty() {
		return nil, nil
	}
	if err := kernels.ValidateSize(d); err != nil {
		return nil, errors.Wrap(err, "bilateral")
	}
	if !(sigmaColor > 0) || !(sigmaSpace > 0) {
		return nil, errors.Wrapf(ErrInvalidParameter, "bilateral sigmas %v/%v must be positive", sigmaColor, sigmaSpace)
	}

	r := d / 2
	ch := in.Channels
	padded := images.PadReplicate(in, r, r)
	dst := in.NewLike(ch)

	spatial := make([]float64, d*d)
	for ky := 0; ky < d; ky++ {
		for kx := 0; kx < d; kx++ {
			dy, dx := float64(ky-r), float64(kx-r)
			spatial[ky*d+kx] = math.Exp(-(dx*dx + dy*dy) / (2 * sigmaSpace * sigmaSpace))
		}
	}
	colorDenom := 2 * sigmaColor * sigmaColor

	l.rows(in, func(start, end int) {
		for y := start; y < end; y++ {
			out := dst.Row(y)
			for x := 0; x < in.Width; x++ {
				for c := 0; c < ch; c++ {
					center := float64(padded.Row(y + r)[(x+r)*ch+c])
					var sum, weight float64
					for ky := 0; ky < d; ky++ {
						prow := padded.Row(y + ky)
						for kx := 0; kx < d; kx++ {
							v := float64(prow[(x+kx)*ch+c])
							diff := center - v
							w := spatial[ky*d+kx] * math.Exp(-(diff*diff)/colorDenom)
							sum += w * v
							weight += w
						}
					}
					if weight == 0 || math.IsNaN(weight) {
						out[x*ch+c] = uint8(center)
						continue
					}
					out[x*ch+c] = images.Saturate(sum / weight)
				}
			}
		}
	})
	return dst, nil
}
