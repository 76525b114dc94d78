package filters

import (
	"math"

	"github.com/nvr-ai/go-filters/images"
	"github.com/nvr-ai/go-filters/images/kernels"
)

// Canny edge labels.
const (
	edgeStrong uint8 = 255
	edgeWeak   uint8 = 128
)

// Sobel returns the gradient magnitude of the luminance.
//
// Both gradients are saturated to [0, 255] before the magnitude is taken, so
// negative slopes read as 0. The magnitude is truncated, then saturated.
//
// Arguments:
// - in: The source image, gray or color.
//
// Returns:
// - A new single-channel image, or nil for an empty input.
func (l *Library) Sobel(in *images.Image) *images.Image {
	if in.Empty() {
		return nil
	}
	gray := l.Grayscale(in)
	gx := l.convolve(gray, kernels.SobelX())
	gy := l.convolve(gray, kernels.SobelY())

	dst := gray.NewLike(1)
	l.rows(gray, func(start, end int) {
		for y := start; y < end; y++ {
			rx, ry, out := gx.Row(y), gy.Row(y), dst.Row(y)
			for i := range out {
				sx, sy := int(rx[i]), int(ry[i])
				out[i] = images.SaturateInt(int(math.Sqrt(float64(sx*sx + sy*sy))))
			}
		}
	})
	return dst
}

// Canny runs a simplified Canny detector: gray, Gaussian 5, Sobel, non-maximum
// suppression with double thresholding, then a single hysteresis pass.
//
// The gradients are the saturated Sobel responses recentred by -128. Border
// rows and columns are always 0. Hysteresis runs sequentially in row-major
// order after every suppression worker has finished, so a weak pixel promoted
// earlier in the scan can promote a later neighbor.
//
// Arguments:
// - in: The source image, gray or color.
// - low: Magnitudes >= low (and < high) are weak edges.
// - high: Magnitudes >= high are strong edges.
//
// Returns:
// - A new single-channel image holding 0 and 255, or nil for an empty input.
//
// @example
// edges := lib.Canny(img, 50, 150)
func (l *Library) Canny(in *images.Image, low, high float64) *images.Image {
	if in.Empty() {
		return nil
	}
	gray := l.Grayscale(in)
	blurred := l.convolve(gray, kernels.MustGaussian(5, 0))
	gx := l.convolve(blurred, kernels.SobelX())
	gy := l.convolve(blurred, kernels.SobelY())

	w, h := gray.Width, gray.Height
	magnitude := gray.NewLike(1)
	direction := make([]float64, w*h)

	l.rows(gray, func(start, end int) {
		for y := start; y < end; y++ {
			rx, ry, mag := gx.Row(y), gy.Row(y), magnitude.Row(y)
			for x := range mag {
				dx := float64(rx[x]) - 128
				dy := float64(ry[x]) - 128
				mag[x] = images.Saturate(math.Sqrt(dx*dx + dy*dy))
				direction[y*w+x] = math.Atan2(dy, dx)
			}
		}
	})

	dst := gray.NewLike(1)
	l.rows(gray, func(start, end int) {
		start = max(start, 1)
		end = min(end, h-1)
		for y := start; y < end; y++ {
			out := dst.Row(y)
			for x := 1; x < w-1; x++ {
				out[x] = suppress(magnitude, direction[y*w+x], x, y, low, high)
			}
		}
	})

	hysteresis(dst)
	return dst
}

// suppress keeps pixel (x, y) only if it is a local maximum along its gradient
// direction and labels it strong or weak.
func suppress(mag *images.Image, theta float64, x, y int, low, high float64) uint8 {
	angle := theta * 180 / math.Pi
	if angle < 0 {
		angle += 180
	}

	q, r := uint8(255), uint8(255)
	switch {
	case (angle >= 0 && angle < 22.5) || (angle >= 157.5 && angle <= 180):
		q, r = mag.At(x+1, y, 0), mag.At(x-1, y, 0)
	case angle >= 22.5 && angle < 67.5:
		q, r = mag.At(x-1, y+1, 0), mag.At(x+1, y-1, 0)
	case angle >= 67.5 && angle < 112.5:
		q, r = mag.At(x, y+1, 0), mag.At(x, y-1, 0)
	case angle >= 112.5 && angle < 157.5:
		q, r = mag.At(x-1, y-1, 0), mag.At(x+1, y+1, 0)
	}

	m := mag.At(x, y, 0)
	if m < q || m < r {
		return 0
	}
	switch v := float64(m); {
	case v >= high:
		return edgeStrong
	case v >= low:
		return edgeWeak
	}
	return 0
}

// hysteresis promotes weak pixels touching a strong 8-neighbor and clears the
// rest, in place and in row-major order over the interior.
func hysteresis(img *images.Image) {
	w, h := img.Width, img.Height
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			if img.At(x, y, 0) != edgeWeak {
				continue
			}
			v := uint8(0)
		neighbors:
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if img.At(x+dx, y+dy, 0) == edgeStrong {
						v = edgeStrong
						break neighbors
					}
				}
			}
			img.Set(x, y, 0, v)
		}
	}
}
