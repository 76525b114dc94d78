package filters

import (
	"github.com/nvr-ai/go-filters/images"
	"github.com/nvr-ai/go-filters/images/kernels"
)

// Sepia tone weights, one row per output channel, applied to R, G and B.
var (
	sepiaR = [3]float64{0.393, 0.769, 0.189}
	sepiaG = [3]float64{0.349, 0.686, 0.168}
	sepiaB = [3]float64{0.272, 0.534, 0.131}
)

// Grayscale converts a color image to luminance (0.299R + 0.587G + 0.114B,
// truncated). A single-channel input is cloned.
//
// Arguments:
// - in: The source image.
//
// Returns:
// - A new single-channel image, or nil for an empty input.
func (l *Library) Grayscale(in *images.Image) *images.Image {
	if in.Empty() {
		return nil
	}
	if in.Channels == 1 {
		return in.Clone()
	}

	dst := in.NewLike(1)
	l.rows(in, func(start, end int) {
		for y := start; y < end; y++ {
			src, out := in.Row(y), dst.Row(y)
			for x := range out {
				p := src[x*3 : x*3+3 : x*3+3]
				out[x] = images.Luma(p[images.ChannelB], p[images.ChannelG], p[images.ChannelR])
			}
		}
	})
	return dst
}

// Negative inverts every channel (255 - v).
func (l *Library) Negative(in *images.Image) *images.Image {
	if in.Empty() {
		return nil
	}
	dst := in.NewLike(in.Channels)
	l.rows(in, func(start, end int) {
		for y := start; y < end; y++ {
			src, out := in.Row(y), dst.Row(y)
			for i, v := range src {
				out[i] = 255 - v
			}
		}
	})
	return dst
}

// Sepia applies the classic sepia tone matrix. Gray input is expanded to B,G,R first.
func (l *Library) Sepia(in *images.Image) *images.Image {
	if in.Empty() {
		return nil
	}
	src := in
	if in.Channels == 1 {
		src = images.ToColor(in)
	}

	dst := src.NewLike(3)
	l.rows(src, func(start, end int) {
		for y := start; y < end; y++ {
			row, out := src.Row(y), dst.Row(y)
			for x := 0; x < src.Width; x++ {
				o := x * 3
				b := float64(row[o+images.ChannelB])
				g := float64(row[o+images.ChannelG])
				r := float64(row[o+images.ChannelR])

				out[o+images.ChannelR] = images.SaturateInt(int(sepiaR[0]*r + sepiaR[1]*g + sepiaR[2]*b))
				out[o+images.ChannelG] = images.SaturateInt(int(sepiaG[0]*r + sepiaG[1]*g + sepiaG[2]*b))
				out[o+images.ChannelB] = images.SaturateInt(int(sepiaB[0]*r + sepiaB[1]*g + sepiaB[2]*b))
			}
		}
	})
	return dst
}

// Threshold binarizes the luminance: values strictly above t become 255, the rest 0.
//
// Arguments:
// - in: The source image, gray or color.
// - t: The threshold.
//
// Returns:
// - A new single-channel image holding only 0 and 255, or nil for an empty input.
func (l *Library) Threshold(in *images.Image, t int) *images.Image {
	if in.Empty() {
		return nil
	}
	gray := l.Grayscale(in)

	dst := gray.NewLike(1)
	l.rows(gray, func(start, end int) {
		for y := start; y < end; y++ {
			src, out := gray.Row(y), dst.Row(y)
			for i, v := range src {
				if int(v) > t {
					out[i] = 255
				}
			}
		}
	})
	return dst
}

// Emboss convolves with the emboss kernel, saturates, then lifts every value by 128.
// Negative responses are clipped by the first saturation, so flat regions map to 128+v.
func (l *Library) Emboss(in *images.Image) *images.Image {
	if in.Empty() {
		return nil
	}
	dst := l.convolve(in, kernels.Emboss())
	l.rows(dst, func(start, end int) {
		for y := start; y < end; y++ {
			row := dst.Row(y)
			for i, v := range row {
				row[i] = images.SaturateInt(int(v) + 128)
			}
		}
	})
	return dst
}
