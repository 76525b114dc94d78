// Package images - provides the deterministic pixel helpers shared by every filter strategy:
// border clamping, replicate padding, saturation and gray/color conversion.
package images

import (
	"math"
)

// Luminance weights (ITU-R BT.601) applied to R, G and B.
const (
	LumaR = 0.299
	LumaG = 0.587
	LumaB = 0.114
)

// ClampCoord maps a coordinate onto [0, n) by clamping to the nearest edge,
// which gives the replicate border.
//
// Arguments:
// - coord: The coordinate to map.
// - n: The number of valid positions.
//
// Returns:
// - The clamped coordinate.
//
// @example
// x := ClampCoord(-2, 640) // 0
func ClampCoord(coord, n int) int {
	if coord < 0 {
		return 0
	}
	if coord >= n {
		return n - 1
	}
	return coord
}

// Saturate converts a computed value into the valid pixel range.
// Rounds half to even (matching OpenCV's cvRound), clamps to [0, 255] and maps NaN to 0.
//
// Arguments:
// - value: The value to saturate.
//
// Returns:
// - The saturated 8-bit value.
//
// @example
// Saturate(300.5) // 255
// Saturate(-10.0) // 0
// Saturate(2.5)   // 2
func Saturate(value float64) uint8 {
	if math.IsNaN(value) {
		return 0
	}
	value = math.RoundToEven(value)
	if value <= 0 {
		return 0
	}
	if value >= 255 {
		return 255
	}
	return uint8(value)
}

// SaturateInt clamps an integer into [0, 255].
func SaturateInt(value int) uint8 {
	if value < 0 {
		return 0
	}
	if value > 255 {
		return 255
	}
	return uint8(value)
}

// Luma returns the truncated BT.601 luminance of a B,G,R triple.
func Luma(b, g, r uint8) uint8 {
	return uint8(LumaR*float64(r) + LumaG*float64(g) + LumaB*float64(b))
}

// PadReplicate returns a copy of src extended by ry rows above and below and rx
// columns left and right, where every new pixel repeats the nearest edge pixel.
//
// Arguments:
// - src: The source image.
// - ry: The number of rows added to the top and to the bottom.
// - rx: The number of columns added to the left and to the right.
//
// Returns:
// - The padded image, or nil when src is empty.
//
// @example
// padded := PadReplicate(img, k.Center(), k.Center())
func PadReplicate(src *Image, ry, rx int) *Image {
	if src.Empty() {
		return nil
	}
	if ry < 0 {
		ry = 0
	}
	if rx < 0 {
		rx = 0
	}

	ch := src.Channels
	dst := New(src.Width+2*rx, src.Height+2*ry, ch)

	for y := 0; y < dst.Height; y++ {
		srcRow := src.Row(ClampCoord(y-ry, src.Height))
		dstRow := dst.Row(y)

		// Body of the row is a straight copy.
		copy(dstRow[rx*ch:], srcRow)

		// Left and right borders repeat the first and last pixel.
		for x := 0; x < rx; x++ {
			copy(dstRow[x*ch:(x+1)*ch], srcRow[:ch])
			right := (rx + src.Width + x) * ch
			copy(dstRow[right:right+ch], srcRow[len(srcRow)-ch:])
		}
	}

	return dst
}

// IsValid reports whether img holds pixel data.
func IsValid(img *Image) bool {
	return !img.Empty()
}

// IsGrayscale reports whether img has a single channel.
func IsGrayscale(img *Image) bool {
	return !img.Empty() && img.Channels == 1
}

// ToGray converts a 3-channel image to luminance; a single-channel image is cloned.
//
// Arguments:
// - img: The source image.
//
// Returns:
// - A new single-channel image, or nil when img is empty.
func ToGray(img *Image) *Image {
	if img.Empty() {
		return nil
	}
	if img.Channels == 1 {
		return img.Clone()
	}
	dst := img.NewLike(1)
	for y := 0; y < img.Height; y++ {
		src, out := img.Row(y), dst.Row(y)
		for x := range out {
			p := src[x*3 : x*3+3 : x*3+3]
			out[x] = Luma(p[ChannelB], p[ChannelG], p[ChannelR])
		}
	}
	return dst
}

// ToColor replicates a single-channel image into B, G and R; a 3-channel image is cloned.
//
// Arguments:
// - img: The source image.
//
// Returns:
// - A new 3-channel image, or nil when img is empty.
func ToColor(img *Image) *Image {
	if img.Empty() {
		return nil
	}
	if img.Channels == 3 {
		return img.Clone()
	}
	dst := img.NewLike(3)
	for y := 0; y < img.Height; y++ {
		src, out := img.Row(y), dst.Row(y)
		for x, v := range src {
			out[x*3+ChannelB] = v
			out[x*3+ChannelG] = v
			out[x*3+ChannelR] = v
		}
	}
	return dst
}
