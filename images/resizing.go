package images

import (
	"github.com/nfnt/resize"
)

// Rescale resizes a buffer to the given dimensions with Lanczos3 resampling,
// preserving its channel count. Matching dimensions return a clone.
//
// Arguments:
//   - m: The buffer to resize.
//   - width: The target width.
//   - height: The target height.
//
// Returns:
//   - *Image: The resized buffer, or nil when m is empty or a dimension is not positive.
func Rescale(m *Image, width, height int) *Image {
	if m.Empty() || width <= 0 || height <= 0 {
		return nil
	}
	if m.Width == width && m.Height == height {
		return m.Clone()
	}

	// Resize using Lanczos3 on the Go image view.
	out := FromImage(resize.Resize(uint(width), uint(height), ToImage(m), resize.Lanczos3))
	if out != nil && m.Channels == 1 && out.Channels != 1 {
		out = ToGray(out)
	}
	return out
}

// RescaleTo resizes a buffer to a catalogued resolution.
func RescaleTo(m *Image, res Resolution) *Image {
	return Rescale(m, res.Pixels.Width, res.Pixels.Height)
}
