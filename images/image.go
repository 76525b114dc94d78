// Package images - Image buffer definition and the single indexing path used by every filter.
package images

import (
	"github.com/pkg/errors"
)

// Channel offsets within a 3-channel pixel. The canonical byte order is B,G,R,
// matching OpenCV's native Mat layout; conversion happens only at the boundary.
const (
	ChannelB = 0
	ChannelG = 1
	ChannelR = 2
)

// ErrEmptyImage is returned when an operation requires pixel data and the buffer has none.
var ErrEmptyImage = errors.New("empty image")

// Image represents an 8-bit image buffer with 1 (luminance) or 3 (B,G,R) channels.
type Image struct {
	// The width of the image in pixels.
	Width int `json:"width" yaml:"width"`
	// The height of the image in pixels.
	Height int `json:"height" yaml:"height"`
	// The number of interleaved channels per pixel (1 or 3).
	Channels int `json:"channels" yaml:"channels"`
	// The number of bytes between the start of consecutive rows.
	// Always >= Width*Channels; may be larger for aligned buffers.
	Stride int `json:"stride" yaml:"stride"`
	// The pixel data, row-major.
	Pix []uint8 `json:"-" yaml:"-"`
}

// New allocates a zeroed image with a tight stride.
//
// Arguments:
// - width: The width in pixels.
// - height: The height in pixels.
// - channels: The number of channels (1 or 3).
//
// Returns:
// - A new *Image, or nil when any dimension is not positive.
//
// @example
// gray := images.New(640, 480, 1)
func New(width, height, channels int) *Image {
	return NewWithStride(width, height, channels, width*channels)
}

// NewWithStride allocates a zeroed image whose rows are stride bytes apart.
// A stride smaller than width*channels is widened to fit a row.
func NewWithStride(width, height, channels, stride int) *Image {
	if width <= 0 || height <= 0 || channels <= 0 {
		return nil
	}
	if stride < width*channels {
		stride = width * channels
	}
	return &Image{
		Width:    width,
		Height:   height,
		Channels: channels,
		Stride:   stride,
		Pix:      make([]uint8, stride*(height-1)+width*channels),
	}
}

// Empty reports whether the image holds no pixels. A nil *Image is empty.
func (m *Image) Empty() bool {
	return m == nil || m.Width <= 0 || m.Height <= 0 || m.Channels <= 0 || len(m.Pix) == 0
}

// RowBytes returns the number of meaningful bytes in one row (Width*Channels).
func (m *Image) RowBytes() int {
	return m.Width * m.Channels
}

// Offset returns the index in Pix of the first channel of pixel (x, y).
func (m *Image) Offset(x, y int) int {
	return y*m.Stride + x*m.Channels
}

// Row returns the meaningful bytes of row y, excluding stride padding.
func (m *Image) Row(y int) []uint8 {
	off := y * m.Stride
	return m.Pix[off : off+m.Width*m.Channels : off+m.Width*m.Channels]
}

// At returns channel c of pixel (x, y). Coordinates must be in bounds.
func (m *Image) At(x, y, c int) uint8 {
	return m.Pix[y*m.Stride+x*m.Channels+c]
}

// Set stores v into channel c of pixel (x, y). Coordinates must be in bounds.
func (m *Image) Set(x, y, c int, v uint8) {
	m.Pix[y*m.Stride+x*m.Channels+c] = v
}

// AtReplicate returns channel c of pixel (x, y) with replicate-border handling:
// out-of-range coordinates read the nearest edge pixel.
func (m *Image) AtReplicate(x, y, c int) uint8 {
	x = ClampCoord(x, m.Width)
	y = ClampCoord(y, m.Height)
	return m.Pix[y*m.Stride+x*m.Channels+c]
}

// Clone returns a deep copy with a tight stride. Cloning an empty image returns nil.
func (m *Image) Clone() *Image {
	if m.Empty() {
		return nil
	}
	dst := New(m.Width, m.Height, m.Channels)
	for y := 0; y < m.Height; y++ {
		copy(dst.Row(y), m.Row(y))
	}
	return dst
}

// NewLike allocates a zeroed image with the same shape as m and the given channel count.
func (m *Image) NewLike(channels int) *Image {
	return New(m.Width, m.Height, channels)
}

// SameShape reports whether both images have identical width, height and channel count.
func (m *Image) SameShape(o *Image) bool {
	if m == nil || o == nil {
		return m == o
	}
	return m.Width == o.Width && m.Height == o.Height && m.Channels == o.Channels
}

// Equal reports whether both images hold identical pixels. Stride padding is ignored.
func (m *Image) Equal(o *Image) bool {
	if m.Empty() || o.Empty() {
		return m.Empty() && o.Empty()
	}
	if !m.SameShape(o) {
		return false
	}
	for y := 0; y < m.Height; y++ {
		a, b := m.Row(y), o.Row(y)
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
	}
	return true
}

// Validate returns ErrEmptyImage for empty buffers and an error for inconsistent geometry.
func (m *Image) Validate() error {
	if m.Empty() {
		return ErrEmptyImage
	}
	if m.Channels != 1 && m.Channels != 3 {
		return errors.Errorf("unsupported channel count %d", m.Channels)
	}
	if m.Stride < m.RowBytes() {
		return errors.Errorf("stride %d smaller than row size %d", m.Stride, m.RowBytes())
	}
	if need := m.Stride*(m.Height-1) + m.RowBytes(); len(m.Pix) < need {
		return errors.Errorf("pixel buffer holds %d bytes, needs %d", len(m.Pix), need)
	}
	return nil
}
