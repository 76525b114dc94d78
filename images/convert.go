package images

import (
	"image"
	"image/color"
)

// FromImage converts a Go image into a buffer. *image.Gray sources become
// single-channel; every other color model becomes 3-channel B,G,R (alpha is dropped).
//
// Arguments:
// - src: The source image.
//
// Returns:
// - A new *Image, or nil when src has no pixels.
//
// @example
// buf := images.FromImage(decoded)
func FromImage(src image.Image) *Image {
	if src == nil {
		return nil
	}
	b := src.Bounds()
	if b.Empty() {
		return nil
	}

	switch s := src.(type) {
	case *image.Gray:
		dst := New(b.Dx(), b.Dy(), 1)
		for y := 0; y < dst.Height; y++ {
			off := (y+b.Min.Y-s.Rect.Min.Y)*s.Stride + (b.Min.X - s.Rect.Min.X)
			copy(dst.Row(y), s.Pix[off:off+dst.Width])
		}
		return dst
	case *image.NRGBA:
		dst := New(b.Dx(), b.Dy(), 3)
		for y := 0; y < dst.Height; y++ {
			off := (y+b.Min.Y-s.Rect.Min.Y)*s.Stride + (b.Min.X-s.Rect.Min.X)*4
			row := dst.Row(y)
			for x := 0; x < dst.Width; x++ {
				p := s.Pix[off+x*4 : off+x*4+3 : off+x*4+3]
				row[x*3+ChannelR] = p[0]
				row[x*3+ChannelG] = p[1]
				row[x*3+ChannelB] = p[2]
			}
		}
		return dst
	}

	dst := New(b.Dx(), b.Dy(), 3)
	for y := 0; y < dst.Height; y++ {
		row := dst.Row(y)
		for x := 0; x < dst.Width; x++ {
			c := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			row[x*3+ChannelR] = c.R
			row[x*3+ChannelG] = c.G
			row[x*3+ChannelB] = c.B
		}
	}
	return dst
}

// ToImage converts a buffer into a Go image: *image.Gray for single-channel
// buffers and opaque *image.NRGBA for 3-channel buffers.
//
// Arguments:
// - m: The source buffer.
//
// Returns:
// - The converted image, or nil when m is empty.
func ToImage(m *Image) image.Image {
	if m.Empty() {
		return nil
	}
	rect := image.Rect(0, 0, m.Width, m.Height)

	if m.Channels == 1 {
		dst := image.NewGray(rect)
		for y := 0; y < m.Height; y++ {
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+m.Width], m.Row(y))
		}
		return dst
	}

	dst := image.NewNRGBA(rect)
	for y := 0; y < m.Height; y++ {
		src := m.Row(y)
		out := dst.Pix[y*dst.Stride : y*dst.Stride+m.Width*4]
		for x := 0; x < m.Width; x++ {
			out[x*4+0] = src[x*3+ChannelR]
			out[x*4+1] = src[x*3+ChannelG]
			out[x*4+2] = src[x*3+ChannelB]
			out[x*4+3] = 0xff
		}
	}
	return dst
}
