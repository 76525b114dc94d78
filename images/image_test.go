package images

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsNonPositiveDimensions(t *testing.T) {
	assert.Nil(t, New(0, 10, 3))
	assert.Nil(t, New(10, -1, 1))
	assert.Nil(t, New(10, 10, 0))
	assert.True(t, New(0, 0, 0).Empty())
}

func TestStridedRowsExcludePadding(t *testing.T) {
	img := NewWithStride(3, 2, 1, 8)
	require.NotNil(t, img)
	assert.Equal(t, 8, img.Stride)
	assert.Len(t, img.Pix, 8+3)

	img.Set(2, 1, 0, 42)
	assert.Equal(t, []uint8{0, 0, 42}, img.Row(1))
	assert.Equal(t, 10, img.Offset(2, 1))

	clone := img.Clone()
	assert.Equal(t, 3, clone.Stride)
	assert.True(t, clone.Equal(img))
}

func TestCloneIsDeep(t *testing.T) {
	img := Random(4, 4, 3, 1)
	clone := img.Clone()
	clone.Set(0, 0, ChannelR, img.At(0, 0, ChannelR)+1)
	assert.False(t, clone.Equal(img))
	assert.Nil(t, (*Image)(nil).Clone())
}

func TestAtReplicate(t *testing.T) {
	img := New(2, 2, 1)
	img.Pix = []uint8{1, 2, 3, 4}

	assert.Equal(t, uint8(1), img.AtReplicate(-5, -5, 0))
	assert.Equal(t, uint8(2), img.AtReplicate(9, -1, 0))
	assert.Equal(t, uint8(3), img.AtReplicate(-1, 7, 0))
	assert.Equal(t, uint8(4), img.AtReplicate(2, 2, 0))
}

func TestClampCoord(t *testing.T) {
	tests := []struct {
		coord, n, want int
	}{
		{-3, 5, 0},
		{-1, 5, 0},
		{0, 5, 0},
		{4, 5, 4},
		{5, 5, 4},
		{12, 5, 4},
		{-2, 1, 0},
		{7, 1, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampCoord(tt.coord, tt.n), "ClampCoord(%d, %d)", tt.coord, tt.n)
	}
}

func TestPadReplicate(t *testing.T) {
	img := New(2, 2, 1)
	img.Pix = []uint8{1, 2, 3, 4}

	padded := PadReplicate(img, 1, 2)
	require.NotNil(t, padded)
	assert.Equal(t, 6, padded.Width)
	assert.Equal(t, 4, padded.Height)
	assert.Equal(t, []uint8{
		1, 1, 1, 2, 2, 2,
		1, 1, 1, 2, 2, 2,
		3, 3, 3, 4, 4, 4,
		3, 3, 3, 4, 4, 4,
	}, padded.Pix)

	for y := -1; y < 3; y++ {
		for x := -2; x < 4; x++ {
			assert.Equal(t, img.AtReplicate(x, y, 0), padded.At(x+2, y+1, 0))
		}
	}
}

func TestPadReplicateColor(t *testing.T) {
	img := Random(3, 2, 3, 7)
	padded := PadReplicate(img, 2, 2)
	for y := -2; y < 4; y++ {
		for x := -2; x < 5; x++ {
			for c := 0; c < 3; c++ {
				assert.Equal(t, img.AtReplicate(x, y, c), padded.At(x+2, y+2, c))
			}
		}
	}
}

func TestSaturate(t *testing.T) {
	tests := []struct {
		in   float64
		want uint8
	}{
		{-10, 0},
		{0.4, 0},
		{0.5, 0},
		{1.5, 2},
		{2.5, 2},
		{127.49, 127},
		{254.5, 254},
		{254.51, 255},
		{300.5, 255},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Saturate(tt.in), "Saturate(%v)", tt.in)
	}
}

func TestToGrayAndToColor(t *testing.T) {
	img := New(1, 1, 3)
	img.Set(0, 0, ChannelB, 30)
	img.Set(0, 0, ChannelG, 20)
	img.Set(0, 0, ChannelR, 10)

	gray := ToGray(img)
	require.Equal(t, 1, gray.Channels)
	// 0.299*10 + 0.587*20 + 0.114*30 = 18.15, truncated.
	assert.Equal(t, uint8(18), gray.At(0, 0, 0))
	assert.True(t, IsGrayscale(gray))

	colored := ToColor(gray)
	require.Equal(t, 3, colored.Channels)
	assert.Equal(t, []uint8{18, 18, 18}, colored.Row(0))

	assert.True(t, ToGray(gray).Equal(gray))
	assert.Nil(t, ToGray(nil))
	assert.Nil(t, ToColor(&Image{}))
}

func TestImageBridgeRoundTrip(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
	src.SetNRGBA(1, 0, color.NRGBA{R: 1, G: 2, B: 3, A: 255})

	buf := FromImage(src)
	require.NotNil(t, buf)
	assert.Equal(t, 3, buf.Channels)
	assert.Equal(t, []uint8{50, 100, 200, 3, 2, 1}, buf.Row(0))

	back := FromImage(ToImage(buf))
	assert.True(t, back.Equal(buf))

	gray := image.NewGray(image.Rect(0, 0, 2, 2))
	gray.Pix = []uint8{9, 8, 7, 6}
	g := FromImage(gray)
	require.Equal(t, 1, g.Channels)
	assert.Equal(t, []uint8{9, 8, 7, 6}, g.Pix)
	assert.IsType(t, &image.Gray{}, ToImage(g))
}

func TestChecksumIgnoresStride(t *testing.T) {
	tight := Random(5, 3, 3, 3)
	strided := NewWithStride(5, 3, 3, 32)
	for y := 0; y < 3; y++ {
		copy(strided.Row(y), tight.Row(y))
	}
	assert.Equal(t, Checksum(tight), Checksum(strided))
	assert.Equal(t, "empty", Checksum(nil))
}

func TestValidate(t *testing.T) {
	assert.ErrorIs(t, (*Image)(nil).Validate(), ErrEmptyImage)
	assert.NoError(t, New(2, 2, 3).Validate())
	assert.Error(t, New(2, 2, 2).Validate())

	bad := New(2, 2, 1)
	bad.Pix = bad.Pix[:2]
	assert.Error(t, bad.Validate())
}
