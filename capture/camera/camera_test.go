package camera

import (
	"testing"

	"github.com/nvr-ai/go-filters/images"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestMatConversion(t *testing.T) {
	for _, channels := range []int{1, 3} {
		src := images.Random(7, 5, channels, int64(channels))

		mat, err := ToMat(src)
		require.NoError(t, err)
		assert.Equal(t, 5, mat.Rows())
		assert.Equal(t, 7, mat.Cols())
		assert.Equal(t, channels, mat.Channels())

		back, err := FromMat(mat)
		require.NoError(t, err)
		assert.True(t, src.Equal(back))
		require.NoError(t, mat.Close())
	}
}

func TestMatConversionStridedAndBGR(t *testing.T) {
	src := images.NewWithStride(3, 2, 3, 16)
	src.Set(0, 0, images.ChannelB, 200)
	src.Set(2, 1, images.ChannelR, 50)

	mat, err := ToMat(src)
	require.NoError(t, err)
	defer mat.Close()

	vec := mat.GetVecbAt(0, 0)
	assert.Equal(t, uint8(200), vec[0])
	vec = mat.GetVecbAt(1, 2)
	assert.Equal(t, uint8(50), vec[2])

	back, err := FromMat(mat)
	require.NoError(t, err)
	assert.True(t, src.Equal(back))
}

func TestConversionErrors(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()
	_, err := FromMat(empty)
	assert.ErrorIs(t, err, images.ErrEmptyImage)

	float := gocv.NewMatWithSize(2, 2, gocv.MatTypeCV32F)
	defer float.Close()
	_, err = FromMat(float)
	assert.Error(t, err)

	mat, err := ToMat(nil)
	defer mat.Close()
	assert.ErrorIs(t, err, images.ErrEmptyImage)
}
