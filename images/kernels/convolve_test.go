package kernels

import (
	"testing"

	"github.com/nvr-ai/go-filters/images"
	"github.com/nvr-ai/go-filters/parallel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniform(width, height, channels int, v uint8) *images.Image {
	img := images.New(width, height, channels)
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

func TestConvolveIdentity(t *testing.T) {
	src := images.Random(13, 7, 3, 1)

	identity, err := New(3, []float64{0, 0, 0, 0, 1, 0, 0, 0, 0})
	require.NoError(t, err)
	assert.True(t, Convolve(src, identity, Options{}).Equal(src))

	one, err := New(1, []float64{1})
	require.NoError(t, err)
	assert.True(t, Convolve(src, one, Options{}).Equal(src))
}

func TestConvolveUnitGainKernelsKeepUniformImages(t *testing.T) {
	src := uniform(6, 5, 3, 77)
	assert.True(t, Convolve(src, Sharpen(), Options{}).Equal(src))
	assert.True(t, Convolve(src, Emboss(), Options{}).Equal(src))

	box, _ := Box(5)
	assert.True(t, Convolve(src, box, Options{}).Equal(src))

	zero := Convolve(src, SobelX(), Options{})
	assert.True(t, zero.Equal(uniform(6, 5, 3, 0)))
}

func TestConvolveReplicatesBorder(t *testing.T) {
	src := uniform(3, 3, 1, 10)
	src.Set(1, 1, 0, 100)

	box, err := Box(3)
	require.NoError(t, err)
	out := Convolve(src, box, Options{})

	// Each 3x3 window contains the bright center once after replication: (8*10+100)/9 = 20.
	for _, v := range out.Pix {
		assert.Equal(t, uint8(20), v)
	}

	// A bright corner is counted four times by the replicated window at that corner.
	corner := uniform(4, 4, 1, 0)
	corner.Set(0, 0, 0, 90)
	out = Convolve(corner, box, Options{})
	assert.Equal(t, uint8(40), out.At(0, 0, 0))
	assert.Equal(t, uint8(20), out.At(1, 0, 0))
	assert.Equal(t, uint8(10), out.At(1, 1, 0))
	assert.Equal(t, uint8(0), out.At(3, 3, 0))
}

func TestConvolveSaturates(t *testing.T) {
	src := uniform(4, 4, 1, 200)
	double, err := New(1, []float64{2})
	require.NoError(t, err)
	assert.True(t, Convolve(src, double, Options{}).Equal(uniform(4, 4, 1, 255)))

	negate, err := New(1, []float64{-1})
	require.NoError(t, err)
	assert.True(t, Convolve(src, negate, Options{}).Equal(uniform(4, 4, 1, 0)))
}

func TestConvolveChannelsAreIndependent(t *testing.T) {
	color := images.Random(9, 8, 3, 4)
	k, err := Gaussian(5, 0)
	require.NoError(t, err)
	out := Convolve(color, k, Options{})

	for c := 0; c < 3; c++ {
		plane := images.New(9, 8, 1)
		for y := 0; y < 8; y++ {
			for x := 0; x < 9; x++ {
				plane.Set(x, y, 0, color.At(x, y, c))
			}
		}
		planeOut := Convolve(plane, k, Options{})
		for y := 0; y < 8; y++ {
			for x := 0; x < 9; x++ {
				require.Equal(t, planeOut.At(x, y, 0), out.At(x, y, c))
			}
		}
	}
}

func TestConvolveSchedulesAreBitIdentical(t *testing.T) {
	schedulers := map[string]parallel.Scheduler{
		"partitioned-1":  parallel.Partitioned{Workers: 1},
		"partitioned-7":  parallel.Partitioned{Workers: 7},
		"partitioned-hw": parallel.Partitioned{},
		"data-parallel":  parallel.NewDataParallel(),
	}

	strided := images.NewWithStride(31, 23, 3, 31*3+5)
	copy(strided.Pix, images.Random(31, 23, 3, 9).Pix)

	inputs := []*images.Image{
		images.Random(31, 23, 3, 9),
		images.Random(17, 40, 1, 3),
		images.Random(1, 1, 3, 2),
		strided,
	}
	gauss, _ := Gaussian(7, 0)
	kernelSet := []*Kernel{gauss, Sharpen(), Emboss(), SobelY()}

	for _, src := range inputs {
		for _, k := range kernelSet {
			want := Convolve(src, k, Options{Scheduler: parallel.Sequential})
			for name, s := range schedulers {
				got := Convolve(src, k, Options{Scheduler: s})
				require.True(t, want.Equal(got), "scheduler %s differs", name)
			}
		}
	}
}

func TestConvolveEmptyInput(t *testing.T) {
	assert.Nil(t, Convolve(nil, Sharpen(), Options{}))
	assert.Nil(t, Convolve(&images.Image{}, Sharpen(), Options{}))
	assert.Nil(t, Convolve(images.New(2, 2, 1), nil, Options{}))
}

func BenchmarkConvolveGaussian5(b *testing.B) {
	src := images.Random(1280, 720, 3, 1)
	k, _ := Gaussian(5, 0)
	b.Run("sequential", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			Convolve(src, k, Options{})
		}
	})
	b.Run("partitioned", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			Convolve(src, k, Options{Scheduler: parallel.Partitioned{}})
		}
	})
}
