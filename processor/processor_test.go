package processor

import (
	"bytes"
	"encoding/json"
	"sync"
	"testing"

	"github.com/nvr-ai/go-filters/filters"
	"github.com/nvr-ai/go-filters/images"
	"github.com/nvr-ai/go-filters/logger"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func quietLogs(t *testing.T) {
	t.Helper()
	logger.SetOutput(&bytes.Buffer{})
}

func TestNames(t *testing.T) {
	assert.Len(t, AllFilters(), 12)
	assert.Len(t, AllStrategies(), 4)
	assert.Equal(t, "GaussianBlur", GaussianBlur.String())
	assert.Equal(t, "Bilateral", Bilateral.String())
	assert.Equal(t, "Multithread", Multithread.String())
	assert.Equal(t, "Unknown", FilterID(42).String())
	assert.Equal(t, "Unknown", StrategyID(-1).String())

	for _, f := range AllFilters() {
		got, err := ParseFilter(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}
	for _, s := range AllStrategies() {
		got, err := ParseStrategy(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	got, err := ParseStrategy("cuda")
	require.NoError(t, err)
	assert.Equal(t, GPU, got)

	got2, err := ParseFilter(" sobel ")
	require.NoError(t, err)
	assert.Equal(t, Sobel, got2)

	_, err = ParseFilter("Posterize")
	assert.Error(t, err)
	_, err = ParseStrategy("OpenCL")
	assert.Error(t, err)
}

func TestIDsDecodeFromConfig(t *testing.T) {
	var cfg struct {
		Filters    []FilterID   `yaml:"filters"`
		Strategies []StrategyID `yaml:"strategies"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("filters: [Canny, median]\nstrategies: [GPU, Sequential]\n"), &cfg))
	assert.Equal(t, []FilterID{Canny, Median}, cfg.Filters)
	assert.Equal(t, []StrategyID{GPU, Sequential}, cfg.Strategies)

	assert.Error(t, yaml.Unmarshal([]byte("filters: [Posterize]\n"), &cfg))

	out, err := json.Marshal(Result{Filter: Sepia, Strategy: Parallel, Success: true})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"filter":"Sepia"`)
	assert.Contains(t, string(out), `"strategy":"Parallel"`)
}

func TestDispatchTableIsComplete(t *testing.T) {
	p := New()
	for _, f := range AllFilters() {
		for _, s := range AllStrategies() {
			assert.NotNil(t, p.table[f][s], "%s/%s", f, s)
		}
	}
	for _, s := range AllStrategies() {
		assert.NotNil(t, p.Library(s))
	}
	assert.Nil(t, p.Library(StrategyID(9)))
}

func TestApplyFilterEmptyInput(t *testing.T) {
	quietLogs(t)
	p := New()
	for _, in := range []*images.Image{nil, {}} {
		for _, f := range AllFilters() {
			for _, s := range AllStrategies() {
				res := p.ApplyFilter(in, f, s)
				assert.False(t, res.Success)
				assert.Nil(t, res.Image)
				assert.Equal(t, "no image loaded", res.Error)
				assert.Zero(t, res.ElapsedMs)
				assert.Equal(t, f, res.Filter)
				assert.Equal(t, s, res.Strategy)
			}
		}
	}

	res := p.ProcessFrame(nil, Negative, Parallel)
	assert.False(t, res.Success)
	assert.Equal(t, "empty frame", res.Error)
	assert.Zero(t, res.ElapsedMs)
}

func TestApplyFilterMalformedInput(t *testing.T) {
	quietLogs(t)
	p := New()

	tests := []struct {
		name string
		img  *images.Image
		want string
	}{
		{
			name: "four channels",
			img:  &images.Image{Width: 4, Height: 2, Channels: 4, Stride: 16, Pix: make([]uint8, 32)},
			want: "unsupported channel count 4",
		},
		{
			name: "stride narrower than row",
			img:  &images.Image{Width: 4, Height: 2, Channels: 1, Stride: 2, Pix: make([]uint8, 8)},
			want: "stride 2 smaller than row size 4",
		},
		{
			name: "short pixel buffer",
			img:  &images.Image{Width: 4, Height: 2, Channels: 1, Stride: 4, Pix: make([]uint8, 6)},
			want: "pixel buffer holds 6 bytes, needs 8",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, f := range AllFilters() {
				for _, s := range AllStrategies() {
					res := p.ApplyFilter(tt.img, f, s)
					assert.False(t, res.Success, "%s/%s", f, s)
					assert.Nil(t, res.Image)
					assert.Equal(t, tt.want, res.Error)
					assert.Zero(t, res.ElapsedMs)
				}
			}

			res := p.ProcessFrame(tt.img, Negative, Multithread)
			assert.False(t, res.Success)
			assert.Equal(t, tt.want, res.Error)

			err := p.LoadImage(tt.img)
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
		})
	}
}

func TestApplyFilterAllCombinations(t *testing.T) {
	quietLogs(t)
	p := New(WithWorkers(3))
	img := images.Random(48, 32, 3, 1)

	for _, f := range AllFilters() {
		var want string
		for _, s := range AllStrategies() {
			res := p.ApplyFilter(img, f, s)
			require.True(t, res.Success, "%s/%s: %s", f, s, res.Error)
			require.NotNil(t, res.Image)
			assert.Empty(t, res.Error)
			assert.GreaterOrEqual(t, res.ElapsedMs, 0.0)
			assert.Equal(t, img.Width, res.Image.Width)
			assert.Equal(t, img.Height, res.Image.Height)

			sum := images.Checksum(res.Image)
			if s == Sequential {
				want = sum
			}
			assert.Equal(t, want, sum, "%s/%s differs from Sequential", f, s)
		}
	}
}

func TestOutputChannels(t *testing.T) {
	p := New()
	img := images.Random(16, 16, 3, 2)
	single := map[FilterID]bool{Grayscale: true, Sobel: true, Canny: true, Threshold: true}
	for _, f := range AllFilters() {
		res := p.ApplyFilter(img, f, Sequential)
		require.True(t, res.Success)
		if single[f] {
			assert.Equal(t, 1, res.Image.Channels, f.String())
		} else {
			assert.Equal(t, 3, res.Image.Channels, f.String())
		}
	}
}

func TestInvalidParamsBecomeFailedResults(t *testing.T) {
	quietLogs(t)
	params := filters.DefaultParams()
	params.MedianSize = 4
	p := New(WithParams(params))

	res := p.ApplyFilter(images.Random(8, 8, 1, 1), Median, Multithread)
	assert.False(t, res.Success)
	assert.Nil(t, res.Image)
	assert.Contains(t, res.Error, "kernel size must be odd")
	assert.Equal(t, params, p.Params())
}

func TestPanicsBecomeFailedResults(t *testing.T) {
	quietLogs(t)
	p := New()
	p.table[Sepia][Parallel] = func(*images.Image) (*images.Image, error) {
		panic("out of range")
	}
	p.table[Sharpen][GPU] = func(*images.Image) (*images.Image, error) {
		return nil, errors.New("device lost")
	}

	img := images.Random(4, 4, 3, 1)
	res := p.ApplyFilter(img, Sepia, Parallel)
	assert.False(t, res.Success)
	assert.Nil(t, res.Image)
	assert.Contains(t, res.Error, "out of range")

	res = p.ApplyFilter(img, Sharpen, GPU)
	assert.False(t, res.Success)
	assert.Equal(t, "device lost", res.Error)

	res = p.ApplyFilter(img, FilterID(99), GPU)
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Error)
}

func TestStatefulApply(t *testing.T) {
	quietLogs(t)
	p := New()

	res := p.Apply(Negative, Sequential)
	assert.False(t, res.Success)
	assert.Equal(t, "no image loaded", res.Error)
	assert.ErrorIs(t, p.LoadImage(nil), ErrNoImage)

	img := images.Random(10, 10, 3, 4)
	require.NoError(t, p.LoadImage(img))
	img.Pix[0] ^= 0xff
	assert.False(t, p.Original().Equal(img), "LoadImage must copy its input")

	res = p.Apply(Negative, Multithread)
	require.True(t, res.Success)
	assert.Same(t, res.Image, p.Processed())
	assert.True(t, p.Processed().Equal(New().Library(Sequential).Negative(p.Original())))

	require.NoError(t, p.LoadImage(img))
	assert.Nil(t, p.Processed())
}

func TestConcurrentApplyFilter(t *testing.T) {
	p := New()
	img := images.Random(64, 48, 3, 5)
	want := images.Checksum(p.ApplyFilter(img, GaussianBlur, Sequential).Image)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(s StrategyID) {
			defer wg.Done()
			res := p.ApplyFilter(img, GaussianBlur, s)
			assert.True(t, res.Success)
			assert.Equal(t, want, images.Checksum(res.Image))
		}(AllStrategies()[i%4])
	}
	wg.Wait()
}
