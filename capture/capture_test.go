package capture

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nvr-ai/go-filters/images"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	reads  atomic.Int64
	closed atomic.Bool
	failAt int64
	width  int
	fps    int
}

func (s *fakeSource) Read() (*images.Image, error) {
	n := s.reads.Add(1)
	if s.failAt > 0 && n%s.failAt == 0 {
		return nil, errors.New("dropped frame")
	}
	img := images.New(4, 3, 3)
	img.Pix[0] = uint8(n)
	return img, nil
}

func (s *fakeSource) Close() error {
	s.closed.Store(true)
	return nil
}

type configurableSource struct {
	fakeSource
}

func (s *configurableSource) SetResolution(width, height int) error {
	s.width = width
	return nil
}

func (s *configurableSource) SetFPS(fps int) error {
	s.fps = fps
	return nil
}

func (s *configurableSource) Resolution() (int, int) { return s.width, s.width / 2 }

func (s *configurableSource) FPS() int { return s.fps }

func TestFrameBuffer(t *testing.T) {
	var buf FrameBuffer
	assert.False(t, buf.HasNewFrame())
	assert.Nil(t, buf.Frame())

	img := images.New(2, 2, 1)
	img.Pix[0] = 9
	buf.Store(img)
	assert.True(t, buf.HasNewFrame())

	got := buf.Frame()
	require.NotNil(t, got)
	assert.False(t, buf.HasNewFrame())
	assert.True(t, img.Equal(got))

	got.Pix[0] = 1
	assert.Equal(t, uint8(9), buf.Frame().Pix[0])
}

func TestCaptureLifecycle(t *testing.T) {
	src := &fakeSource{failAt: 3}
	c := New(func() (Source, error) { return src, nil })
	c.frameDelay = time.Millisecond
	c.errorDelay = time.Millisecond

	assert.False(t, c.IsRunning())
	require.NoError(t, c.Start())
	require.NoError(t, c.Start())
	assert.True(t, c.IsRunning())

	assert.Eventually(t, c.HasNewFrame, time.Second, time.Millisecond)
	frame := c.Frame()
	require.NotNil(t, frame)
	assert.Equal(t, 4, frame.Width)
	assert.Equal(t, 3, frame.Channels)

	c.Stop()
	c.Stop()
	assert.False(t, c.IsRunning())
	assert.True(t, src.closed.Load())

	reads := src.reads.Load()
	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, reads, src.reads.Load())
}

func TestCaptureOpenError(t *testing.T) {
	c := New(func() (Source, error) { return nil, errors.New("no device") })
	err := c.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no device")
	assert.False(t, c.IsRunning())
}

func TestCaptureSettings(t *testing.T) {
	c := New(func() (Source, error) { return &fakeSource{}, nil })
	assert.ErrorIs(t, c.SetFPS(30), ErrNotOpened)
	w, h := c.Resolution()
	assert.Zero(t, w+h)

	require.NoError(t, c.Start())
	assert.ErrorIs(t, c.SetResolution(640, 480), ErrUnsupported)
	assert.Zero(t, c.FPS())
	c.Stop()

	src := &configurableSource{}
	c = New(func() (Source, error) { return src, nil })
	require.NoError(t, c.Start())
	defer c.Stop()

	require.NoError(t, c.SetResolution(640, 480))
	require.NoError(t, c.SetFPS(30))
	w, h = c.Resolution()
	assert.Equal(t, 640, w)
	assert.Equal(t, 320, h)
	assert.Equal(t, 30, c.FPS())
}

func TestFPSMeter(t *testing.T) {
	start := time.Unix(0, 0)
	m := NewFPSMeter(time.Second, start)

	for i := 1; i < 10; i++ {
		assert.Zero(t, m.Tick(start.Add(time.Duration(i)*100*time.Millisecond)))
	}
	assert.InDelta(t, 10.0, m.Tick(start.Add(time.Second)), 1e-9)
	assert.InDelta(t, 10.0, m.FPS(), 1e-9)

	assert.InDelta(t, 10.0, m.Tick(start.Add(1100*time.Millisecond)), 1e-9)
	assert.InDelta(t, 2.0, m.Tick(start.Add(2*time.Second)), 1e-9)
}
