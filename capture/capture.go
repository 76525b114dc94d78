// Package capture runs a background frame grabber over a video source and keeps
// the latest frame for a consumer loop.
//
// The package is device-agnostic; see capture/camera for the OpenCV webcam source.
//
// Usage:
//
//	c := capture.New(camera.Opener(0))
//	if err := c.Start(); err != nil {
//	    return err
//	}
//	defer c.Stop()
//
//	for c.IsRunning() {
//	    if c.HasNewFrame() {
//	        frame := c.Frame()
//	        ...
//	    }
//	}
package capture

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/nvr-ai/go-filters/images"
	"github.com/nvr-ai/go-filters/logger"
	"github.com/pkg/errors"
)

// ErrNotOpened is returned by device settings calls before Start.
var ErrNotOpened = errors.New("capture device not opened")

// ErrUnsupported is returned when the source cannot change a setting.
var ErrUnsupported = errors.New("setting not supported by source")

// Source produces frames. Read blocks until a frame is available.
type Source interface {
	Read() (*images.Image, error)
	Close() error
}

// Settings is implemented by sources whose resolution and rate can be changed.
type Settings interface {
	SetResolution(width, height int) error
	SetFPS(fps int) error
	Resolution() (width, height int)
	FPS() int
}

// Opener opens a source; it is called by every Start.
type Opener func() (Source, error)

// Delays applied by the grab loop.
const (
	DefaultErrorDelay = 10 * time.Millisecond
	DefaultFrameDelay = 5 * time.Millisecond
)

// Capture grabs frames from a Source on a background goroutine.
type Capture struct {
	open       Opener
	errorDelay time.Duration
	frameDelay time.Duration

	// Guards src, stop and the Start/Stop lifecycle.
	mu      sync.Mutex
	src     Source
	stop    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool

	buf FrameBuffer
}

// New creates a stopped capture over the sources produced by open.
func New(open Opener) *Capture {
	return &Capture{
		open:       open,
		errorDelay: DefaultErrorDelay,
		frameDelay: DefaultFrameDelay,
	}
}

// Start opens the source and starts the grab loop. Starting a running capture is a no-op.
//
// Returns:
// - error: An error if the source cannot be opened.
func (c *Capture) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running.Load() {
		return nil
	}
	src, err := c.open()
	if err != nil {
		return errors.Wrap(err, "failed to open capture source")
	}

	c.src = src
	c.stop = make(chan struct{})
	c.buf.reset()
	c.running.Store(true)

	c.wg.Add(1)
	go c.loop(src, c.stop)
	return nil
}

// Stop ends the grab loop, waits for it, and closes the source.
func (c *Capture) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running.Load() {
		return
	}
	c.running.Store(false)
	close(c.stop)
	c.wg.Wait()

	if err := c.src.Close(); err != nil {
		logger.WithError(err).Warn("failed to close capture source")
	}
	c.src = nil
}

// IsRunning reports whether the grab loop is active.
func (c *Capture) IsRunning() bool {
	return c.running.Load()
}

// Frame returns a copy of the latest frame, or nil, and clears the new-frame flag.
func (c *Capture) Frame() *images.Image {
	return c.buf.Frame()
}

// HasNewFrame reports whether a frame arrived since the last Frame call.
func (c *Capture) HasNewFrame() bool {
	return c.buf.HasNewFrame()
}

// SetResolution asks the open source for a new frame size.
func (c *Capture) SetResolution(width, height int) error {
	s, err := c.settings()
	if err != nil {
		return err
	}
	return s.SetResolution(width, height)
}

// SetFPS asks the open source for a new frame rate.
func (c *Capture) SetFPS(fps int) error {
	s, err := c.settings()
	if err != nil {
		return err
	}
	return s.SetFPS(fps)
}

// Resolution returns the source frame size, or 0x0 when unknown.
func (c *Capture) Resolution() (int, int) {
	s, err := c.settings()
	if err != nil {
		return 0, 0
	}
	return s.Resolution()
}

// FPS returns the source frame rate, or 0 when unknown.
func (c *Capture) FPS() int {
	s, err := c.settings()
	if err != nil {
		return 0
	}
	return s.FPS()
}

func (c *Capture) settings() (Settings, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.src == nil {
		return nil, ErrNotOpened
	}
	s, ok := c.src.(Settings)
	if !ok {
		return nil, ErrUnsupported
	}
	return s, nil
}

func (c *Capture) loop(src Source, stop <-chan struct{}) {
	defer c.wg.Done()

	for {
		select {
		case <-stop:
			return
		default:
		}

		frame, err := src.Read()
		delay := c.frameDelay
		if err != nil || frame.Empty() {
			delay = c.errorDelay
		} else {
			c.buf.Store(frame)
		}

		select {
		case <-stop:
			return
		case <-time.After(delay):
		}
	}
}

// FrameBuffer holds the latest frame behind a mutex with a new-frame flag.
// The zero value is ready to use.
type FrameBuffer struct {
	mu    sync.Mutex
	frame *images.Image
	fresh atomic.Bool
}

// Store replaces the latest frame and raises the new-frame flag.
func (b *FrameBuffer) Store(frame *images.Image) {
	b.mu.Lock()
	b.frame = frame
	b.fresh.Store(true)
	b.mu.Unlock()
}

// Frame returns a copy of the latest frame and clears the new-frame flag.
func (b *FrameBuffer) Frame() *images.Image {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fresh.Store(false)
	if b.frame == nil {
		return nil
	}
	return b.frame.Clone()
}

// HasNewFrame reports whether Store was called since the last Frame.
func (b *FrameBuffer) HasNewFrame() bool {
	return b.fresh.Load()
}

func (b *FrameBuffer) reset() {
	b.mu.Lock()
	b.frame = nil
	b.fresh.Store(false)
	b.mu.Unlock()
}
