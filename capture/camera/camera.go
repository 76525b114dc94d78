// Package camera is the OpenCV (gocv) webcam source for the capture package,
// plus conversions between gocv.Mat and images.Image.
//
// Note: You must call Close() when finished to release native resources.
package camera

import (
	"github.com/nvr-ai/go-filters/capture"
	"github.com/nvr-ai/go-filters/images"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// ErrReadFailed is returned when the device yields no frame.
var ErrReadFailed = errors.New("cannot read from capture device")

// Camera reads B,G,R frames from a video capture device.
type Camera struct {
	id      int
	capture *gocv.VideoCapture
	mat     gocv.Mat
}

// Open opens the video capture device with the given index.
//
// Arguments:
// - id: The device index, e.g. 0 for the default webcam.
//
// Returns:
// - *Camera: The opened camera.
// - error: An error if the device cannot be opened.
func Open(id int) (*Camera, error) {
	vc, err := gocv.OpenVideoCapture(id)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open video capture device %d", id)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, errors.Errorf("video capture device %d is not available", id)
	}
	return &Camera{id: id, capture: vc, mat: gocv.NewMat()}, nil
}

// Opener returns a capture.Opener for device id.
func Opener(id int) capture.Opener {
	return func() (capture.Source, error) {
		return Open(id)
	}
}

// ID returns the device index.
func (c *Camera) ID() int {
	return c.id
}

// Read grabs the next frame.
func (c *Camera) Read() (*images.Image, error) {
	if ok := c.capture.Read(&c.mat); !ok {
		return nil, ErrReadFailed
	}
	if c.mat.Empty() {
		return nil, images.ErrEmptyImage
	}
	return FromMat(c.mat)
}

// Close releases the device and the frame matrix.
func (c *Camera) Close() error {
	if err := c.mat.Close(); err != nil {
		return err
	}
	return c.capture.Close()
}

// SetResolution requests a frame size from the device.
func (c *Camera) SetResolution(width, height int) error {
	c.capture.Set(gocv.VideoCaptureFrameWidth, float64(width))
	c.capture.Set(gocv.VideoCaptureFrameHeight, float64(height))
	if w, h := c.Resolution(); w != width || h != height {
		return errors.Errorf("device %d kept %dx%d instead of %dx%d", c.id, w, h, width, height)
	}
	return nil
}

// SetFPS requests a frame rate from the device.
func (c *Camera) SetFPS(fps int) error {
	c.capture.Set(gocv.VideoCaptureFPS, float64(fps))
	if got := c.FPS(); got != fps {
		return errors.Errorf("device %d kept %d fps instead of %d", c.id, got, fps)
	}
	return nil
}

// Resolution returns the device frame size.
func (c *Camera) Resolution() (int, int) {
	return int(c.capture.Get(gocv.VideoCaptureFrameWidth)), int(c.capture.Get(gocv.VideoCaptureFrameHeight))
}

// FPS returns the device frame rate.
func (c *Camera) FPS() int {
	return int(c.capture.Get(gocv.VideoCaptureFPS))
}

// FromMat copies an 8-bit 1- or 3-channel Mat into a new buffer.
//
// Arguments:
// - m: The source matrix, in OpenCV's B,G,R order for color.
//
// Returns:
// - *images.Image: The copied buffer.
// - error: An error if the matrix is empty or of an unsupported type.
func FromMat(m gocv.Mat) (*images.Image, error) {
	if m.Empty() {
		return nil, images.ErrEmptyImage
	}
	switch m.Type() {
	case gocv.MatTypeCV8UC1, gocv.MatTypeCV8UC3:
	default:
		return nil, errors.Errorf("unsupported mat type %v", m.Type())
	}

	img := images.New(m.Cols(), m.Rows(), m.Channels())
	data := m.ToBytes()
	if len(data) < len(img.Pix) {
		return nil, errors.Errorf("mat holds %d bytes, need %d", len(data), len(img.Pix))
	}
	copy(img.Pix, data)
	return img, nil
}

// ToMat copies a buffer into a new Mat; the caller must Close it.
func ToMat(img *images.Image) (gocv.Mat, error) {
	if img.Empty() {
		return gocv.NewMat(), images.ErrEmptyImage
	}

	typ := gocv.MatTypeCV8UC3
	if img.Channels == 1 {
		typ = gocv.MatTypeCV8UC1
	}

	rowBytes := img.RowBytes()
	data := make([]byte, rowBytes*img.Height)
	for y := 0; y < img.Height; y++ {
		copy(data[y*rowBytes:(y+1)*rowBytes], img.Row(y))
	}
	return gocv.NewMatFromBytes(img.Height, img.Width, typ, data)
}
