package images

import (
	"bytes"
	"os"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	// Registers the WebP decoder with image.Decode.
	_ "golang.org/x/image/webp"
)

// Load decodes an image file into a 3-channel buffer (or 1-channel for gray sources).
//
// Arguments:
// - path: The path to a JPEG, PNG, WebP, BMP or TIFF file.
//
// Returns:
// - *Image: The decoded buffer.
// - error: An error if the file cannot be read or decoded.
func Load(path string) (*Image, error) {
	src, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open image %s", path)
	}
	img := FromImage(src)
	if img.Empty() {
		return nil, errors.Wrapf(ErrEmptyImage, "decoded %s", path)
	}
	return img, nil
}

// Decode decodes encoded image bytes into a buffer.
func Decode(data []byte) (*Image, error) {
	src, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode image")
	}
	img := FromImage(src)
	if img.Empty() {
		return nil, ErrEmptyImage
	}
	return img, nil
}

// Save encodes a buffer to path; the format follows the file extension.
// WebP output is encoded lossless.
//
// Arguments:
// - path: The destination file path.
// - m: The buffer to encode.
//
// Returns:
// - error: An error if the buffer is empty or encoding fails.
func Save(path string, m *Image) error {
	if m.Empty() {
		return ErrEmptyImage
	}
	img := ToImage(m)

	if FormatFromPath(path) == FormatWebP {
		var buf bytes.Buffer
		if err := webp.Encode(&buf, img, &webp.Options{Lossless: true}); err != nil {
			return errors.Wrap(err, "failed to encode webp")
		}
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return errors.Wrapf(err, "failed to write %s", path)
		}
		return nil
	}

	if err := imaging.Save(img, path); err != nil {
		return errors.Wrapf(err, "failed to save image %s", path)
	}
	return nil
}
