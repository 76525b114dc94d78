// Package util loads benchmark corpora from disk.
package util

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/nvr-ai/go-filters/images"
	"github.com/pkg/errors"
)

// ImageFile represents a decoded image file.
type ImageFile struct {
	// Path is the path to the image file.
	Path string
	// Image is the decoded buffer.
	Image *images.Image
	// Frame is the number parsed from a "frame-N" file name, or -1.
	Frame int
}

// LoadDirectoryImageFiles decodes every supported image file in a directory.
// Files named "frame-N.ext" come first in frame order, the rest follow by name.
//
// Arguments:
// - dir: Directory path containing image files.
//
// Returns:
// - []ImageFile: The decoded files.
// - error: Error if the directory cannot be read or a file fails to decode.
func LoadDirectoryImageFiles(dir string) ([]ImageFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read directory %s", dir)
	}

	var files []ImageFile
	for _, entry := range entries {
		if entry.IsDir() || images.FormatFromPath(entry.Name()) == "" {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		img, err := images.Load(path)
		if err != nil {
			return nil, err
		}
		files = append(files, ImageFile{
			Path:  path,
			Image: img,
			Frame: frameNumber(entry.Name()),
		})
	}

	sort.SliceStable(files, func(i, j int) bool {
		fi, fj := files[i].Frame, files[j].Frame
		switch {
		case fi >= 0 && fj >= 0 && fi != fj:
			return fi < fj
		case fi >= 0 && fj < 0:
			return true
		case fi < 0 && fj >= 0:
			return false
		}
		return files[i].Path < files[j].Path
	})

	return files, nil
}

// LoadImages loads a single image file or every image in a directory.
//
// Arguments:
// - path: A file or directory.
//
// Returns:
// - []*images.Image: The decoded buffers, never empty on success.
// - error: Error if nothing could be loaded.
func LoadImages(path string) ([]*images.Image, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to stat %s", path)
	}

	if !info.IsDir() {
		img, err := images.Load(path)
		if err != nil {
			return nil, err
		}
		return []*images.Image{img}, nil
	}

	files, err := LoadDirectoryImageFiles(path)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.Errorf("no images found in %s", path)
	}

	out := make([]*images.Image, 0, len(files))
	for _, f := range files {
		out = append(out, f.Image)
	}
	return out, nil
}

func frameNumber(name string) int {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if !strings.HasPrefix(base, "frame-") {
		return -1
	}
	n, err := strconv.Atoi(strings.TrimPrefix(base, "frame-"))
	if err != nil || n < 0 {
		return -1
	}
	return n
}
