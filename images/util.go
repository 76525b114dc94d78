package images

import (
	"crypto/md5"
	"fmt"
	"math/rand"
)

// Checksum generates a deterministic checksum of the meaningful pixel bytes.
// Stride padding is excluded so equal images hash equally regardless of layout.
//
// Arguments:
// - m: The image to compute the checksum for.
//
// Returns:
// - A hex-encoded MD5 checksum string, or "empty".
//
// Example:
//
// ```go
//
//	checksum := Checksum(frame)
//	fmt.Printf("Frame checksum: %s\n", checksum)
//
// ```
func Checksum(m *Image) string {
	if m.Empty() {
		return "empty"
	}

	hash := md5.New()
	fmt.Fprintf(hash, "%dx%dx%d:", m.Width, m.Height, m.Channels)
	for y := 0; y < m.Height; y++ {
		hash.Write(m.Row(y))
	}
	return fmt.Sprintf("%x", hash.Sum(nil))
}

// Random returns an image of uniformly random bytes drawn from a seeded source,
// so repeated calls with the same seed produce the same pixels.
func Random(width, height, channels int, seed int64) *Image {
	m := New(width, height, channels)
	if m == nil {
		return nil
	}
	rng := rand.New(rand.NewSource(seed))
	rng.Read(m.Pix)
	return m
}
