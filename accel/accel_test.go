package accel

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProbeMissingLibrary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "libonnxruntime.so")
	c := Probe(Options{SharedLibraryPath: path, Backend: CUDABackend})

	assert.False(t, c.Available())
	assert.Equal(t, CUDABackend, c.Backend)
	assert.Contains(t, c.Reason, "onnxruntime library not found")
	assert.Contains(t, c.String(), "cuda unavailable")
}

func TestProbeWithoutPath(t *testing.T) {
	c := Probe(Options{})
	assert.False(t, c.Available())
	assert.Equal(t, CUDABackend, c.Backend)
	assert.NotEmpty(t, c.Reason)
}

func TestDefaultOptionsHonorsEnv(t *testing.T) {
	t.Setenv(LibraryPathEnv, "/opt/ort/libonnxruntime.so")
	assert.Equal(t, "/opt/ort/libonnxruntime.so", DefaultOptions().SharedLibraryPath)

	t.Setenv(LibraryPathEnv, "")
	assert.Equal(t, SharedLibPath(), DefaultOptions().SharedLibraryPath)
}

func TestCapabilityString(t *testing.T) {
	ok := Capability{Supported: true, Backend: CUDABackend, DeviceID: 1, Version: "1.21.0"}
	assert.Equal(t, "cuda:1 (onnxruntime 1.21.0)", ok.String())
	assert.True(t, ok.Available())

	assert.Equal(t, "cuda unavailable: disabled", Unavailable("disabled").String())
}
