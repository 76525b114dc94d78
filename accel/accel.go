// Package accel - GPU capability probe backed by ONNX Runtime execution providers.
package accel

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"sync"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
)

// Backend names an ONNX Runtime execution provider.
type Backend string

const (
	// CUDABackend probes the NVIDIA CUDA execution provider.
	CUDABackend Backend = "cuda"
	// CoreMLBackend probes the Apple CoreML execution provider.
	CoreMLBackend Backend = "coreml"
)

// LibraryPathEnv overrides the shared library location.
const LibraryPathEnv = "ONNXRUNTIME_SHARED_LIBRARY_PATH"

// Options controls the probe.
type Options struct {
	// The path to the onnxruntime shared library.
	SharedLibraryPath string `json:"sharedLibraryPath" yaml:"sharedLibraryPath"`
	// The execution provider to probe.
	Backend Backend `json:"backend" yaml:"backend"`
	// The device ID passed to the provider.
	DeviceID int `json:"deviceID" yaml:"deviceID"`
}

// Capability is the probe outcome.
type Capability struct {
	// Whether the execution provider could be attached to a session.
	Supported bool `json:"supported" yaml:"supported"`
	// The probed backend.
	Backend Backend `json:"backend" yaml:"backend"`
	// The probed device ID.
	DeviceID int `json:"deviceID" yaml:"deviceID"`
	// The onnxruntime version, when the library loaded.
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
	// Why the backend is unavailable.
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Available reports whether the accelerator can be used.
func (c Capability) Available() bool {
	return c.Supported
}

// String describes the capability for logs and reports.
func (c Capability) String() string {
	if c.Supported {
		return fmt.Sprintf("%s:%d (onnxruntime %s)", c.Backend, c.DeviceID, c.Version)
	}
	if c.Reason == "" {
		return fmt.Sprintf("%s unavailable", c.Backend)
	}
	return fmt.Sprintf("%s unavailable: %s", c.Backend, c.Reason)
}

// Unavailable returns a capability that reports no accelerator.
func Unavailable(reason string) Capability {
	return Capability{Backend: CUDABackend, Reason: reason}
}

// SharedLibPath returns the default onnxruntime shared library path for the
// current platform, or an empty string when none is known.
//
// Returns:
//   - string: The path to the shared library.
func SharedLibPath() string {
	switch runtime.GOOS {
	case "windows":
		return "./third_party/onnxruntime.dll"
	case "darwin":
		return "./third_party/libonnxruntime.1.21.0.dylib"
	case "linux":
		if runtime.GOARCH == "arm64" {
			return "./third_party/onnxruntime_arm64.so"
		}
		return "./third_party/onnxruntime.so"
	}
	return ""
}

// DefaultOptions probes CUDA device 0 using the library named by
// ONNXRUNTIME_SHARED_LIBRARY_PATH, or the platform default.
func DefaultOptions() Options {
	path := os.Getenv(LibraryPathEnv)
	if path == "" {
		path = SharedLibPath()
	}
	backend := CUDABackend
	if runtime.GOOS == "darwin" {
		backend = CoreMLBackend
	}
	return Options{SharedLibraryPath: path, Backend: backend}
}

// The onnxruntime environment is process-wide.
var probeMu sync.Mutex

// Probe checks whether the requested execution provider can be attached to an
// ONNX Runtime session. It never fails: every problem becomes an unavailable
// Capability carrying the reason.
//
// Arguments:
//   - opts: The probe options.
//
// Returns:
//   - Capability: The outcome.
//
// @example
// c := accel.Probe(accel.DefaultOptions())
// fmt.Println(c)
func Probe(opts Options) Capability {
	c := Capability{Backend: opts.Backend, DeviceID: opts.DeviceID}
	if c.Backend == "" {
		c.Backend = CUDABackend
	}

	if err := probe(&c, opts.SharedLibraryPath); err != nil {
		c.Supported = false
		c.Reason = err.Error()
		return c
	}
	c.Supported = true
	return c
}

func probe(c *Capability, libPath string) error {
	if libPath == "" {
		return errors.New("no onnxruntime library for this platform")
	}
	if _, err := os.Stat(libPath); err != nil {
		return errors.Wrapf(err, "onnxruntime library not found at %s", libPath)
	}

	probeMu.Lock()
	defer probeMu.Unlock()

	if !ort.IsInitialized() {
		ort.SetSharedLibraryPath(libPath)
		if err := ort.InitializeEnvironment(); err != nil {
			return errors.Wrap(err, "error initializing ORT environment")
		}
		defer ort.DestroyEnvironment()
	}
	c.Version = ort.GetVersion()

	options, err := ort.NewSessionOptions()
	if err != nil {
		return errors.Wrap(err, "error creating ORT session options")
	}
	defer options.Destroy()

	switch c.Backend {
	case CoreMLBackend:
		if err := options.AppendExecutionProviderCoreML(0); err != nil {
			return errors.Wrap(err, "error enabling CoreML")
		}
	case CUDABackend:
		cuda, err := ort.NewCUDAProviderOptions()
		if err != nil {
			return errors.Wrap(err, "error creating CUDA options")
		}
		defer cuda.Destroy()
		if err := cuda.Update(map[string]string{"device_id": strconv.Itoa(c.DeviceID)}); err != nil {
			return errors.Wrap(err, "error converting CUDA options")
		}
		if err := options.AppendExecutionProviderCUDA(cuda); err != nil {
			return errors.Wrap(err, "error enabling CUDA")
		}
	default:
		return errors.Errorf("unsupported backend %q", c.Backend)
	}
	return nil
}
