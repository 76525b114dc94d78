// Package filters implements the 12-filter catalog once and runs it under
// interchangeable row scheduling strategies. Every strategy produces
// bit-identical output for the same input and parameters.
package filters

import (
	"github.com/nvr-ai/go-filters/images/kernels"
	"github.com/pkg/errors"
)

// ErrInvalidParameter is returned for out-of-range filter parameters.
var ErrInvalidParameter = errors.New("invalid filter parameter")

// Params holds the tunable filter parameters used by the dispatch layer.
type Params struct {
	// The box blur kernel size (odd, >= 1).
	BlurSize int `json:"blur_size" yaml:"blur_size"`
	// The Gaussian blur kernel size (odd, >= 1).
	GaussianSize int `json:"gaussian_size" yaml:"gaussian_size"`
	// The weak edge threshold of Canny.
	CannyLow float64 `json:"canny_low" yaml:"canny_low"`
	// The strong edge threshold of Canny.
	CannyHigh float64 `json:"canny_high" yaml:"canny_high"`
	// Luminance values strictly above Threshold become 255.
	Threshold int `json:"threshold" yaml:"threshold"`
	// The median window size (odd, >= 1).
	MedianSize int `json:"median_size" yaml:"median_size"`
	// The bilateral neighborhood diameter (odd, >= 1).
	BilateralDiameter int `json:"bilateral_diameter" yaml:"bilateral_diameter"`
	// The bilateral range (color) sigma.
	BilateralSigmaColor float64 `json:"bilateral_sigma_color" yaml:"bilateral_sigma_color"`
	// The bilateral spatial sigma.
	BilateralSigmaSpace float64 `json:"bilateral_sigma_space" yaml:"bilateral_sigma_space"`
}

// DefaultParams returns the parameters used when none are configured.
//
// Returns:
// - Params: blur 5, gaussian 5, canny 50/150, threshold 128, median 5, bilateral 9/75/75.
func DefaultParams() Params {
	return Params{
		BlurSize:            5,
		GaussianSize:        5,
		CannyLow:            50,
		CannyHigh:           150,
		Threshold:           128,
		MedianSize:          5,
		BilateralDiameter:   9,
		BilateralSigmaColor: 75,
		BilateralSigmaSpace: 75,
	}
}

// Validate reports the first out-of-range parameter.
func (p Params) Validate() error {
	for _, field := range []struct {
		name string
		size int
	}{
		{"blur_size", p.BlurSize},
		{"gaussian_size", p.GaussianSize},
		{"median_size", p.MedianSize},
		{"bilateral_diameter", p.BilateralDiameter},
	} {
		if err := kernels.ValidateSize(field.size); err != nil {
			return errors.Wrap(err, field.name)
		}
	}
	if p.BilateralSigmaColor <= 0 || p.BilateralSigmaSpace <= 0 {
		return errors.Wrap(ErrInvalidParameter, "bilateral sigmas must be positive")
	}
	if p.CannyLow < 0 || p.CannyHigh < p.CannyLow {
		return errors.Wrapf(ErrInvalidParameter, "canny thresholds %v/%v", p.CannyLow, p.CannyHigh)
	}
	if p.Threshold < 0 || p.Threshold > 255 {
		return errors.Wrapf(ErrInvalidParameter, "threshold %d outside [0, 255]", p.Threshold)
	}
	return nil
}
