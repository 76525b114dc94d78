// Package kernels provides the convolution kernel catalog and the
// strategy-parametrized convolution engine.
package kernels

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ErrInvalidKernelSize is returned for kernel sizes that are even or smaller than 1.
var ErrInvalidKernelSize = errors.New("kernel size must be odd and >= 1")

// Kernel is a square, odd-sized matrix of correlation weights.
type Kernel struct {
	m    *mat.Dense
	size int
}

// New wraps a row-major slice of size*size weights.
//
// Arguments:
// - size: The side length; must be odd and >= 1.
// - weights: The weights, row-major. A nil slice yields a zero kernel.
//
// Returns:
// - *Kernel: The kernel.
// - error: ErrInvalidKernelSize, or an error when len(weights) != size*size.
func New(size int, weights []float64) (*Kernel, error) {
	if err := ValidateSize(size); err != nil {
		return nil, err
	}
	if weights != nil && len(weights) != size*size {
		return nil, errors.Errorf("kernel of size %d needs %d weights, got %d", size, size*size, len(weights))
	}
	return &Kernel{m: mat.NewDense(size, size, weights), size: size}, nil
}

// ValidateSize returns ErrInvalidKernelSize (with the offending size) unless size is odd and >= 1.
func ValidateSize(size int) error {
	if size < 1 || size%2 == 0 {
		return errors.Wrapf(ErrInvalidKernelSize, "got %d", size)
	}
	return nil
}

// Size returns the side length of the kernel.
func (k *Kernel) Size() int {
	return k.size
}

// Center returns the index of the center row and column (size/2).
func (k *Kernel) Center() int {
	return k.size / 2
}

// At returns the weight at row r, column c.
func (k *Kernel) At(r, c int) float64 {
	return k.m.At(r, c)
}

// Sum returns the sum of all weights.
func (k *Kernel) Sum() float64 {
	return mat.Sum(k.m)
}

// Weights returns a row-major copy of the weights.
func (k *Kernel) Weights() []float64 {
	out := make([]float64, 0, k.size*k.size)
	for r := 0; r < k.size; r++ {
		out = append(out, k.m.RawRowView(r)...)
	}
	return out
}

// Gaussian returns a normalized size x size Gaussian kernel. A non-positive
// sigma is derived from the size as 0.3*((size-1)*0.5-1)+0.8.
//
// Arguments:
// - size: The side length; must be odd and >= 1.
// - sigma: The standard deviation, or <= 0 to derive it.
//
// Returns:
// - *Kernel: Weights summing to 1.
// - error: ErrInvalidKernelSize.
//
// @example
// k, err := kernels.Gaussian(5, 0)
func Gaussian(size int, sigma float64) (*Kernel, error) {
	k, err := New(size, nil)
	if err != nil {
		return nil, err
	}
	if sigma <= 0 {
		sigma = 0.3*((float64(size)-1)*0.5-1) + 0.8
	}

	center := k.Center()
	denom := 2.0 * sigma * sigma
	sum := 0.0
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			dy := float64(r - center)
			dx := float64(c - center)
			v := math.Exp(-(dx*dx + dy*dy) / denom)
			k.m.Set(r, c, v)
			sum += v
		}
	}

	k.m.Scale(1/sum, k.m)
	return k, nil
}

// Box returns a size x size mean kernel with every weight 1/(size*size).
func Box(size int) (*Kernel, error) {
	k, err := New(size, nil)
	if err != nil {
		return nil, err
	}
	w := 1.0 / float64(size*size)
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			k.m.Set(r, c, w)
		}
	}
	return k, nil
}

// Sharpen returns the unit-gain 3x3 sharpen kernel.
func Sharpen() *Kernel {
	return mustFixed([]float64{
		0, -1, 0,
		-1, 5, -1,
		0, -1, 0,
	})
}

// Emboss returns the 3x3 emboss kernel biased along the main diagonal.
func Emboss() *Kernel {
	return mustFixed([]float64{
		-2, -1, 0,
		-1, 1, 1,
		0, 1, 2,
	})
}

// SobelX returns the horizontal-gradient Sobel kernel.
func SobelX() *Kernel {
	return mustFixed([]float64{
		-1, 0, 1,
		-2, 0, 2,
		-1, 0, 1,
	})
}

// SobelY returns the vertical-gradient Sobel kernel.
func SobelY() *Kernel {
	return mustFixed([]float64{
		-1, -2, -1,
		0, 0, 0,
		1, 2, 1,
	})
}

// MustGaussian is like Gaussian but panics on an invalid size. It is meant for
// fixed sizes known to be valid.
func MustGaussian(size int, sigma float64) *Kernel {
	k, err := Gaussian(size, sigma)
	if err != nil {
		panic(err)
	}
	return k
}

func mustFixed(weights []float64) *Kernel {
	k, err := New(3, weights)
	if err != nil {
		panic(err)
	}
	return k
}
