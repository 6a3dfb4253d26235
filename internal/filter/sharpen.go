package filter

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/gogpu/retouch/internal/cache"
	"github.com/gogpu/retouch/internal/parallel"
	"github.com/gogpu/retouch/internal/spaces"
)

// LoGSize returns the kernel size used for sigma when size is below 3:
// the smallest odd size covering three standard deviations each side.
// Even sizes are bumped to the next odd size.
func LoGSize(sigma float64, size int) int {
	if size < 3 {
		size = 2*int(math.Ceil(3*sigma)) + 1
	}
	if size%2 == 0 {
		size++
	}
	return size
}

// LoGKernel returns a size x size Laplacian-of-Gaussian kernel, row-major,
// shifted to zero mean so flat regions are left unchanged.
func LoGKernel(sigma float64, size int) []float64 {
	size = LoGSize(sigma, size)
	r := size / 2
	s2 := sigma * sigma
	norm := -1 / (math.Pi * s2 * s2)

	k := make([]float64, size*size)
	var sum float64
	for y := -r; y <= r; y++ {
		for x := -r; x <= r; x++ {
			q := float64(x*x+y*y) / (2 * s2)
			v := norm * (1 - q) * math.Exp(-q)
			k[(y+r)*size+x+r] = v
			sum += v
		}
	}
	mean := sum / float64(len(k))
	for i := range k {
		k[i] -= mean
	}
	return k
}

type spectrumKey struct {
	sigma      float64
	size       int
	cols, rows int
}

// spectra keeps transformed kernels between renders; interactive editing
// re-sharpens images of the same size with the same few sigmas.
var spectra = cache.New[spectrumKey, []complex128](8)

// Sharpen subtracts the Laplacian-of-Gaussian response from the Lab
// lightness plane in place. The a/b and alpha components are untouched.
//
// The convolution runs in the frequency domain on an edge-replicated copy
// of L padded by the kernel radius, so border pixels see no wrap-around.
// sigma <= 0 leaves p unchanged.
func Sharpen(pool *parallel.WorkerPool, p *spaces.Planes, sigma float64, size int) {
	if sigma <= 0 {
		return
	}
	size = LoGSize(sigma, size)
	r := size / 2
	cols := fftSize(p.Width + 2*r)
	rows := fftSize(p.Height + 2*r)

	kernel := spectra.GetOrCreate(spectrumKey{sigma, size, cols, rows}, func() []complex128 {
		return kernelSpectrum(pool, LoGKernel(sigma, size), size, cols, rows)
	})

	grid := make([]complex128, cols*rows)
	parallel.ForRows(pool, rows, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			sy := clampIndex(y-r, p.Height)
			for x := 0; x < cols; x++ {
				sx := clampIndex(x-r, p.Width)
				grid[y*cols+x] = complex(float64(p.Pix[(sy*p.Width+sx)*p.Channels]), 0)
			}
		}
	})

	fft2(pool, grid, cols, rows, false)
	parallel.ForRows(pool, rows, func(y0, y1 int) {
		for i := y0 * cols; i < y1*cols; i++ {
			grid[i] *= kernel[i]
		}
	})
	fft2(pool, grid, cols, rows, true)

	scale := 1 / float64(cols*rows)
	parallel.ForRows(pool, p.Height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < p.Width; x++ {
				i := (y*p.Width + x) * p.Channels
				conv := real(grid[(y+r)*cols+x+r]) * scale
				p.Pix[i] = float32(float64(p.Pix[i]) - conv)
			}
		}
	})
}

// kernelSpectrum places the kernel centre at the grid origin, wrapping
// negative offsets, and transforms it.
func kernelSpectrum(pool *parallel.WorkerPool, k []float64, size, cols, rows int) []complex128 {
	r := size / 2
	grid := make([]complex128, cols*rows)
	for ky := 0; ky < size; ky++ {
		y := (ky - r + rows) % rows
		for kx := 0; kx < size; kx++ {
			x := (kx - r + cols) % cols
			grid[y*cols+x] = complex(k[ky*size+kx], 0)
		}
	}
	fft2(pool, grid, cols, rows, false)
	return grid
}

// fft2 transforms a row-major grid in place: rows first, then columns.
// The inverse transform is unnormalized. gonum FFT values are not safe for
// concurrent use, so every band gets its own.
func fft2(pool *parallel.WorkerPool, grid []complex128, cols, rows int, inverse bool) {
	parallel.ForRows(pool, rows, func(y0, y1 int) {
		fft := fourier.NewCmplxFFT(cols)
		tmp := make([]complex128, cols)
		for y := y0; y < y1; y++ {
			row := grid[y*cols : (y+1)*cols]
			transform(fft, tmp, row, inverse)
			copy(row, tmp)
		}
	})
	parallel.ForRows(pool, cols, func(x0, x1 int) {
		fft := fourier.NewCmplxFFT(rows)
		col := make([]complex128, rows)
		tmp := make([]complex128, rows)
		for x := x0; x < x1; x++ {
			for y := 0; y < rows; y++ {
				col[y] = grid[y*cols+x]
			}
			transform(fft, tmp, col, inverse)
			for y := 0; y < rows; y++ {
				grid[y*cols+x] = tmp[y]
			}
		}
	})
}

func transform(fft *fourier.CmplxFFT, dst, src []complex128, inverse bool) {
	if inverse {
		fft.Sequence(dst, src)
	} else {
		fft.Coefficients(dst, src)
	}
}

// fftSize returns the smallest 5-smooth number >= n; mixed-radix FFTs are
// fast on those lengths.
func fftSize(n int) int {
	for m := max(n, 1); ; m++ {
		v := m
		for _, f := range [...]int{2, 3, 5} {
			for v%f == 0 {
				v /= f
			}
		}
		if v == 1 {
			return m
		}
	}
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
