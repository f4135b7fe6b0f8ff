package analysis

import (
	"math"
	"math/cmplx"
)

// FFT is an iterative radix-2 transform. Inputs whose length is not a power
// of two are zero padded.
func FFT(data []float64) []complex128 {
	n := nextPow2(len(data))
	if len(data) == 0 {
		return nil
	}
	out := make([]complex128, n)
	bits := 0
	for 1<<bits < n {
		bits++
	}
	for i, v := range data {
		out[reverseBits(i, bits)] = complex(v, 0)
	}

	for size := 2; size <= n; size <<= 1 {
		half := size / 2
		step := cmplx.Exp(complex(0, -2*math.Pi/float64(size)))
		for lo := 0; lo < n; lo += size {
			w := complex(1, 0)
			for k := 0; k < half; k++ {
				a, b := out[lo+k], w*out[lo+k+half]
				out[lo+k], out[lo+k+half] = a+b, a-b
				w *= step
			}
		}
	}
	return out
}

func reverseBits(i, bits int) int {
	r := 0
	for b := 0; b < bits; b++ {
		r = r<<1 | i&1
		i >>= 1
	}
	return r
}

// PowerSpectrum returns FFT magnitudes of the mean-removed signal, zero
// padded to the next power of two.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	padded := make([]float64, nextPow2(len(data)))
	for i, v := range data {
		padded[i] = v - mean
	}

	fft := FFT(padded)
	ps := make([]float64, len(fft)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(fft[i])
	}
	return ps
}

// DominantFrequency returns the frequency in Hz of the strongest non-zero bin
// for samples taken every dt seconds, and that bin's magnitude.
func DominantFrequency(data []float64, dt float64) (float64, float64) {
	ps := PowerSpectrum(data)
	if len(ps) < 2 || dt <= 0 {
		return 0, 0
	}

	best := 1
	for i := 2; i < len(ps); i++ {
		if ps[i] > ps[best] {
			best = i
		}
	}
	return BinFrequency(best, 2*len(ps), dt), ps[best]
}

// BinFrequency converts an FFT bin index into Hz.
func BinFrequency(bin, n int, dt float64) float64 {
	return float64(bin) / (float64(n) * dt)
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
