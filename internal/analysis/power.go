package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum returns |X_k|^2 / n for k = 0..n/2 of the mean-removed
// samples, so bin k is frequency k/n cycles per iteration.
func PowerSpectrum(samples []float64) []float64 {
	n := len(samples)
	if n == 0 {
		return nil
	}

	mean := 0.0
	for _, v := range samples {
		mean += v
	}
	mean /= float64(n)

	centered := make([]float64, n)
	for i, v := range samples {
		centered[i] = v - mean
	}

	coeffs := fft.FFTReal(centered)
	ps := make([]float64, n/2+1)
	for k := range ps {
		a := cmplx.Abs(coeffs[k])
		ps[k] = a * a / float64(n)
	}
	return ps
}

// DominantPeriod returns the period n/k of the strongest non-zero frequency
// bin, or 0 when the spectrum is flat (a fixed point).
func DominantPeriod(ps []float64, n int) float64 {
	best, bestPow := 0, 0.0
	total := 0.0
	for k := 1; k < len(ps); k++ {
		total += ps[k]
		if ps[k] > bestPow {
			best, bestPow = k, ps[k]
		}
	}
	if best == 0 || total <= 1e-20 {
		return 0
	}
	return float64(n) / float64(best)
}

// SpectralFlatness is the geometric over the arithmetic mean of the non-DC
// bins: near 0 for periodic orbits, larger for broadband chaotic ones.
func SpectralFlatness(ps []float64) float64 {
	if len(ps) < 2 {
		return 0
	}
	logSum, sum := 0.0, 0.0
	for _, p := range ps[1:] {
		p = math.Max(p, 1e-300)
		logSum += math.Log(p)
		sum += p
	}
	m := float64(len(ps) - 1)
	if sum == 0 {
		return 0
	}
	return math.Exp(logSum/m) / (sum / m)
}
