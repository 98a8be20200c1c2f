// Package stats provides the small set of numeric kernels the pipeline
// needs: descriptive moments, interpolated quantiles, fractional ranks, and
// a two-sample t-test. Everything is float64, deterministic, and guards its
// own degenerate inputs so callers never see NaN or Inf.
package stats

import (
	"math"
	"slices"
)

// Mean returns the arithmetic mean, 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return Sum(xs) / float64(len(xs))
}

// Sum returns the total of xs.
func Sum(xs []float64) float64 {
	var total float64
	for _, x := range xs {
		total += x
	}
	return total
}

// StdDev returns the sample standard deviation (n-1 denominator), 0 when
// fewer than two observations exist. A district seen on a single day has no
// volatility, not undefined volatility.
func StdDev(xs []float64) float64 {
	n := len(xs)
	if n < 2 {
		return 0
	}
	m := Mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1))
}

// Quantile returns the q-th quantile of xs using linear interpolation
// between order statistics. q is clamped to [0,1]; an empty slice yields 0.
func Quantile(xs []float64, q float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	q = Clamp(q, 0, 1)

	sorted := slices.Clone(xs)
	slices.Sort(sorted)

	h := q * float64(len(sorted)-1)
	lo := int(math.Floor(h))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := h - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// PercentileRanks returns each value's fractional rank in (0,1], ties
// resolved by averaging their 1-based ranks. The largest value ranks 1.0
// when untied.
func PercentileRanks(xs []float64) []float64 {
	n := len(xs)
	if n == 0 {
		return nil
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		switch {
		case xs[a] < xs[b]:
			return -1
		case xs[a] > xs[b]:
			return 1
		default:
			return 0
		}
	})

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j < n && xs[idx[j]] == xs[idx[i]] {
			j++
		}
		// Average the 1-based ranks of the tied run [i, j).
		avg := (float64(i+1) + float64(j)) / 2
		for k := i; k < j; k++ {
			ranks[idx[k]] = avg / float64(n)
		}
		i = j
	}
	return ranks
}

// Clamp limits x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Round rounds x to the given number of decimal places using half-to-even,
// matching how the upstream numeric stack rounds published figures.
func Round(x float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.RoundToEven(x*scale) / scale
}
