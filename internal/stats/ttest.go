package stats

import (
	"math"
)

// TTestResult holds a two-sample t-test outcome.
type TTestResult struct {
	T  float64 // test statistic
	DF int     // degrees of freedom
	P  float64 // two-sided p-value
}

// PooledTTest runs a two-sample Student's t-test assuming equal variances.
// Returns ok=false when either sample has fewer than two observations or
// the pooled variance is zero; callers treat that as "no detectable effect"
// rather than an error.
func PooledTTest(a, b []float64) (TTestResult, bool) {
	n1, n2 := len(a), len(b)
	if n1 < 2 || n2 < 2 {
		return TTestResult{}, false
	}

	m1, m2 := Mean(a), Mean(b)
	s1, s2 := StdDev(a), StdDev(b)

	df := n1 + n2 - 2
	pooled := (float64(n1-1)*s1*s1 + float64(n2-1)*s2*s2) / float64(df)
	if pooled == 0 {
		return TTestResult{}, false
	}

	t := (m1 - m2) / math.Sqrt(pooled*(1/float64(n1)+1/float64(n2)))
	return TTestResult{T: t, DF: df, P: studentTPValue(t, float64(df))}, true
}

// studentTPValue returns the two-sided p-value for statistic t with df
// degrees of freedom via the regularized incomplete beta function:
// P(|T| >= |t|) = I_{df/(df+t^2)}(df/2, 1/2).
func studentTPValue(t, df float64) float64 {
	x := df / (df + t*t)
	p := regIncompleteBeta(df/2, 0.5, x)
	return Clamp(p, 0, 1)
}

// regIncompleteBeta computes the regularized incomplete beta function
// I_x(a, b) using the continued fraction expansion with the symmetry
// transform for fast convergence on either side of (a+1)/(a+b+2).
func regIncompleteBeta(a, b, x float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}

	lbeta, _ := math.Lgamma(a + b)
	la, _ := math.Lgamma(a)
	lb, _ := math.Lgamma(b)
	front := math.Exp(lbeta - la - lb + a*math.Log(x) + b*math.Log(1-x))

	if x < (a+1)/(a+b+2) {
		return front * betaContinuedFraction(a, b, x) / a
	}
	return 1 - front*betaContinuedFraction(b, a, 1-x)/b
}

// betaContinuedFraction evaluates the continued fraction for the incomplete
// beta function by the modified Lentz method.
func betaContinuedFraction(a, b, x float64) float64 {
	const (
		maxIterations = 200
		epsilon       = 3e-14
		tiny          = 1e-30
	)

	qab := a + b
	qap := a + 1
	qam := a - 1

	c := 1.0
	d := 1 - qab*x/qap
	if math.Abs(d) < tiny {
		d = tiny
	}
	d = 1 / d
	h := d

	for m := 1; m <= maxIterations; m++ {
		fm := float64(m)
		m2 := 2 * fm

		num := fm * (b - fm) * x / ((qam + m2) * (a + m2))
		d = 1 + num*d
		if math.Abs(d) < tiny {
			d = tiny
		}
		c = 1 + num/c
		if math.Abs(c) < tiny {
			c = tiny
		}
		d = 1 / d
		h *= d * c

		num = -(a + fm) * (qab + fm) * x / ((a + m2) * (qap + m2))
		d = 1 + num*d
		if math.Abs(d) < tiny {
			d = tiny
		}
		c = 1 + num/c
		if math.Abs(c) < tiny {
			c = tiny
		}
		d = 1 / d
		delta := d * c
		h *= delta

		if math.Abs(delta-1) < epsilon {
			break
		}
	}
	return h
}
