package market

import "math"

// Poisson rates above this switch to the normal approximation so the
// log-factorial sum never has to walk huge k.
const normalApproxLambda = 30.0

// PoissonPMF returns P(X = k) for X ~ Poisson(lambda), computed in log
// space to avoid factorial overflow.
func PoissonPMF(k int, lambda float64) float64 {
	if k < 0 {
		return 0
	}
	if lambda <= 0 {
		if k == 0 {
			return 1
		}
		return 0
	}
	if lambda > normalApproxLambda {
		// Normal density with continuity handled by the scale.
		d := float64(k) - lambda
		p := math.Exp(-d*d/(2*lambda)) / math.Sqrt(2*math.Pi*lambda)
		return Clamp(p, 0, 1)
	}
	logP := float64(k)*math.Log(lambda) - lambda - logFactorial(k)
	return math.Exp(logP)
}

// PoissonCDF returns P(X <= k).
func PoissonCDF(k int, lambda float64) float64 {
	if k < 0 {
		return 0
	}
	if lambda <= 0 {
		return 1
	}
	if lambda > normalApproxLambda {
		z := (float64(k) + 0.5 - lambda) / math.Sqrt(lambda)
		return Clamp(0.5*(1+math.Erf(z/math.Sqrt2)), 0, 1)
	}
	sum := 0.0
	for i := 0; i <= k; i++ {
		sum += PoissonPMF(i, lambda)
	}
	return Clamp(sum, 0, 1)
}

// PoissonOver returns P(X > threshold). Fractional thresholds floor to
// the nearest count below, so Over 2.5 means P(X >= 3). A negative
// threshold is always exceeded.
func PoissonOver(threshold, lambda float64) float64 {
	if threshold < 0 {
		return 1
	}
	return Clamp(1-PoissonCDF(int(math.Floor(threshold)), lambda), 0, 1)
}

// Sigmoid is the standard logistic function.
func Sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Normalize scales the values to sum 1. A non-positive sum returns the
// input copied unchanged.
func Normalize(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	sum := 0.0
	for _, x := range out {
		sum += x
	}
	if sum <= 0 {
		return out
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

func logFactorial(n int) float64 {
	if n <= 1 {
		return 0
	}
	sum := 0.0
	for i := 2; i <= n; i++ {
		sum += math.Log(float64(i))
	}
	return sum
}

// rate guards an adjusted lambda: tiny positives pull up to a small
// floor, but a non-positive rate stays zero so degenerate inputs keep
// their degenerate distribution (P(0)=1).
func rate(v float64) float64 {
	const minRate = 0.01
	if v <= 0 {
		return 0
	}
	if v < minRate {
		return minRate
	}
	return v
}
