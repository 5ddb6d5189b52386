package market

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoissonPMF(t *testing.T) {
	// Degenerate rate: all mass on zero.
	assert.Equal(t, 1.0, PoissonPMF(0, 0))
	assert.Equal(t, 0.0, PoissonPMF(1, 0))
	assert.Equal(t, 0.0, PoissonPMF(-1, 2))

	// Hand-checked values.
	assert.InDelta(t, math.Exp(-1), PoissonPMF(0, 1), 1e-12)
	assert.InDelta(t, 2*2*math.Exp(-2)/2, PoissonPMF(2, 2), 1e-12)

	// PMF over a wide support sums to ~1.
	sum := 0.0
	for k := 0; k <= 40; k++ {
		sum += PoissonPMF(k, 2.85)
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestPoissonPMFNormalRegime(t *testing.T) {
	// Above the switchover the density peaks at the mean and stays a
	// valid probability.
	lam := 50.0
	peak := PoissonPMF(50, lam)
	assert.Greater(t, peak, PoissonPMF(40, lam))
	assert.Greater(t, peak, PoissonPMF(60, lam))
	assert.LessOrEqual(t, peak, 1.0)
}

func TestPoissonCDF(t *testing.T) {
	assert.Equal(t, 0.0, PoissonCDF(-1, 2))
	assert.Equal(t, 1.0, PoissonCDF(0, 0))
	assert.InDelta(t, math.Exp(-2), PoissonCDF(0, 2), 1e-12)
	assert.InDelta(t, 1.0, PoissonCDF(60, 2.85), 1e-9)

	// Normal-approx regime: CDF at the mean is about a half and the
	// function stays monotone.
	assert.InDelta(t, 0.5, PoissonCDF(50, 50), 0.05)
	assert.Less(t, PoissonCDF(40, 50), PoissonCDF(55, 50))
}

func TestPoissonOver(t *testing.T) {
	assert.Equal(t, 1.0, PoissonOver(-0.5, 2))

	// Over 2.5 means at least three.
	lam := 2.85
	want := 1 - (PoissonPMF(0, lam) + PoissonPMF(1, lam) + PoissonPMF(2, lam))
	assert.InDelta(t, want, PoissonOver(2.5, lam), 1e-12)
	assert.InDelta(t, 0.5424, PoissonOver(2.5, lam), 1e-4)

	// Zero rate never clears a positive line.
	assert.Equal(t, 0.0, PoissonOver(0.5, 0))
}

func TestSigmoid(t *testing.T) {
	assert.InDelta(t, 0.5, Sigmoid(0), 1e-12)
	assert.InDelta(t, 1.0, Sigmoid(20), 1e-6)
	assert.InDelta(t, 0.0, Sigmoid(-20), 1e-6)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.05, Clamp(0.01, 0.05, 0.95))
	assert.Equal(t, 0.95, Clamp(1.2, 0.05, 0.95))
	assert.Equal(t, 0.5, Clamp(0.5, 0.05, 0.95))
}

func TestNormalize(t *testing.T) {
	out := Normalize([]float64{1, 1, 2})
	assert.InDelta(t, 0.25, out[0], 1e-12)
	assert.InDelta(t, 0.25, out[1], 1e-12)
	assert.InDelta(t, 0.5, out[2], 1e-12)

	// Non-positive sum comes back unchanged.
	same := Normalize([]float64{0, 0})
	assert.Equal(t, []float64{0, 0}, same)
}

func TestRate(t *testing.T) {
	assert.Equal(t, 0.0, rate(0))
	assert.Equal(t, 0.01, rate(0.001))
	assert.Equal(t, 1.65, rate(1.65))
}
