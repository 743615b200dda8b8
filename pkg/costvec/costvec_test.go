package costvec_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"mcch/pkg/costvec"
)

func TestEqualWeights(t *testing.T) {
	w := costvec.EqualWeights(4)
	require.Len(t, w, 4)
	var sum float64
	for _, v := range w {
		sum += v
	}
	require.InDelta(t, 1.0, sum, 1e-12)
}

func TestAdd(t *testing.T) {
	a := []float64{1, 2, 3}
	costvec.Add(a, []float64{10, 20, 30})
	require.Equal(t, []float64{11, 22, 33}, a)
}

func TestAddMismatchedLengthPanics(t *testing.T) {
	require.Panics(t, func() {
		costvec.Add([]float64{1, 2}, []float64{1})
	})
}

func TestWeightedSum(t *testing.T) {
	got := costvec.WeightedSum([]float64{2, 1}, []float64{0.5, 0.5})
	require.InDelta(t, 1.5, got, 1e-12)
}

func TestSameArray(t *testing.T) {
	require.True(t, costvec.SameArray([]float64{1, 2}, []float64{1, 2}))
	require.True(t, costvec.SameArray([]float64{1, 2}, []float64{1 + costvec.Epsilon/2, 2}))
	require.False(t, costvec.SameArray([]float64{1, 2}, []float64{1 + 10*costvec.Epsilon, 2}))
	require.False(t, costvec.SameArray([]float64{1, 2}, []float64{1}))
}

func TestIsDominatedAsymmetry(t *testing.T) {
	x := []float64{3, 3}
	require.False(t, costvec.IsDominated(x, x), "a vector never dominates itself")

	better := []float64{3 - 10*costvec.Epsilon, 3}
	require.True(t, costvec.IsDominated(better, x), "strictly better on one axis, equal elsewhere")
}

func TestIsDominatedWithinToleranceIsNotDominance(t *testing.T) {
	x := []float64{3, 3}
	perturbed := []float64{3 - costvec.Epsilon/2, 3}
	require.False(t, costvec.IsDominated(perturbed, x), "perturbation under epsilon must not register as dominance")
}

func TestIsDominatedWorseOnSomeAxis(t *testing.T) {
	// Neither side dominates: p better on axis 0, worse on axis 1.
	p := []float64{1, 5}
	s := []float64{2, 2}
	require.False(t, costvec.IsDominated(p, s))
}
