// Package costvec implements arithmetic on fixed-dimension cost vectors:
// the non-negative objective vectors (time, distance, energy, ...) carried
// by every edge in a multi-criteria graph.
package costvec

// Epsilon is the process-wide floating-point tolerance used by every
// equality and dominance test in this module. Changing it changes the
// decision boundary of the shortcut necessity engine, so it is a build-time
// constant rather than a runtime knob.
const Epsilon = 5e-7

// EqualWeights returns the uniform preference vector [1/d, ..., 1/d].
func EqualWeights(d int) []float64 {
	w := make([]float64, d)
	inv := 1.0 / float64(d)
	for i := range w {
		w[i] = inv
	}
	return w
}

// Add performs a ← a + b elementwise. Both slices must have the same length.
func Add(a, b []float64) {
	if len(a) != len(b) {
		panic("costvec: Add called with mismatched vector lengths")
	}
	for i, v := range b {
		a[i] += v
	}
}

// Sum returns a new vector holding the elementwise sum of a and b.
func Sum(a, b []float64) []float64 {
	if len(a) != len(b) {
		panic("costvec: Sum called with mismatched vector lengths")
	}
	out := make([]float64, len(a))
	copy(out, a)
	Add(out, b)
	return out
}

// WeightedSum returns the scalar inner product Σ c_i·alpha_i. Hot path: the
// caller is expected to have already verified len(c) == len(alpha), so no
// bounds check is performed beyond what the slice access itself requires.
func WeightedSum(c, alpha []float64) float64 {
	var res float64
	for i := range c {
		res += c[i] * alpha[i]
	}
	return res
}

// SameArray reports whether a and b have equal length and are componentwise
// equal within Epsilon.
func SameArray(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if diff := a[i] - b[i]; diff > Epsilon || diff < -Epsilon {
			return false
		}
	}
	return true
}

// IsDominated reports whether shortcutCost is dominated by pathCost: no
// component of pathCost exceeds the corresponding component of
// shortcutCost, and at least one component differs by more than Epsilon.
// Equality in every component is NOT dominance — that case is handled
// separately by SameArray in the necessity engine.
func IsDominated(pathCost, shortcutCost []float64) bool {
	if len(pathCost) != len(shortcutCost) {
		panic("costvec: IsDominated called with mismatched vector lengths")
	}
	someDifferent := false
	for i := range pathCost {
		diff := pathCost[i] - shortcutCost[i]
		if diff > Epsilon || diff < -Epsilon {
			someDifferent = true
		}
		if diff > Epsilon {
			return false
		}
	}
	return someDifferent
}
