package assert

import "math"

// ValidIndex reports whether idx addresses an element of a collection of length n.
func ValidIndex(idx, n int) bool {
	return idx >= 0 && idx < n
}

// Finite reports whether f is neither NaN nor infinite.
func Finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// InRange reports whether lo <= f <= hi.
func InRange(f, lo, hi float64) bool {
	return f >= lo && f <= hi
}

// LengthIs reports whether s has exactly n bytes.
func LengthIs(s string, n int) bool {
	return len(s) == n
}
