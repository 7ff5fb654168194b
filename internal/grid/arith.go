package grid

import "math"

// MixingConstant is multiplied into vertex IDs before they are reduced onto the grid.
// It equals 2^50 - 27.
const MixingConstant int64 = 1125899906842597

// scramble returns |id * MixingConstant| with int64 wraparound on both the
// product and the absolute value.
//
// MixingConstant is odd, so the product is a bijection on int64 and only
// id == math.MinInt64 produces a negative result.
func scramble(id int64) int64 {
	x := id * MixingConstant
	if x < 0 {
		x = -x
	}

	return x
}

// floorMod reduces x into [0, m) for m > 0. For x >= 0 it is exactly x % m.
//
// The only negative input is scramble(math.MinInt64). There a truncated
// remainder would produce a negative column or row, and so a negative
// partition index; flooring keeps every result in range instead.
func floorMod(x, m int64) int64 {
	r := x % m
	if r < 0 {
		r += m
	}

	return r
}

// CeilSqrt returns the smallest r >= 1 with r*r >= n.
//
// The float estimate is corrected in uint64 so the result is exact for every int.
func CeilSqrt(n int) int {
	if n <= 1 {
		return 1
	}

	target := uint64(n)
	r := uint64(math.Sqrt(float64(n)))
	for r*r < target {
		r++
	}
	for r > 1 && (r-1)*(r-1) >= target {
		r--
	}

	return int(r) //nolint:gosec // r <= ceil(sqrt(MaxInt))
}

// IsPerfectSquare reports whether n == CeilSqrt(n)^2.
func IsPerfectSquare(n int) bool {
	if n < 1 {
		return false
	}
	c := uint64(CeilSqrt(n))

	return c*c == uint64(n)
}
