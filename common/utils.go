package common

// Coalesce returns the first non-zero value from the provided values, or the zero value if all are zero.
//
// Parameters:
//   - values: a variadic list of values to check for non-zero status
//
// Returns:
//   - T: the first non-zero value from the input, or the zero value if all are zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// Grow returns buf with length n, reusing its backing array when it is large enough.
// Contents are not preserved when a new array is allocated.
//
// Parameters:
//   - buf: the existing buffer, may be nil
//   - n: the required length
//
// Returns:
//   - []T: a slice of length n
func Grow[T any](buf []T, n int) []T {
	if cap(buf) < n {
		return make([]T, n)
	}
	return buf[:n]
}
