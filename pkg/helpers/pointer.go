package helpers

// Ptr returns a pointer to the provided value.
func Ptr[T any](val T) *T {
	return &val
}

// NonZero returns a pointer to val, or nil when val is the zero value.
func NonZero[T comparable](val T) *T {
	var zero T
	if val == zero {
		return nil
	}
	return &val
}
