package utils

// Value dereferences v, giving the zero value for nil. Used where optional update
// fields are read for logging or display.
func Value[T any](v *T) T {
	if v == nil {
		var zero T
		return zero
	}
	return *v
}

// Ptr returns a pointer to a copy of v, for filling optional fields in update bodies.
func Ptr[T any](v T) *T {
	return &v
}
