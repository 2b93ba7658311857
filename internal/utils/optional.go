// Package utils holds the generic helpers for optional request fields.
package utils

// Ptr returns a pointer to a copy of v.
func Ptr[T any](v T) *T {
	return &v
}

// Value dereferences v, giving the zero value for nil.
func Value[T any](v *T) T {
	var zero T
	return ValueOr(v, zero)
}

// ValueOr dereferences v, giving def for nil.
func ValueOr[T any](v *T, def T) T {
	if v == nil {
		return def
	}
	return *v
}

// Set copies *v into dst when v is non nil. Partial updates use it so absent
// fields keep their stored value.
func Set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// SetPtr replaces the optional field dst when v is non nil. The stored
// pointer never aliases the request.
func SetPtr[T any](dst **T, v *T) {
	if v != nil {
		*dst = Ptr(*v)
	}
}

// SetSlice replaces dst when v is non nil. A non nil empty slice clears it.
func SetSlice[T any](dst *[]T, v []T) {
	if v != nil {
		*dst = append(make([]T, 0, len(v)), v...)
	}
}
