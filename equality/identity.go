package equality

import "reflect"

// Identical reports whether a and b are the same object: both nil, the same
// pointer, map or channel, slices over the same backing array with equal
// length, or comparable values that are ==.
func Identical(a, b any) bool {
	return identical(indirectInterface(reflect.ValueOf(a)), indirectInterface(reflect.ValueOf(b)))
}

func identical(a, b reflect.Value) bool {
	if !a.IsValid() || !b.IsValid() {
		return !a.IsValid() && !b.IsValid()
	}
	if a.Type() != b.Type() {
		return false
	}

	switch a.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.UnsafePointer:
		return a.Pointer() == b.Pointer()
	case reflect.Func:
		// Code pointers are shared between closures; only nil is certain.
		return a.IsNil() && b.IsNil()
	case reflect.Slice:
		if a.IsNil() || b.IsNil() {
			return a.IsNil() && b.IsNil()
		}
		return a.Len() == b.Len() && a.Pointer() == b.Pointer()
	}

	if !a.Comparable() || !b.Comparable() {
		return false
	}
	return a.Equal(b)
}
