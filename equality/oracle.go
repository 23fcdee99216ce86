// Package equality decides whether two argument values, or two canonical
// argument mappings, are the same for caching purposes.
//
// Values dispatch to one of three variants (see Classify):
//
//   - scalar (text, bool, integers): compared by value;
//   - identity-bearing (Stateful): the same only if identical;
//   - array-like (everything else): equal shapes, then every element within
//     an absolute Tolerance. Integer elements are widened to float64 first.
//
// Identity always short-circuits to true. Comparison never fails: values that
// cannot be compared are reported as different.
package equality

import (
	"reflect"

	"github.com/on-the-ground/memo_ive_go/params"
)

// maxDepth bounds the structural walk so cyclic values terminate.
const maxDepth = 64

// SameValue reports whether a and b are interchangeable as arguments.
func SameValue(a, b any) bool {
	return sameValue(reflect.ValueOf(a), reflect.ValueOf(b), 0)
}

func sameValue(a, b reflect.Value, depth int) bool {
	if depth > maxDepth {
		return false
	}
	a, b = indirectInterface(a), indirectInterface(b)

	if identical(a, b) {
		return true
	}
	if !a.IsValid() || !b.IsValid() {
		return false
	}

	ka, kb := classify(a), classify(b)
	switch {
	case ka == KindScalar && kb == KindScalar:
		return sameScalar(a, b)
	case ka == KindIdentity || kb == KindIdentity:
		return false
	}

	va, aok := numericView(a)
	vb, bok := numericView(b)
	if aok && bok {
		return va.allClose(vb)
	}
	if arrayCapable(a) || arrayCapable(b) {
		return false
	}
	return sameStructure(a, b, depth)
}

// arrayCapable reports whether v declares itself an array. Such values are
// compared numerically or not at all.
func arrayCapable(v reflect.Value) bool {
	t := v.Type()
	return t.Implements(ndarrayType) || t.Implements(matrixType)
}

func sameScalar(a, b reflect.Value) bool {
	switch {
	case a.Kind() == reflect.String && b.Kind() == reflect.String:
		return a.String() == b.String()
	case a.Kind() == reflect.Bool && b.Kind() == reflect.Bool:
		return a.Bool() == b.Bool()
	}

	an, aok := integer(a)
	bn, bok := integer(b)
	return aok && bok && an == bn
}

// signedMagnitude keeps integers of any width and signedness comparable.
type signedMagnitude struct {
	negative  bool
	magnitude uint64
}

func integer(v reflect.Value) (signedMagnitude, bool) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := v.Int()
		if n < 0 {
			return signedMagnitude{negative: true, magnitude: uint64(-(n + 1)) + 1}, true
		}
		return signedMagnitude{magnitude: uint64(n)}, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return signedMagnitude{magnitude: v.Uint()}, true
	}
	return signedMagnitude{}, false
}

// sameStructure compares non-numeric containers element by element.
func sameStructure(a, b reflect.Value, depth int) bool {
	switch a.Kind() {
	case reflect.Pointer:
		if b.Kind() != reflect.Pointer || a.Type() != b.Type() || a.IsNil() || b.IsNil() {
			return false
		}
		return sameValue(a.Elem(), b.Elem(), depth+1)

	case reflect.Slice, reflect.Array:
		if b.Kind() != reflect.Slice && b.Kind() != reflect.Array {
			return false
		}
		if a.Len() != b.Len() {
			return false
		}
		for i := 0; i < a.Len(); i++ {
			if !sameValue(a.Index(i), b.Index(i), depth+1) {
				return false
			}
		}
		return true

	case reflect.Map:
		if b.Kind() != reflect.Map || a.Type().Key() != b.Type().Key() || a.Len() != b.Len() {
			return false
		}
		iter := a.MapRange()
		for iter.Next() {
			bv := b.MapIndex(iter.Key())
			if !bv.IsValid() || !sameValue(iter.Value(), bv, depth+1) {
				return false
			}
		}
		return true

	case reflect.Struct:
		if a.Type() != b.Type() {
			return false
		}
		for i := 0; i < a.NumField(); i++ {
			if !sameValue(a.Field(i), b.Field(i), depth+1) {
				return false
			}
		}
		return true
	}
	return false
}

// Set is a set of parameter names excluded from comparison.
type Set map[string]struct{}

// NewSet builds a Set from names.
func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

// Contains reports whether name is in the set. A nil Set is empty.
func (s Set) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

// SameArgs reports whether two canonical mappings are equal over the union
// of their keys minus ignored. A key bound on only one side makes them
// different; a missing key is never treated as its default.
func SameArgs(a, b params.Args, ignored Set) bool {
	for k, av := range a {
		if ignored.Contains(k) {
			continue
		}
		bv, ok := b[k]
		if !ok || !SameValue(av, bv) {
			return false
		}
	}
	for k := range b {
		if ignored.Contains(k) {
			continue
		}
		if _, ok := a[k]; !ok {
			return false
		}
	}
	return true
}
