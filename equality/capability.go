package equality

import (
	"reflect"

	"gonum.org/v1/gonum/mat"
)

// Stateful marks identity-bearing objects: values whose meaningful identity
// is not captured by their content, such as live simulation sessions. Two
// Stateful values are the same only when they are the same instance.
type Stateful interface {
	Stateful()
}

// NDArray is a dense numeric array. Flat returns the elements in row-major
// order; its length must equal the product of Shape.
type NDArray interface {
	Shape() []int
	Flat() []float64
}

// Kind is the comparison variant a value dispatches to.
type Kind int

const (
	// KindScalar covers text, booleans, integers and nil. Compared by value.
	KindScalar Kind = iota
	// KindIdentity covers Stateful values. Compared by identity only.
	KindIdentity
	// KindArray covers everything else. Compared by shape, then by
	// element within Tolerance.
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindIdentity:
		return "identity"
	default:
		return "array"
	}
}

var (
	statefulType = reflect.TypeOf((*Stateful)(nil)).Elem()
	ndarrayType  = reflect.TypeOf((*NDArray)(nil)).Elem()
	matrixType   = reflect.TypeOf((*mat.Matrix)(nil)).Elem()
)

// Classify returns the comparison variant of v.
func Classify(v any) Kind {
	return classify(indirectInterface(reflect.ValueOf(v)))
}

func classify(v reflect.Value) Kind {
	if !v.IsValid() {
		return KindScalar
	}
	if isStateful(v.Type()) {
		return KindIdentity
	}
	if isScalarKind(v.Kind()) {
		return KindScalar
	}
	return KindArray
}

func isStateful(t reflect.Type) bool {
	if t.Implements(statefulType) {
		return true
	}
	return t.Kind() != reflect.Pointer && t.Kind() != reflect.Interface && reflect.PointerTo(t).Implements(statefulType)
}

func isScalarKind(k reflect.Kind) bool {
	switch k {
	case reflect.String, reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	default:
		return false
	}
}

func indirectInterface(v reflect.Value) reflect.Value {
	for v.IsValid() && v.Kind() == reflect.Interface {
		v = v.Elem()
	}
	return v
}
