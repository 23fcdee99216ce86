package equality

import (
	"math"
	"math/cmplx"
	"reflect"

	"gonum.org/v1/gonum/mat"
)

// Tolerance is the absolute tolerance for numeric elements. There is no
// relative term: |a-b| <= Tolerance.
//
// Integer elements of arrays and slices are compared as float64, so above
// 2^53 adjacent integers in an array compare equal. A bare integer argument
// is a scalar and is always compared exactly.
const Tolerance = 1e-8

// Close reports whether two floats are within Tolerance. NaN is never close
// to anything; infinities are close only to themselves.
func Close(a, b float64) bool {
	if a == b {
		return true
	}
	if math.IsNaN(a) || math.IsNaN(b) || math.IsInf(a, 0) || math.IsInf(b, 0) {
		return false
	}
	return math.Abs(a-b) <= Tolerance
}

func closeComplex(a, b complex128) bool {
	if a == b {
		return true
	}
	if cmplx.IsNaN(a) || cmplx.IsNaN(b) || cmplx.IsInf(a) || cmplx.IsInf(b) {
		return false
	}
	return cmplx.Abs(a-b) <= Tolerance
}

// AllClose reports whether a and b have the same shape and every pair of
// elements is within Tolerance. Both must be numeric (numbers, NDArray,
// gonum matrices or rectangular nested slices of those); anything else is
// reported as not close.
func AllClose(a, b any) bool {
	va, ok := numericView(indirectInterface(reflect.ValueOf(a)))
	if !ok {
		return false
	}
	vb, ok := numericView(indirectInterface(reflect.ValueOf(b)))
	if !ok {
		return false
	}
	return va.allClose(vb)
}

// view is a flattened, row-major numeric array.
type view struct {
	shape []int
	data  []complex128
}

func (v view) allClose(o view) bool {
	if len(v.shape) != len(o.shape) {
		return false
	}
	for i := range v.shape {
		if v.shape[i] != o.shape[i] {
			return false
		}
	}
	if len(v.data) != len(o.data) {
		return false
	}
	for i := range v.data {
		if !closeComplex(v.data[i], o.data[i]) {
			return false
		}
	}
	return true
}

func numericView(v reflect.Value) (view, bool) {
	if !v.IsValid() || isStateful(v.Type()) {
		return view{}, false
	}

	if v.CanInterface() {
		t := v.Type()
		if t.Implements(ndarrayType) {
			if t.Kind() == reflect.Pointer && v.IsNil() {
				return view{}, false
			}
			return ndarrayView(v.Interface().(NDArray))
		}
		if t.Implements(matrixType) {
			if t.Kind() == reflect.Pointer && v.IsNil() {
				return view{}, false
			}
			return matrixView(v.Interface().(mat.Matrix)), true
		}
	}

	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return view{data: []complex128{complex(v.Float(), 0)}}, true
	case reflect.Complex64, reflect.Complex128:
		return view{data: []complex128{v.Complex()}}, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return view{data: []complex128{complex(float64(v.Int()), 0)}}, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return view{data: []complex128{complex(float64(v.Uint()), 0)}}, true
	case reflect.Interface:
		return numericView(indirectInterface(v))
	case reflect.Slice, reflect.Array:
		return sequenceView(v)
	}
	return view{}, false
}

func sequenceView(v reflect.Value) (view, bool) {
	n := v.Len()
	if n == 0 {
		return view{shape: []int{0}}, true
	}

	if fs, ok := float64s(v); ok {
		data := make([]complex128, len(fs))
		for i, f := range fs {
			data[i] = complex(f, 0)
		}
		return view{shape: []int{n}, data: data}, true
	}

	first, ok := numericView(v.Index(0))
	if !ok {
		return view{}, false
	}
	out := view{
		shape: append([]int{n}, first.shape...),
		data:  make([]complex128, 0, n*len(first.data)),
	}
	out.data = append(out.data, first.data...)
	for i := 1; i < n; i++ {
		elem, ok := numericView(v.Index(i))
		if !ok || !sameShape(first.shape, elem.shape) {
			// Ragged or non-numeric: the structural comparison decides.
			return view{}, false
		}
		out.data = append(out.data, elem.data...)
	}
	return out, true
}

func float64s(v reflect.Value) ([]float64, bool) {
	if v.Kind() != reflect.Slice || v.Type().Elem().Kind() != reflect.Float64 || !v.CanInterface() {
		return nil, false
	}
	fs, ok := v.Interface().([]float64)
	return fs, ok
}

func ndarrayView(a NDArray) (view, bool) {
	shape := append([]int(nil), a.Shape()...)
	flat := a.Flat()
	size := 1
	for _, d := range shape {
		size *= d
	}
	if size != len(flat) {
		return view{}, false
	}
	data := make([]complex128, len(flat))
	for i, f := range flat {
		data[i] = complex(f, 0)
	}
	return view{shape: shape, data: data}, true
}

func matrixView(m mat.Matrix) view {
	r, c := m.Dims()
	data := make([]complex128, 0, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			data = append(data, complex(m.At(i, j), 0))
		}
	}
	return view{shape: []int{r, c}, data: data}
}

func sameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
