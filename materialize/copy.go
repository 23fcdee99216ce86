package materialize

import (
	"errors"
	"fmt"
	"maps"
	"reflect"

	"github.com/mitchellh/copystructure"
	"gonum.org/v1/gonum/mat"
)

// ErrCopy is returned when a stored result cannot be deep-copied.
var ErrCopy = errors.New("materialize: deep copy failed")

// Copier is implemented by results that know how to deep-copy themselves.
// It takes precedence over the generic structural copy, which cannot see
// unexported fields. Struct types nested inside a result are honoured too;
// their DeepCopy must return the same type or a pointer to it.
type Copier interface {
	DeepCopy() any
}

// Materializer applies a copy policy to one operation's results.
type Materializer struct {
	// CopyOnHit makes every hit return a deep copy of the stored result
	// instead of the stored instance.
	CopyOnHit bool
}

// Store prepares a freshly computed result for storage.
func (m Materializer) Store(v any) any {
	return Drain(v)
}

// Retrieve returns what a hit hands to the caller.
func (m Materializer) Retrieve(v any) (any, error) {
	if !m.CopyOnHit || v == nil {
		return v, nil
	}
	return Copy(v)
}

// cloneMatrix copies the gonum types whose storage lives in unexported
// fields, keeping the concrete type. ok is false for any other matrix.
func cloneMatrix(m mat.Matrix) (out mat.Matrix, ok bool) {
	switch c := m.(type) {
	case *mat.Dense:
		if c.IsEmpty() {
			return &mat.Dense{}, true
		}
		return mat.DenseCopyOf(c), true
	case *mat.VecDense:
		var dst mat.VecDense
		if !c.IsEmpty() {
			dst.CloneFromVec(c)
		}
		return &dst, true
	case *mat.SymDense:
		if c.IsEmpty() {
			return &mat.SymDense{}, true
		}
		dst := mat.NewSymDense(c.SymmetricDim(), nil)
		dst.CopySym(c)
		return dst, true
	case *mat.TriDense:
		if c.IsEmpty() {
			return &mat.TriDense{}, true
		}
		n, kind := c.Triangle()
		dst := mat.NewTriDense(n, kind, nil)
		dst.Copy(c)
		return dst, true
	case *mat.BandDense:
		if c.IsEmpty() {
			return &mat.BandDense{}, true
		}
		r, cols := c.Dims()
		kl, ku := c.Bandwidth()
		dst := mat.NewBandDense(r, cols, kl, ku, nil)
		for i := 0; i < r; i++ {
			for j := max(0, i-kl); j < min(cols, i+ku+1); j++ {
				dst.SetBand(i, j, c.At(i, j))
			}
		}
		return dst, true
	case *mat.DiagDense:
		var dst mat.DiagDense
		if !c.IsEmpty() {
			dst.DiagFrom(c)
		}
		return &dst, true
	}
	return nil, false
}

// matrixValueCopier adapts cloneMatrix to copystructure, which hands
// copiers the struct value.
func matrixValueCopier(t reflect.Type) copystructure.CopierFunc {
	return func(v any) (any, error) {
		p := reflect.New(t)
		p.Elem().Set(reflect.ValueOf(v))
		out, _ := cloneMatrix(p.Interface().(mat.Matrix))
		return reflect.ValueOf(out).Elem().Interface(), nil
	}
}

// copiers extends copystructure's defaults with gonum's concrete matrices.
var copiers = func() map[reflect.Type]copystructure.CopierFunc {
	out := maps.Clone(copystructure.Copiers)
	if out == nil {
		out = make(map[reflect.Type]copystructure.CopierFunc)
	}
	for _, m := range []any{mat.Dense{}, mat.VecDense{}, mat.SymDense{}, mat.TriDense{}, mat.BandDense{}, mat.DiagDense{}} {
		t := reflect.TypeOf(m)
		out[t] = matrixValueCopier(t)
	}
	return out
}()

var copierType = reflect.TypeOf((*Copier)(nil)).Elem()

// Copy deep-copies v, keeping its dynamic type. Copier values copy
// themselves and the dense gonum types are cloned into their own type.
// Everything else goes through copystructure, after checking that no
// reachable struct keeps state in unexported fields: such a value fails
// with ErrCopy instead of being copied partially.
func Copy(v any) (any, error) {
	if c, ok := v.(Copier); ok {
		return c.DeepCopy(), nil
	}
	if m, ok := v.(mat.Matrix); ok {
		if rv := reflect.ValueOf(m); rv.Kind() == reflect.Pointer && rv.IsNil() {
			return v, nil
		}
		if out, ok := cloneMatrix(m); ok {
			return out, nil
		}
	}

	w := &copyCheck{copiers: copiers, seen: make(map[uintptr]bool)}
	if err := w.walk(reflect.ValueOf(v)); err != nil {
		return nil, fmt.Errorf("%w: %T: %w", ErrCopy, v, err)
	}
	out, err := copystructure.Config{Copiers: w.copiers}.Copy(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %T: %w", ErrCopy, v, err)
	}
	return out, nil
}

// copyCheck walks a value before copystructure does. It rejects what the
// structural copy would silently drop and registers nested Copier structs.
type copyCheck struct {
	copiers map[reflect.Type]copystructure.CopierFunc
	owned   bool
	seen    map[uintptr]bool
}

func (w *copyCheck) walk(v reflect.Value) error {
	if !v.IsValid() {
		return nil
	}
	t := v.Type()

	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return w.walk(v.Elem())

	case reflect.Pointer:
		if v.IsNil() || w.seen[v.Pointer()] {
			return nil
		}
		w.seen[v.Pointer()] = true
		return w.walk(v.Elem())

	case reflect.Slice, reflect.Array:
		if !needsWalk(t.Elem()) {
			return nil
		}
		for i := 0; i < v.Len(); i++ {
			if err := w.walk(v.Index(i)); err != nil {
				return err
			}
		}
		return nil

	case reflect.Map:
		if !needsWalk(t.Key()) && !needsWalk(t.Elem()) {
			return nil
		}
		iter := v.MapRange()
		for iter.Next() {
			if err := w.walk(iter.Key()); err != nil {
				return err
			}
			if err := w.walk(iter.Value()); err != nil {
				return err
			}
		}
		return nil

	case reflect.Struct:
		if _, ok := w.copiers[t]; ok {
			return nil
		}
		if t.Implements(copierType) || reflect.PointerTo(t).Implements(copierType) {
			w.register(t)
			return nil
		}
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				return fmt.Errorf("%s.%s is unexported; implement Copier", t, f.Name)
			}
			if err := w.walk(v.Field(i)); err != nil {
				return err
			}
		}
	}
	return nil
}

// register adds a copier for a nested struct type implementing Copier. The
// shared table is cloned on first write.
func (w *copyCheck) register(t reflect.Type) {
	if !w.owned {
		w.copiers = maps.Clone(w.copiers)
		w.owned = true
	}
	w.copiers[t] = func(v any) (any, error) {
		p := reflect.New(t)
		p.Elem().Set(reflect.ValueOf(v))
		out := reflect.ValueOf(p.Interface().(Copier).DeepCopy())
		switch {
		case !out.IsValid():
			return nil, fmt.Errorf("%s.DeepCopy returned nil", t)
		case out.Type() == t:
			return out.Interface(), nil
		case out.Kind() == reflect.Pointer && out.Type().Elem() == t && !out.IsNil():
			return out.Elem().Interface(), nil
		}
		return nil, fmt.Errorf("%s.DeepCopy returned %s", t, out.Type())
	}
}

// needsWalk reports whether values of t can reach a struct.
func needsWalk(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return false
	}
	return true
}
