// Package materialize turns computed results into values that are safe to
// store and hand out again: lazily produced sequences are drained into
// slices before storage, and hits may be deep-copied on the way out.
package materialize

import "reflect"

// Lazy is implemented by results that produce their content on demand.
// Materialize is called once, before the result is stored.
type Lazy interface {
	Materialize() any
}

// Pair is one element drained from a two-valued sequence.
type Pair struct {
	Key   any
	Value any
}

// Drain fully consumes a lazily produced value and returns a replayable one:
//
//   - iter.Seq[T] (any func(func(T) bool)) becomes []T;
//   - iter.Seq2[K, V] becomes []Pair;
//   - a receive-capable channel is read until closed into []T;
//   - a Lazy value is replaced by its drained Materialize result.
//
// Anything else is returned unchanged. Draining an unclosed channel blocks.
func Drain(v any) any {
	if l, ok := v.(Lazy); ok {
		return Drain(l.Materialize())
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Func:
		if rv.IsNil() {
			return v
		}
		if out, ok := drainSeq(rv); ok {
			return out
		}
	case reflect.Chan:
		if rv.IsNil() || rv.Type().ChanDir()&reflect.RecvDir == 0 {
			return v
		}
		return drainChan(rv)
	}
	return v
}

// IsLazy reports whether Drain would replace v.
func IsLazy(v any) bool {
	if _, ok := v.(Lazy); ok {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Func:
		_, arity := seqYield(rv.Type())
		return !rv.IsNil() && arity > 0
	case reflect.Chan:
		return !rv.IsNil() && rv.Type().ChanDir()&reflect.RecvDir != 0
	}
	return false
}

// seqYield returns the yield type of a range-over-func signature and the
// number of values it yields, or 0 when t is not such a signature.
func seqYield(t reflect.Type) (reflect.Type, int) {
	if t.NumIn() != 1 || t.NumOut() != 0 {
		return nil, 0
	}
	yt := t.In(0)
	if yt.Kind() != reflect.Func || yt.NumOut() != 1 || yt.Out(0).Kind() != reflect.Bool {
		return nil, 0
	}
	switch yt.NumIn() {
	case 1, 2:
		return yt, yt.NumIn()
	}
	return nil, 0
}

func drainSeq(fn reflect.Value) (any, bool) {
	yt, arity := seqYield(fn.Type())
	if arity == 0 {
		return nil, false
	}
	more := []reflect.Value{reflect.ValueOf(true).Convert(yt.Out(0))}

	if arity == 1 {
		out := reflect.MakeSlice(reflect.SliceOf(yt.In(0)), 0, 0)
		yield := reflect.MakeFunc(yt, func(in []reflect.Value) []reflect.Value {
			out = reflect.Append(out, in[0])
			return more
		})
		fn.Call([]reflect.Value{yield})
		return out.Interface(), true
	}

	pairs := make([]Pair, 0)
	yield := reflect.MakeFunc(yt, func(in []reflect.Value) []reflect.Value {
		pairs = append(pairs, Pair{Key: in[0].Interface(), Value: in[1].Interface()})
		return more
	})
	fn.Call([]reflect.Value{yield})
	return pairs, true
}

func drainChan(ch reflect.Value) any {
	out := reflect.MakeSlice(reflect.SliceOf(ch.Type().Elem()), 0, 0)
	for {
		x, ok := ch.Recv()
		if !ok {
			return out.Interface()
		}
		out = reflect.Append(out, x)
	}
}
