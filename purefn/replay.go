package purefn

import (
	"fmt"
	"reflect"

	"github.com/on-the-ground/memo_ive_go/materialize"
)

// output converts a stored value back to the declared output type O. Lazy
// outputs are stored drained, so an iter.Seq or iter.Seq2 output is replayed
// from the stored slice and a channel output is refilled and closed on every
// call. It panics when v cannot become an O.
func output[O any](v any) O {
	if v == nil {
		var zero O
		return zero
	}
	if o, ok := v.(O); ok {
		return o
	}

	ot := reflect.TypeOf((*O)(nil)).Elem()
	sv := reflect.ValueOf(v)
	if sv.Kind() == reflect.Slice {
		switch ot.Kind() {
		case reflect.Func:
			if fn, ok := replaySeq(ot, sv); ok {
				return fn.Interface().(O)
			}
		case reflect.Chan:
			if ot.ChanDir()&reflect.RecvDir != 0 {
				return refill(ot, sv).Interface().(O)
			}
		}
	}
	panic(fmt.Sprintf("purefn: stored output %T cannot be returned as %s", v, ot))
}

// replaySeq builds a range-over-func value of type t yielding the elements
// of s: plain elements for one-value sequences, materialize.Pair halves for
// two-value ones.
func replaySeq(t reflect.Type, s reflect.Value) (reflect.Value, bool) {
	if t.NumIn() != 1 || t.NumOut() != 0 {
		return reflect.Value{}, false
	}
	yt := t.In(0)
	if yt.Kind() != reflect.Func || yt.NumOut() != 1 || yt.Out(0).Kind() != reflect.Bool {
		return reflect.Value{}, false
	}

	switch yt.NumIn() {
	case 1:
		if !s.Type().Elem().AssignableTo(yt.In(0)) {
			return reflect.Value{}, false
		}
		return reflect.MakeFunc(t, func(in []reflect.Value) []reflect.Value {
			yield := in[0]
			for i := 0; i < s.Len(); i++ {
				if !yield.Call([]reflect.Value{s.Index(i)})[0].Bool() {
					break
				}
			}
			return nil
		}), true

	case 2:
		pairs, ok := s.Interface().([]materialize.Pair)
		if !ok {
			return reflect.Value{}, false
		}
		kt, vt := yt.In(0), yt.In(1)
		return reflect.MakeFunc(t, func(in []reflect.Value) []reflect.Value {
			yield := in[0]
			for _, p := range pairs {
				if !yield.Call([]reflect.Value{valueOf(p.Key, kt), valueOf(p.Value, vt)})[0].Bool() {
					break
				}
			}
			return nil
		}), true
	}
	return reflect.Value{}, false
}

// refill returns a closed channel of type t buffered with the elements of s.
func refill(t reflect.Type, s reflect.Value) reflect.Value {
	ch := reflect.MakeChan(reflect.ChanOf(reflect.BothDir, t.Elem()), s.Len())
	for i := 0; i < s.Len(); i++ {
		ch.Send(s.Index(i))
	}
	ch.Close()
	return ch.Convert(t)
}

func valueOf(v any, t reflect.Type) reflect.Value {
	if v == nil {
		return reflect.Zero(t)
	}
	return reflect.ValueOf(v)
}
