// Package intercept substitutes memoized operations into a type's operation
// table.
//
// A Class is the static operation table of a target type: each Method names
// its parameters explicitly and is invoked with a canonical argument mapping.
// A Binder derives, from a base Class and a Config, a Class whose configured
// operations are routed through a memo.Operation and whose other operations
// are delegated to the base unchanged. Concrete Go types expose the derived
// class through decorator structs that embed the base interface and override
// only the cached methods.
package intercept

import (
	"fmt"

	"github.com/on-the-ground/memo_ive_go/memo"
	"github.com/on-the-ground/memo_ive_go/params"
	"github.com/on-the-ground/memo_ive_go/shared/helper"
)

// Method is one operation of a Class.
type Method struct {
	Params params.Spec
	Invoke memo.Func

	op *memo.Operation
}

// NewMethod declares a method, validating its parameter list.
func NewMethod(invoke memo.Func, ps ...params.Param) (Method, error) {
	spec, err := params.NewSpec(ps...)
	if err != nil {
		return Method{}, &ConfigError{Field: "params", Message: err.Error(), Err: err}
	}
	return Method{Params: spec, Invoke: invoke}, nil
}

// MustMethod is NewMethod that panics on an invalid parameter list.
func MustMethod(invoke memo.Func, ps ...params.Param) Method {
	m, err := NewMethod(invoke, ps...)
	if err != nil {
		panic(err)
	}
	return m
}

// Memoized reports whether calls go through a result cache.
func (m Method) Memoized() bool { return m.op != nil }

// Operation returns the cache behind a memoized method, or nil.
func (m Method) Operation() *memo.Operation { return m.op }

func (m Method) call(recv any, positional []any, keyword map[string]any) (any, error) {
	if m.op != nil {
		return m.op.Call(recv, positional, keyword)
	}
	args, err := m.Params.Bind(positional, keyword)
	if err != nil {
		return nil, err
	}
	return m.Invoke(recv, args)
}

// Class is the operation table of a target type.
type Class struct {
	Name string
	Ops  map[string]Method

	derived bool
}

// Derived reports whether c was produced by a Binder.
func (c *Class) Derived() bool { return c.derived }

// Method looks up an operation.
func (c *Class) Method(op string) (Method, bool) {
	m, ok := c.Ops[op]
	return m, ok
}

// Call invokes op on recv.
func (c *Class) Call(op string, recv any, positional []any, keyword map[string]any) (any, error) {
	m, ok := c.Ops[op]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownOperation, c.Name, op)
	}
	return m.call(recv, positional, keyword)
}

// Call invokes op on recv and asserts its result to T.
func Call[T any](c *Class, op string, recv any, positional []any, keyword map[string]any) (T, error) {
	return helper.GetTypedValueOf[T](func() (any, error) {
		return c.Call(op, recv, positional, keyword)
	})
}
