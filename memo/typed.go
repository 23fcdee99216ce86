package memo

import "github.com/on-the-ground/memo_ive_go/shared/helper"

// Call invokes op and asserts its result to T.
func Call[T any](op *Operation, recv any, positional []any, keyword map[string]any) (T, error) {
	return helper.GetTypedValueOf[T](func() (any, error) {
		return op.Call(recv, positional, keyword)
	})
}
