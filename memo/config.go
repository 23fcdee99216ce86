package memo

import (
	"errors"
	"fmt"

	"github.com/on-the-ground/memo_ive_go/params"
	"github.com/on-the-ground/memo_ive_go/store"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

var (
	// ErrNilFunc is returned when no underlying operation is supplied.
	ErrNilFunc = errors.New("memo: nil operation")
	// ErrUnknownIgnoredParameter is returned when an ignored name is not a
	// declared parameter of the operation.
	ErrUnknownIgnoredParameter = errors.New("memo: ignored parameter is not declared")
)

// Config configures one memoized operation.
type Config struct {
	// Name identifies the operation, conventionally "Type.method".
	Name string
	// Params is the operation's parameter list, receiver excluded.
	Params params.Spec
	// Ignored names parameters left out of the equality check.
	Ignored []string
	// CopyOnHit makes hits return a deep copy of the stored result.
	CopyOnHit bool
	// Serialize makes equal concurrent calls compute at most once. A
	// serialized operation must not call itself.
	Serialize bool
	// Hooks run after the built-in metrics hooks.
	Hooks  store.Hooks
	Logger *zap.Logger
	// Meter records hit, miss, error and compute duration instruments.
	// Defaults to a no-op meter.
	Meter metric.Meter
}

func (c Config) validate() error {
	for _, name := range c.Ignored {
		if !c.Params.Has(name) {
			return fmt.Errorf("%w: %s(%q)", ErrUnknownIgnoredParameter, c.Name, name)
		}
	}
	return nil
}
