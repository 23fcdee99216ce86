// Package memo wraps an operation with a result cache keyed by approximate
// argument equality.
//
// Each call is bound to a canonical argument mapping, compared against the
// stored calls of the same operation (receiver included) and either answered
// from the first equal entry or computed and appended. Results are never
// evicted.
package memo

import (
	"fmt"

	"github.com/on-the-ground/memo_ive_go/materialize"
	"github.com/on-the-ground/memo_ive_go/params"
	"github.com/on-the-ground/memo_ive_go/store"
	"go.uber.org/zap"
)

// Func is the underlying operation. recv is nil for receiver-less
// operations; args holds every declared parameter.
type Func func(recv any, args params.Args) (any, error)

// Operation is a memoized Func.
type Operation struct {
	name  string
	spec  params.Spec
	fn    Func
	store *store.Store
}

// New wraps fn. Configuration errors are reported here, never per call.
func New(cfg Config, fn Func) (*Operation, error) {
	if fn == nil {
		return nil, fmt.Errorf("%w: %s", ErrNilFunc, cfg.Name)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	m, err := newMetrics(cfg.Meter, cfg.Name)
	if err != nil {
		return nil, fmt.Errorf("memo: %s: metrics: %w", cfg.Name, err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	st := store.New(store.Config{
		Name:         cfg.Name,
		Ignored:      cfg.Ignored,
		Serialize:    cfg.Serialize,
		Materializer: materialize.Materializer{CopyOnHit: cfg.CopyOnHit},
		Hooks:        m.hooks().Then(cfg.Hooks),
		Logger:       logger,
	})

	logger.Debug("memoized operation",
		zap.String("operation", cfg.Name),
		zap.Strings("params", cfg.Params.Names()),
		zap.Strings("ignored", cfg.Ignored),
		zap.Bool("copy_on_hit", cfg.CopyOnHit),
		zap.Bool("serialize", cfg.Serialize),
	)

	return &Operation{
		name:  cfg.Name,
		spec:  cfg.Params,
		fn:    fn,
		store: st,
	}, nil
}

// MustNew is New that panics on a configuration error.
func MustNew(cfg Config, fn Func) *Operation {
	op, err := New(cfg, fn)
	if err != nil {
		panic(err)
	}
	return op
}

// Call binds the arguments and returns the stored or freshly computed
// result. Binding errors are returned before anything runs; errors from the
// operation are returned unchanged and nothing is stored.
func (o *Operation) Call(recv any, positional []any, keyword map[string]any) (any, error) {
	args, err := o.spec.Bind(positional, keyword)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", o.name, err)
	}
	return o.CallArgs(recv, args)
}

// CallArgs is Call with an already canonical mapping.
func (o *Operation) CallArgs(recv any, args params.Args) (any, error) {
	return o.store.LookupOrCompute(recv, args, func() (any, error) {
		return o.fn(recv, args.Clone())
	})
}

// Name returns the configured operation name.
func (o *Operation) Name() string { return o.name }

// Params returns the operation's parameter list.
func (o *Operation) Params() params.Spec { return o.spec }

// Store exposes the operation's entries for inspection.
func (o *Operation) Store() *store.Store { return o.store }
