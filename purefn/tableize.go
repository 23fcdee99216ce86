package purefn

import (
	"fmt"

	"github.com/on-the-ground/memo_ive_go/memo"
	"github.com/on-the-ground/memo_ive_go/params"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Option adjusts the memo configuration of a tableized function.
type Option func(*options)

type options struct {
	cfg   memo.Config
	names []string
	out   **memo.Operation
}

// WithName names the table in logs and metrics.
func WithName(name string) Option {
	return func(o *options) { o.cfg.Name = name }
}

// WithNames names the inputs in order. The count must match the arity.
func WithNames(names ...string) Option {
	return func(o *options) { o.names = names }
}

// WithIgnored excludes named inputs from the equality check.
func WithIgnored(names ...string) Option {
	return func(o *options) { o.cfg.Ignored = names }
}

// WithCopyOnHit makes hits return deep copies of the stored outputs.
func WithCopyOnHit() Option {
	return func(o *options) { o.cfg.CopyOnHit = true }
}

// WithLogger sets the logger of the table.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.cfg.Logger = logger }
}

// WithMeter sets the meter of the table.
func WithMeter(meter metric.Meter) Option {
	return func(o *options) { o.cfg.Meter = meter }
}

// WithOperation exposes the underlying Operation through op.
func WithOperation(op **memo.Operation) Option {
	return func(o *options) { o.out = op }
}

func TableizeI1O1[I1, O1 any](
	pureFn func(I1) O1,
	opts ...Option,
) func(I1) O1 {
	tableized := tableize(1,
		func(args ...any) O1 {
			return pureFn(as[I1](args[0]))
		},
		opts,
	)
	return func(i1 I1) O1 {
		return tableized(i1)
	}
}

func TableizeI2O1[I1, I2, O1 any](
	pureFn func(I1, I2) O1,
	opts ...Option,
) func(I1, I2) O1 {
	tableized := tableize(2,
		func(args ...any) O1 {
			return pureFn(as[I1](args[0]), as[I2](args[1]))
		},
		opts,
	)
	return func(i1 I1, i2 I2) O1 {
		return tableized(i1, i2)
	}
}

func TableizeI3O1[I1, I2, I3, O1 any](
	pureFn func(I1, I2, I3) O1,
	opts ...Option,
) func(I1, I2, I3) O1 {
	tableized := tableize(3,
		func(args ...any) O1 {
			return pureFn(as[I1](args[0]), as[I2](args[1]), as[I3](args[2]))
		},
		opts,
	)
	return func(i1 I1, i2 I2, i3 I3) O1 {
		return tableized(i1, i2, i3)
	}
}

func TableizeI4O1[I1, I2, I3, I4, O1 any](
	pureFn func(I1, I2, I3, I4) O1,
	opts ...Option,
) func(I1, I2, I3, I4) O1 {
	tableized := tableize(4,
		func(args ...any) O1 {
			return pureFn(as[I1](args[0]), as[I2](args[1]), as[I3](args[2]), as[I4](args[3]))
		},
		opts,
	)
	return func(i1 I1, i2 I2, i3 I3, i4 I4) O1 {
		return tableized(i1, i2, i3, i4)
	}
}

// as asserts v to T, mapping nil to the zero T.
func as[T any](v any) T {
	t, _ := v.(T)
	return t
}

// tableize builds the shared memo.Operation behind every arity. It panics on
// an invalid configuration, like params.MustSpec.
func tableize[O any](
	arity int,
	pureFn func(...any) O,
	opts []Option,
) func(...any) O {
	o := options{cfg: memo.Config{Name: fmt.Sprintf("purefn.tableize%d", arity)}}
	for _, opt := range opts {
		opt(&o)
	}
	names := o.names
	if names == nil {
		names = make([]string, arity)
		for i := range names {
			names[i] = fmt.Sprintf("i%d", i+1)
		}
	}
	if len(names) != arity {
		panic(fmt.Sprintf("purefn: %d input names for %d inputs", len(names), arity))
	}

	ps := make([]params.Param, arity)
	for i, n := range names {
		ps[i] = params.Required(n)
	}
	o.cfg.Params = params.MustSpec(ps...)

	op := memo.MustNew(o.cfg, func(_ any, args params.Args) (any, error) {
		in := make([]any, arity)
		for i, n := range names {
			in[i] = args[n]
		}
		return pureFn(in...), nil
	})
	if o.out != nil {
		*o.out = op
	}

	return func(args ...any) O {
		bound := make(params.Args, arity)
		for i, n := range names {
			bound[n] = args[i]
		}
		v, err := op.CallArgs(nil, bound)
		if err != nil {
			// Pure functions cannot fail; only a copy-on-hit failure lands here.
			panic(err)
		}
		return output[O](v)
	}
}
