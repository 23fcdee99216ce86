package purefn

func TableizeI1O2[I1, O1, O2 any](
	pureFn func(I1) (O1, O2),
	opts ...Option,
) func(I1) (O1, O2) {
	tableized := tableizeDualOutput(1,
		func(args ...any) (O1, O2) {
			return pureFn(as[I1](args[0]))
		},
		opts,
	)
	return func(i1 I1) (O1, O2) {
		return tableized(i1)
	}
}

func TableizeI2O2[I1, I2, O1, O2 any](
	pureFn func(I1, I2) (O1, O2),
	opts ...Option,
) func(I1, I2) (O1, O2) {
	tableized := tableizeDualOutput(2,
		func(args ...any) (O1, O2) {
			return pureFn(as[I1](args[0]), as[I2](args[1]))
		},
		opts,
	)
	return func(i1 I1, i2 I2) (O1, O2) {
		return tableized(i1, i2)
	}
}

func TableizeI3O2[I1, I2, I3, O1, O2 any](
	pureFn func(I1, I2, I3) (O1, O2),
	opts ...Option,
) func(I1, I2, I3) (O1, O2) {
	tableized := tableizeDualOutput(3,
		func(args ...any) (O1, O2) {
			return pureFn(as[I1](args[0]), as[I2](args[1]), as[I3](args[2]))
		},
		opts,
	)
	return func(i1 I1, i2 I2, i3 I3) (O1, O2) {
		return tableized(i1, i2, i3)
	}
}

func TableizeI4O2[I1, I2, I3, I4, O1, O2 any](
	pureFn func(I1, I2, I3, I4) (O1, O2),
	opts ...Option,
) func(I1, I2, I3, I4) (O1, O2) {
	tableized := tableizeDualOutput(4,
		func(args ...any) (O1, O2) {
			return pureFn(as[I1](args[0]), as[I2](args[1]), as[I3](args[2]), as[I4](args[3]))
		},
		opts,
	)
	return func(i1 I1, i2 I2, i3 I3, i4 I4) (O1, O2) {
		return tableized(i1, i2, i3, i4)
	}
}

// result holds both outputs as one stored value. Fields are exported so a
// copy-on-hit deep copy reaches them.
type result[O1 any, O2 any] struct {
	O1 O1
	O2 O2
}

func tableizeDualOutput[O1, O2 any](
	arity int,
	pureFn func(...any) (O1, O2),
	opts []Option,
) func(...any) (O1, O2) {
	tableized := tableize(arity,
		func(args ...any) result[O1, O2] {
			v1, v2 := pureFn(args...)
			return result[O1, O2]{O1: v1, O2: v2}
		},
		opts,
	)
	return func(args ...any) (O1, O2) {
		res := tableized(args...)
		return res.O1, res.O2
	}
}
