package params

import (
	"fmt"
	"sort"
)

// Args is the canonical argument mapping of one invocation: parameter name to
// bound value.
type Args map[string]any

// Clone returns a shallow copy of a.
func (a Args) Clone() Args {
	out := make(Args, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Keys returns the bound names, sorted.
func (a Args) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Bind canonicalizes one call. The mapping is seeded with the declared
// defaults, then overwritten by positional values matched by index, then by
// keyword values matched by name.
//
// Keyword values win over positional values bound to the same name.
func (s Spec) Bind(positional []any, keyword map[string]any) (Args, error) {
	if len(positional) > len(s.positional) {
		return nil, fmt.Errorf("%w: got %d, accepts %d", ErrTooManyArguments, len(positional), len(s.positional))
	}

	args := s.defaults.Clone()
	for i, v := range positional {
		args[s.params[s.positional[i]].Name] = v
	}
	for name, v := range keyword {
		if !s.Has(name) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownParameter, name)
		}
		args[name] = v
	}

	for _, p := range s.params {
		if _, ok := args[p.Name]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingArgument, p.Name)
		}
	}
	return args, nil
}

// Defaults returns a copy of the declared defaults.
func (s Spec) Defaults() Args {
	return s.defaults.Clone()
}
