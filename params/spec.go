// Package params describes the parameter list of a memoized operation and
// binds positional and keyword arguments to a canonical, name-keyed mapping.
//
// A Spec is supplied by the integration layer once per operation. It is never
// recovered by reflecting over a Go func, because Go funcs carry no parameter
// names or defaults.
package params

import "fmt"

// Kind classifies how a parameter may be supplied.
type Kind int

const (
	// Positional parameters bind by index or by name.
	Positional Kind = iota
	// KeywordOnly parameters bind by name only.
	KeywordOnly
	// VarPositional collects any extra positional values. Not bindable.
	VarPositional
	// VarKeyword collects any extra keyword values. Not bindable.
	VarKeyword
)

func (k Kind) String() string {
	switch k {
	case Positional:
		return "positional"
	case KeywordOnly:
		return "keyword-only"
	case VarPositional:
		return "var-positional"
	case VarKeyword:
		return "var-keyword"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Param is one declared parameter of an operation, receiver excluded.
type Param struct {
	Name       string
	Kind       Kind
	Default    any
	HasDefault bool
}

// Required declares a positional parameter without a default.
func Required(name string) Param {
	return Param{Name: name, Kind: Positional}
}

// Optional declares a positional parameter with a default value.
func Optional(name string, def any) Param {
	return Param{Name: name, Kind: Positional, Default: def, HasDefault: true}
}

// Keyword declares a keyword-only parameter with a default value.
func Keyword(name string, def any) Param {
	return Param{Name: name, Kind: KeywordOnly, Default: def, HasDefault: true}
}

// RequiredKeyword declares a keyword-only parameter without a default.
func RequiredKeyword(name string) Param {
	return Param{Name: name, Kind: KeywordOnly}
}

// Variadic declares a parameter collecting extra positional values.
// A Spec containing it is rejected by NewSpec.
func Variadic(name string) Param {
	return Param{Name: name, Kind: VarPositional}
}

// VariadicKeywords declares a parameter collecting extra keyword values.
// A Spec containing it is rejected by NewSpec.
func VariadicKeywords(name string) Param {
	return Param{Name: name, Kind: VarKeyword}
}

// Spec is the immutable, ordered parameter list of an operation.
type Spec struct {
	params     []Param
	index      map[string]int
	positional []int
	defaults   Args
}

// NewSpec validates params and returns the Spec describing them.
func NewSpec(params ...Param) (Spec, error) {
	s := Spec{
		params:   make([]Param, 0, len(params)),
		index:    make(map[string]int, len(params)),
		defaults: make(Args),
	}
	sawDefault := false
	for i, p := range params {
		if p.Name == "" {
			return Spec{}, fmt.Errorf("%w: parameter #%d", ErrEmptyName, i)
		}
		if p.Kind == VarPositional || p.Kind == VarKeyword {
			return Spec{}, fmt.Errorf("%w: %q is %s", ErrVariadic, p.Name, p.Kind)
		}
		if _, dup := s.index[p.Name]; dup {
			return Spec{}, fmt.Errorf("%w: %q", ErrDuplicateParameter, p.Name)
		}
		if p.Kind == Positional {
			if p.HasDefault {
				sawDefault = true
			} else if sawDefault {
				return Spec{}, fmt.Errorf("%w: %q", ErrDefaultOrder, p.Name)
			}
			s.positional = append(s.positional, len(s.params))
		}
		if p.HasDefault {
			s.defaults[p.Name] = p.Default
		}
		s.index[p.Name] = len(s.params)
		s.params = append(s.params, p)
	}
	return s, nil
}

// MustSpec is NewSpec that panics on an invalid parameter list.
// Intended for package-level operation tables.
func MustSpec(params ...Param) Spec {
	s, err := NewSpec(params...)
	if err != nil {
		panic(err)
	}
	return s
}

// Has reports whether name is a declared parameter.
func (s Spec) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Names returns the declared parameter names in declaration order.
func (s Spec) Names() []string {
	names := make([]string, len(s.params))
	for i, p := range s.params {
		names[i] = p.Name
	}
	return names
}

// Params returns a copy of the declared parameters.
func (s Spec) Params() []Param {
	return append([]Param(nil), s.params...)
}

// Len is the number of declared parameters.
func (s Spec) Len() int {
	return len(s.params)
}
