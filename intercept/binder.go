package intercept

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/on-the-ground/memo_ive_go/memo"
	"github.com/on-the-ground/memo_ive_go/shared/log"
	"go.uber.org/zap"
)

// Binder derives memoized classes from one Config.
//
// Binding is idempotent: a class name is derived at most once per Binder,
// and methods that are already memoized are never wrapped again, so binding
// a derived class (with this or any other Binder) adds no second cache layer.
// The class name is the identity: binding the same name again with a
// different operation table is a *ConfigError.
type Binder struct {
	cfg    Config
	logger *zap.Logger

	mu    sync.Mutex
	bound map[string]*Class
}

// NewBinder returns a Binder for cfg.
func NewBinder(cfg Config) *Binder {
	return &Binder{
		cfg:    cfg,
		logger: log.OrNop(cfg.Logger),
		bound:  make(map[string]*Class),
	}
}

// Bind returns the class derived from base. Operations listed for base.Name
// in the configuration are memoized; every other operation is the base's
// own. Configuration entries naming unknown operations or parameters are
// reported as a *ConfigError.
func (b *Binder) Bind(base Class) (*Class, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if c, ok := b.bound[base.Name]; ok {
		if !sameTable(*c, base) {
			return nil, &ConfigError{
				Field:   "to_cache." + base.Name,
				Message: fmt.Sprintf("class %s was already bound with a different operation table", base.Name),
				Err:     ErrClassConflict,
			}
		}
		return c, nil
	}
	if err := b.cfg.Validate(); err != nil {
		return nil, err
	}
	if err := b.checkKeys(base); err != nil {
		return nil, err
	}

	derived := &Class{
		Name:    base.Name,
		Ops:     make(map[string]Method, len(base.Ops)),
		derived: true,
	}
	for name, m := range base.Ops {
		derived.Ops[name] = m
	}

	var memoized, kept []string
	for _, name := range b.cfg.Targets[base.Name] {
		m, ok := base.Ops[name]
		if !ok {
			return nil, &ConfigError{
				Field:   "to_cache." + base.Name,
				Message: fmt.Sprintf("class %s has no operation %q", base.Name, name),
				Err:     ErrUnknownOperation,
			}
		}
		if m.Memoized() {
			kept = append(kept, name)
			continue
		}

		key := opKey(base.Name, name)
		op, err := memo.New(memo.Config{
			Name:      key,
			Params:    m.Params,
			Ignored:   b.cfg.Ignored[key],
			CopyOnHit: b.cfg.copyOnHit(key),
			Serialize: b.cfg.Serialize,
			Logger:    b.cfg.Logger,
			Meter:     b.cfg.Meter,
		}, m.Invoke)
		if err != nil {
			return nil, b.configError(key, err)
		}
		derived.Ops[name] = Method{Params: m.Params, Invoke: op.CallArgs, op: op}
		memoized = append(memoized, name)
	}

	b.bound[base.Name] = derived
	log.Emit(b.logger, log.LogInfo, "bound class", map[string]any{
		"class":    base.Name,
		"memoized": memoized,
		"kept":     kept,
	})
	return derived, nil
}

// BindAll binds every class, stopping at the first error. Afterwards every
// class the configuration names must have been bound by b, so BindAll is
// given the complete set of classes at once.
func (b *Binder) BindAll(classes ...Class) (map[string]*Class, error) {
	out := make(map[string]*Class, len(classes))
	for _, c := range classes {
		d, err := b.Bind(c)
		if err != nil {
			return nil, err
		}
		out[c.Name] = d
	}
	if err := b.checkClasses(); err != nil {
		return nil, err
	}
	return out, nil
}

// checkClasses rejects configuration entries naming classes b never bound.
func (b *Binder) checkClasses() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	unknown := func(field, class string) error {
		return &ConfigError{
			Field:   field,
			Message: fmt.Sprintf("no class %s was bound", class),
			Err:     ErrUnknownClass,
		}
	}
	for _, class := range sortedKeys(b.cfg.Targets) {
		if _, ok := b.bound[class]; !ok {
			return unknown("to_cache."+class, class)
		}
	}
	for _, key := range sortedKeys(b.cfg.Ignored) {
		if class, _, err := splitKey(key); err == nil {
			if _, ok := b.bound[class]; !ok {
				return unknown("ignore_arguments."+key, class)
			}
		}
	}
	for _, key := range b.cfg.CopyOnHit {
		if class, _, err := splitKey(key); err == nil {
			if _, ok := b.bound[class]; !ok {
				return unknown("copy_policy", class)
			}
		}
	}
	return nil
}

// checkKeys rejects ignore_arguments and copy_policy entries for base that
// name an operation base does not have, or one to_cache does not memoize.
func (b *Binder) checkKeys(base Class) error {
	check := func(field, key string) error {
		class, op, err := splitKey(key)
		if err != nil || class != base.Name {
			return nil
		}
		if _, ok := base.Ops[op]; !ok {
			return &ConfigError{
				Field:   field,
				Message: fmt.Sprintf("class %s has no operation %q", base.Name, op),
				Err:     ErrUnknownOperation,
			}
		}
		if !slices.Contains(b.cfg.Targets[base.Name], op) {
			return &ConfigError{
				Field:   field,
				Message: fmt.Sprintf("%s is configured but not listed in to_cache", key),
				Err:     ErrNotMemoized,
			}
		}
		return nil
	}

	for _, key := range sortedKeys(b.cfg.Ignored) {
		if err := check("ignore_arguments."+key, key); err != nil {
			return err
		}
	}
	for _, key := range b.cfg.CopyOnHit {
		if err := check("copy_policy", key); err != nil {
			return err
		}
	}
	return nil
}

// sameTable reports whether two classes expose the same operations with the
// same parameter names.
func sameTable(a, b Class) bool {
	if len(a.Ops) != len(b.Ops) {
		return false
	}
	for name, am := range a.Ops {
		bm, ok := b.Ops[name]
		if !ok || !slices.Equal(am.Params.Names(), bm.Params.Names()) {
			return false
		}
	}
	return true
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (b *Binder) configError(key string, err error) error {
	if errors.Is(err, ErrUnknownIgnoredParameter) {
		return &ConfigError{Field: "ignore_arguments." + key, Message: err.Error(), Err: err}
	}
	return &ConfigError{Field: "to_cache", Message: err.Error(), Err: err}
}
