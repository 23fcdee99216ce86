package intercept

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Config selects which operations of which classes are memoized and how.
// Operation keys have the form "Class.op".
type Config struct {
	// Targets maps a class name to the operations to memoize.
	Targets map[string][]string `yaml:"to_cache"`
	// Ignored maps an operation key to parameter names excluded from the
	// equality check.
	Ignored map[string][]string `yaml:"ignore_arguments"`
	// CopyOnHit lists operation keys whose hits return deep copies.
	CopyOnHit []string `yaml:"copy_policy"`
	// Serialize makes every memoized operation compute at most once per
	// distinct call under concurrency.
	Serialize bool `yaml:"serialize"`

	Logger *zap.Logger  `yaml:"-"`
	Meter  metric.Meter `yaml:"-"`
}

// LoadConfig decodes a YAML configuration:
//
//	to_cache:
//	  Cell: [energy_nuc, ewald]
//	ignore_arguments:
//	  AFTDF.ft_loop: [max_memory]
//	copy_policy: [KRHF.get_hcore]
//
// Unknown top-level fields are rejected.
func LoadConfig(r io.Reader) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("intercept: decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfigFile reads and decodes the YAML configuration at path.
func LoadConfigFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("intercept: open config: %w", err)
	}
	defer f.Close()
	return LoadConfig(f)
}

// Validate checks the shape of operation keys. Whether the named operations
// and parameters exist is checked when a class is bound.
func (c Config) Validate() error {
	for key := range c.Ignored {
		if _, _, err := splitKey(key); err != nil {
			return &ConfigError{Field: "ignore_arguments." + key, Message: err.Error(), Err: err}
		}
	}
	for _, key := range c.CopyOnHit {
		if _, _, err := splitKey(key); err != nil {
			return &ConfigError{Field: "copy_policy", Message: err.Error(), Err: err}
		}
	}
	return nil
}

func (c Config) copyOnHit(key string) bool {
	return slices.Contains(c.CopyOnHit, key)
}

func opKey(class, op string) string {
	return class + "." + op
}

// splitKey splits "Class.op" at its last dot.
func splitKey(key string) (class, op string, err error) {
	i := strings.LastIndexByte(key, '.')
	if i <= 0 || i == len(key)-1 {
		return "", "", fmt.Errorf("%w: %q", ErrMalformedKey, key)
	}
	return key[:i], key[i+1:], nil
}
