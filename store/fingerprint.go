package store

import (
	"reflect"

	"github.com/cespare/xxhash/v2"
	"github.com/on-the-ground/memo_ive_go/equality"
	"github.com/on-the-ground/memo_ive_go/params"
)

// wildcard stands for any value whose equality is tolerance- or
// identity-based and therefore cannot be hashed.
const wildcard = "*"

// fingerprint hashes the compared key set of args together with the values
// that only ever equal an identical rendering (text and booleans). Mappings
// that compare equal always share a fingerprint; the converse does not hold.
func fingerprint(args params.Args, ignored equality.Set) uint64 {
	d := xxhash.New()
	for _, k := range args.Keys() {
		if ignored.Contains(k) {
			continue
		}
		_, _ = d.WriteString(k)
		_, _ = d.Write([]byte{0})
		_, _ = d.WriteString(token(args[k]))
		_, _ = d.Write([]byte{0})
	}
	return d.Sum64()
}

func token(v any) string {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && rv.Kind() == reflect.Interface {
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return wildcard
	}
	switch rv.Kind() {
	case reflect.String:
		return "s" + rv.String()
	case reflect.Bool:
		if rv.Bool() {
			return "t"
		}
		return "f"
	}
	// Integers stay wildcards: 1 and 1.0 compare equal.
	return wildcard
}
