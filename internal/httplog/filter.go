package httplog

import (
	"reflect"
	"time"
)

// FilteredValue replaces the value of every redacted key.
const FilteredValue = "[FILTERED]"

// maxScalarLen caps logged string scalars at 501 characters (runes, not
// bytes, so multi-byte sequences are never split).
const maxScalarLen = 501

// KeySet builds the lookup set Filter matches mapping keys against.
func KeySet(keys []string) map[string]struct{} {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}

// Filter walks an arbitrarily nested parameter tree and returns a
// structure-preserving copy with every mapping entry whose key is in the
// set replaced by FilteredValue. Matching is exact and case-sensitive and
// applies to mapping keys only; a sensitive word inside a list of strings
// passes through. String scalars are truncated, other scalars are returned
// unchanged. Record-like values (upload descriptors and the like) are
// normalized to a plain map of their exported fields first so redaction
// applies uniformly. The input must be acyclic.
func Filter(tree any, keys map[string]struct{}) any {
	switch v := tree.(type) {
	case nil:
		return nil
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			if _, hit := keys[k]; hit {
				out[k] = FilteredValue
			} else {
				out[k] = Filter(val, keys)
			}
		}
		return out
	case map[string]string:
		out := make(map[string]any, len(v))
		for k, val := range v {
			if _, hit := keys[k]; hit {
				out[k] = FilteredValue
			} else {
				out[k] = truncate(val)
			}
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, el := range v {
			out[i] = Filter(el, keys)
		}
		return out
	case []string:
		out := make([]any, len(v))
		for i, el := range v {
			out[i] = truncate(el)
		}
		return out
	case string:
		return truncate(v)
	case time.Time:
		return v
	default:
		return filterReflect(v, keys)
	}
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) > maxScalarLen {
		return string(r[:maxScalarLen])
	}
	return s
}

// filterReflect handles the shapes the type switch cannot name: typed maps
// with string keys, typed slices, and structs.
func filterReflect(v any, keys map[string]struct{}) any {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return v
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return v
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k := iter.Key().String()
			if _, hit := keys[k]; hit {
				out[k] = FilteredValue
			} else {
				out[k] = Filter(iter.Value().Interface(), keys)
			}
		}
		return out
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = Filter(rv.Index(i).Interface(), keys)
		}
		return out
	case reflect.Struct:
		if rv.Type() == reflect.TypeOf(time.Time{}) {
			return rv.Interface()
		}
		return Filter(structToMap(rv), keys)
	}
	return v
}

func structToMap(rv reflect.Value) map[string]any {
	rt := rv.Type()
	out := make(map[string]any, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if f.PkgPath != "" {
			continue
		}
		out[f.Name] = rv.Field(i).Interface()
	}
	return out
}
