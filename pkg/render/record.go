// Package render serializes assembled records. A Record keeps its keys in insertion
// order so the same record always renders to the same bytes.
package render

// Field is one key/value entry of a Record.
type Field struct {
	Key   string
	Value any
}

// Record is an ordered mapping. Values may be string, int, bool, []string,
// Record, []Record or []any of those.
type Record []Field

// Set replaces the value of an existing key in place, or appends a new field.
func (r Record) Set(key string, value any) Record {
	for i := range r {
		if r[i].Key == key {
			r[i].Value = value
			return r
		}
	}
	return append(r, Field{Key: key, Value: value})
}

// Get returns the value stored under key.
func (r Record) Get(key string) (any, bool) {
	for _, f := range r {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Keys lists the keys in order.
func (r Record) Keys() []string {
	keys := make([]string, len(r))
	for i, f := range r {
		keys[i] = f.Key
	}
	return keys
}

// Merge sets every field of other onto r, preserving r's positions for shared keys.
func (r Record) Merge(other Record) Record {
	for _, f := range other {
		r = r.Set(f.Key, f.Value)
	}
	return r
}
