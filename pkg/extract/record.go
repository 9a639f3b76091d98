package extract

import (
	"sort"

	gojson "github.com/goccy/go-json"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Record is the key to value mapping produced for one row. Keys keep the
// order in which they were first set; setting an existing key replaces its
// value without moving it.
//
// A nil *Record means the extractor produced no result for the row.
type Record struct {
	keys   []string
	values map[string]any
	// root is the decoded document the record was built from when it is
	// not an object, e.g. a top-level JSON array
	root any
}

// NewRecord creates an empty record
func NewRecord() *Record {
	return &Record{values: make(map[string]any)}
}

// RecordFromMap builds a record from m with keys in sorted order
func RecordFromMap(m map[string]any) *Record {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rec := NewRecord()
	for _, k := range keys {
		rec.Set(k, m[k])
	}
	return rec
}

// Set stores value under key
func (r *Record) Set(key string, value any) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the value stored under key
func (r *Record) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys returns the keys in insertion order. The slice must not be modified.
func (r *Record) Keys() []string {
	return r.keys
}

// Len returns the number of keys
func (r *Record) Len() int {
	return len(r.keys)
}

// Map returns the record's values as a plain map. The map is shared with
// the record and must not be modified.
func (r *Record) Map() map[string]any {
	return r.values
}

// document returns the value JSONPath expressions are evaluated against
func (r *Record) document() any {
	if r.root != nil {
		return r.root
	}
	return r.values
}

// MarshalJSON encodes the record as a JSON object preserving key order
func (r *Record) MarshalJSON() ([]byte, error) {
	om := orderedmap.New[string, any]()
	for _, k := range r.keys {
		om.Set(k, r.values[k])
	}
	return gojson.Marshal(om)
}
