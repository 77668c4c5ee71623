package jsliteral

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// Record is one decoded entry of a literal. Field order follows the source.
type Record struct {
	raw gjson.Result
}

// Get looks up a gjson path such as "modes.0.count".
func (r Record) Get(path string) gjson.Result { return r.raw.Get(path) }

// Has reports whether path exists in the record.
func (r Record) Has(path string) bool { return r.raw.Get(path).Exists() }

// Int returns the integer at path, or def when it is missing.
func (r Record) Int(path string, def int64) int64 {
	v := r.raw.Get(path)
	if !v.Exists() {
		return def
	}
	return v.Int()
}

// String returns the string form of the value at path.
func (r Record) String(path string) string { return r.raw.Get(path).String() }

// Fields lists the top-level field names in source order.
func (r Record) Fields() []string {
	var keys []string
	r.raw.ForEach(func(k, _ gjson.Result) bool {
		keys = append(keys, k.String())
		return true
	})
	return keys
}

// Map decodes the record into plain Go values.
func (r Record) Map() map[string]any {
	m, _ := r.raw.Value().(map[string]any)
	return m
}

// Decode parses normalized JSON into a record list. A top-level object is
// returned as a single record; array elements that aren't objects are skipped.
func Decode(text string) ([]Record, error) {
	if err := validate(text); err != nil {
		return nil, err
	}
	root := gjson.Parse(text)
	switch {
	case root.IsObject():
		return []Record{{raw: root}}, nil
	case root.IsArray():
		var out []Record
		root.ForEach(func(_, v gjson.Result) bool {
			if v.IsObject() {
				out = append(out, Record{raw: v})
			}
			return true
		})
		return out, nil
	}
	return nil, fmt.Errorf("jsliteral: top-level %s is not an object or array", root.Type)
}

// Parse runs the whole pipeline: locate the literal after marker, rewrite it
// to JSON and decode its records.
func Parse(text, marker string) ([]Record, error) {
	lit, err := Extract(text, marker)
	if err != nil {
		return nil, err
	}
	js, err := Normalize(lit.Wrapped())
	if err != nil {
		return nil, err
	}
	return Decode(js)
}
