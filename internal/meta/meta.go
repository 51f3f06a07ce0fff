// Package meta reads loosely-typed activity metadata through ordered alias
// rules. A concept such as "budget" is a list of keys tried in order; the
// first key holding a non-null value wins.
package meta

import (
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Keys is an ordered accessor rule: try each key in turn.
type Keys []string

// Record is a read-only view over one raw JSON object from a timeline.
type Record struct {
	raw string
}

// New wraps a raw JSON object. Anything that is not an object behaves as an
// empty record.
func New(raw string) Record {
	if !gjson.Valid(raw) || !gjson.Parse(raw).IsObject() {
		return Record{}
	}
	return Record{raw: raw}
}

// FromResult wraps a gjson result.
func FromResult(res gjson.Result) Record {
	if !res.IsObject() {
		return Record{}
	}
	return Record{raw: res.Raw}
}

// Raw returns the underlying JSON text ("" for an empty record).
func (r Record) Raw() string { return r.raw }

// IsZero reports whether the record holds no object.
func (r Record) IsZero() bool { return r.raw == "" }

// Get returns the value at a gjson path.
func (r Record) Get(path string) gjson.Result {
	if r.raw == "" {
		return gjson.Result{}
	}
	return gjson.Get(r.raw, path)
}

// First returns the first key whose value exists and is not JSON null.
func (r Record) First(keys ...string) (gjson.Result, bool) {
	for _, k := range keys {
		v := r.Get(k)
		if v.Exists() && v.Type != gjson.Null {
			return v, true
		}
	}
	return gjson.Result{}, false
}

// Object returns the first non-null key as a nested record.
func (r Record) Object(keys ...string) Record {
	v, ok := r.First(keys...)
	if !ok {
		return Record{}
	}
	return FromResult(v)
}

// String returns the first non-null key rendered as a string.
func (r Record) String(keys ...string) (string, bool) {
	v, ok := r.First(keys...)
	if !ok {
		return "", false
	}
	return v.String(), true
}

// Number returns the first non-null key coerced with ToNumber.
func (r Record) Number(keys ...string) float64 {
	v, ok := r.First(keys...)
	if !ok {
		return 0
	}
	return ToNumber(v)
}

// Text returns the first non-null key as trimmed lower-case text.
func (r Record) Text(keys ...string) string {
	s, _ := r.String(keys...)
	return strings.ToLower(strings.TrimSpace(s))
}

// Truthy reports whether any of the keys holds a truthy value.
func (r Record) Truthy(keys ...string) bool {
	for _, k := range keys {
		if Truthy(r.Get(k)) {
			return true
		}
	}
	return false
}

// Contains reports whether any key's lower-cased text contains substr.
func (r Record) Contains(substr string, keys ...string) bool {
	for _, k := range keys {
		if strings.Contains(strings.ToLower(r.Get(k).String()), substr) {
			return true
		}
	}
	return false
}

// Present reports whether the first non-null key carries a signal: a
// non-empty array, or any truthy scalar or object.
func (r Record) Present(keys ...string) bool {
	v, ok := r.First(keys...)
	if !ok {
		return false
	}
	if v.IsArray() {
		return len(v.Array()) > 0
	}
	return Truthy(v)
}

// ToNumber coerces a JSON value to a finite float. Strings may carry
// thousands separators. Anything unparsable is 0.
func ToNumber(v gjson.Result) float64 {
	switch v.Type {
	case gjson.Number:
		if math.IsNaN(v.Num) || math.IsInf(v.Num, 0) {
			return 0
		}
		return v.Num
	case gjson.String:
		cleaned := strings.TrimSpace(strings.ReplaceAll(v.Str, ",", ""))
		if cleaned == "" {
			return 0
		}
		n, err := strconv.ParseFloat(cleaned, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return 0
		}
		return n
	case gjson.True:
		return 1
	default:
		return 0
	}
}

// Truthy applies loose truthiness: missing, null, false, 0 and "" are false;
// arrays and objects are true even when empty.
func Truthy(v gjson.Result) bool {
	if !v.Exists() {
		return false
	}
	switch v.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.Number:
		return v.Num != 0 && !math.IsNaN(v.Num)
	case gjson.String:
		return v.Str != ""
	default:
		return true
	}
}

// List normalizes a participant field into a list of identifiers.
// Delimited strings split on commas, or on semicolons when no comma is
// present. Array entries that are objects contribute their code, id or name.
func List(v gjson.Result) []string {
	if !Truthy(v) {
		return nil
	}
	if v.IsArray() {
		var out []string
		for _, item := range v.Array() {
			var s string
			switch {
			case item.IsObject():
				s, _ = FromResult(item).String("code", "id", "name")
			case item.Type == gjson.Null:
				continue
			default:
				s = item.String()
			}
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	if v.Type == gjson.String {
		s := strings.TrimSpace(v.Str)
		if s == "" {
			return nil
		}
		sep := ""
		switch {
		case strings.Contains(s, ","):
			sep = ","
		case strings.Contains(s, ";"):
			sep = ";"
		default:
			return []string{s}
		}
		var out []string
		for _, part := range strings.Split(s, sep) {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}
	return []string{v.String()}
}
