// Package normalize reshapes raw storage rows into the legacy client-facing
// JSON shape: numbers become text, nulls become empty strings, timestamps use
// a fixed layout and selected fields are wrapped in one-element arrays.
//
// Nothing in this package returns an error or panics. Malformed input
// degrades to the zero value of the field's Kind.
package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	storefront "github.com/eugener/storefront/internal"
)

// Kind selects how a single field is reshaped.
type Kind int

const (
	// NullToEmptyString emits scalars as text and null (or anything
	// non-scalar) as "". It is the rule for fields absent from a Spec.
	NullToEmptyString Kind = iota
	// StringifyNumber emits native numbers as their plain decimal text.
	// Strings are kept as-is; null and malformed values become "0".
	StringifyNumber
	// PassthroughString keeps strings verbatim and deep-normalizes nested
	// objects and arrays.
	PassthroughString
	// WrapAsSingletonArray emits an object as a one-element array. JSON
	// object text is decoded first. Null and malformed values become [].
	WrapAsSingletonArray
	// FormatDateTime emits "YYYY-MM-DD HH:MM:SS"; absent dates become "".
	FormatDateTime
	// NativeNumber keeps a number native in the output. Exactly one legacy
	// field uses it; do not add more.
	NativeNumber
)

func (k Kind) String() string {
	switch k {
	case NullToEmptyString:
		return "null_to_empty_string"
	case StringifyNumber:
		return "stringify_number"
	case PassthroughString:
		return "passthrough_string"
	case WrapAsSingletonArray:
		return "wrap_as_singleton_array"
	case FormatDateTime:
		return "format_date_time"
	case NativeNumber:
		return "native_number"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Spec maps field names to their Kind. Fields not listed use NullToEmptyString.
type Spec map[string]Kind

// Record is a normalized row ready for JSON encoding.
type Record map[string]any

// Normalize reshapes row according to spec. Every field named in spec is
// present in the result, filled with the Kind's zero value when missing.
func Normalize(row storefront.Row, spec Spec) Record {
	out := make(Record, len(row)+len(spec))
	for k, v := range row {
		out[k] = Apply(spec[k], v)
	}
	for k, kind := range spec {
		if _, ok := row[k]; !ok {
			out[k] = Zero(kind)
		}
	}
	return out
}

// Rows normalizes every row. The result is never nil so it encodes as [].
func Rows(rows []storefront.Row, spec Spec) []Record {
	out := make([]Record, len(rows))
	for i, r := range rows {
		out[i] = Normalize(r, spec)
	}
	return out
}

// Apply reshapes a single value.
func Apply(kind Kind, v any) any {
	switch kind {
	case StringifyNumber:
		return stringifyNumber(v)
	case PassthroughString:
		return passthrough(v)
	case WrapAsSingletonArray:
		return wrap(v)
	case FormatDateTime:
		return DateTime(v)
	case NativeNumber:
		return native(v)
	default:
		return Str(v)
	}
}

// Zero returns the value emitted for a missing field of the given Kind.
func Zero(kind Kind) any {
	switch kind {
	case StringifyNumber:
		return "0"
	case WrapAsSingletonArray:
		return []any{}
	case NativeNumber:
		return int64(0)
	default:
		return ""
	}
}

// Str converts a scalar to its legacy text form; null and non-scalars become "".
func Str(v any) string {
	s, _ := text(v)
	return s
}

// Count formats a row count for the envelope's total field.
func Count(n int) string {
	return strconv.Itoa(n)
}

// CSV splits a comma-separated column into trimmed, non-empty parts.
// The result is never nil.
func CSV(s string) []string {
	out := []string{}
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// text renders scalars the way the database's own numeric-to-string
// conversion does: no grouping, no forced decimals.
func text(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case []byte:
		return string(x), true
	case int:
		return strconv.Itoa(x), true
	case int8:
		return strconv.FormatInt(int64(x), 10), true
	case int16:
		return strconv.FormatInt(int64(x), 10), true
	case int32:
		return strconv.FormatInt(int64(x), 10), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case uint:
		return strconv.FormatUint(uint64(x), 10), true
	case uint8:
		return strconv.FormatUint(uint64(x), 10), true
	case uint16:
		return strconv.FormatUint(uint64(x), 10), true
	case uint32:
		return strconv.FormatUint(uint64(x), 10), true
	case uint64:
		return strconv.FormatUint(x, 10), true
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case bool:
		if x {
			return "1", true
		}
		return "0", true
	case json.Number:
		return x.String(), true
	case time.Time:
		if x.IsZero() {
			return "", true
		}
		return x.Format(storefront.DateTimeLayout), true
	case fmt.Stringer:
		return x.String(), true
	default:
		return "", false
	}
}

func stringifyNumber(v any) string {
	if v == nil {
		return "0"
	}
	s, ok := text(v)
	if !ok {
		return "0"
	}
	return s
}

func passthrough(v any) any {
	switch v.(type) {
	case map[string]any, storefront.Row, Record, []any, []map[string]any, []Record, []string:
		return deep(v)
	}
	return Str(v)
}

// deep normalizes a nested value: nulls become "", numbers become text.
func deep(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return deepMap(x)
	case storefront.Row:
		return deepMap(x)
	case Record:
		return deepMap(x)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = deep(e)
		}
		return out
	case []map[string]any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = deepMap(e)
		}
		return out
	case []Record:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = deepMap(e)
		}
		return out
	case []string:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = e
		}
		return out
	default:
		return Str(v)
	}
}

func deepMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, e := range m {
		out[k] = deep(e)
	}
	return out
}

func wrap(v any) []any {
	switch x := v.(type) {
	case map[string]any, storefront.Row, Record:
		return []any{deep(x)}
	case []any, []map[string]any, []Record:
		return deep(x).([]any)
	case string:
		return wrapJSON([]byte(x))
	case []byte:
		return wrapJSON(x)
	case json.RawMessage:
		return wrapJSON(x)
	default:
		return []any{}
	}
}

func wrapJSON(b []byte) []any {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || (b[0] != '{' && b[0] != '[') {
		return []any{}
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return []any{}
	}
	switch d := decoded.(type) {
	case map[string]any:
		return []any{deepMap(d)}
	case []any:
		return deep(d).([]any)
	}
	return []any{}
}

// dateLayouts are the textual forms accepted on input, most specific first.
var dateLayouts = []string{
	storefront.DateTimeLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02",
}

// DateTime formats a timestamp in the legacy layout. Zero, null and
// unparseable values become "".
func DateTime(v any) string {
	var s string
	switch x := v.(type) {
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.Format(storefront.DateTimeLayout)
	case *time.Time:
		if x == nil {
			return ""
		}
		return DateTime(*x)
	case string:
		s = x
	case []byte:
		s = string(x)
	default:
		return ""
	}
	s = strings.TrimSpace(s)
	if s == "" || strings.HasPrefix(s, "0000-00-00") {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(storefront.DateTimeLayout)
		}
	}
	return ""
}

func native(v any) any {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case uint32:
		return int64(x)
	case uint64:
		return x
	case float32:
		return float64(x)
	case float64:
		return x
	case json.Number:
		return native(x.String())
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil {
			return f
		}
	case []byte:
		return native(string(x))
	}
	return int64(0)
}
