package normalize

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	storefront "github.com/eugener/storefront/internal"
)

func TestApply(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 3, 9, 17, 4, 5, 123_000_000, time.UTC)

	tests := []struct {
		name string
		kind Kind
		in   any
		want any
	}{
		{name: "stringify int64", kind: StringifyNumber, in: int64(1205), want: "1205"},
		{name: "stringify negative", kind: StringifyNumber, in: -3, want: "-3"},
		{name: "stringify float no forced decimals", kind: StringifyNumber, in: 12.5, want: "12.5"},
		{name: "stringify whole float", kind: StringifyNumber, in: 100.0, want: "100"},
		{name: "stringify large float no grouping", kind: StringifyNumber, in: 1234567.25, want: "1234567.25"},
		{name: "stringify bool", kind: StringifyNumber, in: true, want: "1"},
		{name: "stringify keeps string", kind: StringifyNumber, in: "07", want: "07"},
		{name: "stringify bytes", kind: StringifyNumber, in: []byte("42"), want: "42"},
		{name: "stringify nil", kind: StringifyNumber, in: nil, want: "0"},
		{name: "stringify malformed", kind: StringifyNumber, in: struct{}{}, want: "0"},

		{name: "null to empty nil", kind: NullToEmptyString, in: nil, want: ""},
		{name: "null to empty number", kind: NullToEmptyString, in: int64(5), want: "5"},
		{name: "null to empty nested", kind: NullToEmptyString, in: map[string]any{"a": 1}, want: ""},

		{name: "passthrough string", kind: PassthroughString, in: " keep  spaces ", want: " keep  spaces "},
		{name: "passthrough nil", kind: PassthroughString, in: nil, want: ""},
		{
			name: "passthrough nested object",
			kind: PassthroughString,
			in:   map[string]any{"id": int64(3), "note": nil, "tags": []any{int64(1), "x"}},
			want: map[string]any{"id": "3", "note": "", "tags": []any{"1", "x"}},
		},

		{name: "datetime time", kind: FormatDateTime, in: ts, want: "2024-03-09 17:04:05"},
		{name: "datetime rfc3339", kind: FormatDateTime, in: "2024-03-09T17:04:05Z", want: "2024-03-09 17:04:05"},
		{name: "datetime fractional", kind: FormatDateTime, in: "2024-03-09 17:04:05.999", want: "2024-03-09 17:04:05"},
		{name: "datetime date only", kind: FormatDateTime, in: "2024-03-09", want: "2024-03-09 00:00:00"},
		{name: "datetime already formatted", kind: FormatDateTime, in: "2024-03-09 17:04:05", want: "2024-03-09 17:04:05"},
		{name: "datetime zero mysql", kind: FormatDateTime, in: "0000-00-00 00:00:00", want: ""},
		{name: "datetime zero time", kind: FormatDateTime, in: time.Time{}, want: ""},
		{name: "datetime nil", kind: FormatDateTime, in: nil, want: ""},
		{name: "datetime garbage", kind: FormatDateTime, in: "yesterday", want: ""},
		{name: "datetime wrong type", kind: FormatDateTime, in: 17, want: ""},

		{name: "wrap map", kind: WrapAsSingletonArray, in: map[string]any{"a": int64(1)}, want: []any{map[string]any{"a": "1"}}},
		{name: "wrap json object text", kind: WrapAsSingletonArray, in: `{"min_amount":"100","cod":1}`, want: []any{map[string]any{"min_amount": "100", "cod": "1"}}},
		{name: "wrap json array text", kind: WrapAsSingletonArray, in: `[{"a":null}]`, want: []any{map[string]any{"a": ""}}},
		{name: "wrap already wrapped", kind: WrapAsSingletonArray, in: []any{map[string]any{"a": "1"}}, want: []any{map[string]any{"a": "1"}}},
		{name: "wrap nil", kind: WrapAsSingletonArray, in: nil, want: []any{}},
		{name: "wrap plain text", kind: WrapAsSingletonArray, in: "not json", want: []any{}},
		{name: "wrap broken json", kind: WrapAsSingletonArray, in: `{"a":`, want: []any{}},

		{name: "native int", kind: NativeNumber, in: int64(4), want: int64(4)},
		{name: "native from text", kind: NativeNumber, in: "4", want: int64(4)},
		{name: "native float text", kind: NativeNumber, in: "2.5", want: 2.5},
		{name: "native nil", kind: NativeNumber, in: nil, want: int64(0)},
		{name: "native garbage", kind: NativeNumber, in: "four", want: int64(0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Apply(tt.kind, tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Apply(%s, %#v) = %#v, want %#v", tt.kind, tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize_FillsMissingSpecFields(t *testing.T) {
	t.Parallel()

	spec := Spec{
		"price":      StringifyNumber,
		"date_added": FormatDateTime,
		"variants":   WrapAsSingletonArray,
		"name":       PassthroughString,
	}
	got := Normalize(storefront.Row{"id": int64(9)}, spec)

	want := Record{
		"id":         "9",
		"price":      "0",
		"date_added": "",
		"variants":   []any{},
		"name":       "",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize = %#v, want %#v", got, want)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	t.Parallel()

	spec := Spec{
		"price":       StringifyNumber,
		"date_added":  FormatDateTime,
		"system":      WrapAsSingletonArray,
		"meta":        PassthroughString,
		"cart_total":  NativeNumber,
		"description": NullToEmptyString,
	}
	row := storefront.Row{
		"id":          int64(12),
		"price":       99.9,
		"date_added":  time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC),
		"system":      `{"currency":"USD","tax":18}`,
		"meta":        map[string]any{"k": nil, "n": 2.0},
		"cart_total":  "3",
		"description": nil,
		"flag":        true,
	}

	once := Normalize(row, spec)
	twice := Normalize(storefront.Row(once), spec)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("normalize not idempotent:\n once = %#v\ntwice = %#v", once, twice)
	}

	// Every client-visible value except the declared native field is text.
	b, err := json.Marshal(once)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatal(err)
	}
	for k, v := range decoded {
		switch k {
		case "cart_total":
			if _, ok := v.(float64); !ok {
				t.Errorf("%s should stay a native number, got %T", k, v)
			}
		case "system", "meta":
		default:
			if _, ok := v.(string); !ok {
				t.Errorf("%s should be text, got %T (%v)", k, v, v)
			}
		}
	}
}

func TestRows_NeverNil(t *testing.T) {
	t.Parallel()

	got := Rows(nil, nil)
	if got == nil {
		t.Fatal("Rows(nil) should return an empty, non-nil slice")
	}
	b, _ := json.Marshal(got)
	if string(b) != "[]" {
		t.Errorf("json = %s, want []", b)
	}
}

func TestCSV(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want []string
	}{
		{in: "", want: []string{}},
		{in: "1,2,3", want: []string{"1", "2", "3"}},
		{in: " 4 , ,5,", want: []string{"4", "5"}},
	}
	for _, tt := range tests {
		if got := CSV(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("CSV(%q) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}
