package cache

import (
	"strings"
	"testing"
)

func TestDeriveKey_Determinism(t *testing.T) {
	t.Parallel()
	p := map[string]string{"type": "all", "user_id": "1", "zzz": "q", "aaa": "r"}

	for _, endpoint := range []string{"get_settings", "get_faqs"} {
		k1 := DeriveKey(endpoint, p)
		k2 := DeriveKey(endpoint, p)
		if k1 != k2 {
			t.Errorf("%s: same params produced %q and %q", endpoint, k1, k2)
		}
	}
}

func TestDeriveKey_Projection(t *testing.T) {
	t.Parallel()

	a := DeriveKey("get_settings", map[string]string{"type": "all", "user_id": "", "irrelevant": "x"})
	b := DeriveKey("get_settings", map[string]string{"type": "all", "irrelevant": "y"})
	if a != b {
		t.Errorf("irrelevant params changed the key: %q vs %q", a, b)
	}
	if want := "get_settings|type:all"; a != want {
		t.Errorf("key = %q, want %q", a, want)
	}
}

func TestDeriveKey_SortedFormat(t *testing.T) {
	t.Parallel()

	got := DeriveKey("get_products", map[string]string{
		"offset":      "20",
		"category_id": "4",
		"limit":       "10",
		"device":      "ios",
	})
	want := "get_products|category_id:4|limit:10|offset:20"
	if got != want {
		t.Errorf("key = %q, want %q", got, want)
	}
}

func TestDeriveKey_NoParams(t *testing.T) {
	t.Parallel()
	if got := DeriveKey("get_sections", nil); got != "get_sections" {
		t.Errorf("key = %q, want %q", got, "get_sections")
	}
}

func TestDeriveKey_FallbackUsesAllParams(t *testing.T) {
	t.Parallel()

	if _, ok := KeyParams("get_faqs"); ok {
		t.Fatal("get_faqs should not have a key table entry")
	}
	a := DeriveKey("get_faqs", map[string]string{"limit": "5", "offset": "0", "lang": "en"})
	b := DeriveKey("get_faqs", map[string]string{"limit": "5", "offset": "0", "lang": "fr"})
	if a == b {
		t.Error("unlisted endpoint should key on every parameter")
	}
	if want := "get_faqs|lang:en|limit:5|offset:0"; a != want {
		t.Errorf("key = %q, want %q", a, want)
	}
}

func TestDeriveKey_EndpointsDoNotCollide(t *testing.T) {
	t.Parallel()
	p := map[string]string{"limit": "10", "offset": "0"}

	seen := map[string]string{}
	for _, endpoint := range []string{"get_categories", "get_products", "get_sections", "get_faqs", "get_settings"} {
		k := DeriveKey(endpoint, p)
		if !strings.HasPrefix(k, endpoint) {
			t.Errorf("key %q should start with endpoint %q", k, endpoint)
		}
		if other, dup := seen[k]; dup {
			t.Errorf("%s and %s share key %q", endpoint, other, k)
		}
		seen[k] = endpoint
	}
}

func TestDeriveKey_DistinctRelevantValues(t *testing.T) {
	t.Parallel()
	a := DeriveKey("get_settings", map[string]string{"type": "all", "user_id": "1"})
	b := DeriveKey("get_settings", map[string]string{"type": "all", "user_id": "2"})
	if a == b {
		t.Error("different user_id should produce different keys")
	}
}

func TestKeyParams_ReturnsCopy(t *testing.T) {
	t.Parallel()
	names, ok := KeyParams("get_settings")
	if !ok || len(names) != 2 {
		t.Fatalf("KeyParams = %v, %v", names, ok)
	}
	names[0] = "mutated"
	again, _ := KeyParams("get_settings")
	if again[0] != "type" {
		t.Error("KeyParams must not expose the shared table")
	}
}

func TestDeriveKey_DelimitersInValuesCannotForgeParams(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		forged map[string]string
		real   map[string]string
	}{
		{
			"pipe and colon",
			map[string]string{"type": "all|user_id:7"},
			map[string]string{"type": "all", "user_id": "7"},
		},
		{
			"trailing backslash",
			map[string]string{"type": `all\|user_id:7`},
			map[string]string{"type": `all\`, "user_id": "7"},
		},
		{
			"colon in value",
			map[string]string{"type": "a:b"},
			map[string]string{"type": "a", "user_id": "b"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a := DeriveKey("get_settings", tt.forged)
			b := DeriveKey("get_settings", tt.real)
			if a == b {
				t.Errorf("distinct params share key %q", a)
			}
		})
	}
}

func TestDeriveKey_EscapesDelimiters(t *testing.T) {
	t.Parallel()
	got := DeriveKey("get_settings", map[string]string{"type": `all|user_id:7\`})
	if want := `get_settings|type:all\|user_id\:7\\`; got != want {
		t.Errorf("key = %q, want %q", got, want)
	}
}

func TestParam_MatchesDerivedSegment(t *testing.T) {
	t.Parallel()
	tests := []string{"1", "42", "a:b", `x|y\z`}
	for _, id := range tests {
		key := DeriveKey("get_settings", map[string]string{"type": "all", "user_id": id})
		if seg := Param("user_id", id); !strings.Contains(key, seg) {
			t.Errorf("key %q does not contain segment %q", key, seg)
		}
	}
}
