package cache

import (
	"maps"
	"slices"
	"strings"
)

// keySpecs lists, per cached endpoint, the request parameters that affect the
// response. Anything else in the request is ignored for keying so irrelevant
// parameters cannot fragment the cache. Adding a cached endpoint is a table
// entry here.
var keySpecs = map[string][]string{
	"get_settings":   {"type", "user_id"},
	"get_categories": {"id", "slug", "limit", "offset", "sort", "order", "has_child_or_item"},
	"get_products": {
		"id", "slug", "category_id", "user_id", "search", "product_ids",
		"sort", "order", "limit", "offset", "min_price", "max_price", "top_rated_product",
	},
	"get_sections": {"section_id", "user_id", "limit", "offset", "p_limit", "p_offset", "p_sort", "p_order"},
}

// KeyParams returns the parameter names that participate in keys for
// endpoint, and whether the endpoint has an entry at all.
func KeyParams(endpoint string) ([]string, bool) {
	names, ok := keySpecs[endpoint]
	return slices.Clone(names), ok
}

// keyEscaper backslash-escapes the key delimiters so a value cannot spell
// out another parameter.
var keyEscaper = strings.NewReplacer(`\`, `\\`, `|`, `\|`, `:`, `\:`)

// Param renders one name:value key segment, escaped the way DeriveKey
// escapes it. Use it to build Clear patterns that target a parameter.
func Param(name, value string) string {
	return keyEscaper.Replace(name) + ":" + keyEscaper.Replace(value)
}

// DeriveKey maps an endpoint and its request parameters to a canonical key:
//
//	endpoint|name1:value1|name2:value2
//
// Only the endpoint's listed parameters are used (all present parameters when
// the endpoint is unlisted). Empty values are dropped and names are sorted,
// so requests differing only in irrelevant or empty parameters share a key.
// Backslash, '|' and ':' inside names and values are escaped with a
// backslash, keeping distinct parameter sets on distinct keys.
func DeriveKey(endpoint string, params map[string]string) string {
	names, ok := keySpecs[endpoint]
	if !ok {
		names = slices.Collect(maps.Keys(params))
	}

	present := make([]string, 0, len(names))
	for _, n := range names {
		if params[n] != "" {
			present = append(present, n)
		}
	}
	slices.Sort(present)
	present = slices.Compact(present)

	var b strings.Builder
	b.WriteString(endpoint)
	for _, n := range present {
		b.WriteByte('|')
		keyEscaper.WriteString(&b, n)
		b.WriteByte(':')
		keyEscaper.WriteString(&b, params[n])
	}
	return b.String()
}
