package app

import "github.com/eugener/storefront/internal/normalize"

// Field shapes for every record type served to clients. Columns not listed
// default to normalize.NullToEmptyString.

var categoryShape = normalize.Spec{
	"id":             normalize.StringifyNumber,
	"parent_id":      normalize.StringifyNumber,
	"row_order":      normalize.StringifyNumber,
	"status":         normalize.StringifyNumber,
	"children_count": normalize.StringifyNumber,
	"date_added":     normalize.FormatDateTime,
}

var productShape = normalize.Spec{
	"id":                      normalize.StringifyNumber,
	"category_id":             normalize.StringifyNumber,
	"rating":                  normalize.StringifyNumber,
	"no_of_ratings":           normalize.StringifyNumber,
	"is_prices_inclusive_tax": normalize.StringifyNumber,
	"status":                  normalize.StringifyNumber,
	"min_price":               normalize.StringifyNumber,
	"max_price":               normalize.StringifyNumber,
	"date_added":              normalize.FormatDateTime,
}

// Variant stock stays "" when NULL, meaning unlimited.
var variantShape = normalize.Spec{
	"id":            normalize.StringifyNumber,
	"product_id":    normalize.StringifyNumber,
	"price":         normalize.StringifyNumber,
	"special_price": normalize.StringifyNumber,
	"status":        normalize.StringifyNumber,
}

var sectionShape = normalize.Spec{
	"id":         normalize.StringifyNumber,
	"row_order":  normalize.StringifyNumber,
	"date_added": normalize.FormatDateTime,
}

var cartLineShape = normalize.Spec{
	"id":                      normalize.StringifyNumber,
	"user_id":                 normalize.StringifyNumber,
	"product_variant_id":      normalize.StringifyNumber,
	"product_id":              normalize.StringifyNumber,
	"qty":                     normalize.StringifyNumber,
	"is_saved_for_later":      normalize.StringifyNumber,
	"price":                   normalize.StringifyNumber,
	"special_price":           normalize.StringifyNumber,
	"is_prices_inclusive_tax": normalize.StringifyNumber,
	"date_created":            normalize.FormatDateTime,
}

var addressShape = normalize.Spec{
	"id":         normalize.StringifyNumber,
	"user_id":    normalize.StringifyNumber,
	"is_default": normalize.StringifyNumber,
	"created_at": normalize.FormatDateTime,
}

var userShape = normalize.Spec{
	"id":               normalize.StringifyNumber,
	"balance":          normalize.StringifyNumber,
	"created_at":       normalize.FormatDateTime,
	"cart_total_items": normalize.NativeNumber,
}

var ticketTypeShape = normalize.Spec{
	"id":           normalize.StringifyNumber,
	"date_created": normalize.FormatDateTime,
}

var ticketShape = normalize.Spec{
	"id":             normalize.StringifyNumber,
	"ticket_type_id": normalize.StringifyNumber,
	"user_id":        normalize.StringifyNumber,
	"status":         normalize.StringifyNumber,
	"last_updated":   normalize.FormatDateTime,
	"date_created":   normalize.FormatDateTime,
}

var messageShape = normalize.Spec{
	"id":           normalize.StringifyNumber,
	"user_id":      normalize.StringifyNumber,
	"ticket_id":    normalize.StringifyNumber,
	"attachments":  normalize.WrapAsSingletonArray,
	"last_updated": normalize.FormatDateTime,
	"date_created": normalize.FormatDateTime,
}

var faqShape = normalize.Spec{
	"id":     normalize.StringifyNumber,
	"status": normalize.StringifyNumber,
}

var productFAQShape = normalize.Spec{
	"id":          normalize.StringifyNumber,
	"product_id":  normalize.StringifyNumber,
	"user_id":     normalize.StringifyNumber,
	"answered_by": normalize.StringifyNumber,
	"votes":       normalize.StringifyNumber,
	"date_added":  normalize.FormatDateTime,
}
