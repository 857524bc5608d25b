package directory

import (
	"expert-api/internal/cms"
	"sort"
	"unicode/utf8"
)

// Accessor extracts one candidate value from a raw item; "" means no value.
type Accessor func(cms.Item) string

// Resolver is a ranked list of accessors tried in order.
type Resolver []Accessor

// Resolve returns the first non-empty accessor result.
func (r Resolver) Resolve(it cms.Item) string {
	for _, a := range r {
		if v := a(it); v != "" {
			return v
		}
	}
	return ""
}

// maxFallbackLen bounds the "any string field" fallback.
const maxFallbackLen = 100

// ExplicitSlug reads the top-level slug, then fieldData.slug.
func ExplicitSlug(it cms.Item) string {
	if it.Slug != "" {
		return it.Slug
	}
	return it.Field("slug")
}

// FieldName reads fieldData.name.
func FieldName(it cms.Item) string { return it.Field("name") }

// TopLevelName reads the item's own name.
func TopLevelName(it cms.Item) string { return it.Name }

// FirstShortString returns the first non-empty string field shorter than
// 100 characters, scanning field keys in sorted order.
func FirstShortString(it cms.Item) string {
	keys := make([]string, 0, len(it.FieldData))
	for k := range it.FieldData {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := it.Field(k)
		if v != "" && utf8.RuneCountInString(v) < maxFallbackLen {
			return v
		}
	}
	return ""
}

// Slugified wraps an accessor so its result is passed through Slugify.
func Slugified(a Accessor) Accessor {
	return func(it cms.Item) string { return Slugify(a(it)) }
}

// Profile holds the name and slug strategies for one entity type.
type Profile struct {
	Name Resolver
	Slug Resolver
}

// DefaultProfile: explicit slug, then nested name, then top-level name, then
// any short string field, the last three slugified.
var DefaultProfile = Profile{
	Name: Resolver{FieldName, TopLevelName, FirstShortString},
	Slug: Resolver{ExplicitSlug, Slugified(FieldName), Slugified(TopLevelName), Slugified(FirstShortString)},
}
