// Package cms describes the content store the directory is derived from and
// provides an HTTP client for it.
package cms

import "strings"

// Collection is the logical name of a content collection.
type Collection string

const (
	Regions        Collection = "regions"
	SubUnits       Collection = "subunits"
	Categories     Collection = "categories"
	Skills         Collection = "skills"
	Certifications Collection = "certifications"
	Experts        Collection = "experts"
)

// All lists every collection in dependency order.
var All = []Collection{Regions, SubUnits, Categories, Skills, Certifications, Experts}

// Item is one raw record of a collection as returned by the store.
type Item struct {
	ID         string         `json:"id"`
	Name       string         `json:"name,omitempty"`
	Slug       string         `json:"slug,omitempty"`
	IsArchived bool           `json:"isArchived"`
	IsDraft    bool           `json:"isDraft"`
	FieldData  map[string]any `json:"fieldData"`
}

// Field returns a trimmed string field value, or "".
func (it Item) Field(key string) string {
	if it.FieldData == nil {
		return ""
	}
	s, _ := it.FieldData[key].(string)
	return strings.TrimSpace(s)
}

// Flag reports whether a field holds a truthy boolean ("true" strings included).
func (it Item) Flag(key string) bool {
	switch v := it.FieldData[key].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(strings.TrimSpace(v), "true")
	}
	return false
}

// Filter applies the retrieval-boundary exclusions: archived items are dropped
// from experts, skills and certifications; hidden experts are dropped as well.
func Filter(c Collection, items []Item) []Item {
	switch c {
	case Experts, Skills, Certifications:
	default:
		return items
	}
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.IsArchived {
			continue
		}
		if c == Experts && it.Flag("hidden") {
			continue
		}
		out = append(out, it)
	}
	return out
}
