// Package directory decodes raw content items into the typed reference data
// and directory entries used by route generation and expert queries.
package directory

import (
	"expert-api/internal/cms"
	"strings"
)

// Reference field keys as they appear in fieldData.
const (
	FieldRegion         = "state"
	FieldSubUnit        = "city"
	FieldCategories     = "categories"
	FieldCategory       = "category"
	FieldSkills         = "skills"
	FieldCertifications = "certifications"
)

// Entity is the part every record shares. Slug may be empty, which makes
// the entity unroutable.
type Entity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Routable reports whether the entity can appear in a path.
func (e Entity) Routable() bool { return e.ID != "" && e.Slug != "" }

type Region struct {
	Entity
}

// SubUnit references its parent region by id or, in older records, by name.
type SubUnit struct {
	Entity
	RegionRef string `json:"regionRef"`
}

type Category struct {
	Entity
}

type Skill struct {
	Entity
	CategoryIDs []string `json:"categoryIds"`
}

type Certification struct {
	Entity
	CategoryIDs []string `json:"categoryIds"`
}

// Expert is one directory entry.
type Expert struct {
	Entity
	RegionID         string         `json:"regionId"`
	SubUnitID        string         `json:"subUnitId,omitempty"`
	SkillIDs         []string       `json:"skillIds"`
	CertificationIDs []string       `json:"certificationIds"`
	Fields           map[string]any `json:"fieldData,omitempty"`
}

// Dataset is the full reference data used by the route generator.
type Dataset struct {
	Regions        []Region
	SubUnits       []SubUnit
	Categories     []Category
	Skills         []Skill
	Certifications []Certification
}

func entityOf(it cms.Item, p Profile) Entity {
	return Entity{ID: it.ID, Name: p.Name.Resolve(it), Slug: p.Slug.Resolve(it)}
}

func DecodeRegions(items []cms.Item) []Region {
	out := make([]Region, 0, len(items))
	for _, it := range items {
		out = append(out, Region{Entity: entityOf(it, DefaultProfile)})
	}
	return out
}

func DecodeSubUnits(items []cms.Item) []SubUnit {
	out := make([]SubUnit, 0, len(items))
	for _, it := range items {
		var ref string
		if refs := Refs(it, FieldRegion); len(refs) > 0 {
			ref = refs[0]
		}
		out = append(out, SubUnit{Entity: entityOf(it, DefaultProfile), RegionRef: ref})
	}
	return out
}

func DecodeCategories(items []cms.Item) []Category {
	out := make([]Category, 0, len(items))
	for _, it := range items {
		out = append(out, Category{Entity: entityOf(it, DefaultProfile)})
	}
	return out
}

func DecodeSkills(items []cms.Item) []Skill {
	out := make([]Skill, 0, len(items))
	for _, it := range items {
		out = append(out, Skill{
			Entity:      entityOf(it, DefaultProfile),
			CategoryIDs: Refs(it, FieldCategories, FieldCategory),
		})
	}
	return out
}

func DecodeCertifications(items []cms.Item) []Certification {
	out := make([]Certification, 0, len(items))
	for _, it := range items {
		out = append(out, Certification{
			Entity:      entityOf(it, DefaultProfile),
			CategoryIDs: Refs(it, FieldCategories, FieldCategory),
		})
	}
	return out
}

func DecodeExperts(items []cms.Item) []Expert {
	out := make([]Expert, 0, len(items))
	for _, it := range items {
		e := Expert{
			Entity:           entityOf(it, DefaultProfile),
			SkillIDs:         Refs(it, FieldSkills),
			CertificationIDs: Refs(it, FieldCertifications),
			Fields:           it.FieldData,
		}
		if r := Refs(it, FieldRegion); len(r) > 0 {
			e.RegionID = r[0]
		}
		if r := Refs(it, FieldSubUnit); len(r) > 0 {
			e.SubUnitID = r[0]
		}
		out = append(out, e)
	}
	return out
}

// Refs collects reference ids from the given keys, in key order, without
// duplicates. Single strings and lists of strings are both accepted.
func Refs(it cms.Item, keys ...string) []string {
	var out []string
	seen := map[string]bool{}
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			return
		}
		seen[s] = true
		out = append(out, s)
	}
	for _, k := range keys {
		switch v := it.FieldData[k].(type) {
		case string:
			add(v)
		case []string:
			for _, s := range v {
				add(s)
			}
		case []any:
			for _, x := range v {
				if s, ok := x.(string); ok {
					add(s)
				}
			}
		}
	}
	return out
}
