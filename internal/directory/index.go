package directory

import "strings"

// Index offers id lookups over a Dataset.
type Index struct {
	regions       map[string]Region
	regionsByName map[string]Region
	subUnits      map[string]SubUnit
	categories    map[string]Category
	skills        map[string]Skill
	certs         map[string]Certification
}

// NewIndex builds lookups. On duplicate ids the first record wins.
func NewIndex(ds *Dataset) *Index {
	x := &Index{
		regions:       make(map[string]Region, len(ds.Regions)),
		regionsByName: make(map[string]Region, len(ds.Regions)),
		subUnits:      make(map[string]SubUnit, len(ds.SubUnits)),
		categories:    make(map[string]Category, len(ds.Categories)),
		skills:        make(map[string]Skill, len(ds.Skills)),
		certs:         make(map[string]Certification, len(ds.Certifications)),
	}
	for _, r := range ds.Regions {
		if _, ok := x.regions[r.ID]; !ok {
			x.regions[r.ID] = r
		}
		key := nameKey(r.Name)
		if _, ok := x.regionsByName[key]; key != "" && !ok {
			x.regionsByName[key] = r
		}
	}
	for _, s := range ds.SubUnits {
		if _, ok := x.subUnits[s.ID]; !ok {
			x.subUnits[s.ID] = s
		}
	}
	for _, c := range ds.Categories {
		if _, ok := x.categories[c.ID]; !ok {
			x.categories[c.ID] = c
		}
	}
	for _, s := range ds.Skills {
		if _, ok := x.skills[s.ID]; !ok {
			x.skills[s.ID] = s
		}
	}
	for _, c := range ds.Certifications {
		if _, ok := x.certs[c.ID]; !ok {
			x.certs[c.ID] = c
		}
	}
	return x
}

func nameKey(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// ResolveRegion matches a reference against region ids first, then against
// region names case-insensitively.
func (x *Index) ResolveRegion(ref string) (Region, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Region{}, false
	}
	if r, ok := x.regions[ref]; ok {
		return r, true
	}
	r, ok := x.regionsByName[nameKey(ref)]
	return r, ok
}

func (x *Index) Region(id string) (Region, bool) {
	r, ok := x.regions[id]
	return r, ok
}

func (x *Index) SubUnit(id string) (SubUnit, bool) {
	s, ok := x.subUnits[id]
	return s, ok
}

func (x *Index) Category(id string) (Category, bool) {
	c, ok := x.categories[id]
	return c, ok
}

func (x *Index) Skill(id string) (Skill, bool) {
	s, ok := x.skills[id]
	return s, ok
}

func (x *Index) Certification(id string) (Certification, bool) {
	c, ok := x.certs[id]
	return c, ok
}

// SkillCategories returns the set of category ids reached through the given
// skill ids. Unknown skills contribute nothing.
func (x *Index) SkillCategories(skillIDs []string) map[string]bool {
	out := map[string]bool{}
	for _, id := range skillIDs {
		if s, ok := x.skills[id]; ok {
			for _, c := range s.CategoryIDs {
				out[c] = true
			}
		}
	}
	return out
}

// CertificationCategories is SkillCategories for certifications.
func (x *Index) CertificationCategories(certIDs []string) map[string]bool {
	out := map[string]bool{}
	for _, id := range certIDs {
		if c, ok := x.certs[id]; ok {
			for _, cat := range c.CategoryIDs {
				out[cat] = true
			}
		}
	}
	return out
}
