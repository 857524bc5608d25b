package routes

import (
	"sort"
	"time"
)

const (
	maxMenuSubUnits = 30
	maxMenuSkills   = 10
)

type MenuRegion struct {
	Path        string `json:"path"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	ExpertCount int    `json:"expertCount"`
}

type MenuSubUnit struct {
	Path        string `json:"path"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Region      string `json:"region"`
	RegionSlug  string `json:"regionSlug"`
	ExpertCount int    `json:"expertCount"`
}

type MenuCategory struct {
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	TotalExperts int    `json:"totalExperts"`
}

type MenuSkill struct {
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Category     string `json:"category"`
	CategorySlug string `json:"categorySlug"`
	TotalExperts int    `json:"totalExperts"`
}

// Menu is the navigation summary derived from a manifest.
type Menu struct {
	Regions    []MenuRegion   `json:"regions"`
	SubUnits   []MenuSubUnit  `json:"subunits"`
	Categories []MenuCategory `json:"categories"`
	Skills     []MenuSkill    `json:"skills"`
	Generated  time.Time      `json:"generated"`
}

// Summarize derives the menu from the manifest alone, so any process holding
// the same manifest gets the same menu. Paths are walked in sorted order,
// which makes "first seen" deterministic.
//
//   - regions: busiest single route per region (max), sorted by name
//   - sub-units: max per sub-unit, top 30 by count
//   - categories: sum over every route naming the category
//   - skills: sum over every route naming the skill, top 10
func Summarize(m *Manifest) *Menu {
	regions := map[string]*MenuRegion{}
	subs := map[string]*MenuSubUnit{}
	cats := map[string]*MenuCategory{}
	skills := map[string]*MenuSkill{}

	for _, path := range m.Paths() {
		p := m.Routes[path]
		n := p.ExpertCount

		if p.RegionID != "" && p.Region != "" {
			r, ok := regions[p.RegionID]
			if !ok {
				r = &MenuRegion{Path: "/" + p.RegionSlug, Name: p.Region, Slug: p.RegionSlug}
				regions[p.RegionID] = r
			}
			r.ExpertCount = max(r.ExpertCount, n)
		}
		if p.SubUnitID != "" {
			s, ok := subs[p.SubUnitID]
			if !ok {
				s = &MenuSubUnit{
					Path:       "/" + p.RegionSlug + "/" + p.SubUnitSlug,
					Name:       p.SubUnit,
					Slug:       p.SubUnitSlug,
					Region:     p.Region,
					RegionSlug: p.RegionSlug,
				}
				subs[p.SubUnitID] = s
			}
			s.ExpertCount = max(s.ExpertCount, n)
		}
		if p.CategoryID != "" {
			c, ok := cats[p.CategoryID]
			if !ok {
				c = &MenuCategory{Name: p.Category, Slug: p.CategorySlug}
				cats[p.CategoryID] = c
			}
			c.TotalExperts += n
		}
		if p.SkillID != "" {
			s, ok := skills[p.SkillID]
			if !ok {
				s = &MenuSkill{Name: p.Skill, Slug: p.SkillSlug, Category: p.Category, CategorySlug: p.CategorySlug}
				skills[p.SkillID] = s
			}
			s.TotalExperts += n
		}
	}

	menu := &Menu{
		Regions:    []MenuRegion{},
		SubUnits:   []MenuSubUnit{},
		Categories: []MenuCategory{},
		Skills:     []MenuSkill{},
		Generated:  m.Generated,
	}
	for _, r := range regions {
		if r.ExpertCount > 0 {
			menu.Regions = append(menu.Regions, *r)
		}
	}
	sort.Slice(menu.Regions, func(i, j int) bool {
		a, b := menu.Regions[i], menu.Regions[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Slug < b.Slug
	})

	for _, s := range subs {
		if s.ExpertCount > 0 {
			menu.SubUnits = append(menu.SubUnits, *s)
		}
	}
	sort.Slice(menu.SubUnits, func(i, j int) bool {
		a, b := menu.SubUnits[i], menu.SubUnits[j]
		if a.ExpertCount != b.ExpertCount {
			return a.ExpertCount > b.ExpertCount
		}
		return a.Path < b.Path
	})
	if len(menu.SubUnits) > maxMenuSubUnits {
		menu.SubUnits = menu.SubUnits[:maxMenuSubUnits]
	}

	for _, c := range cats {
		if c.TotalExperts > 0 {
			menu.Categories = append(menu.Categories, *c)
		}
	}
	sort.Slice(menu.Categories, func(i, j int) bool {
		a, b := menu.Categories[i], menu.Categories[j]
		if a.TotalExperts != b.TotalExperts {
			return a.TotalExperts > b.TotalExperts
		}
		return a.Slug < b.Slug
	})

	for _, s := range skills {
		if s.TotalExperts > 0 {
			menu.Skills = append(menu.Skills, *s)
		}
	}
	sort.Slice(menu.Skills, func(i, j int) bool {
		a, b := menu.Skills[i], menu.Skills[j]
		if a.TotalExperts != b.TotalExperts {
			return a.TotalExperts > b.TotalExperts
		}
		return a.Slug < b.Slug
	})
	if len(menu.Skills) > maxMenuSkills {
		menu.Skills = menu.Skills[:maxMenuSkills]
	}
	return menu
}
