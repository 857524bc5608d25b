package routes

import (
	"expert-api/internal/directory"
	"time"
)

// Stats summarises one generation run for operators.
type Stats struct {
	Total      int          `json:"total"`
	ByKind     map[Kind]int `json:"byKind"`
	Candidates int          `json:"candidates"`
	Pruned     int          `json:"pruned"`
	Unroutable int          `json:"unroutable"`
	Experts    int          `json:"experts"`
	Pruning    bool         `json:"pruning"`
	DurationMs int64        `json:"durationMs"`
}

// Result is the flat route list plus its stats.
type Result struct {
	Routes []Route
	Stats  Stats
}

// member is a skill or certification attached to one of its categories.
// A skill with two categories yields two members.
type member struct {
	entity   directory.Entity
	category directory.Category
}

type generator struct {
	idx     *directory.Index
	counter *counter
	res     Result
}

// Generate enumerates every structurally valid route over ds. When experts
// is non-nil each candidate is counted against it and empty candidates are
// dropped; with a nil list the full route space is returned uncounted.
func Generate(ds *directory.Dataset, experts []directory.Expert) Result {
	t0 := time.Now()
	g := &generator{
		idx: directory.NewIndex(ds),
		res: Result{Routes: []Route{}, Stats: Stats{ByKind: make(map[Kind]int, len(Kinds))}},
	}
	for _, k := range Kinds {
		g.res.Stats.ByKind[k] = 0
	}
	if experts != nil {
		g.counter = newCounter(experts, g.idx)
		g.res.Stats.Pruning = true
		g.res.Stats.Experts = len(experts)
	}

	var regions []directory.Region
	for _, r := range ds.Regions {
		if !r.Routable() {
			g.res.Stats.Unroutable++
			continue
		}
		regions = append(regions, r)
	}
	var categories []directory.Category
	for _, c := range ds.Categories {
		if !c.Routable() {
			g.res.Stats.Unroutable++
			continue
		}
		categories = append(categories, c)
	}
	subsByRegion := map[string][]directory.SubUnit{}
	for _, s := range ds.SubUnits {
		if !s.Routable() {
			g.res.Stats.Unroutable++
			continue
		}
		r, ok := g.idx.ResolveRegion(s.RegionRef)
		if !ok {
			continue
		}
		subsByRegion[r.ID] = append(subsByRegion[r.ID], s)
	}
	var skills []member
	for _, s := range ds.Skills {
		if !s.Routable() {
			g.res.Stats.Unroutable++
			continue
		}
		skills = append(skills, g.members(s.Entity, s.CategoryIDs)...)
	}
	var certs []member
	for _, c := range ds.Certifications {
		if !c.Routable() {
			g.res.Stats.Unroutable++
			continue
		}
		certs = append(certs, g.members(c.Entity, c.CategoryIDs)...)
	}

	for _, r := range regions {
		base := Params{Region: r.Name, RegionSlug: r.Slug, RegionID: r.ID}
		subs := subsByRegion[r.ID]

		for _, c := range categories {
			g.emit(withCategory(base, KindRegionCategory, c))
		}
		for _, s := range subs {
			g.emit(withSubUnit(base, KindRegionSubUnit, s))
		}
		for _, s := range subs {
			for _, c := range categories {
				g.emit(withCategory(withSubUnit(base, "", s), KindRegionSubUnitCategory, c))
			}
		}
		for _, m := range skills {
			g.emit(withSkill(base, KindRegionCategorySkill, m))
		}
		for _, s := range subs {
			for _, m := range skills {
				g.emit(withSkill(withSubUnit(base, "", s), KindRegionSubUnitCategorySkill, m))
			}
		}
		for _, m := range certs {
			g.emit(withCertification(base, KindRegionCategoryCertification, m))
		}
		for _, s := range subs {
			for _, m := range certs {
				g.emit(withCertification(withSubUnit(base, "", s), KindRegionSubUnitCategoryCertification, m))
			}
		}
	}
	g.res.Stats.DurationMs = time.Since(t0).Milliseconds()
	return g.res
}

// members fans an entity out over its resolvable, routable categories.
func (g *generator) members(e directory.Entity, categoryIDs []string) []member {
	var out []member
	for _, id := range categoryIDs {
		c, ok := g.idx.Category(id)
		if !ok || !c.Routable() {
			continue
		}
		out = append(out, member{entity: e, category: c})
	}
	return out
}

func (g *generator) emit(p Params) {
	g.res.Stats.Candidates++
	if g.counter != nil {
		n := g.counter.count(criteriaOf(p))
		if n == 0 {
			g.res.Stats.Pruned++
			return
		}
		p.ExpertCount = n
	}
	g.res.Routes = append(g.res.Routes, Route{Path: p.Path(), Params: p})
	g.res.Stats.ByKind[p.Kind]++
	g.res.Stats.Total++
}

func withSubUnit(p Params, k Kind, s directory.SubUnit) Params {
	p.Kind = k
	p.SubUnit, p.SubUnitSlug, p.SubUnitID = s.Name, s.Slug, s.ID
	return p
}

func withCategory(p Params, k Kind, c directory.Category) Params {
	p.Kind = k
	p.Category, p.CategorySlug, p.CategoryID = c.Name, c.Slug, c.ID
	return p
}

func withSkill(p Params, k Kind, m member) Params {
	p = withCategory(p, k, m.category)
	p.Skill, p.SkillSlug, p.SkillID = m.entity.Name, m.entity.Slug, m.entity.ID
	return p
}

func withCertification(p Params, k Kind, m member) Params {
	p = withCategory(p, k, m.category)
	p.Certification, p.CertificationSlug, p.CertificationID = m.entity.Name, m.entity.Slug, m.entity.ID
	return p
}
