package routes

import "expert-api/internal/directory"

type criteria struct {
	regionID, subUnitID, categoryID, skillID, certificationID string
}

func criteriaOf(p Params) criteria {
	return criteria{
		regionID:        p.RegionID,
		subUnitID:       p.SubUnitID,
		categoryID:      p.CategoryID,
		skillID:         p.SkillID,
		certificationID: p.CertificationID,
	}
}

// profile is an expert reduced to the sets route counting needs.
type profile struct {
	skills    map[string]bool
	certs     map[string]bool
	skillCats map[string]bool
	certCats  map[string]bool
}

// matches applies the route filter. A bare category accepts a skill or a
// certification in it; once a skill or certification is also pinned, the
// category must be backed by one of the expert's skills.
func (p profile) matches(c criteria) bool {
	if c.skillID != "" && !p.skills[c.skillID] {
		return false
	}
	if c.certificationID != "" && !p.certs[c.certificationID] {
		return false
	}
	if c.categoryID != "" {
		if c.skillID == "" && c.certificationID == "" {
			return p.skillCats[c.categoryID] || p.certCats[c.categoryID]
		}
		return p.skillCats[c.categoryID]
	}
	return true
}

type regionSub struct{ region, sub string }

// counter buckets experts by region and by region+sub-unit so a candidate
// only scans the experts that can possibly match it.
type counter struct {
	byRegion    map[string][]profile
	byRegionSub map[regionSub][]profile
}

func newCounter(experts []directory.Expert, idx *directory.Index) *counter {
	c := &counter{byRegion: map[string][]profile{}, byRegionSub: map[regionSub][]profile{}}
	for _, e := range experts {
		if e.RegionID == "" {
			continue
		}
		p := profile{
			skills:    set(e.SkillIDs),
			certs:     set(e.CertificationIDs),
			skillCats: idx.SkillCategories(e.SkillIDs),
			certCats:  idx.CertificationCategories(e.CertificationIDs),
		}
		c.byRegion[e.RegionID] = append(c.byRegion[e.RegionID], p)
		if e.SubUnitID != "" {
			k := regionSub{e.RegionID, e.SubUnitID}
			c.byRegionSub[k] = append(c.byRegionSub[k], p)
		}
	}
	return c
}

func (c *counter) count(cr criteria) int {
	pool := c.byRegion[cr.regionID]
	if cr.subUnitID != "" {
		pool = c.byRegionSub[regionSub{cr.regionID, cr.subUnitID}]
	}
	n := 0
	for _, p := range pool {
		if p.matches(cr) {
			n++
		}
	}
	return n
}

func set(ids []string) map[string]bool {
	m := make(map[string]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}
