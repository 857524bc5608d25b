package routes

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func region(id, name, slug string) Params {
	return Params{Region: name, RegionSlug: slug, RegionID: id}
}

func route(p Params, k Kind, n int) Route {
	p.Kind = k
	p.ExpertCount = n
	return Route{Path: p.Path(), Params: p}
}

func TestSummarize(t *testing.T) {
	tx := region("r1", "Texas", "texas")
	al := region("r2", "Alabama", "alabama")
	austin := tx
	austin.SubUnit, austin.SubUnitSlug, austin.SubUnitID = "Austin", "austin", "u1"

	wd := func(p Params) Params {
		p.Category, p.CategorySlug, p.CategoryID = "Web Design", "web-design", "c1"
		return p
	}
	wp := func(p Params) Params {
		p = wd(p)
		p.Skill, p.SkillSlug, p.SkillID = "WordPress", "wordpress", "s1"
		return p
	}

	m := Build([]Route{
		route(wd(tx), KindRegionCategory, 4),
		route(wp(tx), KindRegionCategorySkill, 3),
		route(austin, KindRegionSubUnit, 2),
		route(wd(austin), KindRegionSubUnitCategory, 2),
		route(wd(al), KindRegionCategory, 1),
		route(wp(al), KindRegionCategorySkill, 0),
	}, time.Now())

	menu := Summarize(m)

	require.Len(t, menu.Regions, 2)
	assert.Equal(t, "Alabama", menu.Regions[0].Name)
	assert.Equal(t, "/alabama", menu.Regions[0].Path)
	assert.Equal(t, 1, menu.Regions[0].ExpertCount)
	assert.Equal(t, 4, menu.Regions[1].ExpertCount, "busiest route in region")

	require.Len(t, menu.SubUnits, 1)
	assert.Equal(t, "/texas/austin", menu.SubUnits[0].Path)
	assert.Equal(t, "Texas", menu.SubUnits[0].Region)
	assert.Equal(t, 2, menu.SubUnits[0].ExpertCount)

	require.Len(t, menu.Categories, 1)
	assert.Equal(t, 4+3+2+1, menu.Categories[0].TotalExperts)

	require.Len(t, menu.Skills, 1)
	assert.Equal(t, "web-design", menu.Skills[0].CategorySlug)
	assert.Equal(t, 3, menu.Skills[0].TotalExperts)
	assert.Equal(t, m.Generated, menu.Generated)
}

func TestSummarizeCapsSubUnitsAndSkills(t *testing.T) {
	tx := region("r1", "Texas", "texas")
	var routes []Route
	for i := 0; i < 40; i++ {
		p := tx
		p.SubUnit = fmt.Sprintf("City %02d", i)
		p.SubUnitSlug = fmt.Sprintf("city-%02d", i)
		p.SubUnitID = fmt.Sprintf("u%02d", i)
		routes = append(routes, route(p, KindRegionSubUnit, i+1))

		s := tx
		s.Category, s.CategorySlug, s.CategoryID = "Dev", "dev", "c1"
		s.Skill = fmt.Sprintf("Skill %02d", i)
		s.SkillSlug = fmt.Sprintf("skill-%02d", i)
		s.SkillID = fmt.Sprintf("s%02d", i)
		routes = append(routes, route(s, KindRegionCategorySkill, 1))
	}

	menu := Summarize(Build(routes, time.Now()))

	require.Len(t, menu.SubUnits, maxMenuSubUnits)
	assert.Equal(t, 40, menu.SubUnits[0].ExpertCount)
	assert.Equal(t, 11, menu.SubUnits[maxMenuSubUnits-1].ExpertCount)

	require.Len(t, menu.Skills, maxMenuSkills)
	// equal totals fall back to slug order
	assert.Equal(t, "skill-00", menu.Skills[0].Slug)
	assert.Equal(t, "skill-09", menu.Skills[9].Slug)
}

func TestSummarizeEmptyManifest(t *testing.T) {
	menu := Summarize(Build(nil, time.Now()))

	assert.NotNil(t, menu.Regions)
	assert.NotNil(t, menu.SubUnits)
	assert.NotNil(t, menu.Categories)
	assert.NotNil(t, menu.Skills)
	assert.Empty(t, menu.Regions)
}
