// Package routes generates the region/sub-unit/category/skill route space,
// prunes it to combinations that have experts, and serves the resulting
// manifest and menu summary.
package routes

import "strings"

// Kind tags which dimensions a route carries.
type Kind string

const (
	KindRegionCategory                     Kind = "region-category"
	KindRegionSubUnit                      Kind = "region-subunit"
	KindRegionSubUnitCategory              Kind = "region-subunit-category"
	KindRegionCategorySkill                Kind = "region-category-skill"
	KindRegionSubUnitCategorySkill         Kind = "region-subunit-category-skill"
	KindRegionCategoryCertification        Kind = "region-category-certification"
	KindRegionSubUnitCategoryCertification Kind = "region-subunit-category-certification"
)

// Kinds lists every kind in generation order.
var Kinds = []Kind{
	KindRegionCategory,
	KindRegionSubUnit,
	KindRegionSubUnitCategory,
	KindRegionCategorySkill,
	KindRegionSubUnitCategorySkill,
	KindRegionCategoryCertification,
	KindRegionSubUnitCategoryCertification,
}

// Params is the parameter bag stored per path. The JSON names follow the
// published manifest layout (state/city for region/sub-unit).
type Params struct {
	Kind Kind `json:"type"`

	Region     string `json:"state"`
	RegionSlug string `json:"stateSlug"`
	RegionID   string `json:"stateId"`

	SubUnit     string `json:"city,omitempty"`
	SubUnitSlug string `json:"citySlug,omitempty"`
	SubUnitID   string `json:"cityId,omitempty"`

	Category     string `json:"category,omitempty"`
	CategorySlug string `json:"categorySlug,omitempty"`
	CategoryID   string `json:"categoryId,omitempty"`

	Skill     string `json:"skill,omitempty"`
	SkillSlug string `json:"skillSlug,omitempty"`
	SkillID   string `json:"skillId,omitempty"`

	Certification     string `json:"certification,omitempty"`
	CertificationSlug string `json:"certificationSlug,omitempty"`
	CertificationID   string `json:"certificationId,omitempty"`

	ExpertCount int `json:"expertCount"`
}

// Path builds the URL path from the slugs present in p.
func (p Params) Path() string {
	parts := []string{p.RegionSlug}
	if p.SubUnitSlug != "" {
		parts = append(parts, p.SubUnitSlug)
	}
	if p.CategorySlug != "" {
		parts = append(parts, p.CategorySlug)
	}
	switch {
	case p.SkillSlug != "":
		parts = append(parts, p.SkillSlug)
	case p.CertificationSlug != "":
		parts = append(parts, p.CertificationSlug)
	}
	return "/" + strings.Join(parts, "/")
}

// Route is one generated path with its parameters.
type Route struct {
	Path   string `json:"path"`
	Params Params `json:"params"`
}

// NormalizePath lowercases p, ensures a leading slash and strips a trailing one.
func NormalizePath(p string) string {
	p = strings.ToLower(strings.TrimSpace(p))
	p = strings.TrimRight(p, "/")
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}
