package routes

import (
	"sort"
	"time"
)

// Manifest is an immutable path-keyed snapshot of generated routes.
// Build it fully, then publish the pointer; never mutate a published one.
type Manifest struct {
	Generated time.Time         `json:"generated"`
	Size      int               `json:"count"`
	Routes    map[string]Params `json:"routes"`
}

// Build indexes routes by path. Should two routes share a path, the later
// one wins; Collisions reports such paths.
func Build(routes []Route, generatedAt time.Time) *Manifest {
	m := &Manifest{Generated: generatedAt.UTC(), Routes: make(map[string]Params, len(routes))}
	for _, r := range routes {
		m.Routes[NormalizePath(r.Path)] = r.Params
	}
	m.Size = len(m.Routes)
	return m
}

// Collisions lists every path produced by more than one route, sorted.
func Collisions(routes []Route) []string {
	seen := make(map[string]int, len(routes))
	for _, r := range routes {
		seen[NormalizePath(r.Path)]++
	}
	var out []string
	for p, n := range seen {
		if n > 1 {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// Get looks a path up; trailing slashes and case are ignored.
func (m *Manifest) Get(path string) (Params, bool) {
	p, ok := m.Routes[NormalizePath(path)]
	return p, ok
}

// All returns a copy of the path map.
func (m *Manifest) All() map[string]Params {
	out := make(map[string]Params, len(m.Routes))
	for k, v := range m.Routes {
		out[k] = v
	}
	return out
}

func (m *Manifest) GeneratedAt() time.Time { return m.Generated }

func (m *Manifest) Count() int { return m.Size }

// Paths returns every path in sorted order.
func (m *Manifest) Paths() []string {
	out := make([]string, 0, len(m.Routes))
	for p := range m.Routes {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// KindCounts tallies routes per kind.
func (m *Manifest) KindCounts() map[Kind]int {
	out := make(map[Kind]int, len(Kinds))
	for _, k := range Kinds {
		out[k] = 0
	}
	for _, p := range m.Routes {
		out[p.Kind]++
	}
	return out
}
