package notify

import (
	"sort"
	"strings"
)

// SearchOptions controls text search over surfaces.
type SearchOptions struct {
	IncludeLive       bool
	IncludeHistorical bool
	MatchBody         bool
	MatchNames        bool
	// Limit caps the result count; zero or less means no cap.
	Limit int
}

// Reader is the read-only view shared by Index and Snapshot.
type Reader interface {
	Get(key string) (Surface, bool)
	GetAll() []Surface
	GetByPackages(packages []string, limit int) []Surface
	Search(query string, opts SearchOptions) []Surface
}

// sortSurfaces orders newest first, live before historical on equal
// timestamps, then by key.
func sortSurfaces(items []*Surface) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if !a.PostedAt.Equal(b.PostedAt) {
			return a.PostedAt.After(b.PostedAt)
		}
		if a.Live != b.Live {
			return a.Live
		}
		return a.Key < b.Key
	})
}

func collect(items []*Surface, limit int) []Surface {
	sortSurfaces(items)
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	out := make([]Surface, len(items))
	for i, s := range items {
		out[i] = s.clone()
	}
	return out
}

func matchesText(s *Surface, needle string, opts SearchOptions) bool {
	if strings.Contains(strings.ToLower(s.Title), needle) {
		return true
	}
	if opts.MatchBody && strings.Contains(strings.ToLower(s.Body), needle) {
		return true
	}
	if opts.MatchNames {
		for _, name := range s.People {
			if strings.Contains(strings.ToLower(name), needle) {
				return true
			}
		}
	}
	return false
}

func included(s *Surface, opts SearchOptions) bool {
	if s.Live {
		return opts.IncludeLive
	}
	return opts.IncludeHistorical
}

func filterSearch(items []*Surface, query string, opts SearchOptions) []Surface {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil
	}
	var hits []*Surface
	for _, s := range items {
		if included(s, opts) && matchesText(s, needle, opts) {
			hits = append(hits, s)
		}
	}
	return collect(hits, opts.Limit)
}

func filterPackages(items []*Surface, packages []string, limit int) []Surface {
	if len(packages) == 0 {
		return nil
	}
	wanted := make(map[string]bool, len(packages))
	for _, p := range packages {
		wanted[p] = true
	}
	var hits []*Surface
	for _, s := range items {
		if wanted[s.Package] {
			hits = append(hits, s)
		}
	}
	return collect(hits, limit)
}
