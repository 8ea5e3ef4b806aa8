package search

import (
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/pders01/justtype/internal/storage"
)

const (
	maxRecentApps  = 12
	maxMatchedApps = 50

	scoreWordPrefix  = 100.0
	scoreTitlePrefix = 90.0
	scoreSubstring   = 60.0
	pinnedBonus      = 20.0
	maxRecencyBonus  = 25.0
	recencyDays      = 30
)

type scoredEntry struct {
	entry  storage.Entry
	score  float64
	pinned bool
}

// favoredFloor is the best score an unpinned word-prefix match can reach.
// Pinned word-prefix matches rank at least this high so recency alone never
// lifts an unpinned entry above them.
const favoredFloor = scoreWordPrefix + maxRecencyBonus

// RankApps orders launchable entries for a query. A blank query yields the
// pinned entries followed by recently launched ones; otherwise entries are
// matched against their titles and scored.
func RankApps(query string, entries []storage.Entry, favorites []string, now time.Time) []storage.Entry {
	visible := make([]storage.Entry, 0, len(entries))
	for _, e := range entries {
		if !e.Hidden {
			visible = append(visible, e)
		}
	}

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return recentApps(visible, favorites)
	}
	return matchApps(q, visible, favoriteSet(favorites), now)
}

func favoriteSet(favorites []string) map[string]bool {
	set := make(map[string]bool, len(favorites))
	for _, id := range favorites {
		set[id] = true
	}
	return set
}

func recentApps(entries []storage.Entry, favorites []string) []storage.Entry {
	byID := make(map[string]storage.Entry, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}

	var out []storage.Entry
	seen := make(map[string]bool)
	for _, id := range favorites {
		if e, ok := byID[id]; ok && !seen[id] {
			out = append(out, e)
			seen[id] = true
		}
	}
	for _, e := range entries {
		if e.Pinned && !seen[e.ID] {
			out = append(out, e)
			seen[e.ID] = true
		}
	}

	var recent []storage.Entry
	for _, e := range entries {
		if e.LastLaunched != nil && !seen[e.ID] {
			recent = append(recent, e)
		}
	}
	sort.SliceStable(recent, func(i, j int) bool {
		a, b := recent[i], recent[j]
		if !a.LastLaunched.Equal(*b.LastLaunched) {
			return a.LastLaunched.After(*b.LastLaunched)
		}
		return titleLess(a, b)
	})

	out = append(out, recent...)
	if len(out) > maxRecentApps {
		out = out[:maxRecentApps]
	}
	return out
}

func matchApps(q string, entries []storage.Entry, favorites map[string]bool, now time.Time) []storage.Entry {
	tokens := strings.Fields(q)

	var scored []scoredEntry
	for _, e := range entries {
		match, ok := matchScore(strings.ToLower(e.Title), q, tokens)
		if !ok {
			continue
		}
		pinned := e.Pinned || favorites[e.ID]
		score := match + recencyBonus(e.LastLaunched, now)
		if pinned {
			score += pinnedBonus
			if match == scoreWordPrefix && score < favoredFloor {
				score = favoredFloor
			}
		}
		scored = append(scored, scoredEntry{entry: e, score: score, pinned: pinned})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.pinned != b.pinned {
			return a.pinned
		}
		if la, lb := a.entry.LastLaunched, b.entry.LastLaunched; la != nil || lb != nil {
			if la == nil {
				return false
			}
			if lb == nil {
				return true
			}
			if !la.Equal(*lb) {
				return la.After(*lb)
			}
		}
		return titleLess(a.entry, b.entry)
	})

	if len(scored) > maxMatchedApps {
		scored = scored[:maxMatchedApps]
	}
	out := make([]storage.Entry, len(scored))
	for i, s := range scored {
		out[i] = s.entry
	}
	return out
}

// matchScore reports whether a lowercased title matches q and how well.
func matchScore(title, q string, tokens []string) (float64, bool) {
	if allTokensArePrefixes(tokens, splitWords(title)) {
		return scoreWordPrefix, true
	}
	if strings.HasPrefix(title, q) {
		return scoreTitlePrefix, true
	}
	if strings.Contains(title, q) {
		return scoreSubstring, true
	}
	return 0, false
}

func allTokensArePrefixes(tokens, words []string) bool {
	if len(tokens) == 0 {
		return false
	}
	for _, tok := range tokens {
		found := false
		for _, w := range words {
			if strings.HasPrefix(w, tok) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// splitWords breaks text on whitespace and punctuation.
func splitWords(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// recencyBonus decays linearly from 25 at age zero to 0 at 30 days, in whole
// day steps.
func recencyBonus(last *time.Time, now time.Time) float64 {
	if last == nil {
		return 0
	}
	days := int(now.Sub(*last) / (24 * time.Hour))
	if days < 0 {
		days = 0
	}
	if days >= recencyDays {
		return 0
	}
	return maxRecencyBonus * float64(recencyDays-days) / recencyDays
}

func titleLess(a, b storage.Entry) bool {
	ta, tb := strings.ToLower(a.Title), strings.ToLower(b.Title)
	if ta != tb {
		return ta < tb
	}
	return a.ID < b.ID
}
