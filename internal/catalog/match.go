package catalog

import (
	"context"
	"strings"

	"golang.org/x/text/cases"
)

// containmentWeight governs the containment rule: when one title contains
// the other, the shorter title must be longer than this fraction of the
// unmatched remainder. Keeps "React Hooks" matching "React Hooks Complete
// Guide" while "React" alone cannot claim "React.js Complete Tutorial and
// Beyond". Loose keyword overlap is deliberately not a match: mislabeling
// unrelated content as on-platform is worse than sending the student to
// an external search.
const containmentWeight = 0.6

var titleCaser = cases.Fold()

func normalizeTitle(s string) string {
	return strings.TrimSpace(titleCaser.String(s))
}

// TitlesMatch reports whether two titles refer to the same content:
// caseless trimmed equality, or containment weighted by how much of the
// longer title the shorter one covers.
func TitlesMatch(a, b string) bool {
	na, nb := normalizeTitle(a), normalizeTitle(b)
	if na == "" || nb == "" {
		return false
	}
	if na == nb {
		return true
	}

	shorter, longer := na, nb
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if !strings.Contains(longer, shorter) {
		return false
	}
	return float64(len(shorter)) > containmentWeight*float64(len(longer)-len(shorter))
}

// BestTitleMatch finds the catalog item whose title matches the course
// title under TitlesMatch, optionally restricted to a difficulty level.
// The first match in catalog order wins.
func BestTitleMatch(ctx context.Context, store Store, title, level string) (Item, bool) {
	nl := normalizeTitle(level)
	for _, item := range store.All(ctx) {
		if nl != "" && item.Level != "" && normalizeTitle(item.Level) != nl {
			continue
		}
		if TitlesMatch(item.Title, title) {
			return item, true
		}
	}
	return Item{}, false
}
