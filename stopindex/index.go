// Package stopindex implements the Stop Index (C3): exact and fuzzy
// lookup of stops by name. No string-distance library appears
// anywhere in the retrieved example corpus, so the fuzzy score is a
// deterministic Jaccard token-overlap score over normalized names —
// the only contract spec.md fixes is that exact matches score 100 and
// results sort by descending score, ties broken lexically.
package stopindex

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"tidbyt.dev/transit/aggregator"
	"tidbyt.dev/transit/model"
)

var foldCase = cases.Fold()

// normalizeName lowercases (locale-agnostic Unicode case folding),
// strips diacritics, and collapses whitespace. The graph builder's hub
// detection does not call it; it has its own normalizeHubName.
func normalizeName(name string) string {
	folded := foldCase.String(name)
	decomposed := norm.NFD.String(folded)

	var b strings.Builder
	lastSpace := false
	for _, r := range decomposed {
		if r >= 0x300 && r <= 0x36F {
			continue // combining diacritical mark
		}
		if r == ' ' || r == '\t' || r == '\n' {
			if lastSpace {
				continue
			}
			lastSpace = true
			b.WriteRune(' ')
			continue
		}
		lastSpace = false
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

func tokens(name string) map[string]bool {
	set := map[string]bool{}
	for _, t := range strings.Fields(normalizeName(name)) {
		set[t] = true
	}
	return set
}

// jaccardScore returns an integer 0-100 token-overlap score.
func jaccardScore(a, b map[string]bool) int {
	if len(a) == 0 && len(b) == 0 {
		return 100
	}
	inter := 0
	union := map[string]bool{}
	for t := range a {
		union[t] = true
		if b[t] {
			inter++
		}
	}
	for t := range b {
		union[t] = true
	}
	if len(union) == 0 {
		return 0
	}
	return (inter * 100) / len(union)
}

type entry struct {
	stop   model.Stop
	tokens map[string]bool
	norm   string
}

// Index is built once from an aggregator.Aggregator's merged stop
// view and is immutable thereafter.
type Index struct {
	entries []entry
	byNorm  map[string][]model.Stop
}

func Build(agg *aggregator.Aggregator) *Index {
	idx := &Index{byNorm: map[string][]model.Stop{}}
	for _, stop := range agg.Stops() {
		n := normalizeName(stop.Name)
		idx.entries = append(idx.entries, entry{stop: stop, tokens: tokens(stop.Name), norm: n})
		idx.byNorm[n] = append(idx.byNorm[n], stop)
	}
	return idx
}

type Match struct {
	Stop  model.Stop
	Score int
}

// FindExact returns every stop whose normalized name exactly matches
// query's normalized name, each scored 100.
func (idx *Index) FindExact(query string) []Match {
	n := normalizeName(query)
	stops := idx.byNorm[n]
	matches := make([]Match, 0, len(stops))
	for _, s := range stops {
		matches = append(matches, Match{Stop: s, Score: 100})
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Stop.Name < matches[j].Stop.Name })
	return matches
}

// FindFuzzy returns up to limit stops scoring at least minScore
// against query, sorted by descending score then lexically by
// stop_name.
func (idx *Index) FindFuzzy(query string, limit int, minScore int) []Match {
	queryTokens := tokens(query)

	matches := make([]Match, 0, len(idx.entries))
	for _, e := range idx.entries {
		score := jaccardScore(queryTokens, e.tokens)
		if e.norm == normalizeName(query) {
			score = 100
		}
		if score < minScore {
			continue
		}
		matches = append(matches, Match{Stop: e.stop, Score: score})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Stop.Name < matches[j].Stop.Name
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}
