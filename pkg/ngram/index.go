package ngram

import (
	"fmt"
	"sort"
)

// Entry is a single searchable string with an external identifier.
type Entry struct {
	ID   string
	Text string
}

// Match is a scored index hit. Position is the entry's position in the
// snapshot the index was built from.
type Match struct {
	ID       string
	Position int
	Score    float64
}

// Index holds a forward map (snapshot position -> n-gram set) and an
// inverted map (n-gram -> positions) over one snapshot of entries. An Index
// is built fresh per search, never mutated, and safe for concurrent reads.
type Index struct {
	kind     Kind
	n        int
	entries  []Entry
	forward  []Set
	inverted map[string][]int
}

// BuildIndex computes the n-gram set of every entry and populates the
// forward and inverted maps. Cost is linear in the total text length.
func BuildIndex(entries []Entry, kind Kind, n int) (*Index, error) {
	if n < 1 {
		return nil, fmt.Errorf("ngram size must be positive, got %d", n)
	}
	ix := &Index{
		kind:     kind,
		n:        n,
		entries:  entries,
		forward:  make([]Set, len(entries)),
		inverted: make(map[string][]int),
	}
	for pos, entry := range entries {
		grams := Generate(entry.Text, kind, n)
		ix.forward[pos] = grams
		for g := range grams {
			ix.inverted[g] = append(ix.inverted[g], pos)
		}
	}
	return ix, nil
}

// Len returns the number of indexed entries.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Query scores candidates against the query string and returns matches with
// score >= threshold, sorted descending by score with ties broken by
// snapshot position. For threshold > 0 only entries sharing at least one
// n-gram with the query are scored (entries with an empty intersection can
// never reach a positive threshold); for threshold <= 0 every entry is
// scored, so the result is always identical to a brute-force scan.
func (ix *Index) Query(query string, threshold float64) ([]Match, error) {
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("threshold must be in [0,1], got %g", threshold)
	}
	queryGrams := Generate(query, ix.kind, ix.n)

	var positions []int
	if threshold <= 0 {
		positions = make([]int, len(ix.entries))
		for i := range positions {
			positions[i] = i
		}
	} else {
		seen := make(map[int]struct{})
		for g := range queryGrams {
			for _, pos := range ix.inverted[g] {
				seen[pos] = struct{}{}
			}
		}
		positions = make([]int, 0, len(seen))
		for pos := range seen {
			positions = append(positions, pos)
		}
		sort.Ints(positions)
	}

	matches := make([]Match, 0, len(positions))
	for _, pos := range positions {
		score := Jaccard(queryGrams, ix.forward[pos])
		if score >= threshold {
			matches = append(matches, Match{
				ID:       ix.entries[pos].ID,
				Position: pos,
				Score:    score,
			})
		}
	}
	sortMatches(matches)
	return matches, nil
}

// FindSimilar scores every entry against the query without an index and
// returns matches with score >= threshold in the same order Query produces.
// Query on a built index must return exactly this result; the index is a
// performance optimization, never a semantic change.
func FindSimilar(query string, entries []Entry, threshold float64, kind Kind, n int) ([]Match, error) {
	if n < 1 {
		return nil, fmt.Errorf("ngram size must be positive, got %d", n)
	}
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("threshold must be in [0,1], got %g", threshold)
	}
	queryGrams := Generate(query, kind, n)
	matches := make([]Match, 0, len(entries))
	for pos, entry := range entries {
		score := Jaccard(queryGrams, Generate(entry.Text, kind, n))
		if score >= threshold {
			matches = append(matches, Match{ID: entry.ID, Position: pos, Score: score})
		}
	}
	sortMatches(matches)
	return matches, nil
}

// sortMatches orders by score descending, ties by snapshot position
// ascending. Never map iteration order.
func sortMatches(matches []Match) {
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Position < matches[j].Position
	})
}
