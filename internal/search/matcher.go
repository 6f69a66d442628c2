package search

import (
	"cmp"
	"slices"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/standardbeagle/lri/internal/debug"
	"github.com/standardbeagle/lri/internal/types"
)

// MinSuggestionSimilarity is the Jaro-Winkler similarity a name needs to be suggested
const MinSuggestionSimilarity = 0.7

// Result is one ranked fuzzy match
type Result struct {
	Symbol  *types.Symbol
	Score   int
	Indices []int

	inRoot     bool
	similarity float32
}

// Matcher ranks symbols by how well their bare name matches a query.
// Symbols under projectRoot win ties against stub and vendored ones.
type Matcher struct {
	projectRoot string
}

// NewMatcher creates a matcher for the given project root
func NewMatcher(projectRoot string) *Matcher {
	return &Matcher{projectRoot: projectRoot}
}

// Match scores every symbol against query and returns the matches best first.
// An empty query matches nothing.
func (m *Matcher) Match(query string, symbols []*types.Symbol) []Result {
	if query == "" {
		return nil
	}

	var results []Result
	for _, s := range symbols {
		score, indices, ok := FuzzyScore(s.Name, query)
		if !ok {
			continue
		}
		results = append(results, Result{
			Symbol:     s,
			Score:      score,
			Indices:    indices,
			inRoot:     s.InDir(m.projectRoot),
			similarity: similarity(query, s.Name),
		})
	}

	slices.SortStableFunc(results, func(a, b Result) int {
		if c := compareRanking(a, b); c != 0 {
			return c
		}
		// names that rank equally are ordered by overall similarity to the query
		return cmp.Compare(b.similarity, a.similarity)
	})

	debug.LogSearch("fuzzy %q matched %d of %d symbols\n", query, len(results), len(symbols))
	return results
}

// Symbols is Match without the scoring details
func (m *Matcher) Symbols(query string, symbols []*types.Symbol) []*types.Symbol {
	results := m.Match(query, symbols)
	out := make([]*types.Symbol, len(results))
	for i, r := range results {
		out[i] = r.Symbol
	}
	return out
}

// compareRanking orders by score, root membership, first index, last index and name
// length. Higher scores and root symbols come first; positions and lengths prefer smaller.
func compareRanking(a, b Result) int {
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	if c := cmp.Compare(rootRank(b), rootRank(a)); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Indices[0], b.Indices[0]); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Indices[len(a.Indices)-1], b.Indices[len(b.Indices)-1]); c != 0 {
		return c
	}
	return cmp.Compare(len([]rune(a.Symbol.Name)), len([]rune(b.Symbol.Name)))
}

func rootRank(r Result) int {
	if r.inRoot {
		return 1
	}
	return -1
}

// similarity is the case-insensitive Jaro-Winkler similarity of two names
func similarity(a, b string) float32 {
	sim, err := edlib.StringsSimilarity(strings.ToLower(a), strings.ToLower(b), edlib.JaroWinkler)
	if err != nil {
		return 0
	}
	return sim
}

// Suggest returns up to limit distinct symbol names close to query by Jaro-Winkler
// similarity. It is used when a fuzzy search finds nothing, typically because of a typo.
func Suggest(query string, symbols []*types.Symbol, limit int) []string {
	if query == "" || limit <= 0 {
		return nil
	}

	type candidate struct {
		name string
		sim  float32
	}
	seen := make(map[string]bool)
	var candidates []candidate
	for _, s := range symbols {
		if seen[s.Name] {
			continue
		}
		seen[s.Name] = true

		sim := similarity(query, s.Name)
		if sim < MinSuggestionSimilarity {
			continue
		}
		candidates = append(candidates, candidate{name: s.Name, sim: sim})
	}

	slices.SortFunc(candidates, func(a, b candidate) int {
		if c := cmp.Compare(b.sim, a.sim); c != 0 {
			return c
		}
		return strings.Compare(a.name, b.name)
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.name
	}
	debug.LogSearch("suggestions for %q: %v\n", query, names)
	return names
}
