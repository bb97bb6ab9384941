package retrieval

import (
	"sort"
	"strings"
	"unicode"

	"news-engine/internal/domain"
)

// Rerank fuses the ranking signals into one combined score and sorts the
// candidates best first. Ties on the combined score keep the higher raw
// semantic score first, so lexical overlap breaks ties between otherwise
// equal semantic hits without ever demoting a strictly better one.
func Rerank(candidates []Candidate, queries Queries, intent []domain.Topic, weights SearchWeights) []Candidate {
	baseTokens := queryTokens(queries.Base)
	var expandedTokens []string
	if queries.HasExpanded() {
		expandedTokens = queryTokens(queries.Expanded)
	}

	intentSet := make(map[domain.Topic]bool, len(intent))
	for _, t := range intent {
		intentSet[t] = true
	}

	for i := range candidates {
		c := &candidates[i]
		combined := float64(c.Semantic)

		if c.BaseHit && c.ExpandedHit {
			combined += weights.CrossHit
		}

		matches := 0
		for _, t := range c.Hit.Payload.Topics {
			if intentSet[t] {
				matches++
			}
		}
		combined += weights.TopicMatch * float64(matches)

		haystack := strings.ToLower(c.Hit.Payload.Title)
		if c.Article != nil {
			haystack = strings.ToLower(c.Article.Title + " " + c.Article.Description)
		}
		overlap := lexicalOverlap(baseTokens, haystack)
		if o := lexicalOverlap(expandedTokens, haystack); o > overlap {
			overlap = o
		}
		combined += weights.LexicalOverlap * overlap

		c.Combined = combined
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Combined != candidates[j].Combined {
			return candidates[i].Combined > candidates[j].Combined
		}
		return candidates[i].Semantic > candidates[j].Semantic
	})
	return candidates
}

// queryTokens tokenizes script-aware: case-folded, split on anything that is
// neither a letter nor a digit, keeping tokens longer than two runes. Works
// for latin and Devanagari alike.
func queryTokens(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len([]rune(f)) > 2 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// lexicalOverlap returns the fraction of tokens found as substrings in the
// haystack. Zero when there are no tokens.
func lexicalOverlap(tokens []string, haystack string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	found := 0
	for _, tok := range tokens {
		if strings.Contains(haystack, tok) {
			found++
		}
	}
	return float64(found) / float64(len(tokens))
}
