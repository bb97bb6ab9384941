package retrieval

import (
	"sort"
	"strings"

	"news-engine/internal/domain"
)

// maxHintTerms caps how many Nepali hint terms one expanded query may carry;
// beyond this the expansion stops sharpening and starts diluting the vector.
const maxHintTerms = 12

// BuildQueries turns a raw search query into the base query plus an optional
// cross-lingual expansion, and infers the intent topics used later by the
// reranker. A query already written in Devanagari is never expanded.
func BuildQueries(rawQuery string, selectedTopics []domain.Topic) (Queries, []domain.Topic) {
	intent := intentTopics(rawQuery, selectedTopics)
	q := Queries{Base: rawQuery}

	if domain.ContainsDevanagari(rawQuery) {
		return q, intent
	}

	hints := collectHints(rawQuery, intent)
	if len(hints) > 0 {
		q.Expanded = rawQuery + "\n" + strings.Join(hints, " ")
	}
	return q, intent
}

// intentTopics unions the topics classified from the query text with the
// caller-selected topic filters, in stable order.
func intentTopics(rawQuery string, selected []domain.Topic) []domain.Topic {
	set := make(map[domain.Topic]bool)
	for _, t := range domain.KeywordTopics(rawQuery, "") {
		set[t] = true
	}
	for _, t := range selected {
		set[t] = true
	}
	topics := make([]domain.Topic, 0, len(set))
	for t := range set {
		topics = append(topics, t)
	}
	sort.Slice(topics, func(i, j int) bool { return topics[i] < topics[j] })
	return topics
}

// collectHints scans the entity and keyword clusters against the query's
// token set, then pulls in the hint vocabulary of each intent topic.
// Duplicate hints are emitted once, in first-seen order.
func collectHints(rawQuery string, intent []domain.Topic) []string {
	normalized := domain.NormalizeLatinText(rawQuery)
	if normalized == "" {
		return nil
	}
	tokens := make(map[string]bool)
	for _, tok := range strings.Fields(normalized) {
		tokens[tok] = true
	}

	seen := make(map[string]bool)
	var hints []string
	appendHints := func(terms []string) {
		for _, h := range terms {
			if len(hints) >= maxHintTerms {
				return
			}
			if !seen[h] {
				seen[h] = true
				hints = append(hints, h)
			}
		}
	}

	for _, cluster := range entityHints {
		if clusterFires(cluster, tokens) {
			appendHints(cluster.hints)
		}
	}
	for _, cluster := range keywordHints {
		if clusterFires(cluster, tokens) {
			appendHints(cluster.hints)
		}
	}
	for _, topic := range intent {
		appendHints(topicHints[topic])
	}
	return hints
}

func clusterFires(c hintCluster, tokens map[string]bool) bool {
	for _, trigger := range c.triggers {
		if tokens[trigger] {
			return true
		}
	}
	return false
}
