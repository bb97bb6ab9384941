package recommend

import "news-engine/internal/domain"

// maxPerSource caps how many items one source may contribute to a
// recommendation set.
const maxPerSource = 2

// Diversify walks the ranked articles best first and admits each only while
// its source has contributed fewer than two selections. The quota is never
// relaxed: when it cannot be filled, fewer results are returned.
func Diversify(ranked []domain.Article, limit int) []domain.Article {
	if limit <= 0 {
		return nil
	}
	perSource := make(map[string]int)
	out := make([]domain.Article, 0, limit)
	for _, a := range ranked {
		if perSource[a.Source] >= maxPerSource {
			continue
		}
		perSource[a.Source]++
		out = append(out, a)
		if len(out) == limit {
			break
		}
	}
	return out
}
