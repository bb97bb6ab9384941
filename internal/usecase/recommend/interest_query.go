package recommend

import (
	"strings"

	"news-engine/internal/domain"
)

const (
	// maxInterestReads caps how many recent reads feed the interest query.
	maxInterestReads = 25
	// interestCharBudget bounds the interest query length; embedding models
	// truncate long inputs anyway, so spending more characters is waste.
	interestCharBudget = 4000
)

// BuildInterestQuery condenses a user's recent reads into one query text for
// the vector search. Articles must be ordered most recent first. Recency is
// weighted by repetition: the 3 most recent titles appear three times, the
// next 5 twice, the rest once, until the character budget is exhausted.
func BuildInterestQuery(articles []domain.Article) string {
	if len(articles) > maxInterestReads {
		articles = articles[:maxInterestReads]
	}

	var b strings.Builder
	for i, a := range articles {
		text := strings.TrimSpace(a.Title + " " + a.Description)
		if text == "" {
			continue
		}
		repeats := 1
		switch {
		case i < 3:
			repeats = 3
		case i < 8:
			repeats = 2
		}
		for r := 0; r < repeats; r++ {
			if b.Len()+len(text)+1 > interestCharBudget {
				return b.String()
			}
			if b.Len() > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(text)
		}
	}
	return b.String()
}
