package domain

import "time"

// SourceScore is one entry of the ranked preferred-source list.
type SourceScore struct {
	Source string `json:"source"`
	Score  int    `json:"score"`
}

// KeywordCount is one entry of the ranked top-keyword list.
type KeywordCount struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// PreferenceProfile summarizes a user's recent reading affinity. It is
// recomputed wholesale from the last 30 days of history; there is no
// incremental merge. A user with no recent reads has no profile at all.
type PreferenceProfile struct {
	UserID string `json:"userId"`
	// CategoryScores holds round(reads-in-category / total-recent-reads * 100)
	// per known category. Scores are independent normalizations and do not
	// sum to 100.
	CategoryScores    map[Category]int `json:"categoryScores"`
	PreferredSources  []SourceScore    `json:"preferredSources"`
	TopKeywords       []KeywordCount   `json:"topKeywords"`
	LastUpdated       time.Time        `json:"lastUpdated"`
	TotalArticlesRead int              `json:"totalArticlesRead"`
}

// TopCategories returns up to n categories with a positive score, best first.
func (p *PreferenceProfile) TopCategories(n int) []Category {
	type entry struct {
		cat   Category
		score int
	}
	entries := make([]entry, 0, len(p.CategoryScores))
	for _, c := range KnownCategories {
		if s := p.CategoryScores[c]; s > 0 {
			entries = append(entries, entry{c, s})
		}
	}
	// Stable: KnownCategories order breaks score ties.
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j].score > entries[j-1].score; j-- {
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}
	if len(entries) > n {
		entries = entries[:n]
	}
	cats := make([]Category, len(entries))
	for i, e := range entries {
		cats[i] = e.cat
	}
	return cats
}

// TopSources returns up to n preferred source names, best first.
func (p *PreferenceProfile) TopSources(n int) []string {
	if len(p.PreferredSources) < n {
		n = len(p.PreferredSources)
	}
	sources := make([]string, n)
	for i := 0; i < n; i++ {
		sources[i] = p.PreferredSources[i].Source
	}
	return sources
}

// TopKeywordList returns up to n top keywords, most frequent first.
func (p *PreferenceProfile) TopKeywordList(n int) []string {
	if len(p.TopKeywords) < n {
		n = len(p.TopKeywords)
	}
	keywords := make([]string, n)
	for i := 0; i < n; i++ {
		keywords[i] = p.TopKeywords[i].Keyword
	}
	return keywords
}

// ReadEvent is one entry of a user's reading history, most recent first when
// returned by the history store.
type ReadEvent struct {
	ArticleID string
	ReadAt    time.Time
}
