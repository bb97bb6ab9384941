package domain

import (
	"time"
)

// Category is the fixed editorial category assigned at ingestion time.
// Topics are broader cross-cutting tags derived by the classifier.
type Category string

const (
	CategoryTechnology    Category = "technology"
	CategoryBusiness      Category = "business"
	CategorySports        Category = "sports"
	CategoryEntertainment Category = "entertainment"
	CategoryHealth        Category = "health"
	CategoryScience       Category = "science"
)

// KnownCategories lists every valid category in a stable order.
var KnownCategories = []Category{
	CategoryTechnology,
	CategoryBusiness,
	CategorySports,
	CategoryEntertainment,
	CategoryHealth,
	CategoryScience,
}

// IsKnownCategory reports whether c is one of the fixed categories.
func IsKnownCategory(c Category) bool {
	for _, k := range KnownCategories {
		if c == k {
			return true
		}
	}
	return false
}

// Article is owned by the structured store. This engine reads articles and
// writes back only Topics.
type Article struct {
	ID          string
	Title       string
	Description string
	Content     string
	Category    Category
	Topics      []Topic
	Source      string
	URL         string
	PublishedAt time.Time
}

// ArticleFilter narrows structured-store reads. Zero-valued fields are ignored.
type ArticleFilter struct {
	Category   Category
	Categories []Category
	Source     string
	Sources    []string
	Topics     []Topic
	DateFrom   time.Time
	DateTo     time.Time
	IDIn       []string
	IDNotIn    []string
	// TitleOrDescriptionLike matches a case-insensitive substring against
	// title and description. Used by the structured search fallback.
	TitleOrDescriptionLike string
}

// ArticleSort orders structured-store reads.
type ArticleSort int

const (
	SortPublishedAtDesc ArticleSort = iota
	SortPublishedAtAsc
)
