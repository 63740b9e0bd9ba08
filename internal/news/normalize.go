package news

import "time"

// Defaults applied when upstream fields are missing or empty.
const (
	DefaultTitle       = "No Title"
	DefaultDescription = "No description available"
	DefaultLink        = "#"
	DefaultSource      = "Unknown Source"
	DefaultCreator     = "Unknown Author"
	DefaultLanguage    = "en"
)

// DefaultCountry is assigned when upstream omits the country list.
var DefaultCountry = []string{"India"}

// RawArticle is the upstream NewsData.io article shape. Every field may be
// missing, empty or null.
type RawArticle struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Link        string   `json:"link"`
	ImageURL    string   `json:"image_url"`
	PubDate     string   `json:"pubDate"`
	SourceID    string   `json:"source_id"`
	Creator     []string `json:"creator"`
	Content     string   `json:"content"`
	Country     []string `json:"country"`
	Language    string   `json:"language"`
}

// Article is the normalized internal article shape. Every field has a total
// default, so normalization never fails on sparse upstream records.
type Article struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Link        string   `json:"link"`
	ImageURL    *string  `json:"image_url"`
	PubDate     string   `json:"pubDate"`
	SourceID    string   `json:"source_id"`
	Creator     []string `json:"creator"`
	Category    string   `json:"category"`
	Content     *string  `json:"content"`
	Country     []string `json:"country"`
	Language    string   `json:"language"`
	Priority    int      `json:"priority"`
}

// PriorityWeights is the weighting table for the article priority heuristic.
// The two observed deployments disagree on the image weight (1 vs 5), so it
// is configurable rather than hard-coded.
type PriorityWeights struct {
	Image       int
	Title       int
	Description int
	Creator     int
}

// DefaultPriorityWeights returns the weighting with every signal worth 1.
func DefaultPriorityWeights() PriorityWeights {
	return PriorityWeights{Image: 1, Title: 1, Description: 1, Creator: 1}
}

// Normalizer maps upstream article records into the internal shape.
type Normalizer struct {
	Weights PriorityWeights

	// Now supplies the fallback publish timestamp; tests override it.
	Now func() time.Time
}

// NewNormalizer creates a normalizer with the given weighting table.
func NewNormalizer(weights PriorityWeights) *Normalizer {
	return &Normalizer{
		Weights: weights,
		Now:     time.Now,
	}
}

// Normalize converts raw upstream articles into the internal shape, in
// upstream order, with no deduplication.
func (n *Normalizer) Normalize(raw []RawArticle, category string) []Article {
	articles := make([]Article, 0, len(raw))
	for _, r := range raw {
		articles = append(articles, n.normalizeOne(r, category))
	}
	return articles
}

func (n *Normalizer) normalizeOne(r RawArticle, category string) Article {
	a := Article{
		Title:       orDefault(r.Title, DefaultTitle),
		Description: orDefault(r.Description, DefaultDescription),
		Link:        orDefault(r.Link, DefaultLink),
		PubDate:     orDefault(r.PubDate, n.Now().UTC().Format(time.RFC3339)),
		SourceID:    orDefault(r.SourceID, DefaultSource),
		Creator:     r.Creator,
		Category:    category,
		Country:     r.Country,
		Language:    orDefault(r.Language, DefaultLanguage),
		Priority:    n.Priority(r),
	}

	if r.ImageURL != "" {
		a.ImageURL = &r.ImageURL
	}
	if r.Content != "" {
		a.Content = &r.Content
	}
	if len(a.Creator) == 0 {
		a.Creator = []string{DefaultCreator}
	}
	if len(a.Country) == 0 {
		a.Country = DefaultCountry
	}

	return a
}

// Priority computes the heuristic relevance score for a raw article. It
// starts at 1 and adds a weight per content-quality signal present.
func (n *Normalizer) Priority(r RawArticle) int {
	priority := 1

	if r.ImageURL != "" {
		priority += n.Weights.Image
	}
	if len(r.Title) > 10 {
		priority += n.Weights.Title
	}
	if len(r.Description) > 50 {
		priority += n.Weights.Description
	}
	if len(r.Creator) > 0 && r.Creator[0] != DefaultCreator {
		priority += n.Weights.Creator
	}

	return priority
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
