package news

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"golang.org/x/sync/singleflight"

	"samachar/internal/core"
)

// SourceLabel identifies where results came from in API responses.
const SourceLabel = "NewsData.io API"

// upstreamPageSize is pinned regardless of the caller's requested limit on
// the feed path. Keeping the upstream query shape constant avoids upstream
// 422s; do not pass the caller's limit through here.
const upstreamPageSize = 10

// Page markers for NewsResult.CurrentPage.
const (
	PageFirst  = "first"
	PageNext   = "next"
	PageSearch = "search"
)

// NewsResult is the assembled, cacheable result of a feed or search request.
// It is immutable once returned.
type NewsResult struct {
	Articles      []Article `json:"articles"`
	TotalArticles int       `json:"totalArticles"`
	HasMore       bool      `json:"hasMore"`
	NextPageToken string    `json:"nextPageToken,omitempty"`
	CurrentPage   string    `json:"currentPage"`
	TotalPages    int       `json:"totalPages"`
	Source        string    `json:"source"`
}

// Service orchestrates cache lookup, upstream fetch, normalization and
// continuation tracking for the news endpoints.
type Service struct {
	config        core.NewsConfig
	client        *Client
	cache         Store
	mapper        *CategoryMapper
	continuations *ContinuationTable
	normalizer    *Normalizer
	group         singleflight.Group
	logger        *core.Logger
}

// NewService creates a news service from configuration.
func NewService(config core.NewsConfig, logger *core.Logger) *Service {
	weights := DefaultPriorityWeights()
	weights.Image = config.ImageWeight

	return &Service{
		config:        config,
		client:        NewClient(config.BaseURL, config.UpstreamTimeout),
		cache:         NewMemoryCache(config.DefaultCacheTTL),
		mapper:        NewCategoryMapper(config.CategoryMapping),
		continuations: NewContinuationTable(),
		normalizer:    NewNormalizer(weights),
		logger:        logger.ForFeature("news"),
	}
}

// Cache exposes the result cache (for the background sweeper).
func (s *Service) Cache() Store {
	return s.cache
}

// Mapper exposes the category table (for validation).
func (s *Service) Mapper() *CategoryMapper {
	return s.mapper
}

// GetNews returns a page of the category feed.
//
// With no explicit page token, a continuation stored from an earlier fetch
// of the same category is picked up, so a "load more" call without a token
// resumes where the feed left off. The resolved token participates in the
// cache key.
func (s *Service) GetNews(ctx context.Context, category, pageToken string, limit int) (*NewsResult, error) {
	if s.config.APIKey == "" {
		return nil, ErrNotConfigured
	}

	if limit < 1 {
		limit = s.config.DefaultLimit
	}

	token := pageToken
	if token == "" {
		token, _ = s.continuations.Lookup(category)
	}

	key := feedCacheKey(category, token, limit)
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}

	result, err, _ := s.group.Do(key, func() (any, error) {
		return s.fetchFeed(ctx, category, token, limit, key)
	})
	if err != nil {
		return nil, err
	}

	return result.(*NewsResult), nil
}

func (s *Service) fetchFeed(ctx context.Context, category, token string, limit int, key string) (*NewsResult, error) {
	params := url.Values{}
	params.Set("apikey", s.config.APIKey)
	params.Set("language", "en")
	params.Set("size", strconv.Itoa(upstreamPageSize))

	if category == GeneralCategory {
		params.Set("q", "india")
	} else {
		params.Set("q", "india "+category)
	}

	if code, ok := s.mapper.Map(category); ok {
		params.Set("category", code)
	}

	if token != "" {
		params.Set("page", token)
	}

	resp, err := s.client.Fetch(ctx, params)
	if err != nil {
		s.logger.Error("Upstream fetch failed", "category", category, "error", err)
		return nil, err
	}

	articles := s.normalizer.Normalize(resp.Results, category)
	result := s.assemble(articles, resp, limit)
	if token != "" {
		result.CurrentPage = PageNext
	} else {
		result.CurrentPage = PageFirst
	}

	s.continuations.Record(category, resp.NextPage)
	s.cache.Set(key, result)

	s.logger.Info("Fetched news", "category", category, "articles", len(articles), "has_more", result.HasMore)
	return result, nil
}

// SearchNews returns full-text search results.
//
// The raw query is passed through untouched, the caller's limit becomes the
// upstream page size, and no continuation is tracked or consumed: search is
// a single page in this design. Results are cached with the shorter search
// TTL since identical searches are less likely to repeat.
func (s *Service) SearchNews(ctx context.Context, query, category string, limit int) (*NewsResult, error) {
	if s.config.APIKey == "" {
		return nil, ErrNotConfigured
	}

	if limit < 1 {
		limit = s.config.DefaultLimit
	}

	key := searchCacheKey(query, category, limit)
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}

	result, err, _ := s.group.Do(key, func() (any, error) {
		return s.fetchSearch(ctx, query, category, limit, key)
	})
	if err != nil {
		return nil, err
	}

	return result.(*NewsResult), nil
}

func (s *Service) fetchSearch(ctx context.Context, query, category string, limit int, key string) (*NewsResult, error) {
	params := url.Values{}
	params.Set("apikey", s.config.APIKey)
	params.Set("q", query)
	params.Set("language", "en")
	params.Set("size", strconv.Itoa(limit))

	if code, ok := s.mapper.Map(category); ok {
		params.Set("category", code)
	}

	resp, err := s.client.Fetch(ctx, params)
	if err != nil {
		s.logger.Error("Upstream search failed", "query", query, "error", err)
		return nil, err
	}

	articles := s.normalizer.Normalize(resp.Results, category)
	result := s.assemble(articles, resp, limit)
	result.CurrentPage = PageSearch

	s.cache.SetWithTTL(key, result, s.config.SearchCacheTTL)

	s.logger.Info("Searched news", "query", query, "articles", len(articles))
	return result, nil
}

func (s *Service) assemble(articles []Article, resp *upstreamResponse, limit int) *NewsResult {
	total := resp.TotalResults
	if total == 0 {
		total = len(articles)
	}

	return &NewsResult{
		Articles:      articles,
		TotalArticles: total,
		HasMore:       resp.NextPage != "",
		NextPageToken: resp.NextPage,
		TotalPages:    (total + limit - 1) / limit,
		Source:        SourceLabel,
	}
}

func feedCacheKey(category, token string, limit int) string {
	if token == "" {
		token = "first"
	}
	return fmt.Sprintf("%s_%s_%d", category, token, limit)
}

func searchCacheKey(query, category string, limit int) string {
	return fmt.Sprintf("search_%s_%s_%d", query, category, limit)
}
