package news

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"samachar/internal/core"
)

// upstreamRecorder is a scripted NewsData.io stand-in that records every
// query it receives.
type upstreamRecorder struct {
	mu      sync.Mutex
	calls   int
	queries []url.Values
	respond func(q url.Values) (int, string)
	delay   time.Duration
}

func (u *upstreamRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u.mu.Lock()
	u.calls++
	u.queries = append(u.queries, r.URL.Query())
	respond := u.respond
	delay := u.delay
	u.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	status, body := http.StatusOK, successBody(1, "", `{"title":"A"}`)
	if respond != nil {
		status, body = respond(r.URL.Query())
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

func (u *upstreamRecorder) callCount() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.calls
}

func (u *upstreamRecorder) query(i int) url.Values {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.queries[i]
}

func successBody(total int, nextPage string, results ...string) string {
	next := "null"
	if nextPage != "" {
		next = fmt.Sprintf("%q", nextPage)
	}
	joined := ""
	for i, r := range results {
		if i > 0 {
			joined += ","
		}
		joined += r
	}
	return fmt.Sprintf(`{"status":"success","totalResults":%d,"results":[%s],"nextPage":%s}`,
		total, joined, next)
}

func newTestService(t *testing.T, upstream *upstreamRecorder) *Service {
	t.Helper()

	ts := httptest.NewServer(upstream)
	t.Cleanup(ts.Close)

	config := core.NewsConfig{
		APIKey:          "test-key",
		BaseURL:         ts.URL,
		CategoryMapping: core.DefaultCategoryMapping(),
		DefaultCacheTTL: time.Minute,
		SearchCacheTTL:  30 * time.Second,
		SweepInterval:   time.Minute,
		UpstreamTimeout: 5 * time.Second,
		DefaultLimit:    10,
		MaxLimit:        50,
		MaxSearchLength: 100,
		ImageWeight:     1,
	}

	return NewService(config, core.NewLogger())
}

func TestGetNewsCachesResults(t *testing.T) {
	upstream := &upstreamRecorder{}
	svc := newTestService(t, upstream)

	first, err := svc.GetNews(context.Background(), "technology", "", 10)
	if err != nil {
		t.Fatalf("GetNews: %v", err)
	}

	second, err := svc.GetNews(context.Background(), "technology", "", 10)
	if err != nil {
		t.Fatalf("GetNews (cached): %v", err)
	}

	if upstream.callCount() != 1 {
		t.Errorf("expected 1 upstream call, got %d", upstream.callCount())
	}
	if second != first {
		t.Error("expected the cached result to be returned unchanged")
	}
}

func TestGetNewsGeneralQueryShaping(t *testing.T) {
	upstream := &upstreamRecorder{}
	svc := newTestService(t, upstream)

	if _, err := svc.GetNews(context.Background(), "general", "", 25); err != nil {
		t.Fatalf("GetNews: %v", err)
	}

	q := upstream.query(0)
	if got := q.Get("q"); got != "india" {
		t.Errorf("q = %q, want india", got)
	}
	if q.Has("category") {
		t.Errorf("general category must not send a category parameter, got %q", q.Get("category"))
	}
	if got := q.Get("language"); got != "en" {
		t.Errorf("language = %q, want en", got)
	}
	// The upstream page size stays pinned at 10 whatever the caller asked for.
	if got := q.Get("size"); got != "10" {
		t.Errorf("size = %q, want 10", got)
	}
	if got := q.Get("apikey"); got != "test-key" {
		t.Errorf("apikey = %q, want test-key", got)
	}
	if q.Has("page") {
		t.Error("first page must not send a page parameter")
	}
}

func TestGetNewsCategoryQueryShaping(t *testing.T) {
	upstream := &upstreamRecorder{}
	svc := newTestService(t, upstream)

	if _, err := svc.GetNews(context.Background(), "sports", "", 10); err != nil {
		t.Fatalf("GetNews: %v", err)
	}

	q := upstream.query(0)
	if got := q.Get("q"); got != "india sports" {
		t.Errorf("q = %q, want %q", got, "india sports")
	}
	if got := q.Get("category"); got != "sports" {
		t.Errorf("category = %q, want sports", got)
	}
}

func TestGetNewsContinuationRoundTrip(t *testing.T) {
	upstream := &upstreamRecorder{
		respond: func(q url.Values) (int, string) {
			if q.Get("page") == "" {
				return http.StatusOK, successBody(20, "xyz", `{"title":"Page one"}`)
			}
			return http.StatusOK, successBody(20, "", `{"title":"Page two"}`)
		},
	}
	svc := newTestService(t, upstream)

	first, err := svc.GetNews(context.Background(), "business", "", 10)
	if err != nil {
		t.Fatalf("GetNews: %v", err)
	}
	if !first.HasMore || first.NextPageToken != "xyz" {
		t.Fatalf("expected continuation xyz, got hasMore=%v token=%q", first.HasMore, first.NextPageToken)
	}
	if first.CurrentPage != PageFirst {
		t.Errorf("currentPage = %q, want first", first.CurrentPage)
	}

	// Second call with no explicit token must pick the stored continuation up.
	second, err := svc.GetNews(context.Background(), "business", "", 10)
	if err != nil {
		t.Fatalf("GetNews (continuation): %v", err)
	}

	if upstream.callCount() != 2 {
		t.Fatalf("expected 2 upstream calls, got %d", upstream.callCount())
	}
	if got := upstream.query(1).Get("page"); got != "xyz" {
		t.Errorf("page = %q, want xyz", got)
	}
	if second.CurrentPage != PageNext {
		t.Errorf("currentPage = %q, want next", second.CurrentPage)
	}
	if second.HasMore {
		t.Error("expected no further continuation")
	}
}

func TestGetNewsContinuationClearing(t *testing.T) {
	upstream := &upstreamRecorder{
		respond: func(q url.Values) (int, string) {
			if q.Get("page") == "" {
				return http.StatusOK, successBody(20, "xyz", `{"title":"Page one"}`)
			}
			// The continued page carries no further continuation.
			return http.StatusOK, successBody(20, "", `{"title":"Page two"}`)
		},
	}
	svc := newTestService(t, upstream)

	ctx := context.Background()
	if _, err := svc.GetNews(ctx, "science", "", 10); err != nil {
		t.Fatalf("GetNews: %v", err)
	}
	if _, err := svc.GetNews(ctx, "science", "", 10); err != nil {
		t.Fatalf("GetNews (continuation): %v", err)
	}

	// The empty nextPage must have cleared the slot, so a fresh no-token call
	// resolves back to the first page. That key is already cached, so force a
	// miss to observe the upstream query.
	svc.Cache().Clear()

	if _, err := svc.GetNews(ctx, "science", "", 10); err != nil {
		t.Fatalf("GetNews (after clear): %v", err)
	}

	if upstream.callCount() != 3 {
		t.Fatalf("expected 3 upstream calls, got %d", upstream.callCount())
	}
	if upstream.query(2).Has("page") {
		t.Errorf("expected no page parameter after continuation cleared, got %q",
			upstream.query(2).Get("page"))
	}
}

func TestGetNewsExplicitTokenOverridesStored(t *testing.T) {
	upstream := &upstreamRecorder{
		respond: func(q url.Values) (int, string) {
			return http.StatusOK, successBody(20, "stored", `{"title":"A"}`)
		},
	}
	svc := newTestService(t, upstream)

	ctx := context.Background()
	if _, err := svc.GetNews(ctx, "health", "", 10); err != nil {
		t.Fatalf("GetNews: %v", err)
	}

	if _, err := svc.GetNews(ctx, "health", "explicit", 10); err != nil {
		t.Fatalf("GetNews (explicit token): %v", err)
	}

	if got := upstream.query(1).Get("page"); got != "explicit" {
		t.Errorf("page = %q, want the explicit token to win over the stored one", got)
	}
}

func TestConfigMissingFastFail(t *testing.T) {
	upstream := &upstreamRecorder{}
	svc := newTestService(t, upstream)
	svc.config.APIKey = ""

	if _, err := svc.GetNews(context.Background(), "general", "", 10); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("GetNews error = %v, want ErrNotConfigured", err)
	}
	if _, err := svc.SearchNews(context.Background(), "elections", "general", 10); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("SearchNews error = %v, want ErrNotConfigured", err)
	}

	if upstream.callCount() != 0 {
		t.Errorf("expected zero upstream calls, got %d", upstream.callCount())
	}
}

func TestGetNewsUpstreamReportedFailure(t *testing.T) {
	upstream := &upstreamRecorder{
		respond: func(q url.Values) (int, string) {
			return http.StatusOK, `{"status":"error","message":"rate limit hit"}`
		},
	}
	svc := newTestService(t, upstream)

	_, err := svc.GetNews(context.Background(), "general", "", 10)

	var upstreamErr *UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("error = %v, want UpstreamError", err)
	}
	if upstreamErr.Message != "rate limit hit" {
		t.Errorf("message = %q, want the upstream's message", upstreamErr.Message)
	}
}

func TestGetNewsUpstreamHTTPError(t *testing.T) {
	upstream := &upstreamRecorder{
		respond: func(q url.Values) (int, string) {
			return http.StatusUnprocessableEntity, `{"status":"error","message":"bad params"}`
		},
	}
	svc := newTestService(t, upstream)

	_, err := svc.GetNews(context.Background(), "general", "", 10)

	var upstreamErr *UpstreamError
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("error = %v, want UpstreamError", err)
	}
	if upstreamErr.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", upstreamErr.StatusCode)
	}
}

// Scenario from the observed upstream contract: one sparse article on the
// general feed with no continuation.
func TestGetNewsSingleArticleScenario(t *testing.T) {
	upstream := &upstreamRecorder{
		respond: func(q url.Values) (int, string) {
			return http.StatusOK, successBody(1, "", `{"title":"A"}`)
		},
	}
	svc := newTestService(t, upstream)

	result, err := svc.GetNews(context.Background(), "general", "", 10)
	if err != nil {
		t.Fatalf("GetNews: %v", err)
	}

	if len(result.Articles) != 1 {
		t.Fatalf("expected 1 article, got %d", len(result.Articles))
	}
	a := result.Articles[0]
	if a.Title != "A" {
		t.Errorf("title = %q, want A", a.Title)
	}
	if a.Description != DefaultDescription {
		t.Errorf("description = %q, want default", a.Description)
	}
	if result.HasMore {
		t.Error("expected hasMore=false")
	}
	if result.TotalPages != 1 {
		t.Errorf("totalPages = %d, want 1", result.TotalPages)
	}
	if result.CurrentPage != PageFirst {
		t.Errorf("currentPage = %q, want first", result.CurrentPage)
	}
	if result.Source != SourceLabel {
		t.Errorf("source = %q, want %q", result.Source, SourceLabel)
	}
}

func TestGetNewsTotalPagesCeiling(t *testing.T) {
	upstream := &upstreamRecorder{
		respond: func(q url.Values) (int, string) {
			return http.StatusOK, successBody(25, "", `{"title":"A"}`)
		},
	}
	svc := newTestService(t, upstream)

	result, err := svc.GetNews(context.Background(), "general", "", 10)
	if err != nil {
		t.Fatalf("GetNews: %v", err)
	}

	if result.TotalPages != 3 {
		t.Errorf("totalPages = %d, want ceil(25/10) = 3", result.TotalPages)
	}
}

func TestSearchNewsQueryShaping(t *testing.T) {
	upstream := &upstreamRecorder{}
	svc := newTestService(t, upstream)

	result, err := svc.SearchNews(context.Background(), "modi election", "technology", 5)
	if err != nil {
		t.Fatalf("SearchNews: %v", err)
	}

	q := upstream.query(0)
	// The raw search string goes through untouched, no "india" prefix.
	if got := q.Get("q"); got != "modi election" {
		t.Errorf("q = %q, want the raw search string", got)
	}
	if got := q.Get("category"); got != "technology" {
		t.Errorf("category = %q, want technology", got)
	}
	// Unlike the feed path, the caller's limit is the upstream page size.
	if got := q.Get("size"); got != "5" {
		t.Errorf("size = %q, want 5", got)
	}

	if result.CurrentPage != PageSearch {
		t.Errorf("currentPage = %q, want search", result.CurrentPage)
	}
}

func TestSearchNewsGeneralOmitsCategory(t *testing.T) {
	upstream := &upstreamRecorder{}
	svc := newTestService(t, upstream)

	if _, err := svc.SearchNews(context.Background(), "floods", "general", 10); err != nil {
		t.Fatalf("SearchNews: %v", err)
	}

	if upstream.query(0).Has("category") {
		t.Error("general search must not send a category parameter")
	}
}

func TestSearchNewsCachedAndNoContinuationTracked(t *testing.T) {
	upstream := &upstreamRecorder{
		respond: func(q url.Values) (int, string) {
			return http.StatusOK, successBody(10, "searchnext", `{"title":"A"}`)
		},
	}
	svc := newTestService(t, upstream)

	ctx := context.Background()
	if _, err := svc.SearchNews(ctx, "cricket", "sports", 10); err != nil {
		t.Fatalf("SearchNews: %v", err)
	}
	if _, err := svc.SearchNews(ctx, "cricket", "sports", 10); err != nil {
		t.Fatalf("SearchNews (cached): %v", err)
	}

	if upstream.callCount() != 1 {
		t.Errorf("expected 1 upstream call, got %d", upstream.callCount())
	}

	// Search never records a continuation for the category.
	if _, ok := svc.continuations.Lookup("sports"); ok {
		t.Error("search must not touch the continuation table")
	}
}

func TestConcurrentMissesCoalesce(t *testing.T) {
	upstream := &upstreamRecorder{delay: 50 * time.Millisecond}
	svc := newTestService(t, upstream)

	var wg sync.WaitGroup
	errs := make(chan error, 8)

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.GetNews(context.Background(), "general", "", 10)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("GetNews: %v", err)
		}
	}

	if upstream.callCount() != 1 {
		t.Errorf("expected concurrent identical misses to share 1 upstream call, got %d",
			upstream.callCount())
	}
}
