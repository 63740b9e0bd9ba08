package news

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"samachar/internal/auth"
	"samachar/internal/core"
)

// Handlers provides HTTP handlers for the news endpoints.
type Handlers struct {
	service   *Service
	validator *Validator
	logger    *core.Logger
}

// NewHandlers creates news HTTP handlers.
func NewHandlers(service *Service, validator *Validator, logger *core.Logger) *Handlers {
	return &Handlers{
		service:   service,
		validator: validator,
		logger:    logger.ForFeature("news"),
	}
}

// GetNews handles GET /api/news
func (h *Handlers) GetNews(w http.ResponseWriter, r *http.Request) {
	category := queryOrDefault(r, "category", GeneralCategory)
	pageToken := r.URL.Query().Get("pageToken")
	limit := queryAsInt(r, "limit", 10)

	if problems := h.validator.ValidateNewsQuery(category, limit); len(problems) > 0 {
		core.WriteErrorResponse(w, http.StatusBadRequest,
			core.NewValidationError(strings.Join(problems, ", "), nil))
		return
	}

	result, err := h.service.GetNews(r.Context(), category, pageToken, limit)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	user := auth.GetUserFromContext(r)

	core.WriteSuccess(w, http.StatusOK, "News fetched successfully", map[string]any{
		"articles":      result.Articles,
		"totalResults":  result.TotalArticles,
		"currentPage":   result.CurrentPage,
		"totalPages":    result.TotalPages,
		"hasMore":       result.HasMore,
		"nextPageToken": result.NextPageToken,
		"status":        "success",
		"source":        result.Source,
		"user":          user.Profile(),
	})
}

// SearchNews handles GET /api/news/search
func (h *Handlers) SearchNews(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	category := queryOrDefault(r, "category", GeneralCategory)
	limit := queryAsInt(r, "limit", 10)

	if problems := h.validator.ValidateSearchQuery(query, category, limit); len(problems) > 0 {
		core.WriteErrorResponse(w, http.StatusBadRequest,
			core.NewValidationError(strings.Join(problems, ", "), nil))
		return
	}

	query = h.validator.SanitizeSearchQuery(query)

	result, err := h.service.SearchNews(r.Context(), query, category, limit)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	user := auth.GetUserFromContext(r)

	core.WriteSuccess(w, http.StatusOK, "Search completed successfully", map[string]any{
		"articles":     result.Articles,
		"totalResults": result.TotalArticles,
		"query":        query,
		"category":     category,
		"status":       "success",
		"source":       result.Source,
		"user":         user.Profile(),
	})
}

// writeServiceError maps service failures to client responses. Known
// upstream HTTP statuses get distinct messages instead of a blanket 500.
func (h *Handlers) writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotConfigured) {
		h.logger.Error("News request without configured API key")
		core.WriteErrorResponse(w, http.StatusInternalServerError,
			core.NewConfigurationError(ErrNotConfigured.Error(), nil))
		return
	}

	var upstreamErr *UpstreamError
	if errors.As(err, &upstreamErr) {
		h.logger.Error("Upstream error", "status", upstreamErr.StatusCode, "message", upstreamErr.Message)

		if message, ok := upstreamErrorMessages[upstreamErr.StatusCode]; ok {
			core.WriteErrorResponse(w, http.StatusUnprocessableEntity,
				core.NewUpstreamError(message, upstreamErr))
			return
		}

		core.WriteErrorResponse(w, http.StatusInternalServerError,
			core.NewUpstreamError("Failed to fetch news from external API.", upstreamErr))
		return
	}

	h.logger.Error("News request failed", "error", err)
	core.HandleError(w, err)
}

var upstreamErrorMessages = map[int]string{
	http.StatusUnprocessableEntity: "Invalid API request parameters.",
	http.StatusUnauthorized:        "API authentication failed.",
	http.StatusForbidden:           "API access denied.",
	http.StatusTooManyRequests:     "API rate limit exceeded. Please try again later.",
}

func queryOrDefault(r *http.Request, key, fallback string) string {
	if value := r.URL.Query().Get(key); value != "" {
		return value
	}
	return fallback
}

func queryAsInt(r *http.Request, key string, fallback int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return -1
	}
	return n
}
