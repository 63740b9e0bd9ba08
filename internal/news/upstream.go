package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// ErrNotConfigured is returned when no NewsData.io API key is configured.
// It surfaces as a server-misconfiguration response, never as a retry.
var ErrNotConfigured = errors.New("NewsData.io API key not configured. Please check your environment variables.")

// UpstreamError reports a failed upstream call: a transport error, a non-2xx
// response, or a response body whose own status flag is not "success".
type UpstreamError struct {
	StatusCode int    // upstream HTTP status, 0 for transport failures
	Message    string // upstream-supplied message when available
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("upstream: %s", e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("upstream: %s", e.Err.Error())
	}
	return fmt.Sprintf("upstream: request failed with status %d", e.StatusCode)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// upstreamResponse is the NewsData.io response envelope.
type upstreamResponse struct {
	Status       string       `json:"status"`
	TotalResults int          `json:"totalResults"`
	Results      []RawArticle `json:"results"`
	NextPage     string       `json:"nextPage"`
	Message      string       `json:"message"`
}

// Client calls the NewsData.io API over HTTP with retries and a bounded
// timeout, so a hung upstream cannot pin request-handling capacity.
type Client struct {
	http    *http.Client
	baseURL string
}

// NewClient creates an upstream client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	r := retryablehttp.NewClient()
	r.RetryMax = 2
	r.Logger = nil
	r.HTTPClient.Timeout = timeout
	// Hand back the final response after retries are exhausted so rate-limit
	// statuses reach the error mapping instead of vanishing into a transport
	// error.
	r.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Client{
		http:    r.StandardClient(),
		baseURL: baseURL,
	}
}

// Fetch performs a GET against the upstream API with the given query
// parameters and decodes the response envelope.
func (c *Client) Fetch(ctx context.Context, params url.Values) (*upstreamResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}
	defer resp.Body.Close()

	var body upstreamResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, &UpstreamError{StatusCode: resp.StatusCode}
		}
		return nil, &UpstreamError{Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Message: body.Message}
	}

	if body.Status != "success" {
		message := body.Message
		if message == "" {
			message = "API request failed"
		}
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Message: message}
	}

	return &body, nil
}
