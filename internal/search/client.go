package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pixgrid/pix-grabber/internal/model"
)

const (
	// DefaultBaseURL is used when no endpoint is configured in the environment
	DefaultBaseURL = "http://localhost:8000"

	// EnvBaseURL names the environment variable that overrides the endpoint
	EnvBaseURL = "SEARCH_API_URL"

	// requestTimeout bounds a single search round trip
	requestTimeout = 20 * time.Second
)

// Client fetches result pages from the search service over HTTP
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a search client for the given endpoint. An empty baseURL
// falls back to the environment, then to DefaultBaseURL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = ResolveBaseURL()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// ResolveBaseURL returns the search endpoint from the environment or the default
func ResolveBaseURL() string {
	if v := os.Getenv(EnvBaseURL); v != "" {
		return v
	}
	return DefaultBaseURL
}

// searchResponse mirrors the service's JSON envelope: either results with a
// total estimate, or an error description.
type searchResponse struct {
	Total   int                `json:"total"`
	Results []model.ResultItem `json:"results"`
	Error   string             `json:"error"`
	Status  int                `json:"status"`
	Message string             `json:"message"`
}

// FetchPage requests one page of results. A blank query returns an empty page
// without hitting the network.
func (c *Client) FetchPage(ctx context.Context, query string, page, perPage int) (*model.ResultPage, error) {
	result := &model.ResultPage{
		Query:   query,
		Page:    page,
		PerPage: perPage,
	}

	if strings.TrimSpace(query) == "" {
		return result, nil
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(perPage))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransportError{Status: resp.StatusCode}
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &TransportError{Err: fmt.Errorf("decode search response: %w", err)}
	}

	if payload.Error != "" {
		return nil, &ProviderError{
			Message: payload.Error,
			Detail:  payload.Message,
			Status:  payload.Status,
		}
	}

	result.Total = payload.Total
	result.Items = payload.Results
	return result, nil
}
