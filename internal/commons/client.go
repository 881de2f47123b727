package commons

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pixgrid/pix-grabber/internal/model"
)

const (
	// APIEndpoint is the Wikimedia Commons MediaWiki API
	APIEndpoint = "https://commons.wikimedia.org/w/api.php"

	// DefaultUserAgent identifies this project to Wikimedia; anonymous
	// clients are rejected with 403
	DefaultUserAgent = "pix-grabber/0.1 (https://github.com/pixgrid/pix-grabber)"

	// EnvUserAgent names the environment variable overriding the User-Agent
	EnvUserAgent = "COMMONS_USER_AGENT"

	// FileNamespace is the MediaWiki namespace holding media files
	FileNamespace = "6"

	// ThumbWidth is the rendered thumbnail width requested from Commons
	ThumbWidth = "300"

	// TitlePrefix is stripped from page titles for display
	TitlePrefix = "File:"

	requestTimeout = 20 * time.Second
)

// StatusError reports a non-success HTTP status from the Commons API
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("commons api returned status %d", e.Code)
}

// Client queries the Wikimedia Commons API
type Client struct {
	endpoint   string
	userAgent  string
	httpClient *http.Client
}

// NewClient creates a Commons client. An empty endpoint uses the public API.
func NewClient(endpoint string) *Client {
	if endpoint == "" {
		endpoint = APIEndpoint
	}
	return &Client{
		endpoint:   endpoint,
		userAgent:  ResolveUserAgent(),
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// ResolveUserAgent returns the User-Agent from the environment or the default
func ResolveUserAgent() string {
	if v := os.Getenv(EnvUserAgent); v != "" {
		return v
	}
	return DefaultUserAgent
}

type totalHitsResponse struct {
	Query struct {
		SearchInfo struct {
			TotalHits int `json:"totalhits"`
		} `json:"searchinfo"`
	} `json:"query"`
}

type searchPageResponse struct {
	Query struct {
		Pages []pageInfo `json:"pages"`
	} `json:"query"`
}

type pageInfo struct {
	PageID    int64       `json:"pageid"`
	Title     string      `json:"title"`
	Index     int         `json:"index"`
	ImageInfo []imageInfo `json:"imageinfo"`
}

type imageInfo struct {
	URL         string `json:"url"`
	ThumbURL    string `json:"thumburl"`
	MIME        string `json:"mime"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ThumbWidth  int    `json:"thumbwidth"`
	ThumbHeight int    `json:"thumbheight"`
}

// TotalHits returns the total hit estimate for a query in the File namespace
func (c *Client) TotalHits(ctx context.Context, query string) (int, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("formatversion", "2")
	params.Set("list", "search")
	params.Set("srsearch", query)
	params.Set("srnamespace", FileNamespace)
	params.Set("srlimit", "1")

	var payload totalHitsResponse
	if err := c.get(ctx, params, &payload); err != nil {
		return 0, err
	}
	return payload.Query.SearchInfo.TotalHits, nil
}

// SearchPage searches File: pages and returns normalized results with
// rendered 300px thumbnails, in the provider's relevance order
func (c *Client) SearchPage(ctx context.Context, query string, page, perPage int) ([]model.ResultItem, error) {
	offset := (page - 1) * perPage

	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("formatversion", "2")
	params.Set("generator", "search")
	params.Set("gsrsearch", query)
	params.Set("gsrnamespace", FileNamespace)
	params.Set("gsrlimit", strconv.Itoa(perPage))
	params.Set("gsroffset", strconv.Itoa(offset))
	params.Set("prop", "imageinfo")
	params.Set("iiprop", "url|size|mime|extmetadata")
	params.Set("iiurlwidth", ThumbWidth)

	var payload searchPageResponse
	if err := c.get(ctx, params, &payload); err != nil {
		return nil, err
	}

	pages := payload.Query.Pages
	// Generator results arrive unordered; index carries the relevance rank
	sort.Slice(pages, func(i, j int) bool {
		return pages[i].Index < pages[j].Index
	})

	results := make([]model.ResultItem, 0, len(pages))
	for _, p := range pages {
		var info imageInfo
		if len(p.ImageInfo) > 0 {
			info = p.ImageInfo[0]
		}

		// Prefer the rendered thumbnail over the original upload
		downloadURL := info.ThumbURL
		if downloadURL == "" {
			downloadURL = info.URL
		}
		width := info.ThumbWidth
		if width == 0 {
			width = info.Width
		}
		height := info.ThumbHeight
		if height == 0 {
			height = info.Height
		}

		title := strings.TrimPrefix(p.Title, TitlePrefix)
		results = append(results, model.ResultItem{
			ID:             p.PageID,
			Title:          title,
			AltDescription: title,
			DownloadURL:    downloadURL,
			Width:          width,
			Height:         height,
		})
	}

	return results, nil
}

// get performs one API round trip and decodes the JSON payload
func (c *Client) get(ctx context.Context, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create commons request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("commons request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Code: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode commons response: %w", err)
	}
	return nil
}
