package model

import (
	"strings"
)

// ResultItem represents a single image search result
type ResultItem struct {
	ID             int64  `json:"id"`
	Title          string `json:"title,omitempty"`
	AltDescription string `json:"alt_description,omitempty"`
	DownloadURL    string `json:"download_url"`
	Width          int    `json:"width,omitempty"`
	Height         int    `json:"height,omitempty"`
}

// ResultPage represents one page of search results together with the
// provider's total hit estimate
type ResultPage struct {
	Query   string
	Page    int
	PerPage int
	Total   int
	Items   []ResultItem
}

// GetDisplayCaption returns alt description, title, or URL filename in order of preference
func (ri *ResultItem) GetDisplayCaption() string {
	// First priority: alt description from the provider
	if ri.AltDescription != "" {
		return ri.AltDescription
	}

	// Second priority: media title
	if ri.Title != "" {
		return ri.Title
	}

	// Fallback: filename from DownloadURL
	if ri.DownloadURL == "" {
		return ""
	}
	parts := strings.FieldsFunc(ri.DownloadURL, func(r rune) bool {
		return r == '/' || r == '\\'
	})
	if len(parts) > 0 {
		filename := parts[len(parts)-1]
		// Remove file extension for cleaner display
		if idx := strings.LastIndex(filename, "."); idx > 0 {
			filename = filename[:idx]
		}
		return filename
	}
	return ri.DownloadURL
}

// IsShort returns true if the page came back with fewer items than requested,
// meaning there is no further page to navigate to
func (rp *ResultPage) IsShort() bool {
	return len(rp.Items) < rp.PerPage
}

// IsEmpty returns true if the page holds no items at all
func (rp *ResultPage) IsEmpty() bool {
	return len(rp.Items) == 0
}
