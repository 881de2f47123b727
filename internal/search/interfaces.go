package search

import (
	"context"

	"github.com/pixgrid/pix-grabber/internal/model"
)

// Searcher defines the interface for the search client.
type Searcher interface {
	// FetchPage requests one page of results for the query. A blank query
	// yields an empty page without a network call.
	FetchPage(ctx context.Context, query string, page, perPage int) (*model.ResultPage, error)
}
