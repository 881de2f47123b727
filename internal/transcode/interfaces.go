package transcode

import (
	"context"

	"github.com/pixgrid/pix-grabber/internal/model"
)

// Transcoder defines the interface for the bulk image pipeline.
type Transcoder interface {
	// Transcode processes the items in display order and returns the
	// encoded archive entries plus the count of items dropped by
	// individual fetch or decode failures.
	Transcode(ctx context.Context, items []model.ResultItem, page int) ([]model.ExportEntry, int, error)
}
