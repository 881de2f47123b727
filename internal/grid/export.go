package grid

import (
	"context"
	"fmt"
	"log"

	"github.com/pixgrid/pix-grabber/internal/archive"
	"github.com/pixgrid/pix-grabber/internal/model"
)

// Export runs the transcode pipeline over the live slots in display order
// and packages the encoded images into a zip archive. Returns an error when
// the grid has nothing live to export or an export is already running.
func (c *Controller) Export(ctx context.Context) (*model.ExportResult, error) {
	c.stateMutex.Lock()
	if c.exporting {
		c.stateMutex.Unlock()
		return nil, fmt.Errorf("export already in progress")
	}

	items := make([]model.ResultItem, 0, len(c.slots))
	for _, slot := range c.slots {
		if slot.State.IsLive() && slot.Item != nil {
			items = append(items, *slot.Item)
		}
	}
	query := c.query
	page := c.page

	if len(items) == 0 {
		c.stateMutex.Unlock()
		return nil, fmt.Errorf("nothing to export")
	}

	c.exporting = true
	c.stateMutex.Unlock()
	c.notifyUpdate()

	defer func() {
		c.stateMutex.Lock()
		c.exporting = false
		c.stateMutex.Unlock()
		c.notifyUpdate()
	}()

	log.Printf("Exporting %d images for query %q page %d", len(items), query, page)

	entries, skipped, err := c.transcoder.Transcode(ctx, items, page)
	if err != nil {
		return nil, fmt.Errorf("transcode pipeline: %w", err)
	}

	data, err := archive.Build(archive.DefaultFolder, entries)
	if err != nil {
		return nil, fmt.Errorf("build archive: %w", err)
	}

	result := &model.ExportResult{
		Filename: archive.FileName(query, page),
		Data:     data,
		Exported: len(entries),
		Skipped:  skipped,
	}

	log.Printf("Export finished: %s (%d entries, %d skipped)", result.Filename, result.Exported, result.Skipped)
	return result, nil
}
