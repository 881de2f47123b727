package transcode

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/pixgrid/pix-grabber/internal/model"
)

// Pipeline constants for export thumbnails
const (
	// BatchSize bounds concurrent fetches and decodes: items within a batch
	// run in parallel, batches run one after another
	BatchSize = 6

	// OutputSide is the edge length of the exported square thumbnails
	OutputSide = 50

	// JPEGQuality is the lossy re-encode quality
	JPEGQuality = 85

	// OutputMIME is the media type every entry is encoded to
	OutputMIME = "image/jpeg"

	// DefaultExtension is used when a media type maps to nothing known
	DefaultExtension = "jpg"

	// EntryNamePattern builds entry names from page, 1-based index, and extension
	EntryNamePattern = "image_%d_%d.%s"

	// fetchTimeout bounds a single source image download
	fetchTimeout = 30 * time.Second
)

// Service implements the bulk image pipeline
type Service struct {
	httpClient *http.Client
}

// NewService creates a new transcode service
func NewService() Transcoder {
	return &Service{
		httpClient: &http.Client{Timeout: fetchTimeout},
	}
}

// Transcode processes items in batches of BatchSize. Entry names carry each
// item's original 1-based index, so they stay stable no matter which items
// fail along the way.
func (s *Service) Transcode(ctx context.Context, items []model.ResultItem, page int) ([]model.ExportEntry, int, error) {
	// Positional results; nil marks a dropped item. Goroutines write
	// disjoint indices, so the slice needs no lock.
	results := make([]*model.ExportEntry, len(items))

	for start := 0; start < len(items); start += BatchSize {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}

		end := start + BatchSize
		if end > len(items) {
			end = len(items)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(idx int, item model.ResultItem) {
				defer wg.Done()

				entry, err := s.transcodeOne(ctx, item, page, idx+1)
				if err != nil {
					log.Printf("Skipping image %d (%s): %v", idx+1, item.DownloadURL, err)
					return
				}
				results[idx] = entry
			}(i, items[i])
		}

		// All-settle join: the next batch starts only once every item of
		// this one has finished or failed
		wg.Wait()
	}

	entries := make([]model.ExportEntry, 0, len(items))
	skipped := 0
	for _, entry := range results {
		if entry == nil {
			skipped++
			continue
		}
		entries = append(entries, *entry)
	}
	return entries, skipped, nil
}

// transcodeOne fetches, decodes, and re-encodes a single source image
func (s *Service) transcodeOne(ctx context.Context, item model.ResultItem, page, index int) (*model.ExportEntry, error) {
	data, err := s.fetchSource(ctx, item.DownloadURL)
	if err != nil {
		return nil, &DecodeError{URL: item.DownloadURL, Err: err}
	}

	thumb, err := renderThumbnail(data)
	if err != nil {
		return nil, &DecodeError{URL: item.DownloadURL, Err: err}
	}

	return &model.ExportEntry{
		Name: EntryName(page, index, OutputMIME),
		Data: thumb,
		MIME: OutputMIME,
	}, nil
}

// fetchSource downloads the raw source image bytes
func (s *Service) fetchSource(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty source URL")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read image body: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image body")
	}

	return data, nil
}

// renderThumbnail decodes the source, crops the largest centered square,
// and resamples it into an OutputSide×OutputSide JPEG
func renderThumbnail(data []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, OutputSide, OutputSide))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, SquareCrop(src.Bounds()), draw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// SquareCrop returns the largest centered square inside bounds
func SquareCrop(bounds image.Rectangle) image.Rectangle {
	w := bounds.Dx()
	h := bounds.Dy()

	side := w
	if h < side {
		side = h
	}

	sx := bounds.Min.X + (w-side)/2
	sy := bounds.Min.Y + (h-side)/2
	return image.Rect(sx, sy, sx+side, sy+side)
}

// ExtForMIME maps a media type to a file extension, defaulting to jpg
func ExtForMIME(mime string) string {
	switch mime {
	case "image/jpeg":
		return "jpg"
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	case "image/webp":
		return "webp"
	default:
		return DefaultExtension
	}
}

// EntryName builds the archive entry name for one exported image
func EntryName(page, index int, mime string) string {
	return fmt.Sprintf(EntryNamePattern, page, index, ExtForMIME(mime))
}
