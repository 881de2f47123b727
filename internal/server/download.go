package server

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"

	"github.com/pixgrid/pix-grabber/internal/archive"
	"github.com/pixgrid/pix-grabber/internal/commons"
	"github.com/pixgrid/pix-grabber/internal/model"
	"github.com/pixgrid/pix-grabber/internal/transcode"
)

// DownloadConcurrency bounds parallel thumbnail fetches for one /download
// request
const DownloadConcurrency = 8

// handleDownload serves the raw provider thumbnails of one result page as a
// ZIP archive. Individual fetch failures are skipped, never failing the
// request; the archive stays true to the untouched provider bytes.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	params, ok := parsePageParams(r.URL.Query())
	if !ok {
		respondError(w, http.StatusBadRequest, "query parameter is required")
		return
	}

	results, err := s.provider.SearchPage(r.Context(), params.query, params.page, params.perPage)
	if err != nil {
		respondJSON(w, http.StatusOK, classifyUpstreamError(err))
		return
	}

	urls := make([]string, 0, len(results))
	for _, item := range results {
		if item.DownloadURL != "" {
			urls = append(urls, item.DownloadURL)
		}
	}

	entries := s.fetchAll(r.Context(), urls, params.page)

	blob, err := archive.Build("", entries)
	if err != nil {
		log.Printf("Building archive for query %q page %d: %v", params.query, params.page, err)
		respondError(w, http.StatusInternalServerError, "failed to build archive")
		return
	}

	filename := archive.FileName(params.query, params.page)
	log.Printf("Serving %s with %d of %d images", filename, len(entries), len(urls))

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(blob); err != nil {
		log.Printf("Writing archive response: %v", err)
	}
}

// fetchAll downloads the thumbnails under a bounded-concurrency semaphore
// and returns archive entries for the ones that succeeded. Entry names keep
// each image's 1-based position so failures never shift later names.
func (s *Server) fetchAll(ctx context.Context, urls []string, page int) []model.ExportEntry {
	// Positional results; nil marks a failed fetch. Goroutines write
	// disjoint indices, so the slice needs no lock.
	fetched := make([][]byte, len(urls))

	sem := make(chan struct{}, DownloadConcurrency)
	var wg sync.WaitGroup
	for i, u := range urls {
		wg.Add(1)
		go func(idx int, imageURL string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			data, err := s.fetchImage(ctx, imageURL)
			if err != nil {
				log.Printf("Skipping image %d (%s): %v", idx+1, imageURL, err)
				return
			}
			fetched[idx] = data
		}(i, u)
	}
	wg.Wait()

	entries := make([]model.ExportEntry, 0, len(urls))
	for i, data := range fetched {
		if data == nil {
			continue
		}
		entries = append(entries, model.ExportEntry{
			Name: transcode.EntryName(page, i+1, ""),
			Data: data,
		})
	}
	return entries
}

// fetchImage downloads one thumbnail with the Commons User-Agent set;
// anonymous clients get rejected by the upload host as well
func (s *Server) fetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", commons.ResolveUserAgent())

	resp, err := s.fetcher.Do(req)
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
