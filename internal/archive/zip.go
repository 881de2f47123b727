package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"

	"github.com/pixgrid/pix-grabber/internal/model"
)

const (
	// DefaultFolder is the folder entries are placed under in desktop exports
	DefaultFolder = "images"

	// QueryFill replaces whitespace runs in archive filenames
	QueryFill = "_"
)

// Build writes entries into a deflate-compressed zip in the given order.
// A non-empty folder prefixes every entry name. Pure function of its input.
func Build(folder string, entries []model.ExportEntry) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, entry := range entries {
		name := entry.Name
		if folder != "" {
			name = folder + "/" + entry.Name
		}

		w, err := zw.Create(name)
		if err != nil {
			return nil, fmt.Errorf("create zip entry %s: %w", name, err)
		}
		if _, err := w.Write(entry.Data); err != nil {
			return nil, fmt.Errorf("write zip entry %s: %w", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize zip: %w", err)
	}
	return buf.Bytes(), nil
}

// FileName builds the deterministic archive filename for a query and page,
// e.g. "images_red_pandas_page2.zip"
func FileName(query string, page int) string {
	return fmt.Sprintf("images_%s_page%d.zip", SanitizeQuery(query), page)
}

// SanitizeQuery collapses whitespace runs into single fill characters.
// Non-whitespace runes, Cyrillic included, pass through untouched.
func SanitizeQuery(query string) string {
	return strings.Join(strings.Fields(query), QueryFill)
}
