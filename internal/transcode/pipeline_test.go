package transcode

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pixgrid/pix-grabber/internal/model"
)

func TestSquareCrop(t *testing.T) {
	tests := []struct {
		width    int
		height   int
		expected image.Rectangle
	}{
		{800, 600, image.Rect(100, 0, 700, 600)},
		{600, 800, image.Rect(0, 100, 600, 700)},
		{500, 500, image.Rect(0, 0, 500, 500)},
		{301, 300, image.Rect(0, 0, 300, 300)},
		{50, 51, image.Rect(0, 0, 50, 50)},
	}

	for _, test := range tests {
		result := SquareCrop(image.Rect(0, 0, test.width, test.height))
		if result != test.expected {
			t.Errorf("SquareCrop(%dx%d) = %v, expected %v", test.width, test.height, result, test.expected)
		}
	}
}

func TestSquareCrop_OffsetBounds(t *testing.T) {
	// Sub-images keep their parent's coordinate space
	result := SquareCrop(image.Rect(10, 20, 810, 620))
	expected := image.Rect(110, 20, 710, 620)
	if result != expected {
		t.Errorf("SquareCrop(offset bounds) = %v, expected %v", result, expected)
	}
}

func TestExtForMIME(t *testing.T) {
	tests := []struct {
		mime     string
		expected string
	}{
		{"image/jpeg", "jpg"},
		{"image/png", "png"},
		{"image/gif", "gif"},
		{"image/webp", "webp"},
		{"application/octet-stream", "jpg"},
		{"", "jpg"},
	}

	for _, test := range tests {
		result := ExtForMIME(test.mime)
		if result != test.expected {
			t.Errorf("ExtForMIME(%q) = %s, expected %s", test.mime, result, test.expected)
		}
	}
}

func TestEntryName(t *testing.T) {
	tests := []struct {
		page     int
		index    int
		mime     string
		expected string
	}{
		{1, 1, "image/jpeg", "image_1_1.jpg"},
		{2, 7, "image/jpeg", "image_2_7.jpg"},
		{10, 50, "unknown/type", "image_10_50.jpg"},
	}

	for _, test := range tests {
		result := EntryName(test.page, test.index, test.mime)
		if result != test.expected {
			t.Errorf("EntryName(%d, %d, %q) = %s, expected %s", test.page, test.index, test.mime, result, test.expected)
		}
	}
}

// testImagePNG encodes a solid-color PNG of the given size
func testImagePNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 80, B: 40, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Encoding test image: %v", err)
	}
	return buf.Bytes()
}

func TestService_Transcode(t *testing.T) {
	source := testImagePNG(t, 80, 60)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(source)
	}))
	defer server.Close()

	items := []model.ResultItem{
		{ID: 1, DownloadURL: server.URL + "/a.png"},
		{ID: 2, DownloadURL: server.URL + "/b.png"},
	}

	service := NewService()
	entries, skipped, err := service.Transcode(context.Background(), items, 3)
	if err != nil {
		t.Fatalf("Transcode() returned error: %v", err)
	}
	if skipped != 0 {
		t.Errorf("Expected 0 skipped, got %d", skipped)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}

	expectedNames := []string{"image_3_1.jpg", "image_3_2.jpg"}
	for i, entry := range entries {
		if entry.Name != expectedNames[i] {
			t.Errorf("Entry %d: expected name %s, got %s", i, expectedNames[i], entry.Name)
		}
		if entry.MIME != OutputMIME {
			t.Errorf("Entry %d: expected MIME %s, got %s", i, OutputMIME, entry.MIME)
		}

		thumb, err := jpeg.Decode(bytes.NewReader(entry.Data))
		if err != nil {
			t.Fatalf("Entry %d is not a decodable JPEG: %v", i, err)
		}
		bounds := thumb.Bounds()
		if bounds.Dx() != OutputSide || bounds.Dy() != OutputSide {
			t.Errorf("Entry %d: expected %dx%d thumbnail, got %dx%d",
				i, OutputSide, OutputSide, bounds.Dx(), bounds.Dy())
		}
	}
}

func TestService_Transcode_PartialFailure(t *testing.T) {
	source := testImagePNG(t, 64, 64)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/broken.png":
			http.NotFound(w, r)
		case "/corrupt.png":
			_, _ = w.Write([]byte("not an image at all"))
		default:
			_, _ = w.Write(source)
		}
	}))
	defer server.Close()

	items := []model.ResultItem{
		{ID: 1, DownloadURL: server.URL + "/ok.png"},
		{ID: 2, DownloadURL: server.URL + "/broken.png"},
		{ID: 3, DownloadURL: server.URL + "/corrupt.png"},
		{ID: 4, DownloadURL: server.URL + "/ok2.png"},
	}

	service := NewService()
	entries, skipped, err := service.Transcode(context.Background(), items, 1)
	if err != nil {
		t.Fatalf("Transcode() returned error: %v", err)
	}

	if skipped != 2 {
		t.Errorf("Expected 2 skipped, got %d", skipped)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}

	// Names keep the original positions of the surviving items
	if entries[0].Name != "image_1_1.jpg" {
		t.Errorf("Expected first surviving entry image_1_1.jpg, got %s", entries[0].Name)
	}
	if entries[1].Name != "image_1_4.jpg" {
		t.Errorf("Expected second surviving entry image_1_4.jpg, got %s", entries[1].Name)
	}
}

func TestService_Transcode_OrderAcrossBatches(t *testing.T) {
	source := testImagePNG(t, 32, 32)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(source)
	}))
	defer server.Close()

	count := BatchSize + 3
	items := make([]model.ResultItem, 0, count)
	for i := 0; i < count; i++ {
		items = append(items, model.ResultItem{
			ID:          int64(i + 1),
			DownloadURL: fmt.Sprintf("%s/%d.png", server.URL, i+1),
		})
	}

	service := NewService()
	entries, skipped, err := service.Transcode(context.Background(), items, 2)
	if err != nil {
		t.Fatalf("Transcode() returned error: %v", err)
	}
	if skipped != 0 {
		t.Errorf("Expected 0 skipped, got %d", skipped)
	}
	if len(entries) != count {
		t.Fatalf("Expected %d entries, got %d", count, len(entries))
	}

	for i, entry := range entries {
		expected := fmt.Sprintf("image_2_%d.jpg", i+1)
		if entry.Name != expected {
			t.Errorf("Entry %d: expected name %s, got %s", i, expected, entry.Name)
		}
	}
}

func TestService_Transcode_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items := []model.ResultItem{
		{ID: 1, DownloadURL: "http://127.0.0.1:0/unreachable.png"},
	}

	service := NewService()
	_, _, err := service.Transcode(ctx, items, 1)
	if err == nil {
		t.Fatal("Expected error for cancelled context, got nil")
	}
}

func TestService_Transcode_Empty(t *testing.T) {
	service := NewService()
	entries, skipped, err := service.Transcode(context.Background(), nil, 1)
	if err != nil {
		t.Fatalf("Transcode() returned error: %v", err)
	}
	if len(entries) != 0 || skipped != 0 {
		t.Errorf("Expected empty result, got %d entries, %d skipped", len(entries), skipped)
	}
}
