package ui

import (
	"image/color"
	"io"
	"log"
	"net/http"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/pixgrid/pix-grabber/internal/grid"
	"github.com/pixgrid/pix-grabber/internal/model"
)

// thumbFetcher is shared by all tiles so connection reuse works across the grid
var thumbFetcher = &http.Client{Timeout: ThumbFetchTimeout}

// ResultTile is one cell of the result grid. It shows a thumbnail with a short
// caption below and starts removal of its slot on a double tap.
type ResultTile struct {
	widget.BaseWidget

	localization *Localization

	// Snapshot of the slot this tile currently renders
	slotID string
	state  model.SlotState

	// UI components
	thumbnail    *canvas.Image
	captionLabel *widget.Label

	// Async thumbnail loading. Both fields are only touched on the UI
	// thread: rebinds happen in render callbacks and fetch completions
	// arrive through fyne.Do.
	thumbURL string
	thumbSeq int64

	onRemove func(slotID string)
}

// NewResultTile creates an empty tile; the grid binds slots to it via UpdateSlot
func NewResultTile(localization *Localization) *ResultTile {
	rt := &ResultTile{
		localization: localization,
	}
	rt.ExtendBaseWidget(rt)
	rt.createUI()
	return rt
}

// SetOnRemove sets the removal callback
func (rt *ResultTile) SetOnRemove(onRemove func(slotID string)) {
	rt.onRemove = onRemove
}

// createUI creates the UI components
func (rt *ResultTile) createUI() {
	rt.thumbnail = canvas.NewImageFromResource(nil)
	rt.thumbnail.FillMode = canvas.ImageFillContain
	rt.thumbnail.SetMinSize(fyne.NewSize(TileImageSize, TileImageSize))

	rt.captionLabel = widget.NewLabel("")
	rt.captionLabel.Alignment = fyne.TextAlignCenter
	rt.captionLabel.Truncation = fyne.TextTruncateEllipsis
}

// UpdateSlot rebinds the tile to the given slot view
func (rt *ResultTile) UpdateSlot(view grid.SlotView) {
	rt.slotID = view.ID
	rt.state = view.State

	rt.captionLabel.SetText(cleanCaption(view))

	switch view.State {
	case model.SlotStateRemoving:
		rt.thumbnail.Translucency = RemovingTranslucency
	case model.SlotStatePlaceholder:
		rt.thumbnail.Translucency = PlaceholderTranslucency
	default:
		rt.thumbnail.Translucency = 0
	}

	url := ""
	if view.Item != nil {
		url = view.Item.DownloadURL
	}
	rt.bindThumbnail(url)

	rt.Refresh()
}

// bindThumbnail points the tile at a new source image. The previous image is
// cleared immediately so a recycled cell never flashes a stale thumbnail, and
// the fetch carries a sequence number so late completions discard themselves.
func (rt *ResultTile) bindThumbnail(url string) {
	if url == rt.thumbURL {
		return
	}

	rt.thumbURL = url
	rt.thumbSeq++
	rt.thumbnail.Resource = nil
	rt.thumbnail.Refresh()

	if url == "" {
		return
	}

	go rt.fetchThumbnail(url, rt.thumbSeq)
}

// fetchThumbnail downloads the source image and applies it on the UI thread
func (rt *ResultTile) fetchThumbnail(url string, seq int64) {
	resp, err := thumbFetcher.Get(url)
	if err != nil {
		log.Printf("Thumbnail fetch failed for %s: %v", url, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("Thumbnail fetch for %s returned status %d", url, resp.StatusCode)
		return
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil || len(data) == 0 {
		log.Printf("Thumbnail read failed for %s: %v", url, err)
		return
	}

	fyne.Do(func() {
		if rt.thumbSeq != seq {
			// Tile was rebound while the fetch was in flight
			return
		}
		rt.thumbnail.Resource = fyne.NewStaticResource(url, data)
		rt.thumbnail.Refresh()
	})
}

// DoubleTapped starts removal of this tile's slot. Single taps are left
// alone so clicking around while browsing does not destroy results.
func (rt *ResultTile) DoubleTapped(_ *fyne.PointEvent) {
	if rt.onRemove == nil || rt.slotID == "" {
		return
	}
	if !rt.state.IsLive() {
		return
	}

	log.Printf("Tile double-tapped: slot %s", rt.slotID)
	rt.onRemove(rt.slotID)
}

// cleanCaption returns the slot's display caption stripped of control characters
func cleanCaption(view grid.SlotView) string {
	if view.Item == nil {
		return DashPlaceholder
	}

	caption := view.Item.GetDisplayCaption()
	caption = strings.ReplaceAll(caption, "\n", " ")
	caption = strings.ReplaceAll(caption, "\r", " ")
	caption = strings.ReplaceAll(caption, "\t", " ")
	return strings.TrimSpace(caption)
}

// CreateRenderer creates the widget renderer
func (rt *ResultTile) CreateRenderer() fyne.WidgetRenderer {
	return &resultTileRenderer{tile: rt}
}

// resultTileRenderer renders the result tile widget
type resultTileRenderer struct {
	tile   *ResultTile
	layout *fyne.Container
}

// Layout arranges the components
func (r *resultTileRenderer) Layout(size fyne.Size) {
	if r.layout == nil {
		r.createLayout()
	}
	if r.layout != nil {
		r.layout.Resize(size)
	}
}

// MinSize returns the minimum size
func (r *resultTileRenderer) MinSize() fyne.Size {
	return fyne.NewSize(TileWidth, TileHeight)
}

// Refresh refreshes the renderer
func (r *resultTileRenderer) Refresh() {
	if r.layout == nil {
		r.createLayout()
	}
	if r.layout != nil {
		r.layout.Refresh()
	}
}

// Objects returns the container objects
func (r *resultTileRenderer) Objects() []fyne.CanvasObject {
	if r.layout == nil {
		r.createLayout()
	}
	return []fyne.CanvasObject{r.layout}
}

// Destroy cleans up the renderer
func (r *resultTileRenderer) Destroy() {}

// createLayout creates the main layout
func (r *resultTileRenderer) createLayout() {
	rt := r.tile

	// Transparent frame keeps the image area sized while nothing is loaded
	frame := canvas.NewRectangle(color.RGBA{0, 0, 0, 0})
	frame.SetMinSize(fyne.NewSize(TileImageSize, TileImageSize))
	imageArea := container.NewStack(frame, rt.thumbnail)

	r.layout = container.NewBorder(nil, rt.captionLabel, nil, nil, imageArea)
}
