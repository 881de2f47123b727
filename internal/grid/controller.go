package grid

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pixgrid/pix-grabber/internal/model"
	"github.com/pixgrid/pix-grabber/internal/search"
	"github.com/pixgrid/pix-grabber/internal/transcode"
)

// Grid paging constants
const (
	// PerPage is the fixed page size for full-page fetches
	PerPage = 50

	// MinPage and MaxPage bound pagination; the provider returns nothing
	// useful beyond page 10
	MinPage = 1
	MaxPage = 10

	// ReplacementPerPage is the page size for overflow backfill fetches
	ReplacementPerPage = 1

	// DefaultSettleDelay is how long a removed tile keeps playing its
	// fade-out before the slot collapses into a placeholder
	DefaultSettleDelay = 300 * time.Millisecond

	// SlotIDPrefix namespaces slot identifiers
	SlotIDPrefix = "slot-"
)

// Controller owns the result grid state
type Controller struct {
	searcher   search.Searcher
	transcoder transcode.Transcoder

	stateMutex sync.RWMutex
	slots      []*model.Slot
	query      string
	page       int
	total      int
	lastError  string
	loading    bool
	exporting  bool

	// loadSeq is bumped on every parameter change; async completions
	// carrying an older value are discarded unapplied
	loadSeq int64

	// overflowPage is the next page replacement items are drawn from;
	// advances only when a replacement fetch succeeds
	overflowPage int

	// lastShort records that the current page returned fewer than PerPage
	// items, which disables forward navigation
	lastShort bool

	// backfillQueue serializes replacement fetches so overlapping removals
	// never pull the same overflow position twice
	backfillQueue    []backfillRequest
	backfillDraining bool

	settleDelay time.Duration
	onUpdate    func() // callback for UI updates
}

// backfillRequest is one settled removal waiting for its replacement fetch
type backfillRequest struct {
	slotID string
	seq    int64
}

// NewController creates a grid controller on top of a search client and a
// transcode pipeline
func NewController(searcher search.Searcher, transcoder transcode.Transcoder) *Controller {
	return &Controller{
		searcher:     searcher,
		transcoder:   transcoder,
		page:         MinPage,
		overflowPage: MinPage + 1,
		lastShort:    true,
		settleDelay:  DefaultSettleDelay,
	}
}

// SetUpdateCallback sets the callback invoked after every state change
func (c *Controller) SetUpdateCallback(callback func()) {
	c.onUpdate = callback
}

// SetQuery starts a fresh search: the page resets to the first and the grid
// reloads. Submitting the current query again is a no-op.
func (c *Controller) SetQuery(query string) {
	query = strings.TrimSpace(query)

	c.stateMutex.Lock()
	if query == c.query {
		c.stateMutex.Unlock()
		return
	}
	c.query = query
	c.page = MinPage
	c.reloadLocked()
	c.stateMutex.Unlock()

	c.notifyUpdate()
}

// SetPage navigates to the given page. Requests outside [MinPage, MaxPage]
// and requests for the current page are no-ops.
func (c *Controller) SetPage(page int) {
	if page < MinPage || page > MaxPage {
		return
	}

	c.stateMutex.Lock()
	if page == c.page || c.query == "" {
		c.stateMutex.Unlock()
		return
	}
	c.page = page
	c.reloadLocked()
	c.stateMutex.Unlock()

	c.notifyUpdate()
}

// NextPage navigates forward unless the current page came back short
func (c *Controller) NextPage() {
	c.stateMutex.RLock()
	page := c.page
	blocked := c.lastShort || c.loading
	c.stateMutex.RUnlock()

	if blocked {
		return
	}
	c.SetPage(page + 1)
}

// PrevPage navigates backward
func (c *Controller) PrevPage() {
	c.stateMutex.RLock()
	page := c.page
	loading := c.loading
	c.stateMutex.RUnlock()

	if loading {
		return
	}
	c.SetPage(page - 1)
}

// Reload refetches the current query and page
func (c *Controller) Reload() {
	c.stateMutex.Lock()
	c.reloadLocked()
	c.stateMutex.Unlock()

	c.notifyUpdate()
}

// reloadLocked dispatches a page load for the current parameters. The caller
// must hold stateMutex.
func (c *Controller) reloadLocked() {
	c.loadSeq++
	c.overflowPage = c.page + 1

	// Pending replacements belong to the grid being replaced
	c.backfillQueue = nil

	if c.query == "" {
		// Cleared without fetching
		c.slots = nil
		c.total = 0
		c.lastError = ""
		c.loading = false
		c.lastShort = true
		return
	}

	c.loading = true
	seq := c.loadSeq

	go c.completeLoad(seq, c.query, c.page)
}

// completeLoad performs the page fetch and applies the outcome unless the
// grid has moved on to newer parameters
func (c *Controller) completeLoad(seq int64, query string, page int) {
	result, err := c.searcher.FetchPage(context.Background(), query, page, PerPage)

	c.stateMutex.Lock()
	if seq != c.loadSeq {
		c.stateMutex.Unlock()
		log.Printf("Discarding stale results for query %q page %d", query, page)
		return
	}

	if err != nil {
		c.slots = nil
		c.total = 0
		c.lastError = err.Error()
		c.lastShort = true
		log.Printf("Search failed for query %q page %d: %v", query, page, err)
	} else {
		slots := make([]*model.Slot, 0, len(result.Items))
		for _, item := range result.Items {
			slots = append(slots, newSlot(item))
		}
		c.slots = slots
		c.total = result.Total
		c.lastError = ""
		c.lastShort = result.IsShort()
		log.Printf("Loaded %d results for query %q page %d (total %d)", len(result.Items), query, page, result.Total)
	}
	c.loading = false
	c.stateMutex.Unlock()

	c.notifyUpdate()
}

// RemoveAt starts the removal transition for the slot at the given display
// index. Slots already mid-removal are left alone.
func (c *Controller) RemoveAt(index int) error {
	c.stateMutex.Lock()

	if index < 0 || index >= len(c.slots) {
		c.stateMutex.Unlock()
		return fmt.Errorf("slot index out of range: %d", index)
	}

	started := c.startRemovalLocked(c.slots[index])
	c.stateMutex.Unlock()

	if started {
		c.notifyUpdate()
	}
	return nil
}

// RemoveSlot starts the removal transition for the slot with the given ID.
// Resolving by identity instead of position keeps a tap from hitting a
// neighbor that shifted into the tapped cell.
func (c *Controller) RemoveSlot(slotID string) error {
	c.stateMutex.Lock()

	_, slot := c.findSlotLocked(slotID)
	if slot == nil {
		c.stateMutex.Unlock()
		return fmt.Errorf("unknown slot: %s", slotID)
	}

	started := c.startRemovalLocked(slot)
	c.stateMutex.Unlock()

	if started {
		c.notifyUpdate()
	}
	return nil
}

// startRemovalLocked flips a live slot into its fade-out and schedules the
// settle continuation. Returns false when the slot is already mid-removal.
// The caller must hold stateMutex.
func (c *Controller) startRemovalLocked(slot *model.Slot) bool {
	if !slot.CanRemove() {
		return false
	}

	slot.State = model.SlotStateRemoving
	slot.RemovedAt = time.Now()

	slotID := slot.ID
	seq := c.loadSeq

	// The fade-out is a presentation concern: the data mutation is a
	// scheduled continuation, not part of this call
	time.AfterFunc(c.settleDelay, func() {
		c.settleRemoval(slotID, seq)
	})
	return true
}

// settleRemoval collapses a removed slot into a placeholder and queues the
// replacement fetch. A removal belonging to an older grid is dropped.
func (c *Controller) settleRemoval(slotID string, seq int64) {
	c.stateMutex.Lock()

	if seq != c.loadSeq {
		c.stateMutex.Unlock()
		return
	}

	_, slot := c.findSlotLocked(slotID)
	if slot == nil || slot.State != model.SlotStateRemoving {
		c.stateMutex.Unlock()
		return
	}

	slot.State = model.SlotStatePlaceholder
	slot.Item = nil
	if c.total > 0 {
		c.total--
	}

	c.backfillQueue = append(c.backfillQueue, backfillRequest{slotID: slotID, seq: seq})
	startDrain := !c.backfillDraining
	if startDrain {
		c.backfillDraining = true
	}
	c.stateMutex.Unlock()

	c.notifyUpdate()

	if startDrain {
		go c.drainBackfill()
	}
}

// drainBackfill serves queued replacement fetches one at a time. Serializing
// them keeps the overflow cursor honest: each successful fetch advances it
// before the next removal reads it, so overlapping removals never splice in
// the same item twice.
func (c *Controller) drainBackfill() {
	for {
		c.stateMutex.Lock()
		if len(c.backfillQueue) == 0 {
			c.backfillDraining = false
			c.stateMutex.Unlock()
			return
		}
		req := c.backfillQueue[0]
		c.backfillQueue = c.backfillQueue[1:]

		if req.seq != c.loadSeq {
			c.stateMutex.Unlock()
			continue
		}
		query := c.query
		fromPage := c.overflowPage
		c.stateMutex.Unlock()

		c.fetchReplacement(req.slotID, req.seq, query, fromPage)
	}
}

// fetchReplacement pulls one item from the overflow cursor and splices it
// into the slot's current position. On an empty result or a failure the slot
// is removed outright so the grid never keeps a stuck placeholder.
func (c *Controller) fetchReplacement(slotID string, seq int64, query string, fromPage int) {
	var (
		result *model.ResultPage
		err    error
	)
	if fromPage > MaxPage {
		// Overflow exhausted; no point asking the provider
		result = &model.ResultPage{Query: query, Page: fromPage, PerPage: ReplacementPerPage}
	} else {
		result, err = c.searcher.FetchPage(context.Background(), query, fromPage, ReplacementPerPage)
	}

	c.stateMutex.Lock()
	if seq != c.loadSeq {
		c.stateMutex.Unlock()
		log.Printf("Discarding stale replacement for query %q page %d", query, fromPage)
		return
	}

	index, slot := c.findSlotLocked(slotID)
	if slot == nil || slot.State != model.SlotStatePlaceholder {
		c.stateMutex.Unlock()
		return
	}

	if err != nil || result.IsEmpty() {
		// Collection shrinks by one instead of keeping a dead slot
		c.slots = append(c.slots[:index], c.slots[index+1:]...)
		if err != nil {
			log.Printf("Replacement fetch failed for slot %s: %v", slotID, err)
		} else {
			log.Printf("Overflow exhausted at page %d, dropping slot %s", fromPage, slotID)
		}
	} else {
		item := result.Items[0]
		slot.Item = &item
		slot.State = model.SlotStateLive
		c.overflowPage++
	}
	c.stateMutex.Unlock()

	c.notifyUpdate()
}

// findSlotLocked returns the slot with the given ID and its current index,
// or (-1, nil). The caller must hold stateMutex.
func (c *Controller) findSlotLocked(slotID string) (int, *model.Slot) {
	for i, slot := range c.slots {
		if slot.ID == slotID {
			return i, slot
		}
	}
	return -1, nil
}

// notifyUpdate calls the update callback if set
func (c *Controller) notifyUpdate() {
	if c.onUpdate != nil {
		c.onUpdate()
	}
}

// newSlot wraps a result item into a live slot with a fresh identity
func newSlot(item model.ResultItem) *model.Slot {
	return &model.Slot{
		ID:    generateSlotID(),
		State: model.SlotStateLive,
		Item:  &item,
	}
}

// generateSlotID generates a unique slot ID using UUID v7 for better uniqueness and time ordering
func generateSlotID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to timestamp if UUID generation fails
		return fmt.Sprintf(SlotIDPrefix+"%d", time.Now().UnixNano())
	}
	return SlotIDPrefix + id.String()
}
