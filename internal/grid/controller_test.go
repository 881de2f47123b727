package grid

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pixgrid/pix-grabber/internal/model"
)

const testSettleDelay = 25 * time.Millisecond

// fetchCall records one FetchPage invocation
type fetchCall struct {
	query   string
	page    int
	perPage int
}

// fakeSearcher serves scripted pages and records every call
type fakeSearcher struct {
	mu      sync.Mutex
	calls   []fetchCall
	handler func(query string, page, perPage int) (*model.ResultPage, error)
}

func (f *fakeSearcher) FetchPage(ctx context.Context, query string, page, perPage int) (*model.ResultPage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, fetchCall{query: query, page: page, perPage: perPage})
	handler := f.handler
	f.mu.Unlock()

	return handler(query, page, perPage)
}

func (f *fakeSearcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeSearcher) callsFor(perPage int) []fetchCall {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []fetchCall
	for _, call := range f.calls {
		if call.perPage == perPage {
			out = append(out, call)
		}
	}
	return out
}

// makePage builds a page whose item IDs encode their overall position, so
// tests can tell exactly which provider item landed where
func makePage(query string, page, perPage, count, total int) *model.ResultPage {
	items := make([]model.ResultItem, 0, count)
	for i := 0; i < count; i++ {
		id := int64((page-1)*perPage + i + 1)
		items = append(items, model.ResultItem{
			ID:          id,
			DownloadURL: fmt.Sprintf("https://example.org/img/%s/%d.jpg", query, id),
		})
	}
	return &model.ResultPage{Query: query, Page: page, PerPage: perPage, Total: total, Items: items}
}

// servePages is the default handler: full pages for page fetches, one item
// per replacement fetch
func servePages(total int) func(string, int, int) (*model.ResultPage, error) {
	return func(query string, page, perPage int) (*model.ResultPage, error) {
		return makePage(query, page, perPage, perPage, total), nil
	}
}

// fakeTranscoder turns items into entries without touching the network
type fakeTranscoder struct {
	failIDs map[int64]bool
}

func (f *fakeTranscoder) Transcode(ctx context.Context, items []model.ResultItem, page int) ([]model.ExportEntry, int, error) {
	entries := make([]model.ExportEntry, 0, len(items))
	skipped := 0
	for i, item := range items {
		if f.failIDs[item.ID] {
			skipped++
			continue
		}
		entries = append(entries, model.ExportEntry{
			Name: fmt.Sprintf("image_%d_%d.jpg", page, i+1),
			Data: []byte(fmt.Sprintf("thumb-%d", item.ID)),
			MIME: "image/jpeg",
		})
	}
	return entries, skipped, nil
}

func newTestController(handler func(string, int, int) (*model.ResultPage, error)) (*Controller, *fakeSearcher) {
	searcher := &fakeSearcher{handler: handler}
	controller := NewController(searcher, &fakeTranscoder{})
	controller.settleDelay = testSettleDelay
	return controller, searcher
}

// waitFor polls until the condition holds or the test times out
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %s", what)
}

func TestNewController(t *testing.T) {
	controller, _ := newTestController(servePages(100))

	if controller.page != MinPage {
		t.Errorf("Expected initial page %d, got %d", MinPage, controller.page)
	}
	if controller.overflowPage != MinPage+1 {
		t.Errorf("Expected initial overflow page %d, got %d", MinPage+1, controller.overflowPage)
	}

	snap := controller.Snapshot()
	if len(snap.Slots) != 0 {
		t.Errorf("Expected empty grid, got %d slots", len(snap.Slots))
	}
	if snap.CanPrev || snap.CanNext || snap.CanExport {
		t.Errorf("Expected all navigation disabled on empty grid, got prev=%v next=%v export=%v",
			snap.CanPrev, snap.CanNext, snap.CanExport)
	}
}

func TestController_SetQuery_LoadsFirstPage(t *testing.T) {
	controller, searcher := newTestController(servePages(1000))

	controller.SetQuery("cat")

	waitFor(t, "first page to load", func() bool {
		snap := controller.Snapshot()
		return !snap.Loading && len(snap.Slots) == PerPage
	})

	snap := controller.Snapshot()
	if snap.Total != 1000 {
		t.Errorf("Expected total 1000, got %d", snap.Total)
	}
	if snap.LiveCount != PerPage {
		t.Errorf("Expected %d live slots, got %d", PerPage, snap.LiveCount)
	}
	if !snap.CanNext {
		t.Error("Expected forward navigation enabled after a full page")
	}
	if snap.CanPrev {
		t.Error("Expected backward navigation disabled on page 1")
	}
	if snap.LastError != "" {
		t.Errorf("Expected no error, got %q", snap.LastError)
	}

	calls := searcher.callsFor(PerPage)
	if len(calls) != 1 {
		t.Fatalf("Expected 1 page fetch, got %d", len(calls))
	}
	if calls[0].query != "cat" || calls[0].page != 1 {
		t.Errorf("Expected fetch(cat, 1, %d), got fetch(%s, %d, %d)",
			PerPage, calls[0].query, calls[0].page, calls[0].perPage)
	}

	controller.stateMutex.RLock()
	overflow := controller.overflowPage
	controller.stateMutex.RUnlock()
	if overflow != 2 {
		t.Errorf("Expected overflow cursor 2 after loading page 1, got %d", overflow)
	}
}

func TestController_SetQuery_SameQueryIsNoop(t *testing.T) {
	controller, searcher := newTestController(servePages(100))

	controller.SetQuery("cat")
	waitFor(t, "page to load", func() bool { return !controller.Snapshot().Loading })

	controller.SetQuery("cat")
	controller.SetQuery("  cat  ")

	time.Sleep(20 * time.Millisecond)
	if n := searcher.callCount(); n != 1 {
		t.Errorf("Expected 1 fetch for repeated query, got %d", n)
	}
}

func TestController_SetQuery_BlankClearsWithoutFetching(t *testing.T) {
	controller, searcher := newTestController(servePages(100))

	controller.SetQuery("   ")
	time.Sleep(20 * time.Millisecond)

	if n := searcher.callCount(); n != 0 {
		t.Errorf("Expected no fetches for blank query, got %d", n)
	}

	// Load something, then clear
	controller.SetQuery("cat")
	waitFor(t, "page to load", func() bool { return len(controller.Snapshot().Slots) == PerPage })

	controller.SetQuery("")
	snap := controller.Snapshot()
	if len(snap.Slots) != 0 || snap.Total != 0 {
		t.Errorf("Expected cleared grid, got %d slots, total %d", len(snap.Slots), snap.Total)
	}
	if snap.LastError != "" {
		t.Errorf("Expected no error after clearing, got %q", snap.LastError)
	}
}

func TestController_SetPage_Bounds(t *testing.T) {
	controller, searcher := newTestController(servePages(1000))

	controller.SetQuery("cat")
	waitFor(t, "page to load", func() bool { return !controller.Snapshot().Loading })
	before := searcher.callCount()

	// Out-of-range requests are no-ops
	controller.SetPage(0)
	controller.SetPage(-3)
	controller.SetPage(MaxPage + 1)
	// Same-page request is a no-op
	controller.SetPage(1)

	time.Sleep(20 * time.Millisecond)
	if n := searcher.callCount(); n != before {
		t.Errorf("Expected no fetches for rejected page requests, got %d extra", n-before)
	}

	snap := controller.Snapshot()
	if snap.Page != 1 {
		t.Errorf("Expected page to remain 1, got %d", snap.Page)
	}
}

func TestController_PageNavigation(t *testing.T) {
	controller, searcher := newTestController(servePages(1000))

	controller.SetQuery("cat")
	waitFor(t, "page 1 to load", func() bool {
		snap := controller.Snapshot()
		return !snap.Loading && snap.Page == 1 && len(snap.Slots) == PerPage
	})

	controller.NextPage()
	waitFor(t, "page 2 to load", func() bool {
		snap := controller.Snapshot()
		return !snap.Loading && snap.Page == 2 && len(snap.Slots) == PerPage
	})

	snap := controller.Snapshot()
	if !snap.CanPrev {
		t.Error("Expected backward navigation enabled on page 2")
	}
	if snap.Slots[0].Item.ID != int64(PerPage+1) {
		t.Errorf("Expected page 2 to start at item %d, got %d", PerPage+1, snap.Slots[0].Item.ID)
	}

	controller.stateMutex.RLock()
	overflow := controller.overflowPage
	controller.stateMutex.RUnlock()
	if overflow != 3 {
		t.Errorf("Expected overflow cursor 3 on page 2, got %d", overflow)
	}

	controller.PrevPage()
	waitFor(t, "page 1 to load again", func() bool {
		snap := controller.Snapshot()
		return !snap.Loading && snap.Page == 1
	})

	calls := searcher.callsFor(PerPage)
	if len(calls) != 3 {
		t.Fatalf("Expected 3 page fetches, got %d", len(calls))
	}
	if calls[1].page != 2 || calls[2].page != 1 {
		t.Errorf("Expected fetch pages [1 2 1], got [%d %d %d]", calls[0].page, calls[1].page, calls[2].page)
	}
}

func TestController_ShortPageDisablesForward(t *testing.T) {
	controller, searcher := newTestController(func(query string, page, perPage int) (*model.ResultPage, error) {
		return makePage(query, page, perPage, 30, 30), nil
	})

	controller.SetQuery("rare creature")
	waitFor(t, "short page to load", func() bool {
		snap := controller.Snapshot()
		return !snap.Loading && len(snap.Slots) == 30
	})

	snap := controller.Snapshot()
	if snap.CanNext {
		t.Error("Expected forward navigation disabled after a short page")
	}

	before := searcher.callCount()
	controller.NextPage()
	time.Sleep(20 * time.Millisecond)
	if n := searcher.callCount(); n != before {
		t.Error("Expected NextPage to be a no-op after a short page")
	}
}

func TestController_LoadFailure(t *testing.T) {
	var failing atomic.Bool
	failing.Store(true)

	controller, _ := newTestController(func(query string, page, perPage int) (*model.ResultPage, error) {
		if failing.Load() {
			return nil, fmt.Errorf("search request failed with status 502")
		}
		return makePage(query, page, perPage, perPage, 500), nil
	})

	controller.SetQuery("cat")
	waitFor(t, "failure to surface", func() bool {
		snap := controller.Snapshot()
		return !snap.Loading && snap.LastError != ""
	})

	snap := controller.Snapshot()
	if len(snap.Slots) != 0 {
		t.Errorf("Expected grid cleared on failure, got %d slots", len(snap.Slots))
	}
	if !strings.Contains(snap.LastError, "502") {
		t.Errorf("Expected error message to carry the cause, got %q", snap.LastError)
	}
	if snap.CanNext || snap.CanExport {
		t.Error("Expected navigation and export disabled after a failure")
	}

	// A later successful fetch clears the error
	failing.Store(false)
	controller.Reload()
	waitFor(t, "recovery", func() bool {
		snap := controller.Snapshot()
		return !snap.Loading && snap.LastError == "" && len(snap.Slots) == PerPage
	})
}

func TestController_StaleLoadDiscarded(t *testing.T) {
	firstGate := make(chan struct{})
	var callN int32

	searcher := &fakeSearcher{handler: func(query string, page, perPage int) (*model.ResultPage, error) {
		if atomic.AddInt32(&callN, 1) == 1 {
			<-firstGate
			return makePage(query, page, perPage, perPage, 111), nil
		}
		return makePage(query, page, perPage, 40, 222), nil
	}}
	controller := NewController(searcher, &fakeTranscoder{})
	controller.settleDelay = testSettleDelay

	controller.SetQuery("cat")
	controller.SetQuery("dog")

	waitFor(t, "newer query to load", func() bool {
		snap := controller.Snapshot()
		return !snap.Loading && snap.Query == "dog" && len(snap.Slots) == 40
	})

	// Let the stale fetch resolve; it must not touch the grid
	close(firstGate)
	time.Sleep(50 * time.Millisecond)

	snap := controller.Snapshot()
	if snap.Query != "dog" || len(snap.Slots) != 40 || snap.Total != 222 {
		t.Errorf("Stale fetch mutated the grid: query=%q slots=%d total=%d",
			snap.Query, len(snap.Slots), snap.Total)
	}
}

func TestController_RemoveAt_ReplacesInPlace(t *testing.T) {
	controller, searcher := newTestController(servePages(1000))

	controller.SetQuery("cat")
	waitFor(t, "page to load", func() bool { return len(controller.Snapshot().Slots) == PerPage })

	removedID := controller.Snapshot().Slots[0].Item.ID

	if err := controller.RemoveAt(0); err != nil {
		t.Fatalf("RemoveAt(0) returned error: %v", err)
	}

	// Before the settle delay the slot fades out but keeps its item
	snap := controller.Snapshot()
	if snap.Slots[0].State != model.SlotStateRemoving {
		t.Errorf("Expected slot 0 in Removing state, got %s", snap.Slots[0].State)
	}
	if snap.Total != 1000 {
		t.Errorf("Expected total untouched during the transition, got %d", snap.Total)
	}

	waitFor(t, "replacement to land", func() bool {
		snap := controller.Snapshot()
		return len(snap.Slots) == PerPage &&
			snap.Slots[0].State == model.SlotStateLive &&
			snap.Slots[0].Item != nil &&
			snap.Slots[0].Item.ID != removedID
	})

	snap = controller.Snapshot()
	if snap.Total != 999 {
		t.Errorf("Expected total decremented to 999, got %d", snap.Total)
	}

	// The replacement came from the overflow cursor with a single-item fetch
	replacementCalls := searcher.callsFor(ReplacementPerPage)
	if len(replacementCalls) != 1 {
		t.Fatalf("Expected 1 replacement fetch, got %d", len(replacementCalls))
	}
	if replacementCalls[0].page != 2 {
		t.Errorf("Expected replacement from overflow page 2, got %d", replacementCalls[0].page)
	}

	controller.stateMutex.RLock()
	overflow := controller.overflowPage
	controller.stateMutex.RUnlock()
	if overflow != 3 {
		t.Errorf("Expected overflow cursor advanced to 3, got %d", overflow)
	}
}

func TestController_RemoveAt_InvalidIndex(t *testing.T) {
	controller, _ := newTestController(servePages(100))

	controller.SetQuery("cat")
	waitFor(t, "page to load", func() bool { return len(controller.Snapshot().Slots) == PerPage })

	if err := controller.RemoveAt(-1); err == nil {
		t.Error("Expected error for negative index")
	}
	if err := controller.RemoveAt(PerPage); err == nil {
		t.Error("Expected error for index past the end")
	}
}

func TestController_RemoveAt_DoubleRemovalIsIdempotent(t *testing.T) {
	controller, searcher := newTestController(servePages(1000))

	controller.SetQuery("cat")
	waitFor(t, "page to load", func() bool { return len(controller.Snapshot().Slots) == PerPage })

	if err := controller.RemoveAt(0); err != nil {
		t.Fatalf("First RemoveAt returned error: %v", err)
	}
	// Second removal of the same, already transitioning slot is ignored
	if err := controller.RemoveAt(0); err != nil {
		t.Fatalf("Second RemoveAt returned error: %v", err)
	}

	waitFor(t, "replacement to land", func() bool {
		snap := controller.Snapshot()
		return snap.Total == 999 && snap.LiveCount == PerPage
	})
	time.Sleep(30 * time.Millisecond)

	if calls := searcher.callsFor(ReplacementPerPage); len(calls) != 1 {
		t.Errorf("Expected exactly 1 replacement fetch, got %d", len(calls))
	}
	if snap := controller.Snapshot(); snap.Total != 999 {
		t.Errorf("Expected a single decrement, got total %d", snap.Total)
	}
}

func TestController_RemoveSlot_ResolvesByIdentity(t *testing.T) {
	controller, _ := newTestController(servePages(1000))

	controller.SetQuery("cat")
	waitFor(t, "page to load", func() bool { return len(controller.Snapshot().Slots) == PerPage })

	target := controller.Snapshot().Slots[4]

	if err := controller.RemoveSlot(target.ID); err != nil {
		t.Fatalf("RemoveSlot returned error: %v", err)
	}

	waitFor(t, "replacement to land", func() bool {
		snap := controller.Snapshot()
		return snap.Total == 999 && snap.LiveCount == PerPage
	})

	// The slot keeps its position and identity; only the item changes
	snap := controller.Snapshot()
	if snap.Slots[4].ID != target.ID {
		t.Errorf("Expected slot identity preserved at index 4, got %s", snap.Slots[4].ID)
	}
	if snap.Slots[4].Item.ID == target.Item.ID {
		t.Error("Expected a different item after replacement")
	}
}

func TestController_RemoveSlot_UnknownID(t *testing.T) {
	controller, _ := newTestController(servePages(100))

	controller.SetQuery("cat")
	waitFor(t, "page to load", func() bool { return len(controller.Snapshot().Slots) == PerPage })

	if err := controller.RemoveSlot("slot-unknown"); err == nil {
		t.Error("Expected error for unknown slot ID")
	}
}

func TestController_RemoveAt_ReplacementFailureShrinksGrid(t *testing.T) {
	controller, _ := newTestController(func(query string, page, perPage int) (*model.ResultPage, error) {
		if perPage == ReplacementPerPage {
			return nil, fmt.Errorf("search request failed: connection refused")
		}
		return makePage(query, page, perPage, perPage, 1000), nil
	})

	controller.SetQuery("cat")
	waitFor(t, "page to load", func() bool { return len(controller.Snapshot().Slots) == PerPage })

	if err := controller.RemoveAt(3); err != nil {
		t.Fatalf("RemoveAt returned error: %v", err)
	}

	waitFor(t, "slot to be dropped", func() bool {
		return len(controller.Snapshot().Slots) == PerPage-1
	})

	snap := controller.Snapshot()
	if snap.Total != 999 {
		t.Errorf("Expected total 999, got %d", snap.Total)
	}
	if snap.LastError != "" {
		t.Errorf("Expected replacement failure to stay off the error banner, got %q", snap.LastError)
	}
	for _, slot := range snap.Slots {
		if slot.State != model.SlotStateLive {
			t.Errorf("Expected no stuck placeholders, found slot in state %s", slot.State)
		}
	}

	controller.stateMutex.RLock()
	overflow := controller.overflowPage
	controller.stateMutex.RUnlock()
	if overflow != 2 {
		t.Errorf("Expected overflow cursor unchanged on failure, got %d", overflow)
	}
}

func TestController_RemoveAt_OverflowExhausted(t *testing.T) {
	controller, _ := newTestController(func(query string, page, perPage int) (*model.ResultPage, error) {
		if perPage == ReplacementPerPage {
			// Provider has nothing beyond the displayed page
			return makePage(query, page, perPage, 0, 50), nil
		}
		return makePage(query, page, perPage, perPage, 50), nil
	})

	controller.SetQuery("cat")
	waitFor(t, "page to load", func() bool { return len(controller.Snapshot().Slots) == PerPage })

	if err := controller.RemoveAt(7); err != nil {
		t.Fatalf("RemoveAt returned error: %v", err)
	}

	waitFor(t, "slot to be dropped", func() bool {
		return len(controller.Snapshot().Slots) == PerPage-1
	})

	controller.stateMutex.RLock()
	overflow := controller.overflowPage
	controller.stateMutex.RUnlock()
	if overflow != 2 {
		t.Errorf("Expected overflow cursor unchanged when exhausted, got %d", overflow)
	}
}

func TestController_ConcurrentRemovals(t *testing.T) {
	controller, _ := newTestController(servePages(1000))

	controller.SetQuery("cat")
	waitFor(t, "page to load", func() bool { return len(controller.Snapshot().Slots) == PerPage })

	first := controller.Snapshot().Slots[0].Item.ID
	second := controller.Snapshot().Slots[1].Item.ID

	if err := controller.RemoveAt(0); err != nil {
		t.Fatalf("RemoveAt(0) returned error: %v", err)
	}
	if err := controller.RemoveAt(1); err != nil {
		t.Fatalf("RemoveAt(1) returned error: %v", err)
	}

	waitFor(t, "both replacements to land", func() bool {
		snap := controller.Snapshot()
		return snap.LiveCount == PerPage && snap.Total == 998
	})

	snap := controller.Snapshot()

	// Both removed items are gone and no replacement appears twice
	seen := make(map[int64]int)
	for _, slot := range snap.Slots {
		if slot.Item == nil {
			t.Fatal("Expected all slots live after replacements")
		}
		seen[slot.Item.ID]++
	}
	if seen[first] != 0 || seen[second] != 0 {
		t.Errorf("Expected removed items %d and %d to be gone", first, second)
	}
	for id, n := range seen {
		if n > 1 {
			t.Errorf("Item %d appears %d times; replacements must not duplicate", id, n)
		}
	}

	controller.stateMutex.RLock()
	overflow := controller.overflowPage
	controller.stateMutex.RUnlock()
	if overflow != 4 {
		t.Errorf("Expected overflow cursor 4 after two successful backfills, got %d", overflow)
	}
}

func TestController_RemovalInvalidatedByReload(t *testing.T) {
	controller, searcher := newTestController(servePages(1000))

	controller.SetQuery("cat")
	waitFor(t, "page 1 to load", func() bool { return len(controller.Snapshot().Slots) == PerPage })

	// A generous settle delay guarantees the page change lands first
	controller.stateMutex.Lock()
	controller.settleDelay = 150 * time.Millisecond
	controller.stateMutex.Unlock()

	if err := controller.RemoveAt(0); err != nil {
		t.Fatalf("RemoveAt returned error: %v", err)
	}

	// Page change races the settle timer; the stale removal must not
	// mutate the new grid
	controller.SetPage(2)

	waitFor(t, "page 2 to load", func() bool {
		snap := controller.Snapshot()
		return !snap.Loading && snap.Page == 2 && len(snap.Slots) == PerPage
	})
	time.Sleep(250 * time.Millisecond)

	snap := controller.Snapshot()
	if len(snap.Slots) != PerPage {
		t.Errorf("Expected a full fresh grid, got %d slots", len(snap.Slots))
	}
	if snap.Total != 1000 {
		t.Errorf("Expected total from the fresh load, got %d", snap.Total)
	}
	for i, slot := range snap.Slots {
		if slot.State != model.SlotStateLive {
			t.Errorf("Slot %d in state %s after reload", i, slot.State)
		}
	}

	// The stale removal never reached the replacement stage
	if calls := searcher.callsFor(ReplacementPerPage); len(calls) != 0 {
		t.Errorf("Expected no replacement fetches for an invalidated removal, got %d", len(calls))
	}
}

func TestController_UpdateCallback(t *testing.T) {
	controller, _ := newTestController(servePages(100))

	var updates int32
	controller.SetUpdateCallback(func() {
		atomic.AddInt32(&updates, 1)
	})

	controller.SetQuery("cat")
	waitFor(t, "page to load", func() bool { return len(controller.Snapshot().Slots) == PerPage })

	if atomic.LoadInt32(&updates) < 2 {
		t.Errorf("Expected at least dispatch and completion updates, got %d", atomic.LoadInt32(&updates))
	}
}

func TestGenerateSlotID(t *testing.T) {
	id1 := generateSlotID()
	id2 := generateSlotID()

	if id1 == id2 {
		t.Error("Expected different slot IDs")
	}
	if !strings.HasPrefix(id1, SlotIDPrefix) {
		t.Errorf("Expected ID to start with '%s', got: %s", SlotIDPrefix, id1)
	}
	if len(id1) != len(SlotIDPrefix)+36 {
		t.Errorf("Expected ID length %d, got %d for ID: %s", len(SlotIDPrefix)+36, len(id1), id1)
	}
}
