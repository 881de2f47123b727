package grid

import (
	"github.com/pixgrid/pix-grabber/internal/model"
)

// SlotView is an immutable copy of one slot for rendering
type SlotView struct {
	ID    string
	State model.SlotState
	Item  *model.ResultItem
}

// Snapshot is a consistent copy of the grid state for rendering. The UI
// pulls one after every update callback instead of reaching into the
// controller's collection.
type Snapshot struct {
	Query     string
	Page      int
	PerPage   int
	Total     int
	Slots     []SlotView
	LiveCount int
	Loading   bool
	Exporting bool
	LastError string
	CanPrev   bool
	CanNext   bool
	CanExport bool
}

// Snapshot returns a consistent copy of the current grid state
func (c *Controller) Snapshot() Snapshot {
	c.stateMutex.RLock()
	defer c.stateMutex.RUnlock()

	snap := Snapshot{
		Query:     c.query,
		Page:      c.page,
		PerPage:   PerPage,
		Total:     c.total,
		Loading:   c.loading,
		Exporting: c.exporting,
		LastError: c.lastError,
	}

	snap.Slots = make([]SlotView, 0, len(c.slots))
	for _, slot := range c.slots {
		view := SlotView{ID: slot.ID, State: slot.State}
		if slot.Item != nil {
			item := *slot.Item
			view.Item = &item
		}
		if slot.State.IsLive() && slot.Item != nil {
			snap.LiveCount++
		}
		snap.Slots = append(snap.Slots, view)
	}

	snap.CanPrev = c.query != "" && c.page > MinPage && !c.loading
	snap.CanNext = c.query != "" && c.page < MaxPage && !c.loading && !c.lastShort
	snap.CanExport = snap.LiveCount > 0 && !c.exporting && !c.loading

	return snap
}
