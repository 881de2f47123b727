package model

import (
	"time"
)

// Slot is one cell of the result grid. A slot keeps a stable identity while
// the grid around it shrinks and reorders, so an asynchronous replacement
// always lands at the slot's current position rather than the index it had
// when the removal started.
type Slot struct {
	ID        string
	State     SlotState
	Item      *ResultItem
	RemovedAt time.Time // when the removal transition started
}

// CanRemove returns true if the slot may start a removal transition
func (s *Slot) CanRemove() bool {
	return s.State.IsLive() && s.Item != nil
}

// Caption returns the display caption of the slot's item, or "" for vacated slots
func (s *Slot) Caption() string {
	if s.Item == nil {
		return ""
	}
	return s.Item.GetDisplayCaption()
}
