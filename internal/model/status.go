package model

// SlotState represents the lifecycle state of a single grid slot
type SlotState string

const (
	// SlotStateLive means the slot displays a search result
	SlotStateLive SlotState = "Live"

	// SlotStateRemoving means the slot is playing its removal transition
	SlotStateRemoving SlotState = "Removing"

	// SlotStatePlaceholder means the removed item is gone and a replacement fetch is pending
	SlotStatePlaceholder SlotState = "Placeholder"
)

// String returns the string representation of SlotState
func (ss SlotState) String() string {
	return string(ss)
}

// IsLive returns true if the slot holds a displayable result
func (ss SlotState) IsLive() bool {
	return ss == SlotStateLive
}

// IsTransient returns true if the slot is mid-removal or awaiting its replacement
func (ss SlotState) IsTransient() bool {
	return ss == SlotStateRemoving || ss == SlotStatePlaceholder
}
