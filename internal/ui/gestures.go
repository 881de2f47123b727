package ui

import (
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/mobile"
)

// GestureType represents different types of gestures
type GestureType int

const (
	GestureTap GestureType = iota
	GestureSwipeLeft
	GestureSwipeRight
	GestureSwipeUp
	GestureSwipeDown
	GestureLongPress
)

// Gesture thresholds constants
const (
	DefaultSwipeThreshold    float32 = 50.0
	DefaultLongPressDuration         = 500 * time.Millisecond
)

// GestureHandler turns raw touch events into gestures
type GestureHandler struct {
	onGesture func(GestureType)

	// Touch tracking
	touchStartTime time.Time
	touchStartPos  fyne.Position
	touchEndPos    fyne.Position

	// Gesture thresholds
	swipeThreshold    float32
	longPressDuration time.Duration
}

// NewGestureHandler creates a new gesture handler
func NewGestureHandler(onGesture func(GestureType)) *GestureHandler {
	return &GestureHandler{
		onGesture:         onGesture,
		swipeThreshold:    DefaultSwipeThreshold,
		longPressDuration: DefaultLongPressDuration,
	}
}

// TouchDown handles touch down events for gesture detection
func (gh *GestureHandler) TouchDown(event *mobile.TouchEvent) {
	gh.touchStartTime = time.Now()
	gh.touchStartPos = event.Position
}

// TouchUp handles touch up events for gesture detection
func (gh *GestureHandler) TouchUp(event *mobile.TouchEvent) {
	gh.touchEndPos = event.Position
	duration := time.Since(gh.touchStartTime)

	// Compare squared distances to avoid a sqrt
	dx := gh.touchEndPos.X - gh.touchStartPos.X
	dy := gh.touchEndPos.Y - gh.touchStartPos.Y
	distanceSq := dx*dx + dy*dy
	thresholdSq := gh.swipeThreshold * gh.swipeThreshold

	// Detect gesture type
	if duration < gh.longPressDuration && distanceSq < thresholdSq {
		// Quick tap
		gh.triggerGesture(GestureTap)
	} else if duration >= gh.longPressDuration {
		// Long press
		gh.triggerGesture(GestureLongPress)
	} else {
		// Swipe gesture
		gh.detectSwipeDirection(dx, dy)
	}
}

// TouchCancel handles touch cancel events
func (gh *GestureHandler) TouchCancel(event *mobile.TouchEvent) {
	// Reset tracking
	gh.touchStartTime = time.Time{}
}

// detectSwipeDirection determines the direction of a swipe gesture
func (gh *GestureHandler) detectSwipeDirection(dx, dy float32) {
	absDx := dx
	if absDx < 0 {
		absDx = -absDx
	}
	absDy := dy
	if absDy < 0 {
		absDy = -absDy
	}

	// Determine primary direction
	if absDx > absDy {
		// Horizontal swipe
		if dx > 0 {
			gh.triggerGesture(GestureSwipeRight)
		} else {
			gh.triggerGesture(GestureSwipeLeft)
		}
	} else {
		// Vertical swipe
		if dy > 0 {
			gh.triggerGesture(GestureSwipeDown)
		} else {
			gh.triggerGesture(GestureSwipeUp)
		}
	}
}

// triggerGesture triggers a gesture callback
func (gh *GestureHandler) triggerGesture(gesture GestureType) {
	if gh.onGesture != nil {
		gh.onGesture(gesture)
	}
}

// SwipePager wraps the result grid and maps touch swipes onto pager actions:
// swiping left pages forward, swiping right pages back, swiping down reloads
// the current page. Desktop users keep the buttons; touch users get gestures.
type SwipePager struct {
	*fyne.Container
	gestureHandler *GestureHandler

	onNext   func()
	onPrev   func()
	onReload func()
}

// NewSwipePager creates a swipe pager around the given content
func NewSwipePager(content fyne.CanvasObject, onNext, onPrev, onReload func()) *SwipePager {
	sp := &SwipePager{
		Container: container.NewStack(content),
		onNext:    onNext,
		onPrev:    onPrev,
		onReload:  onReload,
	}

	sp.gestureHandler = NewGestureHandler(sp.handleGesture)
	return sp
}

// handleGesture maps swipe gestures to pager callbacks
func (sp *SwipePager) handleGesture(gesture GestureType) {
	switch gesture {
	case GestureSwipeLeft:
		if sp.onNext != nil {
			sp.onNext()
		}
	case GestureSwipeRight:
		if sp.onPrev != nil {
			sp.onPrev()
		}
	case GestureSwipeDown:
		if sp.onReload != nil {
			sp.onReload()
		}
	}
}

// TouchDown handles touch down events
func (sp *SwipePager) TouchDown(event *mobile.TouchEvent) {
	if sp.gestureHandler != nil {
		sp.gestureHandler.TouchDown(event)
	}
}

// TouchUp handles touch up events
func (sp *SwipePager) TouchUp(event *mobile.TouchEvent) {
	if sp.gestureHandler != nil {
		sp.gestureHandler.TouchUp(event)
	}
}

// TouchCancel handles touch cancel events
func (sp *SwipePager) TouchCancel(event *mobile.TouchEvent) {
	if sp.gestureHandler != nil {
		sp.gestureHandler.TouchCancel(event)
	}
}
