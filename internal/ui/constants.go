package ui

import "time"

// UI-wide constants to avoid magic numbers/strings scattered across the codebase.

// Icons (emojis/symbols)
const (
	IconSettings = "⚙"
	IconClose    = "×"
	IconError    = "❌"
	IconPrev     = "◀"
	IconNext     = "▶"
)

// Text fragments
const (
	DashPlaceholder = "—"
	PageLabelFormat = "%d / %d"
)

// Layout sizing (result tiles / grid)
const (
	TileWidth     float32 = 168
	TileHeight    float32 = 156
	TileImageSize float32 = 120

	LogoSize float32 = 32
)

// Tile fade levels while a removal plays out
const (
	RemovingTranslucency    = 0.65
	PlaceholderTranslucency = 1.0
)

// Toast notification sizing and behavior
const (
	ToastWidth    float32 = 320
	ToastHeight   float32 = 120
	ToastMargin   float32 = 20
	ToastAutoHide         = 5 * time.Second
)

// Settings dialog sizing
const (
	SettingsDialogWidth  float32 = 480
	SettingsDialogHeight float32 = 340
)

// Network timeouts
const (
	ThumbFetchTimeout = 15 * time.Second
)
