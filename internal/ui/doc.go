package ui

// Package ui contains the Fyne-based desktop user interface for the application.
// It renders the result grid from controller snapshots, wires user interactions
// (search, paging, tile removal, export) back into the grid controller, and
// shows notifications and settings. All UI strings are localized via Localization.
