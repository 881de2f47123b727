package model

// Package model defines domain data structures used across the app: search
// result items and pages, grid slots with their lifecycle states, and export
// archive entities. Structures are designed for direct binding in the UI and
// explicit state transitions.
