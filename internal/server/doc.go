package server

// Package server implements the search proxy HTTP service: it translates
// /search requests into Wikimedia Commons API calls, reshapes the response
// into the app's result envelope, and serves whole result pages as ZIP
// archives over /download. Upstream failures are reported in the response
// body the way the desktop client expects them.
