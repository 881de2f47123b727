package commons

// Package commons adapts the Wikimedia Commons MediaWiki API: full-text
// search over the File: namespace with rendered thumbnails, normalized into
// the app's result model. Commons needs no API key but insists on a
// descriptive User-Agent.
