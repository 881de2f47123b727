package search

// Package search implements the HTTP client for the image search service.
// It fetches result pages, classifies failures into transport and provider
// errors, and exposes the Searcher interface consumed by the grid controller.
