package grid

// Package grid implements the result grid controller: the mutable, ordered
// collection of slots shown for the current query and page. It owns page
// navigation, per-slot removal with overflow backfill, and the export
// pipeline orchestration. All state lives behind one mutex; asynchronous
// completions re-validate relevance before mutating.
