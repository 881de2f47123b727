package platform

// Package platform contains OS integration helpers: saving exported archives
// to disk, opening and revealing files, and locating the user's Downloads
// directory.
