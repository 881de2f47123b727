package archive

// Package archive builds the zip containers delivered to the user: a pure
// entries-in, compressed-bytes-out packager plus the deterministic naming
// rules shared by the desktop export and the proxy's download endpoint.
