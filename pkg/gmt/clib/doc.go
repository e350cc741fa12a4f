// Package clib locates, loads and binds the GMT shared library.
//
// # Locating the Library
//
// Locate walks a priority-ordered sequence of candidates and returns the
// first one that both loads and exports the required GMT_* entry points:
//
//  1. every platform file name inside $GMT_LIBRARY_PATH, if the file exists
//  2. the path reported by "gmt --show-library", if the file exists
//  3. on Windows, every platform file name found on PATH
//  4. every bare platform file name, left to the OS default search
//
// A candidate that loads but lacks an entry point is closed and skipped.
// When nothing qualifies Locate returns a *LibraryNotFoundError listing every
// attempted path.
//
// # Binding
//
// A LibraryHandle carries a Native function table: a Go mirror of the parts
// of the GMT C API used by package gmt. The table is built with purego, so
// the binding does not need cgo. Handles are immutable and safe to share.
//
// # Caching
//
// Load resolves the library once per process and hands out the same handle.
// Reset forgets it so tests can force re-resolution against a fake library.
package clib
