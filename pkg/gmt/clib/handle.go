package clib

import (
	"slices"
	"sync"

	"github.com/geobind/gmt-go/internal/dl"
)

// LibraryHandle is a loaded and verified GMT shared library. It never changes
// after Locate returns it and may be shared by concurrent sessions.
type LibraryHandle struct {
	path     string
	platform Platform
	symbols  []string
	lib      dl.Library
	native   Native

	closeOnce sync.Once
	closeErr  error
}

// Path returns the candidate the library was loaded from.
func (h *LibraryHandle) Path() string { return h.path }

// Platform returns the platform family the handle was resolved for.
func (h *LibraryHandle) Platform() Platform { return h.platform }

// Symbols returns the verified entry point names.
func (h *LibraryHandle) Symbols() []string { return slices.Clone(h.symbols) }

// Native returns the bound GMT function table.
func (h *LibraryHandle) Native() Native { return h.native }

// Close unloads the library. Sessions created from the handle must be closed
// first. Close is safe to call more than once.
func (h *LibraryHandle) Close() error {
	h.closeOnce.Do(func() {
		if h.lib != nil {
			h.closeErr = h.lib.Close()
		}
	})
	return h.closeErr
}
