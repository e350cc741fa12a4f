// Package dl opens shared libraries at runtime and resolves their exported
// symbols. The platform loaders live behind build tags so the rest of the
// repository compiles everywhere; unsupported platforms report
// ErrNotSupported from Open.
package dl

import "errors"

// Library is an opened shared library.
type Library interface {
	// Path returns the name or path the library was opened with.
	Path() string
	// Lookup resolves an exported symbol to its address.
	Lookup(name string) (uintptr, error)
	// Close releases the library handle.
	Close() error
}

// Loader opens shared libraries by path or bare file name. Bare names are
// resolved through the operating system's default search paths.
type Loader interface {
	Open(path string) (Library, error)
}

var (
	// ErrNotSupported reports that the current platform has no dynamic loader.
	ErrNotSupported = errors.New("dl: dynamic loading not supported on this platform")

	// ErrSymbolNotFound reports that a library does not export a symbol.
	ErrSymbolNotFound = errors.New("dl: symbol not found")

	// ErrClosed reports use of a library after Close.
	ErrClosed = errors.New("dl: library closed")
)

// System returns the loader for the running platform.
func System() Loader { return systemLoader{} }
