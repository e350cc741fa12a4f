package clib

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupportedPlatform reports an operating system GMT does not ship for.
	ErrUnsupportedPlatform = errors.New("gmt: unsupported operating system")

	// ErrLibraryNotFound reports that no candidate both loaded and exported
	// the required entry points.
	ErrLibraryNotFound = errors.New("gmt: shared library not found")

	// ErrSymbolMissing reports a loaded library without a required entry point.
	ErrSymbolMissing = errors.New("gmt: required function missing from library")
)

// LibraryNotFoundError lists every candidate Locate attempted, in order, and
// the error from the last attempt.
type LibraryNotFoundError struct {
	Attempted []string
	Err       error
}

func (e *LibraryNotFoundError) Error() string {
	msg := "gmt: error loading the GMT shared library " + strings.Join(e.Attempted, ", ")
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LibraryNotFoundError) Unwrap() error { return e.Err }

func (e *LibraryNotFoundError) Is(target error) bool { return target == ErrLibraryNotFound }

// SymbolMissingError names the library and the entry point it lacks.
type SymbolMissingError struct {
	Path   string
	Symbol string
	Err    error
}

func (e *SymbolMissingError) Error() string {
	return fmt.Sprintf("gmt: error loading %s: couldn't access function %s", e.Path, e.Symbol)
}

func (e *SymbolMissingError) Unwrap() error { return e.Err }

func (e *SymbolMissingError) Is(target error) bool { return target == ErrSymbolMissing }
