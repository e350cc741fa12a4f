package gmt

import (
	"errors"
	"fmt"

	"github.com/geobind/gmt-go/pkg/gmt/clib"
	"github.com/geobind/gmt-go/pkg/gmt/table"
)

// Library-level errors, re-exported so callers only need this package.
var (
	ErrUnsupportedPlatform = clib.ErrUnsupportedPlatform
	ErrLibraryNotFound     = clib.ErrLibraryNotFound
	ErrSymbolMissing       = clib.ErrSymbolMissing
	ErrParse               = table.ErrParse
)

type (
	LibraryNotFoundError = clib.LibraryNotFoundError
	ParseError           = table.ParseError
)

var (
	// ErrSessionCreate reports that GMT_Create_Session returned NULL.
	ErrSessionCreate = errors.New("gmt: failed to create GMT API session")

	// ErrInvalidSessionState is the panic value for operations on a session
	// that is not open. It indicates a bug in the caller.
	ErrInvalidSessionState = errors.New("gmt: invalid session state")

	// ErrShapeMismatch reports input arrays of unequal length.
	ErrShapeMismatch = errors.New("gmt: input arrays have different lengths")

	// ErrModuleExecution reports a module that returned a non-zero status.
	ErrModuleExecution = errors.New("gmt: module execution failed")

	// ErrUnrecognizedInputKind reports data that is not a file name, matrix,
	// set of vectors or table.
	ErrUnrecognizedInputKind = errors.New("gmt: unrecognized data type")

	// ErrUnrecognizedOption reports a parameter missing from a module's
	// alias table.
	ErrUnrecognizedOption = errors.New("gmt: unrecognized option")

	// ErrInvalidInput reports arguments a module wrapper cannot use.
	ErrInvalidInput = errors.New("gmt: invalid input")

	// ErrNative reports a non-zero status from a GMT API call other than a
	// module.
	ErrNative = errors.New("gmt: GMT API call failed")

	// ErrUnknownEnum reports a constant name GMT does not define.
	ErrUnknownEnum = errors.New("gmt: unknown GMT constant")

	// ErrUnknownVirtualFile reports a name that is not registered with the
	// session.
	ErrUnknownVirtualFile = errors.New("gmt: virtual file not registered")

	// ErrNotOutput reports an attempt to read back an input virtual file.
	ErrNotOutput = errors.New("gmt: virtual file is not an output")

	// ErrLeakedVirtualFile reports virtual files still registered when their
	// session closed.
	ErrLeakedVirtualFile = errors.New("gmt: virtual files still open at session close")
)

// ModuleError carries everything needed to reproduce a failed module call.
type ModuleError struct {
	Module string
	Args   string
	Status int32
}

func (e *ModuleError) Error() string {
	return fmt.Sprintf("gmt: module %q failed with status %d (args: %q)", e.Module, e.Status, e.Args)
}

func (e *ModuleError) Is(target error) bool { return target == ErrModuleExecution }

// StatusError is a non-zero status from a GMT API function.
type StatusError struct {
	Call   string
	Status int32
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gmt: %s returned status %d", e.Call, e.Status)
}

func (e *StatusError) Is(target error) bool { return target == ErrNative }

// StateError is the panic value raised when an operation runs on a session in
// the wrong lifecycle state.
type StateError struct {
	Op    string
	State State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("gmt: %s on %s session", e.Op, e.State)
}

func (e *StateError) Is(target error) bool { return target == ErrInvalidSessionState }

// UnrecognizedOptionError names the offending parameter.
type UnrecognizedOptionError struct {
	Option string
}

func (e *UnrecognizedOptionError) Error() string {
	return fmt.Sprintf("gmt: unrecognized option %q", e.Option)
}

func (e *UnrecognizedOptionError) Is(target error) bool { return target == ErrUnrecognizedOption }
