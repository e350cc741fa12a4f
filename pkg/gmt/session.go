package gmt

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/afero"

	"github.com/geobind/gmt-go/pkg/gmt/clib"
	"github.com/geobind/gmt-go/pkg/gmt/logging"
)

// State is a Session's position in its lifecycle. Sessions only move
// forward: Unopened, Open, Closed.
type State int

const (
	StateUnopened State = iota
	StateOpen
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnopened:
		return "unopened"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Session owns one GMT API session and the virtual files registered with it.
//
// A Session must be driven by one goroutine at a time. Independent sessions
// may run concurrently; they share only the immutable library handle.
//
// Using a Session that is not open panics with a *StateError: it is a bug in
// the caller, not a condition to recover from.
type Session struct {
	cfg      Config
	library  *clib.LibraryHandle
	native   clib.Native
	api      uintptr
	state    State
	enums    map[string]int32
	registry map[string]*binding
	log      logging.Logger
}

// Open creates a GMT API session. Without WithLibrary the process-wide
// library handle is resolved first; if that fails no session is created.
func Open(ctx context.Context, opts ...Option) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg := newConfig(opts)
	h := cfg.Library
	if h == nil {
		var err error
		if h, err = clib.Load(ctx); err != nil {
			return nil, err
		}
	}

	s := &Session{
		cfg:      cfg,
		library:  h,
		native:   h.Native(),
		enums:    make(map[string]int32),
		registry: make(map[string]*binding),
		log:      cfg.Logger.With("session", cfg.Name),
	}

	pad, err := s.enum("GMT_PAD_DEFAULT")
	if err != nil {
		return nil, err
	}
	mode, err := s.enum("GMT_SESSION_EXTERNAL")
	if err != nil {
		return nil, err
	}
	api := s.native.CreateSession(cfg.Name, uint32(pad), uint32(mode))
	if api == 0 {
		return nil, fmt.Errorf("%w (library %s)", ErrSessionCreate, h.Path())
	}
	s.api = api
	s.state = StateOpen
	s.log.Debug(ctx, "opened GMT session", "library", h.Path())
	return s, nil
}

// State reports the lifecycle state. It is valid in every state.
func (s *Session) State() State {
	if s == nil {
		return StateUnopened
	}
	return s.state
}

// Fs returns the filesystem used for temporary files.
func (s *Session) Fs() afero.Fs {
	s.mustBeOpen("Fs")
	return s.cfg.Fs
}

// TempDir returns the directory temporary files are created in.
func (s *Session) TempDir() string {
	s.mustBeOpen("TempDir")
	return s.cfg.TempDir
}

// Logger returns the session's logger.
func (s *Session) Logger() logging.Logger {
	s.mustBeOpen("Logger")
	return s.log
}

// Close releases any virtual files still registered, then destroys the
// native session. Leftover virtual files are reported through
// ErrLeakedVirtualFile. The session is closed afterwards even when an error
// is returned. Closing twice panics.
func (s *Session) Close(ctx context.Context) error {
	s.mustBeOpen("Close")

	var errs []error
	if leaked := s.Bindings(); len(leaked) > 0 {
		s.log.Warn(ctx, "closing GMT session with virtual files still open", "names", leaked)
		for _, name := range leaked {
			if err := s.release(ctx, name); err != nil {
				errs = append(errs, err)
			}
		}
		errs = append(errs, fmt.Errorf("%w: %s", ErrLeakedVirtualFile, strings.Join(leaked, ", ")))
	}

	status := s.native.DestroySession(s.api)
	s.api = 0
	s.state = StateClosed
	if status != clib.StatusOK {
		errs = append(errs, &StatusError{Call: "GMT_Destroy_Session", Status: status})
	}
	s.log.Debug(ctx, "closed GMT session")
	return errors.Join(errs...)
}

// GetEnum returns the value of a GMT constant such as "GMT_IS_DATASET".
func (s *Session) GetEnum(name string) (int32, error) {
	s.mustBeOpen("GetEnum")
	return s.enum(name)
}

// GetDefault returns a GMT API default such as "API_VERSION".
func (s *Session) GetDefault(keyword string) (string, error) {
	s.mustBeOpen("GetDefault")
	v, status := s.native.GetDefault(s.api, keyword)
	if status != clib.StatusOK {
		return "", fmt.Errorf("%w: %s", &StatusError{Call: "GMT_Get_Default", Status: status}, keyword)
	}
	return v, nil
}

// InfoKeys are the API defaults reported by Info.
var InfoKeys = []string{"API_VERSION", "API_CORES", "API_BINDIR", "API_SHAREDIR", "API_PLUGINDIR", "API_LIBRARY"}

// Info reports the GMT installation the session runs on.
func (s *Session) Info() (map[string]string, error) {
	s.mustBeOpen("Info")
	info := make(map[string]string, len(InfoKeys))
	for _, key := range InfoKeys {
		v, err := s.GetDefault(key)
		if err != nil {
			return nil, err
		}
		info[key] = v
	}
	return info, nil
}

// CallModule runs a GMT module with a complete argument string. The call
// blocks until the module returns and cannot be interrupted; ctx is only
// checked before it starts. Output virtual files may only be read after a
// nil return.
func (s *Session) CallModule(ctx context.Context, module, args string) error {
	s.mustBeOpen("CallModule")
	if err := ctx.Err(); err != nil {
		return err
	}
	mode, err := s.enum("GMT_MODULE_CMD")
	if err != nil {
		return err
	}
	s.log.Debug(ctx, "calling GMT module", "module", module, "args", args)
	if status := s.native.CallModule(s.api, module, mode, args); status != clib.StatusOK {
		return &ModuleError{Module: module, Args: args, Status: status}
	}
	return nil
}

// Bindings returns the names of the registered virtual files, sorted.
func (s *Session) Bindings() []string {
	s.mustBeOpen("Bindings")
	names := make([]string, 0, len(s.registry))
	for name := range s.registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func (s *Session) mustBeOpen(op string) {
	if st := s.State(); st != StateOpen {
		panic(&StateError{Op: op, State: st})
	}
}

func (s *Session) enum(name string) (int32, error) {
	if v, ok := s.enums[name]; ok {
		return v, nil
	}
	v := s.native.GetEnum(s.api, name)
	if v == clib.EnumNotSet {
		return 0, fmt.Errorf("%w: %s", ErrUnknownEnum, name)
	}
	s.enums[name] = v
	return v, nil
}

// flags resolves names and combines them with bitwise OR, collecting the
// first error so call sites can read several constants in a row.
type flags struct {
	s   *Session
	err error
}

func (f *flags) get(names ...string) uint32 {
	var out uint32
	for _, name := range names {
		if f.err != nil {
			return 0
		}
		v, err := f.s.enum(name)
		f.err = err
		out |= uint32(v)
	}
	return out
}
