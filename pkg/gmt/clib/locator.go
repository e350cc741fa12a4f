package clib

import (
	"context"
	"errors"
	"iter"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/afero"

	"github.com/geobind/gmt-go/internal/dl"
	"github.com/geobind/gmt-go/pkg/gmt/logging"
)

// LibraryPathEnv names the directory override searched before anything else.
const LibraryPathEnv = "GMT_LIBRARY_PATH"

// Locator finds and loads the GMT shared library. The zero value searches the
// running system; every field can be replaced for tests.
type Locator struct {
	// GOOS selects the platform naming rules. Empty means runtime.GOOS.
	GOOS string
	// Getenv reads environment variables. Nil means os.Getenv.
	Getenv func(string) string
	// Fs answers "does this candidate exist". Nil means the OS filesystem.
	Fs afero.Fs
	// ShowLibrary asks the GMT toolchain where its library lives. Nil runs
	// "gmt --show-library".
	ShowLibrary func(ctx context.Context) (string, error)
	// Loader opens candidates. Nil means dl.System().
	Loader dl.Loader
	// Bind builds the function table for an accepted library. Nil means Bind.
	Bind func(dl.Library) (Native, error)
	// Logger receives one debug record per candidate.
	Logger logging.Logger
}

// Candidates returns the lazily evaluated, priority-ordered candidate paths.
// Existence checks and the toolchain query run only as the sequence is
// consumed. An unsupported platform fails before any I/O.
func (l *Locator) Candidates(ctx context.Context) (iter.Seq[string], error) {
	platform, err := ParsePlatform(l.goos())
	if err != nil {
		return nil, err
	}
	names := platform.libNames()

	return func(yield func(string) bool) {
		if dir := l.getenv(LibraryPathEnv); dir != "" {
			for _, name := range names {
				p := filepath.Join(dir, name)
				if l.exists(p) && !yield(p) {
					return
				}
			}
		}

		if p, err := l.showLibrary(ctx); err == nil && p != "" && l.exists(p) {
			if !yield(p) {
				return
			}
		}

		if platform == Windows {
			for _, name := range names {
				if p, ok := l.searchPath(name, platform); ok && !yield(p) {
					return
				}
			}
		}

		for _, name := range names {
			if !yield(name) {
				return
			}
		}
	}, nil
}

// Locate returns a handle to the first candidate that loads and exports every
// required function.
func (l *Locator) Locate(ctx context.Context) (*LibraryHandle, error) {
	platform, err := ParsePlatform(l.goos())
	if err != nil {
		return nil, err
	}
	candidates, err := l.Candidates(ctx)
	if err != nil {
		return nil, err
	}

	log := logging.OrDefault(l.Logger)
	var (
		attempted []string
		lastErr   error
	)
	for path := range candidates {
		attempted = append(attempted, path)
		h, err := l.open(path, platform)
		if err != nil {
			log.Debug(ctx, "rejected GMT library candidate", "path", path, "error", err)
			lastErr = err
			continue
		}
		log.Debug(ctx, "loaded GMT library", "path", path, "platform", platform.String())
		return h, nil
	}
	return nil, &LibraryNotFoundError{Attempted: attempted, Err: lastErr}
}

func (l *Locator) open(path string, platform Platform) (*LibraryHandle, error) {
	lib, err := l.loader().Open(path)
	if err != nil {
		return nil, err
	}
	if err := CheckLibrary(lib); err != nil {
		_ = lib.Close()
		return nil, err
	}
	bind := l.Bind
	if bind == nil {
		bind = Bind
	}
	native, err := bind(lib)
	if err != nil {
		_ = lib.Close()
		return nil, err
	}
	symbols := make([]string, len(RequiredFunctions))
	for i, fn := range RequiredFunctions {
		symbols[i] = Prefix + fn
	}
	return &LibraryHandle{path: path, platform: platform, symbols: symbols, lib: lib, native: native}, nil
}

// CheckLibrary verifies that lib exports every required GMT function.
func CheckLibrary(lib dl.Library) error {
	for _, fn := range RequiredFunctions {
		if _, err := lib.Lookup(Prefix + fn); err != nil {
			return &SymbolMissingError{Path: lib.Path(), Symbol: Prefix + fn, Err: err}
		}
	}
	return nil
}

func (l *Locator) goos() string {
	if l.GOOS != "" {
		return l.GOOS
	}
	return runtime.GOOS
}

func (l *Locator) getenv(key string) string {
	if l.Getenv != nil {
		return l.Getenv(key)
	}
	return os.Getenv(key)
}

func (l *Locator) exists(path string) bool {
	fs := l.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	ok, err := afero.Exists(fs, path)
	return err == nil && ok
}

func (l *Locator) loader() dl.Loader {
	if l.Loader != nil {
		return l.Loader
	}
	return dl.System()
}

func (l *Locator) showLibrary(ctx context.Context) (string, error) {
	if l.ShowLibrary != nil {
		return l.ShowLibrary(ctx)
	}
	return ShowLibrary(ctx)
}

// searchPath mirrors the Windows DLL lookup over the directories on PATH.
func (l *Locator) searchPath(name string, platform Platform) (string, bool) {
	for _, dir := range strings.Split(l.getenv("PATH"), platform.pathListSeparator()) {
		if dir == "" {
			continue
		}
		p := filepath.Join(dir, name)
		if l.exists(p) {
			return p, true
		}
	}
	return "", false
}

// ErrNoToolchain reports that the gmt executable is not on PATH.
var ErrNoToolchain = errors.New("gmt: toolchain command not found")

// ShowLibrary runs "gmt --show-library" and returns the reported path.
func ShowLibrary(ctx context.Context) (string, error) {
	bin, err := exec.LookPath("gmt")
	if err != nil {
		return "", ErrNoToolchain
	}
	out, err := exec.CommandContext(ctx, bin, "--show-library").Output()
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(out), "\r\n"), nil
}
