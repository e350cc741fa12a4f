package gmttest

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"

	"github.com/spf13/afero"

	"github.com/geobind/gmt-go/internal/dl"
	"github.com/geobind/gmt-go/pkg/gmt/clib"
)

// AllSymbols lists every entry point a complete libgmt exports for the
// binding.
var AllSymbols = []string{
	"GMT_Create_Session", "GMT_Destroy_Session", "GMT_Get_Enum", "GMT_Get_Default",
	"GMT_Call_Module", "GMT_Create_Data", "GMT_Destroy_Data", "GMT_Put_Matrix", "GMT_Put_Vector",
	"GMT_Put_Strings", "GMT_Open_VirtualFile", "GMT_Close_VirtualFile",
	"GMT_Read_VirtualFile", "GMT_Write_Data",
}

// ErrCannotOpen is returned by Loader.Open for unknown paths.
var ErrCannotOpen = errors.New("gmttest: cannot open shared object file")

// Loader is a dl.Loader over a fixed set of fake libraries.
type Loader struct {
	mu     sync.Mutex
	libs   map[string][]string
	opened []string
	closed []string
}

// NewLoader returns an empty Loader.
func NewLoader() *Loader {
	return &Loader{libs: make(map[string][]string)}
}

// Add registers a library at path exporting symbols. With no symbols the
// library exports AllSymbols.
func (l *Loader) Add(path string, symbols ...string) {
	if len(symbols) == 0 {
		symbols = AllSymbols
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.libs[path] = slices.Clone(symbols)
}

// Opened returns every path passed to Open, in order.
func (l *Loader) Opened() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.opened)
}

// Closed returns every library path closed so far, in order.
func (l *Loader) Closed() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.closed)
}

func (l *Loader) Open(path string) (dl.Library, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.opened = append(l.opened, path)
	symbols, ok := l.libs[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrCannotOpen, path)
	}
	return &fakeLib{loader: l, path: path, symbols: symbols}, nil
}

type fakeLib struct {
	loader  *Loader
	path    string
	symbols []string
}

func (f *fakeLib) Path() string { return f.path }

func (f *fakeLib) Lookup(name string) (uintptr, error) {
	i := slices.Index(f.symbols, name)
	if i < 0 {
		return 0, fmt.Errorf("%w: %s", dl.ErrSymbolNotFound, name)
	}
	return uintptr(0x7f0000 + i*0x10), nil
}

func (f *fakeLib) Close() error {
	f.loader.mu.Lock()
	defer f.loader.mu.Unlock()
	f.loader.closed = append(f.loader.closed, f.path)
	return nil
}

// BindTo returns a clib Locator Bind function that ignores the loaded
// library and hands out native.
func BindTo(native clib.Native) func(dl.Library) (clib.Native, error) {
	return func(dl.Library) (clib.Native, error) { return native, nil }
}

// Locator returns a Locator for a Linux host whose only loadable library is
// libgmt.so, bound to native. Nothing outside the fakes is touched.
func Locator(native clib.Native) *clib.Locator {
	loader := NewLoader()
	loader.Add("libgmt.so")
	return &clib.Locator{
		GOOS:   "linux",
		Getenv: func(string) string { return "" },
		Fs:     afero.NewMemMapFs(),
		ShowLibrary: func(context.Context) (string, error) {
			return "", clib.ErrNoToolchain
		},
		Loader: loader,
		Bind:   BindTo(native),
	}
}

// Handle resolves a LibraryHandle bound to native and closes it when the test
// ends.
func Handle(t testing.TB, native clib.Native) *clib.LibraryHandle {
	t.Helper()
	h, err := Locator(native).Locate(context.Background())
	if err != nil {
		t.Fatalf("gmttest: locate fake library: %v", err)
	}
	t.Cleanup(func() { _ = h.Close() })
	return h
}
