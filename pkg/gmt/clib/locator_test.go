package clib_test

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geobind/gmt-go/pkg/gmt/clib"
	"github.com/geobind/gmt-go/pkg/gmt/gmttest"
)

var errNoGMT = errors.New("exec: \"gmt\": executable file not found in $PATH")

type host struct {
	env    map[string]string
	fs     afero.Fs
	show   string
	loader *gmttest.Loader
	shown  int
}

func newHost() *host {
	return &host{env: map[string]string{}, fs: afero.NewMemMapFs(), loader: gmttest.NewLoader()}
}

func (h *host) touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(h.fs, path, []byte("ELF"), 0o755))
}

func (h *host) locator(goos string) *clib.Locator {
	return &clib.Locator{
		GOOS:   goos,
		Getenv: func(k string) string { return h.env[k] },
		Fs:     h.fs,
		ShowLibrary: func(context.Context) (string, error) {
			h.shown++
			if h.show == "" {
				return "", errNoGMT
			}
			return h.show, nil
		},
		Loader: h.loader,
		Bind:   gmttest.BindTo(gmttest.NewLibrary()),
	}
}

func candidates(t *testing.T, loc *clib.Locator) []string {
	t.Helper()
	seq, err := loc.Candidates(context.Background())
	require.NoError(t, err)
	return slices.Collect(seq)
}

func TestCandidatesOverrideComesFirst(t *testing.T) {
	h := newHost()
	h.env[clib.LibraryPathEnv] = "/opt/gmt/lib"
	h.touch(t, "/opt/gmt/lib/libgmt.so")
	h.show = "/usr/lib/libgmt.so"
	h.touch(t, h.show)

	got := candidates(t, h.locator("linux"))
	assert.Equal(t, []string{"/opt/gmt/lib/libgmt.so", "/usr/lib/libgmt.so", "libgmt.so"}, got)
}

func TestCandidatesSkipMissingFiles(t *testing.T) {
	h := newHost()
	h.env[clib.LibraryPathEnv] = "/opt/gmt/lib"
	h.show = "/usr/lib/libgmt.dylib"

	got := candidates(t, h.locator("darwin"))
	assert.Equal(t, []string{"libgmt.dylib"}, got)
	assert.Equal(t, 1, h.shown)
}

func TestCandidatesWindowsSearchesPath(t *testing.T) {
	h := newHost()
	h.env["PATH"] = `C:\Windows;C:\gmt\bin`
	w64 := filepath.Join(`C:\gmt\bin`, "gmt_w64.dll")
	h.touch(t, w64)

	got := candidates(t, h.locator("windows"))
	assert.Equal(t, []string{w64, "gmt.dll", "gmt_w64.dll", "gmt_w32.dll"}, got)
}

func TestCandidatesPathIgnoredOffWindows(t *testing.T) {
	h := newHost()
	h.env["PATH"] = "/usr/local/lib"
	h.touch(t, "/usr/local/lib/libgmt.so")

	assert.Equal(t, []string{"libgmt.so"}, candidates(t, h.locator("linux")))
}

func TestCandidatesAreLazy(t *testing.T) {
	h := newHost()
	h.env[clib.LibraryPathEnv] = "/opt/gmt/lib"
	h.touch(t, "/opt/gmt/lib/libgmt.so")

	seq, err := h.locator("linux").Candidates(context.Background())
	require.NoError(t, err)
	for p := range seq {
		assert.Equal(t, "/opt/gmt/lib/libgmt.so", p)
		break
	}
	assert.Zero(t, h.shown, "toolchain must not be queried before the sequence reaches it")
}

func TestCandidatesUnsupportedPlatformFailsBeforeIO(t *testing.T) {
	for _, goos := range []string{"plan9", "openbsd"} {
		t.Run(goos, func(t *testing.T) {
			loc := &clib.Locator{
				GOOS: goos,
				Getenv: func(string) string {
					t.Fatal("environment read on unsupported platform")
					return ""
				},
			}
			_, err := loc.Candidates(context.Background())
			require.ErrorIs(t, err, clib.ErrUnsupportedPlatform)

			_, err = loc.Locate(context.Background())
			require.ErrorIs(t, err, clib.ErrUnsupportedPlatform)
		})
	}
}

func TestLocateRejectsMissingRequiredFunction(t *testing.T) {
	for _, fn := range clib.RequiredFunctions {
		t.Run(fn, func(t *testing.T) {
			h := newHost()
			h.env[clib.LibraryPathEnv] = "/opt/gmt/lib"
			override := "/opt/gmt/lib/libgmt.so"
			h.touch(t, override)
			h.loader.Add(override, slices.DeleteFunc(slices.Clone(gmttest.AllSymbols), func(s string) bool {
				return s == clib.Prefix+fn
			})...)
			h.loader.Add("libgmt.so")

			handle, err := h.locator("linux").Locate(context.Background())
			require.NoError(t, err)
			defer handle.Close()

			assert.Equal(t, "libgmt.so", handle.Path())
			assert.Equal(t, []string{override, "libgmt.so"}, h.loader.Opened())
			assert.Equal(t, []string{override}, h.loader.Closed(), "rejected candidate must be unloaded")
		})
	}
}

func TestCheckLibrary(t *testing.T) {
	loader := gmttest.NewLoader()
	loader.Add("partial.so", "GMT_Create_Session", "GMT_Get_Enum", "GMT_Call_Module")
	lib, err := loader.Open("partial.so")
	require.NoError(t, err)

	err = clib.CheckLibrary(lib)
	require.ErrorIs(t, err, clib.ErrSymbolMissing)
	var missing *clib.SymbolMissingError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "GMT_Destroy_Session", missing.Symbol)
	assert.Contains(t, err.Error(), "partial.so")
}

func TestLocateReturnsVerifiedHandle(t *testing.T) {
	h := newHost()
	h.show = "/usr/lib/x86_64-linux-gnu/libgmt.so.6"
	h.touch(t, h.show)
	h.loader.Add(h.show)

	handle, err := h.locator("linux").Locate(context.Background())
	require.NoError(t, err)
	defer handle.Close()

	assert.Equal(t, h.show, handle.Path())
	assert.Equal(t, clib.Linux, handle.Platform())
	assert.Equal(t, []string{"GMT_Create_Session", "GMT_Get_Enum", "GMT_Call_Module", "GMT_Destroy_Session"}, handle.Symbols())
	assert.NotNil(t, handle.Native())
}

func TestLocateStaleToolchainPathFallsThrough(t *testing.T) {
	h := newHost()
	h.show = "/usr/lib/libgmt.so"
	h.touch(t, h.show) // exists on disk but fails to load
	h.loader.Add("libgmt.so")

	handle, err := h.locator("linux").Locate(context.Background())
	require.NoError(t, err)
	defer handle.Close()
	assert.Equal(t, "libgmt.so", handle.Path())
}

func TestLocateNotFoundListsAttempts(t *testing.T) {
	h := newHost()
	h.env[clib.LibraryPathEnv] = `C:\gmt`
	h.touch(t, filepath.Join(`C:\gmt`, "gmt.dll"))

	_, err := h.locator("windows").Locate(context.Background())
	require.ErrorIs(t, err, clib.ErrLibraryNotFound)
	require.ErrorIs(t, err, gmttest.ErrCannotOpen)

	var nf *clib.LibraryNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, []string{filepath.Join(`C:\gmt`, "gmt.dll"), "gmt.dll", "gmt_w64.dll", "gmt_w32.dll"}, nf.Attempted)
	assert.Contains(t, err.Error(), "gmt_w32.dll")
}
