package clib_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geobind/gmt-go/pkg/gmt/clib"
	"github.com/geobind/gmt-go/pkg/gmt/gmttest"
)

func TestCacheResolvesOnce(t *testing.T) {
	h := newHost()
	h.loader.Add("libgmt.so")
	cache := &clib.Cache{Locator: h.locator("linux")}
	t.Cleanup(func() { _ = cache.Reset() })

	first, err := cache.Get(context.Background())
	require.NoError(t, err)
	second, err := cache.Get(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, []string{"libgmt.so"}, h.loader.Opened())
}

func TestCacheResetForcesReResolution(t *testing.T) {
	h := newHost()
	h.loader.Add("libgmt.so")
	cache := &clib.Cache{Locator: h.locator("linux")}

	first, err := cache.Get(context.Background())
	require.NoError(t, err)
	require.NoError(t, cache.Reset())
	assert.Equal(t, []string{"libgmt.so"}, h.loader.Closed())

	fake := "/tmp/fake/libgmt.so"
	h.env[clib.LibraryPathEnv] = "/tmp/fake"
	h.touch(t, fake)
	h.loader.Add(fake)

	second, err := cache.Get(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Reset() })

	assert.NotSame(t, first, second)
	assert.Equal(t, fake, second.Path())
}

func TestCacheDoesNotKeepErrors(t *testing.T) {
	h := newHost()
	cache := &clib.Cache{Locator: h.locator("linux")}

	_, err := cache.Get(context.Background())
	require.ErrorIs(t, err, clib.ErrLibraryNotFound)

	h.loader.Add("libgmt.so")
	handle, err := cache.Get(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Reset() })
	assert.Equal(t, "libgmt.so", handle.Path())
}

func TestResetWithoutHandle(t *testing.T) {
	assert.NoError(t, (&clib.Cache{}).Reset())
}

func TestHandleCloseIsIdempotent(t *testing.T) {
	handle, err := gmttest.Locator(gmttest.NewLibrary()).Locate(context.Background())
	require.NoError(t, err)
	require.NoError(t, handle.Close())
	require.NoError(t, handle.Close())
}
