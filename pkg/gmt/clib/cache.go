package clib

import (
	"context"
	"sync"
)

// Cache holds one lazily resolved LibraryHandle. Failed lookups are not
// cached, so a later Get retries from scratch.
type Cache struct {
	// Locator used on the next resolution. Nil means the zero Locator.
	Locator *Locator

	mu     sync.Mutex
	handle *LibraryHandle
}

// Get returns the cached handle, resolving it on first use.
func (c *Cache) Get(ctx context.Context) (*LibraryHandle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.handle != nil {
		return c.handle, nil
	}
	loc := c.Locator
	if loc == nil {
		loc = &Locator{}
	}
	h, err := loc.Locate(ctx)
	if err != nil {
		return nil, err
	}
	c.handle = h
	return h, nil
}

// Reset closes and forgets the cached handle. Only call it when no session
// created from the handle is still open.
func (c *Cache) Reset() error {
	c.mu.Lock()
	h := c.handle
	c.handle = nil
	c.mu.Unlock()
	if h == nil {
		return nil
	}
	return h.Close()
}

// Default is the process-wide cache used by Load.
var Default = &Cache{}

// Load returns the process-wide GMT library handle.
func Load(ctx context.Context) (*LibraryHandle, error) {
	return Default.Get(ctx)
}

// Reset forgets the process-wide handle.
func Reset() error {
	return Default.Reset()
}
