//go:build darwin || freebsd || linux

package dl

import (
	"fmt"
	"sync"

	"github.com/ebitengine/purego"
)

type systemLoader struct{}

func (systemLoader) Open(path string) (Library, error) {
	h, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, fmt.Errorf("dlopen %s: %w", path, err)
	}
	return &library{path: path, handle: h}, nil
}

type library struct {
	path string

	mu     sync.Mutex
	handle uintptr
}

func (l *library) Path() string { return l.path }

func (l *library) Lookup(name string) (uintptr, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.handle == 0 {
		return 0, ErrClosed
	}
	addr, err := purego.Dlsym(l.handle, name)
	if err != nil {
		return 0, fmt.Errorf("%w: %s in %s: %v", ErrSymbolNotFound, name, l.path, err)
	}
	return addr, nil
}

func (l *library) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.handle == 0 {
		return nil
	}
	h := l.handle
	l.handle = 0
	if err := purego.Dlclose(h); err != nil {
		return fmt.Errorf("dlclose %s: %w", l.path, err)
	}
	return nil
}
