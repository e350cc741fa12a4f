//go:build windows

package dl

import (
	"fmt"
	"sync"

	"golang.org/x/sys/windows"
)

type systemLoader struct{}

func (systemLoader) Open(path string) (Library, error) {
	d, err := windows.LoadDLL(path)
	if err != nil {
		return nil, fmt.Errorf("LoadLibrary %s: %w", path, err)
	}
	return &library{path: path, dll: d}, nil
}

type library struct {
	path string

	mu  sync.Mutex
	dll *windows.DLL
}

func (l *library) Path() string { return l.path }

func (l *library) Lookup(name string) (uintptr, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.dll == nil {
		return 0, ErrClosed
	}
	proc, err := l.dll.FindProc(name)
	if err != nil {
		return 0, fmt.Errorf("%w: %s in %s: %v", ErrSymbolNotFound, name, l.path, err)
	}
	return proc.Addr(), nil
}

func (l *library) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.dll == nil {
		return nil
	}
	d := l.dll
	l.dll = nil
	return d.Release()
}
