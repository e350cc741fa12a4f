//go:build !darwin && !freebsd && !linux && !windows

package clib

import "github.com/geobind/gmt-go/internal/dl"

// Bind reports dl.ErrNotSupported on platforms without a purego backend.
func Bind(dl.Library) (Native, error) {
	return nil, dl.ErrNotSupported
}
