package clib

import (
	"fmt"
	"strings"
)

// Platform groups operating systems by how they name and find libgmt.
type Platform int

const (
	Linux Platform = iota + 1
	MacOS
	Windows
	BSD
)

func (p Platform) String() string {
	switch p {
	case Linux:
		return "linux"
	case MacOS:
		return "macos"
	case Windows:
		return "windows"
	case BSD:
		return "bsd"
	default:
		return "unknown"
	}
}

// ParsePlatform maps a runtime.GOOS value to its Platform. Only systems with
// a dynamic loader backend are accepted; FreeBSD is the one BSD among them.
func ParsePlatform(goos string) (Platform, error) {
	switch {
	case strings.HasPrefix(goos, "linux"):
		return Linux, nil
	case goos == "darwin":
		return MacOS, nil
	case goos == "windows":
		return Windows, nil
	case strings.HasPrefix(goos, "freebsd"):
		return BSD, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedPlatform, goos)
}

// ClibNames returns the file names libgmt is distributed under on goos.
func ClibNames(goos string) ([]string, error) {
	p, err := ParsePlatform(goos)
	if err != nil {
		return nil, err
	}
	return p.libNames(), nil
}

func (p Platform) libNames() []string {
	switch p {
	case MacOS:
		return []string{"libgmt.dylib"}
	case Windows:
		return []string{"gmt.dll", "gmt_w64.dll", "gmt_w32.dll"}
	default:
		return []string{"libgmt.so"}
	}
}

func (p Platform) pathListSeparator() string {
	if p == Windows {
		return ";"
	}
	return ":"
}
