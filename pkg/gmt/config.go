package gmt

import (
	"os"

	"github.com/spf13/afero"

	"github.com/geobind/gmt-go/pkg/gmt/clib"
	"github.com/geobind/gmt-go/pkg/gmt/logging"
)

// DefaultSessionName is the tag GMT uses in its messages for this binding.
const DefaultSessionName = "gmt-go"

// Config collects the settings a Session is opened with. Build it through
// Options; the zero value loads the library through clib.Load and uses the OS
// filesystem.
type Config struct {
	// Library is the GMT library to open the session on. Nil resolves the
	// process-wide handle.
	Library *clib.LibraryHandle

	// Name tags the session in GMT's own messages.
	Name string

	// Fs holds temporary files: tables read back from output virtual files
	// and anything module wrappers need on disk. GMT itself always uses the
	// real filesystem, so only tests should replace it.
	Fs afero.Fs

	// TempDir is where temporary files are created. Empty means the OS
	// default.
	TempDir string

	Logger logging.Logger
}

// Option configures Open.
type Option func(*Config)

// WithLibrary opens the session on h instead of the process-wide handle.
func WithLibrary(h *clib.LibraryHandle) Option {
	return func(c *Config) { c.Library = h }
}

// WithName sets the session tag.
func WithName(name string) Option {
	return func(c *Config) { c.Name = name }
}

// WithFs replaces the filesystem used for temporary files.
func WithFs(fs afero.Fs) Option {
	return func(c *Config) { c.Fs = fs }
}

// WithTempDir sets the directory for temporary files.
func WithTempDir(dir string) Option {
	return func(c *Config) { c.TempDir = dir }
}

// WithLogger routes session logging to l.
func WithLogger(l logging.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

func newConfig(opts []Option) Config {
	cfg := Config{Name: DefaultSessionName}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Fs == nil {
		cfg.Fs = afero.NewOsFs()
	}
	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}
	cfg.Logger = logging.OrDefault(cfg.Logger)
	return cfg
}
