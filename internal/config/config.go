package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/viper"

	"github.com/geobind/gmt-go/pkg/gmt/clib"
	"github.com/geobind/gmt-go/pkg/gmt/logging"
	"github.com/geobind/gmt-go/pkg/gmt/x2sys"
)

// EnvPrefix is prepended to every environment override, e.g.
// GMTGO_LOG_LEVEL for log.level.
const EnvPrefix = "GMTGO"

// Config is the gmt-go command configuration.
type Config struct {
	// LibraryPath is a directory holding libgmt. It is exported as
	// GMT_LIBRARY_PATH so the locator tries it first.
	LibraryPath string `mapstructure:"library_path"`
	// X2SYSHome is exported as X2SYS_HOME for the x2sys commands.
	X2SYSHome string    `mapstructure:"x2sys_home"`
	Log       LogConfig `mapstructure:"log"`
}

// LogConfig controls diagnostic output on stderr.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level"`
	// Format is text or json.
	Format string `mapstructure:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "warn", Format: "text"},
	}
}

// SetDefaults registers the defaults with v.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("library_path", d.LibraryPath)
	v.SetDefault("x2sys_home", d.X2SYSHome)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// Init prepares v: defaults, the config file and GMTGO_* environment
// overrides. An explicit cfgFile must exist; the default locations may not.
func Init(v *viper.Viper, cfgFile string) error {
	SetDefaults(v)
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(Dir())
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("config: read %s: %w", v.ConfigFileUsed(), err)
		}
	}
	return nil
}

// Load unmarshals and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var (
	validLevels  = []string{"debug", "info", "warn", "error"}
	validFormats = []string{"text", "json"}
)

// ErrInvalid reports a configuration value outside its allowed set.
var ErrInvalid = errors.New("config: invalid value")

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	var errs []error
	if !slices.Contains(validLevels, strings.ToLower(c.Log.Level)) {
		errs = append(errs, fmt.Errorf("%w: log.level %q (want one of %s)", ErrInvalid, c.Log.Level, strings.Join(validLevels, ", ")))
	}
	if !slices.Contains(validFormats, strings.ToLower(c.Log.Format)) {
		errs = append(errs, fmt.Errorf("%w: log.format %q (want one of %s)", ErrInvalid, c.Log.Format, strings.Join(validFormats, ", ")))
	}
	return errors.Join(errs...)
}

// Export publishes the settings GMT and the locator read from the
// environment.
func (c *Config) Export(setenv func(key, value string) error) error {
	if c.LibraryPath != "" {
		if err := setenv(clib.LibraryPathEnv, c.LibraryPath); err != nil {
			return err
		}
	}
	if c.X2SYSHome != "" {
		if err := setenv(x2sys.HomeEnv, c.X2SYSHome); err != nil {
			return err
		}
	}
	return nil
}

// Logger builds the logger described by c, writing to w.
func (c *Config) Logger(w io.Writer) logging.Logger {
	var level slog.Level
	// Validate has already rejected anything UnmarshalText would.
	_ = level.UnmarshalText([]byte(c.Log.Level))
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if strings.EqualFold(c.Log.Format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return logging.New(slog.New(h))
}

// Dir returns the directory the default config file lives in.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "gmt-go")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gmt-go"
	}
	return filepath.Join(home, ".config", "gmt-go")
}
