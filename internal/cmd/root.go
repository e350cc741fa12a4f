package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/geobind/gmt-go/internal/config"
	"github.com/geobind/gmt-go/pkg/gmt"
	"github.com/geobind/gmt-go/pkg/gmt/clib"
	"github.com/geobind/gmt-go/pkg/gmt/logging"
)

// app carries what every subcommand needs once configuration is loaded.
type app struct {
	v   *viper.Viper
	cfg *config.Config
	log logging.Logger

	// library resolves the GMT shared library.
	library func(context.Context) (*clib.LibraryHandle, error)
	// setenv publishes exported configuration.
	setenv func(key, value string) error
	// sessionOpts are appended to every Open.
	sessionOpts []gmt.Option
}

func newApp() *app {
	return &app{
		v:       viper.New(),
		library: clib.Load,
		setenv:  os.Setenv,
	}
}

// NewRootCommand returns the gmt-go command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(newApp())
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "gmt-go",
		Short: "Run GMT modules through the gmt-go binding",
		Long: `gmt-go loads the GMT shared library, opens an API session and runs
modules in it. It is a thin shell over the gmt-go packages, useful for
checking that the library can be found and that modules run.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringP("config", "c", "", "config file (default is $XDG_CONFIG_HOME/gmt-go/config.yaml)")
	flags.String("library-path", "", "directory containing libgmt (exported as GMT_LIBRARY_PATH)")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.String("log-format", "", "log format: text or json")
	_ = a.v.BindPFlag("config", flags.Lookup("config"))
	_ = a.v.BindPFlag("library_path", flags.Lookup("library-path"))
	_ = a.v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("log.format", flags.Lookup("log-format"))

	root.AddCommand(
		newVersionCommand(a),
		newLibraryCommand(a),
		newCallCommand(a),
		newX2sysCommand(a),
	)
	return root
}

func (a *app) load(cmd *cobra.Command) error {
	if err := config.Init(a.v, a.v.GetString("config")); err != nil {
		return err
	}
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	if err := cfg.Export(a.setenv); err != nil {
		return fmt.Errorf("export configuration: %w", err)
	}
	a.cfg = cfg
	a.log = cfg.Logger(cmd.ErrOrStderr())
	return nil
}

// session opens a GMT session for one command. The caller closes it.
func (a *app) session(ctx context.Context) (*gmt.Session, error) {
	h, err := a.library(ctx)
	if err != nil {
		return nil, err
	}
	opts := append([]gmt.Option{gmt.WithLibrary(h), gmt.WithLogger(a.log)}, a.sessionOpts...)
	return gmt.Open(ctx, opts...)
}

// withSession runs fn in a fresh session and reports close errors.
func (a *app) withSession(ctx context.Context, fn func(*gmt.Session) error) (err error) {
	s, err := a.session(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(ctx); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(s)
}

// Execute runs the gmt-go command line.
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}
