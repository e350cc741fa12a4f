package cmd

import (
	"github.com/spf13/cobra"

	"github.com/geobind/gmt-go/pkg/gmt"
	"github.com/geobind/gmt-go/pkg/gmt/table"
	"github.com/geobind/gmt-go/pkg/gmt/x2sys"
)

func newX2sysCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "x2sys",
		Short: "Track crossover analysis with the x2sys supplement",
	}
	cmd.PersistentFlags().String("x2sys-home", "", "x2sys settings directory (exported as X2SYS_HOME)")
	_ = a.v.BindPFlag("x2sys_home", cmd.PersistentFlags().Lookup("x2sys-home"))

	cmd.AddCommand(newX2sysInitCommand(a), newX2sysCrossCommand(a))
	return cmd
}

func newX2sysInitCommand(a *app) *cobra.Command {
	var set map[string]string
	cmd := &cobra.Command{
		Use:     "init <tag>",
		Short:   "Create an x2sys tag database",
		Example: `  gmt-go x2sys init MYTAG --set fmtfile=xyz,discontinuity=g,spacing=5m --set force=true`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd.Context(), func(s *gmt.Session) error {
				return x2sys.Init(cmd.Context(), s, args[0], params(set))
			})
		},
	}
	cmd.Flags().StringToStringVar(&set, "set", nil, "x2sys_init parameters as name=value")
	return cmd
}

func newX2sysCrossCommand(a *app) *cobra.Command {
	var (
		set     map[string]string
		tag     string
		outfile string
	)
	cmd := &cobra.Command{
		Use:   "cross <track>...",
		Short: "Find crossovers between track files",
		Long: `Find crossovers between track files. Without --outfile the crossover
table is written to stdout as tab-separated text.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := params(set)
			if tag != "" {
				p["tag"] = tag
			}
			tracks := make([]any, len(args))
			for i, arg := range args {
				tracks[i] = arg
			}
			return a.withSession(cmd.Context(), func(s *gmt.Session) error {
				t, err := x2sys.Cross(cmd.Context(), s, tracks, outfile, p)
				if err != nil || t == nil {
					return err
				}
				return table.Write(cmd.OutOrStdout(), t)
			})
		},
	}
	cmd.Flags().StringToStringVar(&set, "set", nil, "x2sys_cross parameters as name=value")
	cmd.Flags().StringVarP(&tag, "tag", "T", "", "x2sys tag of the tracks")
	cmd.Flags().StringVarP(&outfile, "outfile", "o", "", "write crossovers to this file instead of stdout")
	return cmd
}

// params converts --set values. "true" and "false" become booleans so they
// toggle bare flags.
func params(set map[string]string) gmt.Params {
	p := make(gmt.Params, len(set))
	for k, v := range set {
		switch v {
		case "true", "false":
			p[k] = v == "true"
		default:
			p[k] = v
		}
	}
	return p
}
