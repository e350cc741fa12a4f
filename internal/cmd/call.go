package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/geobind/gmt-go/pkg/gmt"
)

func newCallCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "call <module> [args...]",
		Short: "Run one GMT module with a literal argument string",
		Example: `  gmt-go call info points.xyz -C
  gmt-go call basemap -R0/10/0/10 -JX10c -Baf -png map`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(cmd.Context(), func(s *gmt.Session) error {
				return s.CallModule(cmd.Context(), args[0], strings.Join(args[1:], " "))
			})
		},
	}
	// Everything after the module name belongs to GMT.
	cmd.Flags().SetInterspersed(false)
	return cmd
}
