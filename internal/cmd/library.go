package cmd

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/geobind/gmt-go/pkg/gmt"
)

func newLibraryCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "library",
		Short: "Locate the GMT library and describe the installation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			h, err := a.library(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "path\t%s\n", h.Path())
			fmt.Fprintf(out, "platform\t%s\n", h.Platform())
			fmt.Fprintf(out, "symbols\t%s\n", strings.Join(h.Symbols(), " "))

			return a.withSession(ctx, func(s *gmt.Session) error {
				info, err := s.Info()
				if err != nil {
					return err
				}
				for _, key := range slices.Sorted(maps.Keys(info)) {
					fmt.Fprintf(out, "%s\t%s\n", key, info[key])
				}
				return nil
			})
		},
	}
}
