package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/geobind/gmt-go/pkg/gmt"
)

func newVersionCommand(a *app) *cobra.Command {
	var withLibrary bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the gmt-go version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "gmt-go %s\n", gmt.WrapperVersion())
			if !withLibrary {
				return nil
			}
			return a.withSession(cmd.Context(), func(s *gmt.Session) error {
				v, err := gmt.LibraryVersion(s)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "GMT %s\n", v)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&withLibrary, "library", false, "also load GMT and print its version")
	return cmd
}
