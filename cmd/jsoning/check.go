package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate a schema file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.loadSchema()
			if err != nil {
				return fmt.Errorf("schema invalid: %w", err)
			}
			fmt.Fprintf(a.stdout, "schema valid: %d types\n", len(s.Types()))
			for _, name := range s.Types() {
				vs, err := s.Versions(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "  %s (%s)\n", name, strings.Join(vs, ", "))
			}
			return nil
		},
	}
}
