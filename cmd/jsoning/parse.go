package main

import (
	"github.com/spf13/cobra"
)

func newParseCmd(a *app) *cobra.Command {
	var (
		version string
		input   string
		pretty  bool
	)
	cmd := &cobra.Command{
		Use:   "parse TYPE",
		Short: "Reconstruct a document into its canonical, case-folded form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.loadSchema()
			if err != nil {
				return err
			}
			data, err := a.readInput(input)
			if err != nil {
				return err
			}
			doc, err := s.Parse(args[0], data, version)
			if err != nil {
				return err
			}
			return a.writeJSON(doc, pretty)
		},
	}
	cmd.Flags().StringVar(&version, "version", "", "schema version (default \"default\")")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent output")
	cmd.Flags().StringVarP(&input, "input", "i", "-", "input file, - for stdin")
	return cmd
}
