package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reoring/jsoning"
)

func newGenerateCmd(a *app) *cobra.Command {
	var (
		opt   jsoning.GenerateOpt
		input string
	)
	cmd := &cobra.Command{
		Use:   "generate TYPE",
		Short: "Generate a document from a JSON field object",
		Long: `Reads a JSON object of host fields from --input (stdin by default) and
prints the document generated for TYPE.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.loadSchema()
			if err != nil {
				return err
			}
			data, err := a.readInput(input)
			if err != nil {
				return err
			}
			v, err := jsoning.JSONDriver().Decode(data)
			if err != nil {
				return fmt.Errorf("decode input: %w", err)
			}
			fields, ok := v.(map[string]any)
			if !ok {
				return fmt.Errorf("input must be a JSON object")
			}
			if opt.Hash {
				doc, err := s.GenerateDocument(args[0], fields, opt)
				if err != nil {
					return err
				}
				return a.writeJSON(doc, opt.Pretty)
			}
			text, err := s.Generate(args[0], fields, opt)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.stdout, text)
			return err
		},
	}
	cmd.Flags().StringVar(&opt.Version, "version", "", "schema version (default \"default\")")
	cmd.Flags().BoolVar(&opt.Pretty, "pretty", false, "indent output")
	cmd.Flags().BoolVar(&opt.Hash, "hash", false, "print the structure as JSON regardless of the schema driver")
	cmd.Flags().StringVarP(&input, "input", "i", "-", "input file, - for stdin")
	return cmd
}
