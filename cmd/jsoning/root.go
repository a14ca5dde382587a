package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/reoring/jsoning"
	"github.com/reoring/jsoning/internal/schemafile"
)

// app carries global flags and IO for subcommands.
type app struct {
	schemaPath string
	verbose    bool

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}
	root := &cobra.Command{
		Use:   "jsoning",
		Short: "Declarative object-to-document mapping from YAML schema files",
		Long: `jsoning turns plain field maps into versioned JSON (or YAML) documents
according to a schema file, and reconstructs decoded documents back into
canonical form.

Examples:
  jsoning check --schema library.yaml
  echo '{"name":"Dune"}' | jsoning generate book --version v2
  jsoning parse book --input book.json
  jsoning serve --schema library.yaml --watch`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVarP(&a.schemaPath, "schema", "s", "jsoning.yaml", "schema file path")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newCheckCmd(a),
		newGenerateCmd(a),
		newParseCmd(a),
		newServeCmd(a),
	)
	return root
}

func (a *app) logger() zerolog.Logger {
	level := zerolog.InfoLevel
	if a.verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: a.stderr}).Level(level).With().Timestamp().Logger()
}

func (a *app) loadSchema() (*schemafile.Schema, error) {
	return schemafile.Load(a.schemaPath, a.logger())
}

// readInput reads path, or stdin for "" and "-".
func (a *app) readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(a.stdin)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return b, nil
}

func (a *app) writeJSON(v any, pretty bool) error {
	b, err := jsoning.JSONDriver().Encode(v, pretty)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.stdout, string(b))
	return err
}
