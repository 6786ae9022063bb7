package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd(a *app) *cobra.Command {

	root := &cobra.Command{
		Use:   "schemaui",
		Short: "Render and manage schema driven UI components",
		Long: `schemaui renders component schemas (forms, tables, cards, tabs and
grid layouts) as HTML or plain text, fills forms interactively in the
terminal and serves a preview server.

Schemas come from a directory of .json, .jsonc and .yaml files (--schemas)
or from a SQLite store (--db). Settings may also be given through a .env
file or SCHEMAUI_* environment variables.

Examples:
  schemaui render task_view --schemas ./schemas --data task.json
  schemaui render task_view --format text --db schemas.db
  schemaui fill review_form --schemas ./schemas
  schemaui serve --schemas ./schemas --watch
  schemaui import-openapi api.yaml createPet --out forms/pet.yaml
  schemaui store put forms/*.yaml --db schemas.db`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			a.close()
		},
	}
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.envFile, "env-file", "", "Load environment variables from file (default .env when present)")
	flags.StringVar(&a.schemasDir, "schemas", "", "Directory of schema documents")
	flags.StringVar(&a.dbPath, "db", "", "SQLite schema store path")
	flags.StringVar(&a.logFile, "log-file", "", "Write JSON logs to a rotated file")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level (debug/info/warn/error)")

	root.AddCommand(
		newRenderCmd(a),
		newFillCmd(a),
		newServeCmd(a),
		newImportCmd(a),
		newStoreCmd(a),
	)
	return root
}
