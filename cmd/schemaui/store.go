package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-schemaui/pkg/store"
)

func newStoreCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage schemas in the SQLite store",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "put <file>...",
			Short: "Store every component and named rule in schema documents",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runStorePut(cmd, a, args)
			},
		},
		&cobra.Command{
			Use:   "get <componentId>",
			Short: "Print the latest version of a schema as JSON",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runStoreGet(cmd, a, args[0])
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List stored schemas",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runStoreList(cmd, a)
			},
		},
		&cobra.Command{
			Use:   "delete <componentId>",
			Short: "Delete every version of a schema",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runStoreDelete(cmd, a, args[0])
			},
		},
	)
	return cmd
}

func runStorePut(cmd *cobra.Command, a *app, files []string) error {
	ctx := cmd.Context()
	db, err := a.openWriter(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	var components, rules int
	for _, file := range files {
		raw, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read %s: %w", file, err)
		}
		doc, err := store.ParseDocument(raw, file)
		if err != nil {
			return err
		}
		for key, rule := range doc.ValidationRules {
			if err := db.PutRule(ctx, key, rule); err != nil {
				return err
			}
			rules++
		}
		for _, component := range doc.Components {
			if err := db.PutSchema(ctx, component); err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			components++
		}
	}
	fmt.Fprintf(a.stderr, "stored %d schema(s) and %d rule(s)\n", components, rules)
	return nil
}

func runStoreGet(cmd *cobra.Command, a *app, componentID string) error {
	ctx := cmd.Context()
	db, err := a.openWriter(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	component, err := db.FetchSchema(ctx, componentID)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(component, "", "  ")
	if err != nil {
		return err
	}
	_, err = a.stdout.Write(append(out, '\n'))
	return err
}

func runStoreList(cmd *cobra.Command, a *app) error {
	ctx := cmd.Context()
	db, err := a.openWriter(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	summaries, err := db.ListSchemas(ctx)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{s.ComponentID, string(s.ComponentType), s.Name, s.Version})
	}
	_, err = io.WriteString(a.stdout, table([]string{"COMPONENT", "TYPE", "NAME", "VERSION"}, rows, "no schemas stored"))
	return err
}

func runStoreDelete(cmd *cobra.Command, a *app, componentID string) error {
	ctx := cmd.Context()
	db, err := a.openWriter(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.DeleteSchema(ctx, componentID); err != nil {
		return err
	}
	fmt.Fprintf(a.stderr, "deleted %s\n", componentID)
	return nil
}
