package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-schemaui/pkg/openapi"
	"github.com/goliatone/go-schemaui/pkg/schema"
	"github.com/goliatone/go-schemaui/pkg/store"
)

type importFlags struct {
	output       string
	all          bool
	list         bool
	put          bool
	version      string
	externalRefs bool
	skipValidate bool
}

func newImportCmd(a *app) *cobra.Command {
	f := &importFlags{}
	cmd := &cobra.Command{
		Use:   "import-openapi <spec-file> [operationId]",
		Short: "Build form schemas from OpenAPI request bodies",
		Long: `import-openapi converts the request body of an OpenAPI operation into a
form component schema. Use --all to convert every operation with a request
body, or --list to see which operations can be imported. Pass "-" to read the
document from stdin.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, a, f, args)
		},
	}
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Output file, .yaml/.yml for YAML (stdout JSON if empty)")
	cmd.Flags().BoolVar(&f.all, "all", false, "Import every operation with a request body")
	cmd.Flags().BoolVar(&f.list, "list", false, "List importable operations")
	cmd.Flags().BoolVar(&f.put, "put", false, "Store the imported schemas in the --db store")
	cmd.Flags().StringVar(&f.version, "schema-version", "", "Version stamped on the imported schemas")
	cmd.Flags().BoolVar(&f.externalRefs, "external-refs", false, "Allow $ref to other files and URLs")
	cmd.Flags().BoolVar(&f.skipValidate, "no-validate", false, "Skip OpenAPI document validation")
	return cmd
}

func runImport(cmd *cobra.Command, a *app, f *importFlags, args []string) error {
	ctx := cmd.Context()
	raw, err := readSpec(a.stdin, args[0])
	if err != nil {
		return err
	}

	importer := openapi.New(
		openapi.WithExternalRefs(f.externalRefs),
		openapi.WithValidation(!f.skipValidate),
		openapi.WithVersion(f.version),
		openapi.WithLogger(a.logger),
	)
	doc, err := importer.Load(ctx, raw)
	if err != nil {
		return err
	}

	if f.list {
		rows := make([][]string, 0)
		for _, op := range importer.Operations(doc) {
			rows = append(rows, []string{op.ID, op.Method, op.Path, op.Summary})
		}
		_, err := io.WriteString(a.stdout, table([]string{"OPERATION", "METHOD", "PATH", "SUMMARY"}, rows, "no importable operations"))
		return err
	}

	var components []schema.ComponentSchema
	switch {
	case f.all:
		components = importer.ImportAll(doc)
	case len(args) == 2:
		component, err := importer.Import(doc, args[1])
		if err != nil {
			return err
		}
		components = append(components, component)
	default:
		return fmt.Errorf("name an operation id, or pass --all or --list")
	}

	if f.put {
		writer, err := a.openWriter(ctx)
		if err != nil {
			return err
		}
		defer writer.Close()
		for _, component := range components {
			if err := writer.PutSchema(ctx, component); err != nil {
				return err
			}
		}
		fmt.Fprintf(a.stderr, "stored %d schema(s)\n", len(components))
		return nil
	}

	out, err := encodeDocument(store.Document{Components: components}, f.output)
	if err != nil {
		return err
	}
	return a.writeOutput(f.output, out)
}

func readSpec(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return raw, nil
}

// encodeDocument picks YAML for .yaml and .yml targets and indented JSON
// otherwise.
func encodeDocument(doc store.Document, target string) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(target)) {
	case ".yaml", ".yml":
		return yaml.Marshal(doc)
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}
