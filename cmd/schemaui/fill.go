package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-schemaui/pkg/orchestrator"
	"github.com/goliatone/go-schemaui/pkg/render"
	"github.com/goliatone/go-schemaui/pkg/renderers/tui"
	"github.com/goliatone/go-schemaui/pkg/validation"
)

type fillFlags struct {
	dataFile    string
	output      string
	format      string
	maxAttempts int
}

func newFillCmd(a *app) *cobra.Command {
	f := &fillFlags{}
	cmd := &cobra.Command{
		Use:   "fill <componentId>",
		Short: "Fill a form interactively and print the collected values",
		Long: `Fill prompts for every visible field of the first form the component
renders. Fields appear and disappear as their visibleIf conditions change.
Invalid values are reported and prompted again.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFill(cmd, a, f, args[0])
		},
	}
	cmd.Flags().StringVarP(&f.dataFile, "data", "d", "", "Initial data file (json, jsonc or yaml)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Output file (stdout if empty)")
	cmd.Flags().StringVarP(&f.format, "format", "f", string(tui.OutputFormatJSON), "Output format (json/form/pretty)")
	cmd.Flags().IntVar(&f.maxAttempts, "max-attempts", 3, "Submit attempts before giving up")
	return cmd
}

func runFill(cmd *cobra.Command, a *app, f *fillFlags, componentID string) error {
	format := tui.OutputFormat(f.format)
	switch format {
	case tui.OutputFormatJSON, tui.OutputFormatFormURLEncoded, tui.OutputFormatPrettyText:
	default:
		return fmt.Errorf("unknown format %q (want json, form or pretty)", f.format)
	}
	ctx := cmd.Context()

	data, err := readData(f.dataFile)
	if err != nil {
		return err
	}
	src, err := a.openSource(ctx)
	if err != nil {
		return err
	}
	defer src.Close()

	driver := a.driver
	if driver == nil {
		driver = tui.NewSurveyDriver(a.stderr)
	}
	orch, err := a.orchestrator(src, orchestrator.WithConfirmer(tui.NewConfirmer(driver)))
	if err != nil {
		return err
	}
	validator := validation.New(validation.WithRuleLookup(src.rules), validation.WithLogger(a.logger))
	if err := orch.Registry().Register(tui.New(
		tui.WithPromptDriver(driver),
		tui.WithOutputFormat(format),
		tui.WithMaxAttempts(f.maxAttempts),
		tui.WithValidator(validator),
		tui.WithLogger(a.logger),
	)); err != nil {
		return err
	}

	session := orch.Open(ctx, orchestrator.Request{ComponentID: componentID, Data: data})
	if err := session.Wait(ctx); err != nil {
		return err
	}
	if status := session.Status(); status != orchestrator.StatusReady {
		return fmt.Errorf("component %s: %s", componentID, status)
	}

	out, err := session.Render(ctx, tui.Name, render.RenderOptions{})
	if err != nil {
		return err
	}
	return a.writeOutput(f.output, out)
}
