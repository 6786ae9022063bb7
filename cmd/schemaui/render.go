package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-schemaui/pkg/orchestrator"
	"github.com/goliatone/go-schemaui/pkg/render"
	htmlrenderer "github.com/goliatone/go-schemaui/pkg/renderers/html"
	textrenderer "github.com/goliatone/go-schemaui/pkg/renderers/text"
)

type renderFlags struct {
	format     string
	dataFile   string
	uiState    string
	output     string
	standalone bool
	theme      string
	variant    string
	tabs       []string
}

func newRenderCmd(a *app) *cobra.Command {
	f := &renderFlags{}
	cmd := &cobra.Command{
		Use:   "render <componentId>",
		Short: "Render a component as HTML or text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, a, f, args[0])
		},
	}
	cmd.Flags().StringVarP(&f.format, "format", "f", htmlrenderer.Name, "Output format (html/text)")
	cmd.Flags().StringVarP(&f.dataFile, "data", "d", "", "Data context file (json, jsonc or yaml)")
	cmd.Flags().StringVar(&f.uiState, "ui-state", "", "Initial UI state file (json, jsonc or yaml)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "Output file (stdout if empty)")
	cmd.Flags().BoolVar(&f.standalone, "standalone", false, "Wrap HTML output in a complete page")
	cmd.Flags().StringVar(&f.theme, "theme", "", "Theme name")
	cmd.Flags().StringVar(&f.variant, "variant", "", "Theme variant")
	cmd.Flags().StringArrayVar(&f.tabs, "tab", nil, "Select a tab as componentId:tabKey, can be repeated")
	return cmd
}

func runRender(cmd *cobra.Command, a *app, f *renderFlags, componentID string) error {
	if f.format != htmlrenderer.Name && f.format != textrenderer.Name {
		return fmt.Errorf("unknown format %q (want html or text)", f.format)
	}
	ctx := cmd.Context()

	data, err := readData(f.dataFile)
	if err != nil {
		return err
	}
	uiState, err := readData(f.uiState)
	if err != nil {
		return err
	}

	src, err := a.openSource(ctx)
	if err != nil {
		return err
	}
	defer src.Close()

	orch, err := a.orchestrator(src)
	if err != nil {
		return err
	}
	session := orch.Open(ctx, orchestrator.Request{
		ComponentID:    componentID,
		Data:           data,
		InitialUIState: uiState,
	})
	if err := session.Wait(ctx); err != nil {
		return err
	}
	for _, tab := range f.tabs {
		id, key, ok := cutTab(tab)
		if !ok {
			return fmt.Errorf("invalid --tab %q (want componentId:tabKey)", tab)
		}
		session.SelectTab(id, key)
	}

	out, err := session.Render(ctx, f.format, render.RenderOptions{
		Theme:      f.theme,
		Variant:    f.variant,
		Standalone: f.standalone,
		Title:      componentID,
	})
	if err != nil {
		return err
	}
	if err := a.writeOutput(f.output, out); err != nil {
		return err
	}
	if status := session.Status(); status != orchestrator.StatusReady {
		return fmt.Errorf("component %s: %s", componentID, status)
	}
	return nil
}

func cutTab(raw string) (string, string, bool) {
	id, key, ok := strings.Cut(raw, ":")
	if !ok || id == "" || key == "" {
		return "", "", false
	}
	return id, key, true
}
