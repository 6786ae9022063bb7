package display

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"

	"github.com/goliatone/go-schemaui/pkg/condition"
	"github.com/goliatone/go-schemaui/pkg/schema"
	"github.com/goliatone/go-schemaui/pkg/view"
)

// FullSpan is the width of an area without a usable span token.
const FullSpan = 12

var spanPattern = regexp.MustCompile(`span\s+(\d+)\s*$`)

// ParseSpan extracts N from a "span N" token. Tokens that do not match, or
// whose N falls outside 1..12, yield FullSpan.
func ParseSpan(token string) int {
	match := spanPattern.FindStringSubmatch(token)
	if len(match) < 2 {
		return FullSpan
	}
	n, err := strconv.Atoi(match[1])
	if err != nil || n < 1 || n > FullSpan {
		return FullSpan
	}
	return n
}

func (r *Resolver) resolveLayout(ctx context.Context, f frame, owner schema.ComponentSchema, layout schema.LayoutConfig) view.Node {
	switch layout.Type {
	case schema.LayoutGrid:
		return r.resolveGrid(ctx, f, owner, layout, r.visibleAreas(f, layout.Areas))
	case schema.LayoutSingle:
		areas := r.visibleAreas(f, layout.Areas)
		if len(areas) == 0 {
			return &view.Empty{ComponentID: owner.ComponentID, Reason: "no visible area"}
		}
		return r.resolveGrid(ctx, f, owner, layout, areas[:1])
	case schema.LayoutConditional:
		selected, ok := r.selectView(f, layout)
		if !ok {
			return &view.Diagnostic{
				ComponentID: owner.ComponentID,
				Kind:        view.DiagnosticInvalidProps,
				Message:     "conditional layout has no matching view and no defaultView",
			}
		}
		if selected.Type == schema.LayoutConditional {
			return &view.Diagnostic{
				ComponentID: owner.ComponentID,
				Kind:        view.DiagnosticInvalidProps,
				Message:     "conditional layout views must not be conditional",
			}
		}
		if selected.Type == "" {
			selected.Type = schema.LayoutGrid
		}
		return r.resolveLayout(ctx, f, owner, selected)
	}
	return &view.Diagnostic{
		ComponentID: owner.ComponentID,
		Kind:        view.DiagnosticInvalidProps,
		Message:     fmt.Sprintf("unknown layout type %q", layout.Type),
	}
}

// selectView returns the first view whose condition holds, else defaultView.
func (r *Resolver) selectView(f frame, layout schema.LayoutConfig) (schema.LayoutConfig, bool) {
	for _, candidate := range layout.Views {
		if candidate.VisibleIf != "" && r.evaluator.Evaluate(candidate.VisibleIf, f.data) {
			return candidate.Layout, true
		}
	}
	if layout.DefaultView != nil {
		return *layout.DefaultView, true
	}
	return schema.LayoutConfig{}, false
}

// visibleAreas sorts by order (stable) and drops areas whose visibleIf fails.
func (r *Resolver) visibleAreas(f frame, areas []schema.LayoutArea) []schema.LayoutArea {
	sorted := slices.Clone(areas)
	slices.SortStableFunc(sorted, func(a, b schema.LayoutArea) int {
		return a.Order - b.Order
	})
	out := sorted[:0]
	for _, area := range sorted {
		if condition.Visible(r.evaluator, area.VisibleIf, f.data) {
			out = append(out, area)
		}
	}
	return out
}

func (r *Resolver) resolveGrid(ctx context.Context, f frame, owner schema.ComponentSchema, layout schema.LayoutConfig, areas []schema.LayoutArea) view.Node {
	grid := &view.Grid{
		ComponentID: owner.ComponentID,
		Kind:        layout.Type,
		Spacing:     layout.Spacing,
		Areas:       make([]view.Area, 0, len(areas)),
	}
	for _, area := range areas {
		grid.Areas = append(grid.Areas, view.Area{
			Component: area.Component,
			Span:      ParseSpan(area.Grid),
			Order:     area.Order,
			Node:      r.resolveRef(ctx, f, area.Component),
		})
	}
	return grid
}
