package main

import (
	"strings"

	"github.com/bndr/gotabulate"
)

// table renders rows as a grid, or empty when there are none.
func table(headers []string, rows [][]string, empty string) string {
	if len(rows) == 0 {
		return empty + "\n"
	}
	t := gotabulate.Create(rows)
	t.SetHeaders(headers)
	t.SetAlign("left")
	t.SetWrapStrings(true)
	t.SetMaxCellSize(60)
	out := t.Render("grid")
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return out
}
