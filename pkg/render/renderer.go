// Package render defines the output contract for resolved view trees and a
// named registry of output renderers (HTML, text, ...).
package render

import (
	"context"

	"github.com/goliatone/go-schemaui/pkg/view"
)

// Renderer converts a resolved view tree into bytes.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, node view.Node, options RenderOptions) ([]byte, error)
}
