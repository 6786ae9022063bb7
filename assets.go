package schemaui

import (
	"io/fs"

	htmlrenderer "github.com/goliatone/go-schemaui/pkg/renderers/html"
)

// StylesheetFS exposes the built-in stylesheet so Go applications can serve
// it next to rendered fragments.
//
// Typical mount:
//
//	mux.Handle("/assets/",
//	  http.StripPrefix("/assets/",
//	    http.FileServerFS(schemaui.StylesheetFS()),
//	  ),
//	)
func StylesheetFS() fs.FS {
	return htmlrenderer.AssetsFS()
}

// EmbeddedTemplates exposes the HTML renderer templates so callers can copy
// or override them through htmlrenderer.WithTemplatesFS.
func EmbeddedTemplates() fs.FS {
	return htmlrenderer.TemplatesFS()
}
