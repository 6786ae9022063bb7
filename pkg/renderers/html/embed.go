package html

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tmpl
var embeddedTemplates embed.FS

//go:embed assets/schemaui.css
var embeddedAssets embed.FS

// StylesheetName is the file name of the built-in stylesheet in AssetsFS.
const StylesheetName = "schemaui.css"

// TemplatesFS exposes the embedded template bundle. Replacement bundles passed
// to WithTemplatesFS must use the same templates/<name>.tmpl layout.
func TemplatesFS() fs.FS {
	return embeddedTemplates
}

// AssetsFS exposes the embedded stylesheet so hosts can serve it.
func AssetsFS() fs.FS {
	sub, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		return embeddedAssets
	}
	return sub
}

func defaultStylesheet() string {
	data, err := fs.ReadFile(embeddedAssets, "assets/"+StylesheetName)
	if err != nil {
		return ""
	}
	return string(data)
}
