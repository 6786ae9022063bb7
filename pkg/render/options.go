package render

// RenderOptions carry per-request presentation settings that do not affect
// resolution.
type RenderOptions struct {
	// Theme and Variant select a theme for renderers that support one.
	Theme   string
	Variant string
	// Standalone wraps the output in a complete document.
	Standalone bool
	// Title is the document title used with Standalone.
	Title string
	// ActionBase is the URL prefix HTML renderers use for action and submit
	// forms, e.g. "/components". Empty disables interactive controls.
	ActionBase string
	// Session identifies the server side session actions apply to.
	Session string
	// HiddenFields are emitted as hidden inputs in every interactive form.
	HiddenFields map[string]string
}
