// Package template defines the named-template engine contract used by output
// renderers. The pongo subpackage provides the pongo2 implementation.
package template
