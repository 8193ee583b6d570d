// Package template defines the template engine contract used by the text
// renderer and the summary prompts. The pongo subpackage provides the
// pongo2-backed implementation.
package template
