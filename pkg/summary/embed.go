package summary

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tpl
var embeddedTemplates embed.FS

// TemplatesFS exposes the embedded prompt templates so callers can copy and
// adjust them.
func TemplatesFS() fs.FS {
	return embeddedTemplates
}
