package vanilla

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tmpl
var embeddedTemplates embed.FS

// TemplatesFS exposes the embedded template bundle for consumers that want to
// tweak the built-in snapshot rendering as a starting point.
func TemplatesFS() fs.FS {
	return embeddedTemplates
}
