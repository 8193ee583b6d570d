package template

// TemplateRenderer is the seam between renderers and a template engine.
// name is resolved by the engine; data is addressed by its JSON field names.
type TemplateRenderer interface {
	RenderTemplate(name string, data any) (string, error)
}
