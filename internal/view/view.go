// Package view renders the wizard screens from embedded html/template
// files. Markup is intentionally minimal; styling is out of scope.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"health-wizard/internal/usecase"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer holds the parsed screen templates.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses all embedded templates once.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("view: parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render produces the HTML for the screen named by r.Step.
func (v *Renderer) Render(r usecase.Rendering) (string, error) {
	var buf bytes.Buffer
	name := string(r.Step) + ".html"
	if err := v.tmpl.ExecuteTemplate(&buf, name, r); err != nil {
		return "", fmt.Errorf("view: render %s: %w", name, err)
	}
	return buf.String(), nil
}

// RenderError produces the generic error page.
func (v *Renderer) RenderError(message string) (string, error) {
	var buf bytes.Buffer
	if err := v.tmpl.ExecuteTemplate(&buf, "error.html", struct{ Message string }{Message: message}); err != nil {
		return "", fmt.Errorf("view: render error page: %w", err)
	}
	return buf.String(), nil
}
