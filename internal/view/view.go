// AngelaMos | 2026
// view.go

// Package view renders the HTMX pages and fragments from embedded
// templates.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.html
var files embed.FS

const (
	UsersPage    = "users"
	UserFragment = "user"
	PostsPage    = "posts"
	PostFragment = "post"

	layout = "layout"
)

type Renderer struct {
	title string
	tmpl  *template.Template
}

func New(title string) (*Renderer, error) {
	tmpl, err := template.ParseFS(files, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	return &Renderer{title: title, tmpl: tmpl}, nil
}

// Page renders name wrapped in the document layout.
func (r *Renderer) Page(w io.Writer, name string, data any) error {
	var content bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&content, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}

	page := struct {
		Title   string
		Content template.HTML
	}{
		Title:   r.title,
		Content: template.HTML(content.String()), //nolint:gosec // already escaped by html/template
	}

	if err := r.tmpl.ExecuteTemplate(w, layout, page); err != nil {
		return fmt.Errorf("render layout: %w", err)
	}

	return nil
}

// Fragment renders name alone, for HTMX swaps.
func (r *Renderer) Fragment(w io.Writer, name string, data any) error {
	if err := r.tmpl.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	return nil
}
