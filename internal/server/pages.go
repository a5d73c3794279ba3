package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/vukan322/devfolio/internal/content"
)

//go:embed templates/pages.html.tmpl
var pageTemplates embed.FS

var pages = template.Must(template.ParseFS(pageTemplates, "templates/pages.html.tmpl"))

type headData struct {
	Site  string
	Title string
}

type postData struct {
	Post  *content.Post
	Views string
	Body  template.HTML
}

type errorData struct {
	Status  int
	Message string
}

// page renders head, one body template and foot into a single buffer so a
// template failure never leaves a half-written response.
func page(site, title, name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, "head", headData{Site: site, Title: title}); err != nil {
		return nil, fmt.Errorf("server: render head: %w", err)
	}
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("server: render %s: %w", name, err)
	}
	if err := pages.ExecuteTemplate(&buf, "foot", nil); err != nil {
		return nil, fmt.Errorf("server: render foot: %w", err)
	}
	return buf.Bytes(), nil
}

func writeTemplate(w io.Writer, name string, data any) error {
	if err := pages.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("server: render %s: %w", name, err)
	}
	return nil
}
