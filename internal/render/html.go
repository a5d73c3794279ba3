package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/grid.html.tmpl
var htmlTemplates embed.FS

var gridTmpl = template.Must(template.ParseFS(htmlTemplates, "templates/grid.html.tmpl"))

func RenderCard(c Card) (template.HTML, error) {
	return execute("card", c)
}

// RenderGrid renders cards as the responsive metrics grid.
func RenderGrid(cards []Card) (template.HTML, error) {
	return execute("grid", cards)
}

// Fallback is the skeleton grid shown while a snapshot is pending. It has
// the same cardinality as the real grid so the layout does not shift.
func Fallback() template.HTML {
	out, err := execute("fallback", make([]struct{}, GridSize))
	if err != nil {
		panic(fmt.Sprintf("render: fallback template: %v", err))
	}
	return out
}

func execute(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := gridTmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}
