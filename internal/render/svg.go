package render

import (
	"bytes"
	_ "embed"
	"fmt"
	"html"
	"text/template"
)

const (
	svgColumns    = 4
	svgCellWidth  = 190
	svgCellHeight = 80
	svgGap        = 10
)

//go:embed templates/grid.svg.tmpl
var gridSVGTemplate string

var gridSVGTmpl = template.Must(
	template.New("grid.svg").
		Funcs(template.FuncMap{
			"xml":   html.EscapeString,
			"cellX": func(i int) int { return svgGap + (i%svgColumns)*(svgCellWidth+svgGap) },
			"cellY": func(i int) int { return svgGap + (i/svgColumns)*(svgCellHeight+svgGap) },
		}).
		Parse(gridSVGTemplate),
)

type svgViewModel struct {
	Width      int
	Height     int
	CellWidth  int
	CellHeight int
	Title      string
	Cards      []Card
}

// RenderSVG draws the metrics grid as a standalone SVG image, four cards
// per row.
func RenderSVG(title string, cards []Card) ([]byte, error) {
	rows := (len(cards) + svgColumns - 1) / svgColumns
	vm := svgViewModel{
		Width:      svgGap + svgColumns*(svgCellWidth+svgGap),
		Height:     svgGap + rows*(svgCellHeight+svgGap),
		CellWidth:  svgCellWidth,
		CellHeight: svgCellHeight,
		Title:      title,
		Cards:      cards,
	}

	var buf bytes.Buffer
	if err := gridSVGTmpl.Execute(&buf, vm); err != nil {
		return nil, fmt.Errorf("render svg: %w", err)
	}
	return buf.Bytes(), nil
}
