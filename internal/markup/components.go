package markup

import (
	"html"
	"regexp"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

var (
	KindCallout  = ast.NewNodeKind("Callout")
	KindImageTag = ast.NewNodeKind("ImageTag")
)

// CalloutNode is a <Callout type="..."> block. Its children are Markdown.
type CalloutNode struct {
	ast.BaseBlock
	Attrs []Attr
}

func (n *CalloutNode) Kind() ast.NodeKind { return KindCallout }

func (n *CalloutNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, attrDump(n.Attrs), nil)
}

// ImageTagNode is a self-closing <Image ... /> line.
type ImageTagNode struct {
	ast.BaseBlock
	Attrs []Attr
}

func (n *ImageTagNode) Kind() ast.NodeKind { return KindImageTag }

func (n *ImageTagNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, attrDump(n.Attrs), nil)
}

func attrDump(attrs []Attr) map[string]string {
	m := make(map[string]string, len(attrs))
	for _, a := range attrs {
		m[a.Name] = a.Value
	}
	return m
}

const attrList = `((?:\s+[A-Za-z][\w:-]*(?:\s*=\s*(?:"[^"]*"|'[^']*'))?)*)`

var (
	calloutOpenRe  = regexp.MustCompile(`^<Callout` + attrList + `\s*>$`)
	calloutCloseRe = regexp.MustCompile(`^</Callout\s*>$`)
	imageTagRe     = regexp.MustCompile(`^<Image` + attrList + `\s*/>$`)
	attrRe         = regexp.MustCompile(`([A-Za-z][\w:-]*)(?:\s*=\s*(?:"([^"]*)"|'([^']*)'))?`)
)

// parseAttrs reads component attributes, dropping event handlers and
// dangerous URLs.
func parseAttrs(raw string) []Attr {
	var attrs []Attr
	for _, m := range attrRe.FindAllStringSubmatch(raw, -1) {
		name := m[1]
		value := m[2]
		if value == "" {
			value = m[3]
		}
		value = html.UnescapeString(value)

		if strings.HasPrefix(strings.ToLower(name), "on") {
			continue
		}
		if (name == "src" || name == "href") && gmhtml.IsDangerousURL([]byte(value)) {
			continue
		}
		attrs = append(attrs, Attr{Name: name, Value: value})
	}
	return attrs
}

func componentLine(reader text.Reader) (line []byte, segment text.Segment, trimmed string) {
	line, segment = reader.PeekLine()
	return line, segment, string(util.TrimRightSpace(util.TrimLeftSpace(line)))
}

func advanceLine(reader text.Reader, line []byte, segment text.Segment) {
	newline := 0
	if len(line) > 0 && line[len(line)-1] == '\n' {
		newline = 1
	}
	reader.Advance(segment.Stop - segment.Start - newline + segment.Padding)
}

type calloutParser struct{}

func (calloutParser) Trigger() []byte { return []byte{'<'} }

func (calloutParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, segment, trimmed := componentLine(reader)
	m := calloutOpenRe.FindStringSubmatch(trimmed)
	if m == nil {
		return nil, parser.NoChildren
	}
	advanceLine(reader, line, segment)
	return &CalloutNode{Attrs: parseAttrs(m[1])}, parser.HasChildren
}

func (calloutParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	line, segment, trimmed := componentLine(reader)
	if calloutCloseRe.MatchString(trimmed) && !hasOpenInnerCallout(node, pc) {
		advanceLine(reader, line, segment)
		return parser.Close
	}
	return parser.Continue | parser.HasChildren
}

// hasOpenInnerCallout reports whether a block below node still owns the
// closing tag line: a nested callout, or a code or HTML block that takes
// its lines verbatim.
func hasOpenInnerCallout(node ast.Node, pc parser.Context) bool {
	blocks := pc.OpenedBlocks()
	for i, b := range blocks {
		if b.Node != node {
			continue
		}
		for _, inner := range blocks[i+1:] {
			switch inner.Node.Kind() {
			case KindCallout, ast.KindFencedCodeBlock, ast.KindCodeBlock, ast.KindHTMLBlock:
				return true
			}
		}
		return false
	}
	return false
}

func (calloutParser) Close(ast.Node, text.Reader, parser.Context) {}
func (calloutParser) CanInterruptParagraph() bool                 { return true }
func (calloutParser) CanAcceptIndentedLine() bool                 { return false }

type imageTagParser struct{}

func (imageTagParser) Trigger() []byte { return []byte{'<'} }

func (imageTagParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, segment, trimmed := componentLine(reader)
	m := imageTagRe.FindStringSubmatch(trimmed)
	if m == nil {
		return nil, parser.NoChildren
	}
	advanceLine(reader, line, segment)
	return &ImageTagNode{Attrs: parseAttrs(m[1])}, parser.NoChildren
}

func (imageTagParser) Continue(ast.Node, text.Reader, parser.Context) parser.State {
	return parser.Close
}

func (imageTagParser) Close(ast.Node, text.Reader, parser.Context) {}
func (imageTagParser) CanInterruptParagraph() bool                 { return true }
func (imageTagParser) CanAcceptIndentedLine() bool                 { return false }
