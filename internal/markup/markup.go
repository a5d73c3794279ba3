// Package markup renders post bodies, substituting the blog's own markup for
// links, images and callout blocks.
package markup

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// Payload is the compiled body of a post: Markdown plus component blocks.
type Payload []byte

const articleOpen = `<article class="prose prose-neutral dark:prose-invert">`

// New builds a goldmark instance whose link, image and callout output is
// delegated to reg.
func New(reg Registry) goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithBlockParsers(
				util.Prioritized(calloutParser{}, 100),
				util.Prioritized(imageTagParser{}, 100),
			),
		),
		goldmark.WithRendererOptions(
			renderer.WithNodeRenderers(util.Prioritized(&overrideRenderer{reg: reg}, 100)),
		),
	)
}

// Render decodes p and renders it as an article. Errors from goldmark are
// returned as they are.
func Render(p Payload, reg Registry) (template.HTML, error) {
	var buf bytes.Buffer
	buf.WriteString(articleOpen)
	if err := New(reg).Convert(p, &buf); err != nil {
		return "", fmt.Errorf("markup: render: %w", err)
	}
	buf.WriteString("</article>")
	return template.HTML(buf.String()), nil
}

type overrideRenderer struct {
	reg Registry
}

func (r *overrideRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindLink, r.renderLink)
	reg.Register(ast.KindAutoLink, r.renderAutoLink)
	reg.Register(ast.KindImage, r.renderImage)
	reg.Register(KindCallout, r.renderCallout)
	reg.Register(KindImageTag, r.renderImageTag)
}

func (r *overrideRenderer) emit(w util.BufWriter, el Element, entering bool) (ast.WalkStatus, error) {
	o := r.reg.lookup(el.Tag)
	if entering {
		return ast.WalkContinue, o.Open(w, el)
	}
	return ast.WalkContinue, o.Close(w, el)
}

func (r *overrideRenderer) renderLink(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.Link)
	return r.emit(w, Element{Tag: TagLink, Attrs: linkAttrs(n.Destination, n.Title)}, entering)
}

func (r *overrideRenderer) renderAutoLink(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*ast.AutoLink)
	label := n.Label(source)
	dest := n.URL(source)
	if n.AutoLinkType == ast.AutoLinkEmail && !bytes.HasPrefix(bytes.ToLower(dest), []byte("mailto:")) {
		dest = append([]byte("mailto:"), dest...)
	}

	el := Element{Tag: TagLink, Attrs: linkAttrs(dest, nil)}
	if !entering {
		return ast.WalkContinue, nil
	}
	o := r.reg.lookup(TagLink)
	if err := o.Open(w, el); err != nil {
		return ast.WalkStop, err
	}
	_, _ = w.Write(util.EscapeHTML(label))
	return ast.WalkContinue, o.Close(w, el)
}

func (r *overrideRenderer) renderImage(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.Image)

	attrs := []Attr{}
	if !gmhtml.IsDangerousURL(n.Destination) {
		attrs = append(attrs, Attr{"src", string(n.Destination)})
	}
	attrs = append(attrs, Attr{"alt", altText(n, source)})
	if len(n.Title) > 0 {
		attrs = append(attrs, Attr{"title", string(n.Title)})
	}

	el := Element{Tag: TagImage, Attrs: attrs}
	o := r.reg.lookup(TagImage)
	if err := o.Open(w, el); err != nil {
		return ast.WalkStop, err
	}
	return ast.WalkSkipChildren, o.Close(w, el)
}

func (r *overrideRenderer) renderCallout(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	n := node.(*CalloutNode)
	return r.emit(w, Element{Tag: TagCallout, Attrs: n.Attrs}, entering)
}

func (r *overrideRenderer) renderImageTag(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ImageTagNode)
	el := Element{Tag: TagImage, Attrs: n.Attrs}
	o := r.reg.lookup(TagImage)
	if err := o.Open(w, el); err != nil {
		return ast.WalkStop, err
	}
	if err := o.Close(w, el); err != nil {
		return ast.WalkStop, err
	}
	_ = w.WriteByte('\n')
	return ast.WalkSkipChildren, nil
}

func linkAttrs(dest, title []byte) []Attr {
	href := ""
	if !gmhtml.IsDangerousURL(dest) {
		href = string(dest)
	}
	attrs := []Attr{{"href", href}}
	if len(title) > 0 {
		attrs = append(attrs, Attr{"title", string(title)})
	}
	return attrs
}

// altText flattens the inline children of an image into plain text.
func altText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(source))
			if t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		default:
			buf.WriteString(altText(c, source))
		}
	}
	return buf.String()
}
