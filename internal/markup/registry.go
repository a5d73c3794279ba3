package markup

import (
	"fmt"
	"html"
	"io"
	"strings"
)

// Tag is the closed set of elements a Registry can override.
type Tag int

const (
	TagLink Tag = iota
	TagImage
	TagCallout
)

func (t Tag) String() string {
	switch t {
	case TagLink:
		return "a"
	case TagImage:
		return "Image"
	case TagCallout:
		return "Callout"
	default:
		return fmt.Sprintf("Tag(%d)", int(t))
	}
}

type Attr struct {
	Name  string
	Value string
}

// Element is one overridable node with its attributes in source order.
type Element struct {
	Tag   Tag
	Attrs []Attr
}

func (e Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Override writes the markup surrounding an element's children. Void
// elements write everything in Open.
type Override interface {
	Open(w io.Writer, el Element) error
	Close(w io.Writer, el Element) error
}

type Registry map[Tag]Override

// DefaultRegistry returns the link, image and callout overrides used by the blog.
func DefaultRegistry() Registry {
	return Registry{
		TagLink:    AppLink{},
		TagImage:   RoundedImage{},
		TagCallout: Callout{},
	}
}

func (r Registry) lookup(t Tag) Override {
	if o, ok := r[t]; ok && o != nil {
		return o
	}
	return plain{}
}

// AppLink routes internal paths through client-side navigation, keeps
// in-page anchors as they are and opens everything else in a new context.
type AppLink struct{}

func (AppLink) Open(w io.Writer, el Element) error {
	href, _ := el.Attr("href")

	var attrs []Attr
	switch {
	case strings.HasPrefix(href, "/"):
		attrs = []Attr{{"href", href}, {"data-link", "internal"}}
		attrs = append(attrs, without(el.Attrs, "href")...)
	case strings.HasPrefix(href, "#"):
		attrs = el.Attrs
	default:
		attrs = append(without(el.Attrs, "target", "rel"), Attr{"target", "_blank"}, Attr{"rel", "noopener noreferrer"})
	}
	return writeTag(w, "a", attrs, false)
}

func (AppLink) Close(w io.Writer, _ Element) error {
	_, err := io.WriteString(w, "</a>")
	return err
}

type RoundedImage struct{}

func (RoundedImage) Open(w io.Writer, el Element) error {
	class := "rounded-lg"
	if extra, ok := el.Attr("class"); ok && extra != "" {
		class += " " + extra
	}
	attrs := append([]Attr{{"class", class}}, without(el.Attrs, "class")...)
	if _, ok := el.Attr("alt"); !ok {
		attrs = append(attrs, Attr{"alt", ""})
	}
	return writeTag(w, "img", attrs, true)
}

func (RoundedImage) Close(io.Writer, Element) error { return nil }

const calloutBase = "p-3 rounded-xl my-5 [&_p]:my-4"

var calloutStyles = map[string]string{
	"tip":   "border-b border-green-400 text-green-200 bg-green-400/20",
	"warn":  "border-b border-yellow-400 text-yellow-200 bg-yellow-400/20",
	"error": "border-b border-red-400 text-red-200 bg-red-400/20",
	"info":  "border-b border-blue-400 text-blue-200 bg-blue-400/20",
}

// Callout styles a block by its type; unknown types get the neutral base.
type Callout struct{}

func (Callout) Open(w io.Writer, el Element) error {
	class := calloutBase
	typ, _ := el.Attr("type")
	if style, ok := calloutStyles[typ]; ok {
		class += " " + style
	}
	return writeTag(w, "div", []Attr{{"class", class}}, false)
}

func (Callout) Close(w io.Writer, _ Element) error {
	_, err := io.WriteString(w, "</div>\n")
	return err
}

// plain renders an element with no presentation rules.
type plain struct{}

func (plain) Open(w io.Writer, el Element) error {
	switch el.Tag {
	case TagLink:
		return writeTag(w, "a", el.Attrs, false)
	case TagImage:
		return writeTag(w, "img", el.Attrs, true)
	default:
		return writeTag(w, "div", nil, false)
	}
}

func (plain) Close(w io.Writer, el Element) error {
	var err error
	switch el.Tag {
	case TagLink:
		_, err = io.WriteString(w, "</a>")
	case TagImage:
	default:
		_, err = io.WriteString(w, "</div>\n")
	}
	return err
}

func without(attrs []Attr, names ...string) []Attr {
	out := make([]Attr, 0, len(attrs))
	for _, a := range attrs {
		drop := false
		for _, n := range names {
			if a.Name == n {
				drop = true
				break
			}
		}
		if !drop {
			out = append(out, a)
		}
	}
	return out
}

func writeTag(w io.Writer, name string, attrs []Attr, void bool) error {
	var b strings.Builder
	b.WriteString("<")
	b.WriteString(name)
	for _, a := range attrs {
		b.WriteString(" ")
		b.WriteString(a.Name)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(a.Value))
		b.WriteString(`"`)
	}
	if void {
		b.WriteString(" />")
	} else {
		b.WriteString(">")
	}
	_, err := io.WriteString(w, b.String())
	return err
}
