package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// markup writes escaped HTML and keeps the first write error.
type markup struct {
	ctx context.Context
	w   io.Writer
	err error
}

// component adapts a markup writer function to templ.Component.
func component(fn func(m *markup)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := &markup{ctx: ctx, w: w}
		fn(m)
		return m.err
	})
}

func (m *markup) raw(parts ...string) {
	for _, part := range parts {
		if m.err != nil {
			return
		}
		_, m.err = io.WriteString(m.w, part)
	}
}

func (m *markup) text(value string) {
	m.raw(templ.EscapeString(value))
}

func (m *markup) attr(name string, value string) {
	m.raw(" ", name, `="`, templ.EscapeString(value), `"`)
}

// href writes a sanitized URL attribute.
func (m *markup) href(name string, value string) {
	m.attr(name, string(templ.URL(value)))
}

func (m *markup) flag(name string, on bool) {
	if on {
		m.raw(" ", name)
	}
}

// open writes a start tag with alternating attribute name/value pairs.
func (m *markup) open(tag string, attrs ...string) {
	m.raw("<", tag)
	for i := 0; i+1 < len(attrs); i += 2 {
		m.attr(attrs[i], attrs[i+1])
	}
	m.raw(">")
}

func (m *markup) close(tag string) {
	m.raw("</", tag, ">")
}

// element writes a full element with escaped text content.
func (m *markup) element(tag string, text string, attrs ...string) {
	m.open(tag, attrs...)
	m.text(text)
	m.close(tag)
}

func (m *markup) render(c templ.Component) {
	if m.err != nil || c == nil {
		return
	}
	m.err = c.Render(m.ctx, m.w)
}
