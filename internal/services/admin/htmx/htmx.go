// Package htmx renders templ components for full page loads and HTMX swaps.
package htmx

import (
	"bytes"
	"context"
	"html"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/louisbranch/yardconsole/internal/services/admin/httpx"
)

// TriggerHeader names client events fired after a swap.
const TriggerHeader = "HX-Trigger"

// TitleTag formats an escaped `<title>` element.
func TitleTag(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return ""
	}
	return "<title>" + html.EscapeString(title) + "</title>"
}

// RenderPage renders full for normal requests. HTMX requests get fragment, or
// the <main> content of full when fragment is nil, prefixed with a title tag
// when the markup carries none.
func RenderPage(w http.ResponseWriter, r *http.Request, fragment templ.Component, full templ.Component, title string) {
	RenderPageStatus(w, r, http.StatusOK, fragment, full, title)
}

// RenderPageStatus is RenderPage with an explicit status code.
func RenderPageStatus(w http.ResponseWriter, r *http.Request, status int, fragment templ.Component, full templ.Component, title string) {
	ctx := httpx.RequestContext(r)
	if !httpx.IsHTMXRequest(r) {
		if full == nil {
			full = fragment
		}
		writeComponent(ctx, w, status, full, nil)
		return
	}

	target := fragment
	fromFull := target == nil
	if fromFull {
		target = full
	}
	writeComponent(ctx, w, status, target, func(body []byte) []byte {
		if fromFull {
			if content, ok := extractMainContent(body); ok {
				body = content
			}
		}
		return addTitleIfMissing(body, TitleTag(title))
	})
}

// RenderFragment renders component as-is, used for out-of-band swaps and
// small partial updates.
func RenderFragment(w http.ResponseWriter, r *http.Request, status int, component templ.Component) {
	writeComponent(httpx.RequestContext(r), w, status, component, nil)
}

// Trigger asks the client to fire event after the swap.
func Trigger(w http.ResponseWriter, event string) {
	event = strings.TrimSpace(event)
	if w == nil || event == "" {
		return
	}
	w.Header().Set(TriggerHeader, event)
}

func writeComponent(ctx context.Context, w http.ResponseWriter, status int, component templ.Component, rewrite func([]byte) []byte) {
	if w == nil || component == nil {
		return
	}
	var buf bytes.Buffer
	if err := component.Render(ctx, &buf); err != nil {
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	body := buf.Bytes()
	if rewrite != nil {
		body = rewrite(body)
	}
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func addTitleIfMissing(body []byte, title string) []byte {
	if title == "" || bytes.Contains(bytes.ToLower(body), []byte("<title")) {
		return body
	}
	return append([]byte(title), body...)
}

func extractMainContent(body []byte) ([]byte, bool) {
	start := bytes.Index(body, []byte("<main"))
	if start < 0 {
		return nil, false
	}
	openClose := bytes.IndexByte(body[start:], '>')
	if openClose < 0 {
		return nil, false
	}
	contentStart := start + openClose + 1
	end := bytes.Index(body[contentStart:], []byte("</main>"))
	if end < 0 {
		return nil, false
	}
	return body[contentStart : contentStart+end], true
}
