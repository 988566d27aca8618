package sharedpath

import (
	"net/http"
	"slices"
	"strings"

	"github.com/louisbranch/yardconsole/internal/services/admin/httpx"
)

// SplitPathParts normalizes a slash-delimited route suffix into non-empty path segments.
func SplitPathParts(path string) []string {
	rawParts := strings.Split(path, "/")
	parts := make([]string, 0, len(rawParts))
	for _, part := range rawParts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		parts = append(parts, part)
	}
	return parts
}

// RedirectTrailingSlash canonicalizes request paths by stripping trailing "/"
// characters. The query string is kept.
//
// It returns true when a redirect was written.
func RedirectTrailingSlash(w http.ResponseWriter, r *http.Request) bool {
	if w == nil || r == nil || r.URL == nil {
		return false
	}
	original := r.URL.Path
	canonical := strings.TrimRight(original, "/")
	if canonical == "" {
		canonical = "/"
	}
	if canonical == original {
		return false
	}
	if r.URL.RawQuery != "" {
		canonical += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, canonical, http.StatusMovedPermanently)
	return true
}

// Route matches a fixed number of path segments with some fixed literals.
type Route struct {
	Length   int
	Literals map[int]string
	// Methods lists the accepted methods; empty accepts any.
	Methods []string
	Handle  func(w http.ResponseWriter, r *http.Request, parts []string)
}

func (route Route) matches(parts []string) bool {
	if len(parts) != route.Length {
		return false
	}
	for index, value := range route.Literals {
		if parts[index] != value {
			return false
		}
	}
	return true
}

// Dispatch runs the matching route with the most literals. A path match with
// a disallowed method answers 405. It returns false when nothing matched.
func Dispatch(routes []Route, w http.ResponseWriter, r *http.Request, parts []string) bool {
	bestIndex := -1
	bestSpecificity := -1
	for index, route := range routes {
		if !route.matches(parts) {
			continue
		}
		if specificity := len(route.Literals); specificity > bestSpecificity {
			bestSpecificity = specificity
			bestIndex = index
		}
	}
	if bestIndex < 0 {
		return false
	}
	route := routes[bestIndex]
	if len(route.Methods) > 0 && !slices.Contains(route.Methods, r.Method) {
		httpx.MethodNotAllowed(route.Methods...)(w, r)
		return true
	}
	route.Handle(w, r, parts)
	return true
}
