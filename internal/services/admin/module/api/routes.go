package api

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/louisbranch/yardconsole/internal/services/admin/i18n"
	routepath "github.com/louisbranch/yardconsole/internal/services/admin/routepath"
)

// Service defines gateway handlers consumed by this route module.
type Service interface {
	HandleCollection(w http.ResponseWriter, r *http.Request, resource string)
	HandleItem(w http.ResponseWriter, r *http.Request, resource string, encodedID string)
}

// RegisterRoutes wires the JSON gateway under routepath.APIPrefix and under
// each supported locale.
func RegisterRoutes(mux *http.ServeMux, service Service) {
	if mux == nil || service == nil {
		return
	}
	handler := func(w http.ResponseWriter, r *http.Request) {
		HandleAPIPath(w, r, service)
	}
	for _, prefix := range Prefixes() {
		mux.HandleFunc(prefix, handler)
	}
}

// Prefixes lists every path prefix the gateway answers on.
func Prefixes() []string {
	prefixes := []string{routepath.APIPrefix}
	for _, locale := range i18n.Supported() {
		prefixes = append(prefixes, routepath.LocalizedAPIPrefix(locale))
	}
	return prefixes
}

// HandleAPIPath splits /{resource}[/{id}] and dispatches. The id is read
// from the escaped path so encoded slashes inside it survive.
func HandleAPIPath(w http.ResponseWriter, r *http.Request, service Service) {
	if service == nil {
		http.NotFound(w, r)
		return
	}
	rest, ok := apiRest(r.URL.EscapedPath())
	if !ok {
		http.NotFound(w, r)
		return
	}
	rawResource, rawID, hasID := strings.Cut(strings.TrimRight(rest, "/"), "/")
	resource, err := url.PathUnescape(rawResource)
	if err != nil || strings.TrimSpace(resource) == "" {
		http.NotFound(w, r)
		return
	}
	if !hasID {
		service.HandleCollection(w, r, resource)
		return
	}
	id, err := url.PathUnescape(rawID)
	if err != nil || strings.TrimSpace(id) == "" {
		http.NotFound(w, r)
		return
	}
	service.HandleItem(w, r, resource, id)
}

// apiRest returns the path after the gateway prefix, skipping a supported
// locale segment in front of it.
func apiRest(escapedPath string) (string, bool) {
	if rest, ok := strings.CutPrefix(escapedPath, routepath.APIPrefix); ok {
		return rest, true
	}
	locale, tail, ok := strings.Cut(strings.TrimPrefix(escapedPath, "/"), "/")
	if !ok {
		return "", false
	}
	if _, supported := i18n.ParseLocale(locale); !supported {
		return "", false
	}
	return strings.CutPrefix("/"+tail, routepath.APIPrefix)
}
