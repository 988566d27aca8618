package httpmux

import (
	"io/fs"
	"net/http"

	routepath "github.com/louisbranch/yardconsole/internal/services/admin/routepath"
)

// MountStatic wires static asset serving into the root mux.
func MountStatic(rootMux *http.ServeMux, staticFS fs.FS, withStaticMime func(http.Handler) http.Handler) {
	if rootMux == nil || staticFS == nil {
		return
	}
	staticHandler := http.StripPrefix(routepath.StaticPrefix, http.FileServer(http.FS(staticFS)))
	if withStaticMime != nil {
		staticHandler = withStaticMime(staticHandler)
	}
	rootMux.Handle(routepath.StaticPrefix, staticHandler)
}

// MountOperational wires health and metrics endpoints. Nil handlers are
// skipped.
func MountOperational(rootMux *http.ServeMux, health http.Handler, metrics http.Handler) {
	if rootMux == nil {
		return
	}
	if health != nil {
		rootMux.Handle(routepath.Healthz, health)
	}
	if metrics != nil {
		rootMux.Handle(routepath.Metrics, metrics)
	}
}

// MountConsoleRoutes mounts the console page tree under the root path.
func MountConsoleRoutes(rootMux *http.ServeMux, consoleMux http.Handler) {
	if rootMux == nil || consoleMux == nil {
		return
	}
	rootMux.Handle(routepath.Root, consoleMux)
}

// MountGateway mounts the JSON gateway under each of its prefixes.
func MountGateway(rootMux *http.ServeMux, gateway http.Handler, prefixes ...string) {
	if rootMux == nil || gateway == nil {
		return
	}
	if len(prefixes) == 0 {
		prefixes = []string{routepath.APIPrefix}
	}
	for _, prefix := range prefixes {
		rootMux.Handle(prefix, gateway)
	}
}
