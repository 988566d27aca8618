package master

import (
	"net/http"

	sharedpath "github.com/louisbranch/yardconsole/internal/services/admin/module/sharedpath"
	routepath "github.com/louisbranch/yardconsole/internal/services/admin/routepath"
)

// Service defines console page handlers consumed by this route module.
type Service interface {
	HandleRoot(w http.ResponseWriter, r *http.Request)
	HandleHome(w http.ResponseWriter, r *http.Request, locale string)
	HandleList(w http.ResponseWriter, r *http.Request, locale string, key string)
	HandleCreatePage(w http.ResponseWriter, r *http.Request, locale string, key string)
	HandleCreate(w http.ResponseWriter, r *http.Request, locale string, key string)
	HandleUpdatePage(w http.ResponseWriter, r *http.Request, locale string, key string)
	HandleUpdate(w http.ResponseWriter, r *http.Request, locale string, key string)
	HandleField(w http.ResponseWriter, r *http.Request, locale string, key string)
	HandleDeleteDialog(w http.ResponseWriter, r *http.Request, locale string, key string)
	HandleDelete(w http.ResponseWriter, r *http.Request, locale string, key string)
	HandleCategoryDialog(w http.ResponseWriter, r *http.Request, locale string, key string)
	HandleCategoryCreate(w http.ResponseWriter, r *http.Request, locale string, key string)
	HandleCategoryDeleteDialog(w http.ResponseWriter, r *http.Request, locale string, key string)
	HandleCategoryDelete(w http.ResponseWriter, r *http.Request, locale string, key string)
	HandleCategoryOptions(w http.ResponseWriter, r *http.Request, locale string, key string)
}

type handlerFunc func(Service, http.ResponseWriter, *http.Request, string, string)

// byMethod picks a handler per method; other methods answer 405.
func byMethod(get handlerFunc, post handlerFunc) func(Service) func(http.ResponseWriter, *http.Request, []string) {
	return func(service Service) func(http.ResponseWriter, *http.Request, []string) {
		return func(w http.ResponseWriter, r *http.Request, parts []string) {
			locale, key := parts[0], parts[3]
			switch {
			case r.Method == http.MethodGet && get != nil:
				get(service, w, r, locale, key)
			case r.Method == http.MethodPost && post != nil:
				post(service, w, r, locale, key)
			}
		}
	}
}

type masterRoute struct {
	suffix  []string
	methods []string
	handle  func(Service) func(http.ResponseWriter, *http.Request, []string)
}

// Paths split as [locale, app, "master", key, suffix...].
var masterRoutes = []masterRoute{
	{
		methods: []string{http.MethodGet},
		handle:  byMethod(Service.HandleList, nil),
	},
	{
		suffix:  []string{routepath.ActionCreate},
		methods: []string{http.MethodGet, http.MethodPost},
		handle:  byMethod(Service.HandleCreatePage, Service.HandleCreate),
	},
	{
		suffix:  []string{routepath.ActionUpdate},
		methods: []string{http.MethodGet, http.MethodPost},
		handle:  byMethod(Service.HandleUpdatePage, Service.HandleUpdate),
	},
	{
		suffix:  []string{routepath.ActionField},
		methods: []string{http.MethodPost},
		handle:  byMethod(nil, Service.HandleField),
	},
	{
		suffix:  []string{routepath.ActionDelete},
		methods: []string{http.MethodGet, http.MethodPost},
		handle:  byMethod(Service.HandleDeleteDialog, Service.HandleDelete),
	},
	{
		suffix:  []string{routepath.CategoriesSegment, routepath.ActionCreate},
		methods: []string{http.MethodGet, http.MethodPost},
		handle:  byMethod(Service.HandleCategoryDialog, Service.HandleCategoryCreate),
	},
	{
		suffix:  []string{routepath.CategoriesSegment, routepath.ActionDelete},
		methods: []string{http.MethodGet, http.MethodPost},
		handle:  byMethod(Service.HandleCategoryDeleteDialog, Service.HandleCategoryDelete),
	},
	{
		suffix:  []string{routepath.CategoriesSegment, routepath.CategoryOptions},
		methods: []string{http.MethodGet},
		handle:  byMethod(Service.HandleCategoryOptions, nil),
	},
}

func routesFor(service Service) []sharedpath.Route {
	out := make([]sharedpath.Route, 0, len(masterRoutes)+1)
	out = append(out, sharedpath.Route{
		Length:   2,
		Literals: map[int]string{1: routepath.App},
		Methods:  []string{http.MethodGet},
		Handle: func(w http.ResponseWriter, r *http.Request, parts []string) {
			service.HandleHome(w, r, parts[0])
		},
	})
	for _, route := range masterRoutes {
		literals := map[int]string{1: routepath.App, 2: routepath.MasterSegment}
		for index, segment := range route.suffix {
			literals[4+index] = segment
		}
		out = append(out, sharedpath.Route{
			Length:   4 + len(route.suffix),
			Literals: literals,
			Methods:  route.methods,
			Handle:   route.handle(service),
		})
	}
	return out
}

// RegisterRoutes wires the console page tree into the provided mux.
func RegisterRoutes(mux *http.ServeMux, service Service) {
	if mux == nil || service == nil {
		return
	}
	routes := routesFor(service)
	mux.HandleFunc(routepath.Root, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == routepath.Root {
			service.HandleRoot(w, r)
			return
		}
		handleMasterPath(w, r, routes)
	})
}

// HandleMasterPath parses console subroutes and dispatches to service handlers.
func HandleMasterPath(w http.ResponseWriter, r *http.Request, service Service) {
	if service == nil {
		http.NotFound(w, r)
		return
	}
	handleMasterPath(w, r, routesFor(service))
}

func handleMasterPath(w http.ResponseWriter, r *http.Request, routes []sharedpath.Route) {
	if sharedpath.RedirectTrailingSlash(w, r) {
		return
	}
	parts := sharedpath.SplitPathParts(r.URL.Path)
	if !sharedpath.Dispatch(routes, w, r, parts) {
		http.NotFound(w, r)
	}
}
