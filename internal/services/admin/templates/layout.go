package templates

import "github.com/a-h/templ"

// Asset locations loaded by the layout.
const (
	StylesheetURL = "https://cdn.jsdelivr.net/npm/daisyui@4.12.14/dist/full.min.css"
	TailwindURL   = "https://cdn.tailwindcss.com"
	HTMXURL       = "https://unpkg.com/htmx.org@2.0.4"
	AppStyleURL   = "/static/app.css"
)

// Layout wraps body in the console shell with sidebar, top bar and a main
// region that HTMX navigation swaps.
func Layout(page PageContext, body templ.Component) templ.Component {
	return component(func(m *markup) {
		lang := page.Lang
		if lang == "" {
			lang = "en"
		}
		m.raw("<!doctype html>")
		m.open("html", "lang", lang, "data-theme", "light")
		m.raw("<head>")
		m.raw(`<meta charset="utf-8">`)
		m.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		m.element("title", pageTitle(page))
		m.raw("<link")
		m.attr("rel", "stylesheet")
		m.href("href", StylesheetURL)
		m.raw(">")
		m.raw("<link")
		m.attr("rel", "stylesheet")
		m.href("href", AppStyleURL)
		m.raw(">")
		m.raw("<script")
		m.href("src", TailwindURL)
		m.raw("></script>")
		m.raw("<script")
		m.href("src", HTMXURL)
		m.raw("></script>")
		m.raw("</head>")
		m.open("body", "class", "min-h-screen bg-base-200")
		m.open("div", "class", "flex min-h-screen")
		sidebar(m, page)
		m.open("div", "class", "flex-1 flex flex-col")
		topbar(m, page)
		m.open("main", "id", MainID, "class", "flex-1 p-6")
		m.render(Toasts(page.Notices))
		m.render(body)
		m.close("main")
		m.close("div")
		m.close("div")
		m.raw("</body></html>")
	})
}

func pageTitle(page PageContext) string {
	app := T(page.Loc, "admin.app.title")
	if page.Title == "" {
		return app
	}
	return page.Title + " | " + app
}

func sidebar(m *markup, page PageContext) {
	m.open("aside", "class", "w-64 bg-base-100 shadow-md")
	m.raw("<a")
	m.attr("class", "block p-4 text-lg font-bold")
	m.href("href", page.HomeURL)
	m.raw(">")
	m.text(T(page.Loc, "admin.app.title"))
	m.raw("</a>")
	m.open("ul", "class", "menu p-2")
	m.element("li", T(page.Loc, "admin.nav.master"), "class", "menu-title")
	for _, item := range page.Nav {
		m.raw("<li><a")
		m.href("href", item.URL)
		m.attr("hx-get", item.URL)
		m.attr("hx-target", target(MainID))
		m.attr("hx-push-url", "true")
		if item.Active {
			m.attr("class", "active")
			m.attr("aria-current", "page")
		}
		m.raw(">")
		m.text(item.Label)
		m.raw("</a></li>")
	}
	m.close("ul")
	m.close("aside")
}

func topbar(m *markup, page PageContext) {
	m.open("header", "class", "navbar bg-base-100 shadow-sm px-6")
	m.open("div", "class", "flex-1")
	m.close("div")
	m.open("div", "class", "flex items-center gap-4")
	m.open("div", "class", "join", "aria-label", T(page.Loc, "admin.lang.label"))
	for _, option := range page.Languages {
		class := "btn btn-sm join-item"
		if option.Active {
			class += " btn-active"
		}
		m.raw("<a")
		m.attr("class", class)
		m.href("href", option.URL)
		m.raw(">")
		m.text(option.Label)
		m.raw("</a>")
	}
	m.close("div")
	name := page.UserName
	if name == "" {
		name = T(page.Loc, "admin.user.guest")
	}
	m.element("span", name, "class", "font-medium", "data-user", "")
	m.close("div")
	m.close("header")
}
