package templates

import (
	"strconv"

	"github.com/a-h/templ"
)

// Toasts renders notices in the toast corner. No notices render nothing.
func Toasts(notices []Notice) templ.Component {
	return component(func(m *markup) {
		if len(notices) == 0 {
			return
		}
		m.open("div", "class", "toast toast-top toast-end z-50", "role", "status")
		for _, notice := range notices {
			class := "alert alert-success"
			if notice.Level == "error" {
				class = "alert alert-error"
			}
			m.open("div", "class", class, "data-level", notice.Level)
			m.element("span", notice.Message)
			m.close("div")
		}
		m.close("div")
	})
}

// SavedRedirect moves the browser to location after the given delay in whole
// seconds. HTMX clients swap the main region, others follow a meta refresh.
func SavedRedirect(loc Localizer, location string, seconds int) templ.Component {
	return component(func(m *markup) {
		if location == "" {
			return
		}
		if seconds < 0 {
			seconds = 0
		}
		delay := strconv.Itoa(seconds)
		m.raw("<div")
		m.attr("class", "text-sm opacity-70 mt-4")
		m.attr("data-redirect", "")
		m.href("hx-get", location)
		m.attr("hx-trigger", "load delay:"+delay+"s")
		m.attr("hx-target", target(MainID))
		m.attr("hx-push-url", "true")
		m.raw(">")
		m.text(T(loc, "admin.form.redirecting"))
		m.raw("</div>")
		m.raw("<noscript>")
		m.open("meta", "http-equiv", "refresh", "content", delay+";url="+string(templ.URL(location)))
		m.raw("</noscript>")
	})
}

// LoadingSpinner renders the request indicator used by submit buttons.
func LoadingSpinner() templ.Component {
	return component(func(m *markup) {
		m.raw(`<span class="htmx-indicator loading loading-ring loading-md"></span>`)
	})
}

// MessagePage renders a titled message, used for the home and error pages.
func MessagePage(title string, message string) templ.Component {
	return component(func(m *markup) {
		m.open("section", "class", "card bg-base-100 shadow")
		m.open("div", "class", "card-body")
		m.element("h1", title, "class", "card-title text-2xl")
		m.element("p", message)
		m.close("div")
		m.close("section")
	})
}
