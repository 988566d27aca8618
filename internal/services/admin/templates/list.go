package templates

import (
	"strconv"

	"github.com/a-h/templ"
)

// ListView is a master-data list page.
type ListView struct {
	Title     string
	CreateURL string
	Columns   []string
	Rows      []RowView
	// Dialog renders inside the dialog region, usually nil or DeleteDialog.
	Dialog templ.Component
}

// RowView is one table row.
type RowView struct {
	Cells     []string
	EditURL   string
	DeleteURL string
}

// DeleteDialogView is the delete confirmation.
type DeleteDialogView struct {
	// Action receives the confirm POST.
	Action string
	// EncodedID is the obfuscated id of the selected row.
	EncodedID string
	// Err shows the last failure when the dialog stayed open.
	Err string
}

// ListPage renders a table of records with edit and delete actions.
func ListPage(loc Localizer, view ListView) templ.Component {
	return component(func(m *markup) {
		m.open("section", "class", "card bg-base-100 shadow")
		m.open("div", "class", "card-body")
		m.open("div", "class", "flex items-center justify-between")
		m.element("h1", view.Title, "class", "card-title text-2xl")
		if view.CreateURL != "" {
			navLink(m, view.CreateURL, "btn btn-primary btn-sm", T(loc, "admin.action.create"))
		}
		m.close("div")
		m.open("div", "class", "overflow-x-auto")
		m.open("table", "class", "table table-zebra")
		m.raw("<thead><tr>")
		for _, column := range view.Columns {
			m.element("th", column)
		}
		m.element("th", T(loc, "admin.list.actions"))
		m.raw("</tr></thead><tbody>")
		if len(view.Rows) == 0 {
			m.raw("<tr>")
			m.open("td", "colspan", strconv.Itoa(len(view.Columns)+1), "class", "text-center opacity-70")
			m.text(T(loc, "admin.list.empty"))
			m.close("td")
			m.raw("</tr>")
		}
		for _, row := range view.Rows {
			m.raw("<tr>")
			for _, cell := range row.Cells {
				m.element("td", cell)
			}
			m.open("td", "class", "flex gap-2")
			if row.EditURL != "" {
				navLink(m, row.EditURL, "btn btn-ghost btn-xs", T(loc, "admin.action.edit"))
			}
			if row.DeleteURL != "" {
				m.raw("<a")
				m.attr("class", "btn btn-ghost btn-xs text-error")
				m.href("href", row.DeleteURL)
				m.href("hx-get", row.DeleteURL)
				m.attr("hx-target", target(DialogID))
				m.raw(">")
				m.text(T(loc, "admin.action.delete"))
				m.raw("</a>")
			}
			m.close("td")
			m.raw("</tr>")
		}
		m.raw("</tbody>")
		m.close("table")
		m.close("div")
		m.close("div")
		m.close("section")
		m.render(DialogRegion(view.Dialog, false))
	})
}

// DialogRegion wraps a dialog in the swap target. oob marks it for an
// out-of-band swap.
func DialogRegion(dialog templ.Component, oob bool) templ.Component {
	return component(func(m *markup) {
		m.raw("<div")
		m.attr("id", DialogID)
		if oob {
			m.attr("hx-swap-oob", "innerHTML")
		}
		m.raw(">")
		m.render(dialog)
		m.raw("</div>")
	})
}

// DeleteDialog asks for confirmation before deleting the selected row.
// Cancel closes the native dialog without a request.
func DeleteDialog(loc Localizer, view DeleteDialogView) templ.Component {
	return component(func(m *markup) {
		openModal(m, "delete-dialog")
		m.element("h3", T(loc, "admin.delete.title"), "class", "text-lg font-bold")
		m.element("p", T(loc, "admin.delete.prompt"), "class", "py-4")
		if view.Err != "" {
			m.element("div", view.Err, "class", "alert alert-error mb-4", "role", "alert")
		}
		m.open("div", "class", "modal-action")
		m.raw(`<form method="dialog">`)
		m.element("button", T(loc, "admin.action.cancel"), "class", "btn", "type", "submit")
		m.raw("</form>")
		m.raw("<form")
		m.attr("method", "post")
		m.href("action", view.Action)
		m.href("hx-post", view.Action)
		m.attr("hx-target", target(MainID))
		m.attr("hx-disabled-elt", "find button")
		m.raw(">")
		m.raw("<input")
		m.attr("type", "hidden")
		m.attr("name", "id")
		m.attr("value", view.EncodedID)
		m.raw(">")
		label := T(loc, "admin.action.delete")
		if view.Err != "" {
			label = T(loc, "admin.action.retry")
		}
		m.element("button", label, "class", "btn btn-error", "type", "submit")
		m.raw("</form>")
		m.close("div")
		closeModal(m)
	})
}

func openModal(m *markup, id string) {
	m.raw("<dialog")
	m.attr("id", id)
	m.attr("class", "modal")
	m.flag("open", true)
	m.raw(">")
	m.open("div", "class", "modal-box")
}

func closeModal(m *markup) {
	m.close("div")
	m.raw("</dialog>")
}

// navLink renders a link that HTMX clients follow by swapping the main region.
func navLink(m *markup, url string, class string, label string) {
	m.raw("<a")
	m.attr("class", class)
	m.href("href", url)
	m.href("hx-get", url)
	m.attr("hx-target", target(MainID))
	m.attr("hx-push-url", "true")
	m.raw(">")
	m.text(label)
	m.raw("</a>")
}
