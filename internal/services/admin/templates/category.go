package templates

import "github.com/a-h/templ"

// CategoryDialogView is the add-category dialog.
type CategoryDialogView struct {
	Action string
	Phase  string
	Inputs []InputView
	// Current and FormPhase carry the parent form state so the category
	// select can be re-rendered as it was.
	Current   string
	FormPhase string
}

// CategoryDeleteView is the delete-category dialog. It first asks for a
// category, then for confirmation.
type CategoryDeleteView struct {
	Action string
	Phase  string
	Select InputView
	// Confirm switches to the confirmation step for SelectedID.
	Confirm       bool
	SelectedID    string
	SelectedLabel string
	Current       string
	FormPhase     string
	// Err shows the last failure when the dialog stayed open.
	Err string
}

// CategoryDialog renders the add-category form.
func CategoryDialog(loc Localizer, view CategoryDialogView) templ.Component {
	return component(func(m *markup) {
		openModal(m, "category-dialog")
		m.element("h3", T(loc, "admin.category.create_title"), "class", "text-lg font-bold")
		dialogForm(m, view.Action)
		hidden(m, "phase", view.Phase)
		hidden(m, "current", view.Current)
		hidden(m, "formPhase", view.FormPhase)
		for _, input := range view.Inputs {
			control(m, loc, input)
		}
		dialogSubmit(m, T(loc, "admin.action.save"))
		m.raw("</form>")
		dialogCancel(m, loc)
		closeModal(m)
	})
}

// CategoryDeleteDialog renders the category selection or confirmation step.
func CategoryDeleteDialog(loc Localizer, view CategoryDeleteView) templ.Component {
	return component(func(m *markup) {
		openModal(m, "category-delete-dialog")
		m.element("h3", T(loc, "admin.category.delete_title"), "class", "text-lg font-bold")
		if view.Err != "" {
			m.element("div", view.Err, "class", "alert alert-error my-4", "role", "alert")
		}
		dialogForm(m, view.Action)
		hidden(m, "phase", view.Phase)
		hidden(m, "current", view.Current)
		hidden(m, "formPhase", view.FormPhase)
		if view.Confirm {
			hidden(m, "step", "confirm")
			hidden(m, view.Select.Field, view.SelectedID)
			m.element("p", T(loc, "admin.category.delete_prompt", view.SelectedLabel), "class", "py-4")
			label := T(loc, "admin.action.delete")
			if view.Err != "" {
				label = T(loc, "admin.action.retry")
			}
			dialogSubmit(m, label)
		} else {
			hidden(m, "step", "select")
			control(m, loc, view.Select)
			dialogSubmit(m, T(loc, "admin.action.delete"))
		}
		m.raw("</form>")
		dialogCancel(m, loc)
		closeModal(m)
	})
}

func dialogForm(m *markup, action string) {
	m.raw("<form")
	m.attr("method", "post")
	m.href("action", action)
	m.href("hx-post", action)
	m.attr("hx-target", target(DialogID))
	m.attr("hx-disabled-elt", "find button[type='submit']")
	m.attr("class", "flex flex-col gap-4 py-4")
	m.raw(">")
}

func dialogSubmit(m *markup, label string) {
	m.raw("<button")
	m.attr("type", "submit")
	m.attr("class", "btn btn-primary self-end")
	m.raw(">")
	m.render(LoadingSpinner())
	m.text(label)
	m.raw("</button>")
}

// dialogCancel closes the native dialog without a request.
func dialogCancel(m *markup, loc Localizer) {
	m.raw(`<form method="dialog" class="modal-action">`)
	m.element("button", T(loc, "admin.action.cancel"), "class", "btn", "type", "submit")
	m.raw("</form>")
}

func hidden(m *markup, name string, value string) {
	m.raw("<input")
	m.attr("type", "hidden")
	m.attr("name", name)
	m.attr("value", value)
	m.raw(">")
}
