package templates

import (
	"encoding/json"

	"github.com/a-h/templ"
)

// Widgets understood by the form renderer.
const (
	WidgetText     = "text"
	WidgetNumber   = "number"
	WidgetPassword = "password"
	WidgetSelect   = "select"
	WidgetRadio    = "radio"
)

// FormView is a create or update page.
type FormView struct {
	Title string
	// Action receives the form POST.
	Action    string
	CancelURL string
	// Phase is the hidden workflow phase posted back with every submit.
	Phase  string
	Inputs []InputView
	Audit  []AuditEntry
	// Categories renders the category dialog buttons when set.
	Categories *CategoryActions
	// Saved disables the submit button after a successful save.
	Saved bool
	// After renders below the form, usually SavedRedirect.
	After  templ.Component
	Dialog templ.Component
}

// InputView is one rendered control.
type InputView struct {
	// ID overrides the element id, used by dialogs to keep ids unique.
	ID      string
	Field   string
	Label   string
	Widget  string
	Value   string
	Options []OptionView
	Errors  []string
	// RevalidateURL enables per-field revalidation on change. Empty while the
	// form is pristine.
	RevalidateURL string
}

// OptionView is one select or radio choice.
type OptionView struct {
	Value string
	Label string
}

// AuditEntry is one read-only audit value of an existing record.
type AuditEntry struct {
	Label string
	Value string
}

// CategoryActions are the routes of the nested category dialogs.
type CategoryActions struct {
	CreateURL string
	DeleteURL string
}

// FormPage renders a record form.
func FormPage(loc Localizer, view FormView) templ.Component {
	return component(func(m *markup) {
		m.open("section", "class", "card bg-base-100 shadow")
		m.open("div", "class", "card-body")
		m.element("h1", view.Title, "class", "card-title text-2xl")
		m.raw("<form")
		m.attr("id", "record-form")
		m.attr("method", "post")
		m.href("action", view.Action)
		m.href("hx-post", view.Action)
		m.attr("hx-target", target(MainID))
		m.attr("hx-disabled-elt", "find button[type='submit']")
		m.attr("class", "flex flex-col gap-4")
		m.raw(">")
		m.render(FormFields(loc, view.Phase, view.Inputs))
		if view.Categories != nil {
			categoryButtons(m, loc, *view.Categories)
		}
		if len(view.Audit) > 0 {
			auditBlock(m, loc, view.Audit)
		}
		m.open("div", "class", "flex justify-end gap-2")
		navLink(m, view.CancelURL, "btn", T(loc, "admin.action.cancel"))
		m.raw("<button")
		m.attr("type", "submit")
		m.attr("class", "btn btn-primary")
		m.flag("disabled", view.Saved)
		m.raw(">")
		m.render(LoadingSpinner())
		m.text(T(loc, "admin.action.save"))
		m.raw("</button>")
		m.close("div")
		m.raw("</form>")
		m.render(view.After)
		m.close("div")
		m.close("section")
		m.render(DialogRegion(view.Dialog, false))
	})
}

// FormFields renders the swappable block of controls and the hidden phase.
func FormFields(loc Localizer, phase string, inputs []InputView) templ.Component {
	return component(func(m *markup) {
		m.open("div", "id", FormFieldsID, "class", "grid gap-4 md:grid-cols-2")
		m.raw("<input")
		m.attr("type", "hidden")
		m.attr("id", PhaseInputID)
		m.attr("name", "phase")
		m.attr("value", phase)
		m.raw(">")
		for _, input := range inputs {
			control(m, loc, input)
		}
		m.close("div")
	})
}

// CategorySelect re-renders the category select out of band after the
// category dialogs change the option list.
func CategorySelect(loc Localizer, input InputView) templ.Component {
	return component(func(m *markup) {
		selectControl(m, loc, input, true)
	})
}

func control(m *markup, loc Localizer, input InputView) {
	m.open("div", "class", "form-control w-full", "data-field", input.Field)
	m.raw("<label")
	m.attr("class", "label")
	m.attr("for", inputID(input))
	m.raw(">")
	m.element("span", input.Label, "class", "label-text")
	m.raw("</label>")
	switch input.Widget {
	case WidgetSelect:
		selectControl(m, loc, input, false)
	case WidgetRadio:
		radioControl(m, input)
	default:
		textControl(m, input)
	}
	for _, message := range input.Errors {
		m.element("span", message, "class", "label-text-alt text-error mt-1", "data-error", input.Field)
	}
	m.close("div")
}

func textControl(m *markup, input InputView) {
	kind := "text"
	switch input.Widget {
	case WidgetNumber:
		kind = "number"
	case WidgetPassword:
		kind = "password"
	}
	m.raw("<input")
	m.attr("type", kind)
	m.attr("id", inputID(input))
	m.attr("name", input.Field)
	m.attr("value", input.Value)
	if kind == "number" {
		m.attr("step", "any")
	}
	if kind == "password" {
		m.attr("autocomplete", "new-password")
	}
	m.attr("class", controlClass("input input-bordered w-full", input))
	revalidate(m, input)
	m.raw(">")
}

func selectControl(m *markup, loc Localizer, input InputView, oob bool) {
	m.raw("<select")
	m.attr("id", inputID(input))
	m.attr("name", input.Field)
	m.attr("class", controlClass("select select-bordered w-full", input))
	if oob {
		m.attr("hx-swap-oob", "outerHTML")
	}
	revalidate(m, input)
	m.raw(">")
	m.raw("<option")
	m.attr("value", "")
	m.flag("selected", input.Value == "")
	m.raw(">")
	m.text(T(loc, "admin.select.placeholder"))
	m.raw("</option>")
	for _, option := range input.Options {
		m.raw("<option")
		m.attr("value", option.Value)
		m.flag("selected", option.Value == input.Value)
		m.raw(">")
		m.text(option.Label)
		m.raw("</option>")
	}
	m.raw("</select>")
}

func radioControl(m *markup, input InputView) {
	m.open("div", "id", inputID(input), "class", "flex gap-6 py-2", "role", "radiogroup")
	for _, option := range input.Options {
		m.open("label", "class", "label cursor-pointer gap-2")
		m.raw("<input")
		m.attr("type", "radio")
		m.attr("name", input.Field)
		m.attr("value", option.Value)
		m.attr("class", "radio")
		m.flag("checked", option.Value == input.Value)
		revalidate(m, input)
		m.raw(">")
		m.element("span", option.Label, "class", "label-text")
		m.close("label")
	}
	m.close("div")
}

func inputID(input InputView) string {
	if input.ID != "" {
		return input.ID
	}
	return InputID(input.Field)
}

func controlClass(base string, input InputView) string {
	if len(input.Errors) == 0 {
		return base
	}
	if input.Widget == WidgetSelect {
		return base + " select-error"
	}
	return base + " input-error"
}

// revalidate posts the enclosing form when the control changes and swaps the
// field block with fresh errors.
func revalidate(m *markup, input InputView) {
	if input.RevalidateURL == "" {
		return
	}
	vals, _ := json.Marshal(map[string]string{"_field": input.Field})
	m.href("hx-post", input.RevalidateURL)
	m.attr("hx-trigger", "change")
	m.attr("hx-vals", string(vals))
	m.attr("hx-include", "closest form")
	m.attr("hx-target", target(FormFieldsID))
	m.attr("hx-swap", "outerHTML")
}

func categoryButtons(m *markup, loc Localizer, actions CategoryActions) {
	include := target(InputID("yardActivityCategoryId")) + ", " + target(PhaseInputID)
	m.open("div", "class", "flex gap-2")
	for _, button := range []struct {
		url   string
		class string
		key   string
	}{
		{actions.CreateURL, "btn btn-outline btn-sm", "admin.action.add_category"},
		{actions.DeleteURL, "btn btn-outline btn-error btn-sm", "admin.action.delete_category"},
	} {
		if button.url == "" {
			continue
		}
		m.raw("<button")
		m.attr("type", "button")
		m.attr("class", button.class)
		m.href("hx-get", button.url)
		m.attr("hx-include", include)
		m.attr("hx-target", target(DialogID))
		m.raw(">")
		m.text(T(loc, button.key))
		m.raw("</button>")
	}
	m.close("div")
}

func auditBlock(m *markup, loc Localizer, entries []AuditEntry) {
	m.open("div", "class", "rounded-box bg-base-200 p-4")
	m.element("h2", T(loc, "admin.audit.title"), "class", "font-semibold mb-2")
	m.open("dl", "class", "grid grid-cols-2 gap-2 text-sm")
	for _, entry := range entries {
		m.element("dt", entry.Label, "class", "opacity-70")
		m.element("dd", entry.Value)
	}
	m.close("dl")
	m.close("div")
}
