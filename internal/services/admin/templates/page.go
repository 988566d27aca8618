package templates

import "golang.org/x/text/message"

// PageContext provides shared layout context for console pages.
type PageContext struct {
	Lang         string
	Loc          Localizer
	CurrentPath  string
	CurrentQuery string
	// Title is the document title.
	Title string
	// UserName is shown in the top bar; empty renders the guest label.
	UserName  string
	HomeURL   string
	Nav       []NavItem
	Languages []LanguageOption
	// Notices render as toasts at the top of the main content.
	Notices []Notice
}

// NavItem is one sidebar link.
type NavItem struct {
	Label  string
	URL    string
	Active bool
}

// LanguageOption is one entry of the language switch.
type LanguageOption struct {
	Label  string
	URL    string
	Active bool
}

// Notice is one toast message. Level is "success" or "error".
type Notice struct {
	Level   string
	Message string
}

// Elements targeted by HTMX swaps.
const (
	MainID       = "main"
	DialogID     = "dialog"
	FormFieldsID = "form-fields"
	PhaseInputID = "form-phase"
)

// InputID is the element id of a form control.
func InputID(field string) string {
	return "input-" + field
}

func target(id string) string {
	return "#" + id
}

// Localizer provides translated strings for components.
type Localizer interface {
	Sprintf(key message.Reference, args ...any) string
}

// T translates key, returning the key itself when loc is nil.
func T(loc Localizer, key string, args ...any) string {
	if loc == nil {
		return key
	}
	return loc.Sprintf(key, args...)
}
