package admin

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/louisbranch/yardconsole/internal/services/admin/apperr"
	"github.com/louisbranch/yardconsole/internal/services/admin/htmx"
	"github.com/louisbranch/yardconsole/internal/services/admin/resource"
	routepath "github.com/louisbranch/yardconsole/internal/services/admin/routepath"
	"github.com/louisbranch/yardconsole/internal/services/admin/templates"
	"github.com/louisbranch/yardconsole/internal/services/admin/workflow"
	"golang.org/x/text/message"
)

// formState is everything a record form renders.
type formState struct {
	mode      workflow.Mode
	encodedID string
	phase     workflow.Phase
	draft     workflow.Draft
	errors    workflow.FieldErrors
	options   optionSet
	// record seeds the audit block on update pages.
	record  map[string]any
	notices []templates.Notice
	saved   bool
	// redirect and delay come from the controller's scheduled navigation.
	redirect string
	delay    time.Duration
}

// HandleCreatePage renders an empty create form.
func (h *Handler) HandleCreatePage(w http.ResponseWriter, r *http.Request, locale string, key string) {
	req, ok := h.resolve(w, r, locale, key)
	if !ok {
		return
	}
	h.writeForm(w, r, req, formState{
		mode:    workflow.ModeCreate,
		draft:   workflow.ZeroDraft(req.def.Schema),
		options: h.loadOptions(r.Context(), req.def),
	})
}

// HandleUpdatePage renders the update form seeded from the upstream record.
func (h *Handler) HandleUpdatePage(w http.ResponseWriter, r *http.Request, locale string, key string) {
	req, ok := h.resolve(w, r, locale, key)
	if !ok {
		return
	}
	encoded, id, ok := h.recordID(w, r, req)
	if !ok {
		return
	}
	record, err := h.gateway.Detail(r.Context(), req.def.Resource, id)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			h.notFound(w, r, req.loc, req.lang)
			return
		}
		h.logf("detail resource=%s: %v", req.def.Resource, err)
		title := templates.T(req.loc, "admin.error.title")
		page := h.pageContext(w, r, req.lang, req.loc, title, req.def.Key)
		h.writePage(w, r, http.StatusBadGateway, page, templates.MessagePage(title, workflow.FailureMessage(err, req.loc)))
		return
	}
	h.writeForm(w, r, req, formState{
		mode:      workflow.ModeUpdate,
		encodedID: encoded,
		draft:     workflow.DraftFrom(req.def.Schema, record),
		options:   h.loadOptions(r.Context(), req.def),
		record:    record,
	})
}

// HandleCreate submits a create form.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request, locale string, key string) {
	h.submit(w, r, locale, key, workflow.ModeCreate)
}

// HandleUpdate submits an update form for ?id=.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request, locale string, key string) {
	h.submit(w, r, locale, key, workflow.ModeUpdate)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request, locale string, key string, mode workflow.Mode) {
	req, ok := h.resolve(w, r, locale, key)
	if !ok {
		return
	}
	if !requireSameOrigin(w, r, req.loc) {
		return
	}
	var encoded, id string
	if mode == workflow.ModeUpdate {
		encoded, id, ok = h.recordID(w, r, req)
		if !ok {
			return
		}
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sink := &noticeSink{}
	nav := &deferredNavigation{}
	controller, err := workflow.NewFormController(workflow.FormConfig{
		Resource:    req.def.Resource,
		Schema:      req.def.Schema,
		Mode:        mode,
		RecordID:    id,
		Redirect:    routepath.Master(req.lang, req.def.Key),
		Phase:       workflow.ParsePhase(r.PostForm.Get("phase")),
		GracePeriod: h.grace,
		Store:       h.gateway,
		Notifier:    sink,
		Navigator:   nav,
		Scheduler:   nav,
		Localizer:   req.loc,
	}, workflow.ParseForm(req.def.Schema, r.PostForm))
	if err != nil {
		h.logf("form resource=%s: %v", req.def.Resource, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	defer controller.Close()

	result, err := controller.Submit(r.Context())
	if err != nil {
		h.logf("submit resource=%s: %v", req.def.Resource, err)
		http.Error(w, http.StatusText(http.StatusConflict), http.StatusConflict)
		return
	}
	if result.Outcome == workflow.OutcomeFailed {
		h.logf("submit resource=%s mode=%s: %v", req.def.Resource, mode, result.Err)
	}
	state := formState{
		mode:      mode,
		encodedID: encoded,
		phase:     controller.Phase(),
		draft:     controller.Draft(),
		errors:    controller.FieldErrors(),
		notices:   sink.list(),
		saved:     result.Outcome == workflow.OutcomeSaved,
	}
	state.redirect, state.delay = nav.scheduled()
	state.options = h.loadOptions(r.Context(), req.def)
	h.writeForm(w, r, req, state)
}

// HandleField re-validates the posted form after one control changed and
// swaps the field block.
func (h *Handler) HandleField(w http.ResponseWriter, r *http.Request, locale string, key string) {
	req, ok := h.resolve(w, r, locale, key)
	if !ok {
		return
	}
	if !requireSameOrigin(w, r, req.loc) {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	controller, err := workflow.NewFormController(workflow.FormConfig{
		Resource:  req.def.Resource,
		Schema:    req.def.Schema,
		Phase:     workflow.ParsePhase(r.PostForm.Get("phase")),
		Store:     h.gateway,
		Localizer: req.loc,
	}, workflow.ParseForm(req.def.Schema, r.PostForm))
	if err != nil {
		h.logf("field resource=%s: %v", req.def.Resource, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	defer controller.Close()

	name := strings.TrimSpace(r.PostForm.Get("_field"))
	field, known := req.def.Schema.Field(name)
	if !known {
		http.Error(w, workflow.ErrUnknownField.Error(), http.StatusBadRequest)
		return
	}
	if err := controller.UpdateField(name, workflow.ParseValue(field, r.PostForm.Get(name))); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	state := formState{
		phase:   controller.Phase(),
		draft:   controller.Draft(),
		errors:  controller.FieldErrors(),
		options: h.loadOptions(r.Context(), req.def),
	}
	htmx.RenderFragment(w, r, http.StatusOK, templates.FormFields(req.loc, state.phase.String(), h.formInputs(req, state)))
}

// recordID reads the encoded ?id= of update routes. A missing or malformed id
// answers 404.
func (h *Handler) recordID(w http.ResponseWriter, r *http.Request, req pageRequest) (string, string, bool) {
	encoded := strings.TrimSpace(r.URL.Query().Get("id"))
	id, err := workflow.DecodeID(encoded)
	if err != nil {
		h.notFound(w, r, req.loc, req.lang)
		return "", "", false
	}
	return encoded, id, true
}

func (h *Handler) writeForm(w http.ResponseWriter, r *http.Request, req pageRequest, state formState) {
	resourceTitle := templates.T(req.loc, req.def.TitleKey)
	title := templates.T(req.loc, "admin.form.create_title", resourceTitle)
	action := routepath.MasterCreate(req.lang, req.def.Key)
	if state.mode == workflow.ModeUpdate {
		title = templates.T(req.loc, "admin.form.update_title", resourceTitle)
		action = routepath.MasterUpdate(req.lang, req.def.Key, state.encodedID)
	}
	view := templates.FormView{
		Title:     title,
		Action:    action,
		CancelURL: routepath.Master(req.lang, req.def.Key),
		Phase:     state.phase.String(),
		Inputs:    h.formInputs(req, state),
		Audit:     auditEntries(req.loc, state.record),
		Saved:     state.saved,
	}
	if req.def.Key == resource.KeyActivity {
		view.Categories = &templates.CategoryActions{
			CreateURL: routepath.CategoryCreate(req.lang, req.def.Key),
			DeleteURL: routepath.CategoryDelete(req.lang, req.def.Key),
		}
	}
	if state.saved {
		view.After = templates.SavedRedirect(req.loc, state.redirect, wholeSeconds(state.delay))
	}
	page := h.pageContext(w, r, req.lang, req.loc, title, req.def.Key)
	page.Notices = append(page.Notices, state.notices...)
	h.writePage(w, r, http.StatusOK, page, templates.FormPage(req.loc, view))
}

// formInputs builds the controls of def's form. Controls re-validate on
// change only once the form was submitted.
func (h *Handler) formInputs(req pageRequest, state formState) []templates.InputView {
	revalidateURL := ""
	if state.phase == workflow.PhaseTouched {
		revalidateURL = routepath.MasterField(req.lang, req.def.Key)
	}
	return inputViews(req.loc, req.def.Inputs, state.draft, state.errors, state.options, revalidateURL)
}

func inputViews(loc *message.Printer, inputs []resource.Input, draft workflow.Draft, errs workflow.FieldErrors, options optionSet, revalidateURL string) []templates.InputView {
	out := make([]templates.InputView, 0, len(inputs))
	for _, input := range inputs {
		view := templates.InputView{
			Field:         input.Field,
			Label:         templates.T(loc, input.LabelKey),
			Widget:        string(input.Widget),
			Value:         workflow.FormValue(draft[input.Field]),
			Errors:        errs[input.Field],
			RevalidateURL: revalidateURL,
		}
		switch input.Widget {
		case resource.WidgetSelect:
			view.Options = optionViews(options[input.Source])
		case resource.WidgetRadio:
			view.Options = []templates.OptionView{
				{Value: "true", Label: templates.T(loc, "admin.radio.yes")},
				{Value: "false", Label: templates.T(loc, "admin.radio.no")},
			}
		}
		out = append(out, view)
	}
	return out
}

func optionViews(options []workflow.Option) []templates.OptionView {
	out := make([]templates.OptionView, 0, len(options))
	for _, option := range options {
		out = append(out, templates.OptionView{Value: option.Value, Label: option.Label})
	}
	return out
}

func auditEntries(loc *message.Printer, record map[string]any) []templates.AuditEntry {
	var out []templates.AuditEntry
	for _, field := range resource.AuditFields {
		value := strings.TrimSpace(workflow.FormValue(record[field]))
		if value == "" {
			continue
		}
		out = append(out, templates.AuditEntry{Label: templates.T(loc, "admin.field."+field), Value: value})
	}
	return out
}

func wholeSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}

// deferredNavigation hands a controller's scheduled navigation to the
// browser. The delay and target are rendered into the response instead of
// running on a server timer.
type deferredNavigation struct {
	mu     sync.Mutex
	delay  time.Duration
	target string
}

// AfterFunc records d and runs f right away so the target is known.
func (n *deferredNavigation) AfterFunc(d time.Duration, f func()) workflow.Task {
	n.mu.Lock()
	n.delay = d
	n.mu.Unlock()
	f()
	return doneTask{}
}

// Navigate records the target.
func (n *deferredNavigation) Navigate(target string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.target = target
}

func (n *deferredNavigation) scheduled() (string, time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.target, n.delay
}

type doneTask struct{}

func (doneTask) Stop() bool { return false }
