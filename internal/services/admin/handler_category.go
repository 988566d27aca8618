package admin

import (
	"context"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/louisbranch/yardconsole/internal/services/admin/htmx"
	"github.com/louisbranch/yardconsole/internal/services/admin/httpx"
	"github.com/louisbranch/yardconsole/internal/services/admin/resource"
	routepath "github.com/louisbranch/yardconsole/internal/services/admin/routepath"
	"github.com/louisbranch/yardconsole/internal/services/admin/templates"
	"github.com/louisbranch/yardconsole/internal/services/admin/workflow"
)

const (
	categoryField       = "yardActivityCategoryId"
	categoryLabelField  = "yardActivityCategory"
	categoryInputPrefix = "category-"
	stepConfirm         = "confirm"
)

// categoryRequest is a category dialog request below the activity form. The
// parent form's selection and phase travel with every dialog round trip.
//
// The category choices belong to the request: they are fetched with the
// caller's token and never outlive the response.
type categoryRequest struct {
	pageRequest
	category   resource.Definition
	current    string
	formPhase  string
	categories *workflow.OptionList
	notices    *noticeSink
}

func (h *Handler) resolveCategory(w http.ResponseWriter, r *http.Request, locale string, key string, current string, formPhase string) (categoryRequest, bool) {
	req, ok := h.resolve(w, r, locale, key)
	if !ok {
		return categoryRequest{}, false
	}
	category, found := h.registry.ByResource(resource.YardActivityCategories)
	if req.def.Key != resource.KeyActivity || !found {
		h.notFound(w, r, req.loc, req.lang)
		return categoryRequest{}, false
	}
	return categoryRequest{
		pageRequest: req,
		category:    category,
		current:     strings.TrimSpace(current),
		formPhase:   workflow.ParsePhase(formPhase).String(),
		categories:  h.newCategoryList(),
		notices:     &noticeSink{},
	}, true
}

// dialogOpenRequest resolves a dialog opened from the activity form, which
// includes its category select and phase input.
func (h *Handler) dialogOpenRequest(w http.ResponseWriter, r *http.Request, locale string, key string) (categoryRequest, bool) {
	query := r.URL.Query()
	return h.resolveCategory(w, r, locale, key, query.Get(categoryField), query.Get("phase"))
}

// dialogPostRequest resolves a dialog submit, which carries the parent form
// state in hidden inputs.
func (h *Handler) dialogPostRequest(w http.ResponseWriter, r *http.Request, locale string, key string) (categoryRequest, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return categoryRequest{}, false
	}
	return h.resolveCategory(w, r, locale, key, r.PostForm.Get("current"), r.PostForm.Get("formPhase"))
}

// HandleCategoryDialog opens the add-category dialog.
func (h *Handler) HandleCategoryDialog(w http.ResponseWriter, r *http.Request, locale string, key string) {
	req, ok := h.dialogOpenRequest(w, r, locale, key)
	if !ok {
		return
	}
	dialog := h.categoryDialog(req, workflow.PhasePristine, workflow.ZeroDraft(req.category.Schema), nil)
	h.writeDialog(w, r, req.pageRequest, dialog)
}

// HandleCategoryCreate submits the add-category dialog. On success the new
// category is published to the option list right away and the list is then
// re-fetched.
func (h *Handler) HandleCategoryCreate(w http.ResponseWriter, r *http.Request, locale string, key string) {
	req, ok := h.dialogPostRequest(w, r, locale, key)
	if !ok {
		return
	}
	if !requireSameOrigin(w, r, req.loc) {
		return
	}

	sink := req.notices
	controller, err := workflow.NewFormController(workflow.FormConfig{
		Resource:  req.category.Resource,
		Schema:    req.category.Schema,
		Mode:      workflow.ModeCreate,
		Phase:     workflow.ParsePhase(r.PostForm.Get("phase")),
		Store:     h.gateway,
		Notifier:  sink,
		Localizer: req.loc,
		OnSaved: func(_ context.Context, draft workflow.Draft, reply workflow.Reply) {
			if id := strings.TrimSpace(reply.ID); id != "" {
				req.categories.Add(workflow.Option{Value: id, Label: workflow.FormValue(draft[categoryLabelField])})
			}
		},
	}, workflow.ParseForm(req.category.Schema, r.PostForm))
	if err != nil {
		h.logf("category form: %v", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	defer controller.Close()

	result, err := controller.Submit(r.Context())
	if err != nil {
		h.logf("category submit: %v", err)
		http.Error(w, http.StatusText(http.StatusConflict), http.StatusConflict)
		return
	}
	switch result.Outcome {
	case workflow.OutcomeSaved:
		h.refreshCategories(r.Context(), req)
		h.writeCategoryChanged(w, r, req, sink)
	case workflow.OutcomeFailed:
		h.logf("category create: %v", result.Err)
		fallthrough
	default:
		dialog := h.categoryDialog(req, controller.Phase(), controller.Draft(), controller.FieldErrors())
		h.writeDialog(w, r, req.pageRequest, templ.Join(templates.Toasts(sink.list()), dialog))
	}
}

// HandleCategoryDeleteDialog opens the delete-category dialog at the
// selection step.
func (h *Handler) HandleCategoryDeleteDialog(w http.ResponseWriter, r *http.Request, locale string, key string) {
	req, ok := h.dialogOpenRequest(w, r, locale, key)
	if !ok {
		return
	}
	options := h.categoryOptions(r.Context(), req)
	view := h.categoryDeleteView(req, workflow.PhasePristine, req.current, nil, options)
	h.writeDeleteDialog(w, r, req, view)
}

// HandleCategoryDelete validates the chosen category, asks for confirmation
// and then deletes it.
func (h *Handler) HandleCategoryDelete(w http.ResponseWriter, r *http.Request, locale string, key string) {
	req, ok := h.dialogPostRequest(w, r, locale, key)
	if !ok {
		return
	}
	if !requireSameOrigin(w, r, req.loc) {
		return
	}

	draft := workflow.ParseForm(resource.CategoryDeleteSchema, r.PostForm)
	selected := workflow.FormValue(draft[categoryField])
	if errs := workflow.Validate(resource.CategoryDeleteSchema, draft, req.loc); errs != nil {
		view := h.categoryDeleteView(req, workflow.PhaseTouched, selected, errs, h.categoryOptions(r.Context(), req))
		h.writeDeleteDialog(w, r, req, view)
		return
	}
	if r.PostForm.Get("step") != stepConfirm {
		view := h.categoryDeleteView(req, workflow.PhaseTouched, selected, nil, h.categoryOptions(r.Context(), req))
		view.Confirm = true
		h.writeDeleteDialog(w, r, req, view)
		return
	}

	sink := req.notices
	controller, err := workflow.NewListController(workflow.ListConfig{
		Resource:          req.category.Resource,
		Deleter:           h.gateway,
		Notifier:          sink,
		Reload:            req.categories.Refresh,
		KeepOpenOnFailure: h.keepOpen,
		Localizer:         req.loc,
	})
	if err != nil {
		h.logf("category delete: %v", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if err := controller.RequestDelete(selected); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if _, err := controller.ConfirmDelete(r.Context()); err != nil {
		h.logf("category delete id=%s: %v", selected, err)
		dialog := controller.Dialog()
		if !dialog.Open {
			h.writeDialog(w, r, req.pageRequest, templates.Toasts(sink.list()))
			return
		}
		view := h.categoryDeleteView(req, workflow.PhaseTouched, selected, nil, h.categoryOptions(r.Context(), req))
		view.Confirm = true
		view.Err = dialog.Err
		h.writeDeleteDialog(w, r, req, view)
		return
	}
	h.writeCategoryChanged(w, r, req, sink)
}

// HandleCategoryOptions re-renders the category select of the activity form.
func (h *Handler) HandleCategoryOptions(w http.ResponseWriter, r *http.Request, locale string, key string) {
	req, ok := h.dialogOpenRequest(w, r, locale, key)
	if !ok {
		return
	}
	h.refreshCategories(r.Context(), req)
	htmx.RenderFragment(w, r, http.StatusOK, templ.Join(
		templates.Toasts(req.notices.list()),
		templates.CategorySelect(req.loc, h.categorySelect(req)),
	))
}

// writeCategoryChanged closes the dialog, shows the notices and swaps the
// parent form's category select out of band.
func (h *Handler) writeCategoryChanged(w http.ResponseWriter, r *http.Request, req categoryRequest, sink *noticeSink) {
	if !httpx.IsHTMXRequest(r) {
		sink.flash(w, r, h.flashPolicy)
		httpx.WriteRedirect(w, r, routepath.MasterCreate(req.lang, req.def.Key))
		return
	}
	htmx.RenderFragment(w, r, http.StatusOK, templ.Join(
		templates.Toasts(sink.list()),
		templates.CategorySelect(req.loc, h.categorySelect(req)),
	))
}

func (h *Handler) writeDeleteDialog(w http.ResponseWriter, r *http.Request, req categoryRequest, view templates.CategoryDeleteView) {
	h.writeDialog(w, r, req.pageRequest, templ.Join(templates.Toasts(req.notices.list()), templates.CategoryDeleteDialog(req.loc, view)))
}

// writeDialog swaps a dialog into the dialog region. Full page loads get a
// page holding the dialog alone.
func (h *Handler) writeDialog(w http.ResponseWriter, r *http.Request, req pageRequest, dialog templ.Component) {
	if httpx.IsHTMXRequest(r) {
		htmx.RenderFragment(w, r, http.StatusOK, dialog)
		return
	}
	title := templates.T(req.loc, req.def.TitleKey)
	page := h.pageContext(w, r, req.lang, req.loc, title, req.def.Key)
	h.writePage(w, r, http.StatusOK, page, templates.DialogRegion(dialog, false))
}

func (h *Handler) categoryDialog(req categoryRequest, phase workflow.Phase, draft workflow.Draft, errs workflow.FieldErrors) templ.Component {
	inputs := inputViews(req.loc, req.category.Inputs, draft, errs, nil, "")
	for idx := range inputs {
		inputs[idx].ID = categoryInputPrefix + inputs[idx].Field
	}
	return templates.CategoryDialog(req.loc, templates.CategoryDialogView{
		Action:    routepath.CategoryCreate(req.lang, req.def.Key),
		Phase:     phase.String(),
		Inputs:    inputs,
		Current:   req.current,
		FormPhase: req.formPhase,
	})
}

func (h *Handler) categoryDeleteView(req categoryRequest, phase workflow.Phase, selected string, errs workflow.FieldErrors, options []workflow.Option) templates.CategoryDeleteView {
	input := h.categoryInput(req, selected, options)
	input.ID = categoryInputPrefix + categoryField
	input.Errors = errs[categoryField]
	label := selected
	for _, option := range options {
		if option.Value == selected {
			label = option.Label
			break
		}
	}
	return templates.CategoryDeleteView{
		Action:        routepath.CategoryDelete(req.lang, req.def.Key),
		Phase:         phase.String(),
		Select:        input,
		SelectedID:    selected,
		SelectedLabel: label,
		Current:       req.current,
		FormPhase:     req.formPhase,
	}
}

// categorySelect rebuilds the parent form's category select as it was.
func (h *Handler) categorySelect(req categoryRequest) templates.InputView {
	options, _ := req.categories.Snapshot()
	input := h.categoryInput(req, req.current, options)
	if workflow.ParsePhase(req.formPhase) == workflow.PhaseTouched {
		input.RevalidateURL = routepath.MasterField(req.lang, req.def.Key)
	}
	return input
}

func (h *Handler) categoryInput(req categoryRequest, value string, options []workflow.Option) templates.InputView {
	label := "admin.field." + categoryField
	for _, input := range req.def.Inputs {
		if input.Field == categoryField {
			label = input.LabelKey
			break
		}
	}
	return templates.InputView{
		Field:   categoryField,
		Label:   templates.T(req.loc, label),
		Widget:  templates.WidgetSelect,
		Value:   value,
		Options: optionViews(options),
	}
}

func (h *Handler) newCategoryList() *workflow.OptionList {
	return workflow.NewOptionList(func(ctx context.Context) ([]workflow.Option, error) {
		return h.gateway.Options(ctx, resource.SourceCategories)
	})
}

// refreshCategories re-fetches the request's category choices. A failure
// becomes an error notice; the list keeps only what this request added.
func (h *Handler) refreshCategories(ctx context.Context, req categoryRequest) {
	if err := req.categories.Refresh(ctx); err != nil {
		h.logf("refresh categories: %v", err)
		req.notices.Notify(workflow.Notice{Level: workflow.LevelError, Message: workflow.FailureMessage(err, req.loc)})
	}
}

// categoryOptions refreshes and returns the category choices.
func (h *Handler) categoryOptions(ctx context.Context, req categoryRequest) []workflow.Option {
	h.refreshCategories(ctx, req)
	options, _ := req.categories.Snapshot()
	return options
}
