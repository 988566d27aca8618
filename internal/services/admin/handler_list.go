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

// maskedValue replaces masked column values in lists.
const maskedValue = "••••••"

// HandleList renders a master list page.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request, locale string, key string) {
	req, ok := h.resolve(w, r, locale, key)
	if !ok {
		return
	}
	sink := &noticeSink{}
	rows, err := h.gateway.List(r.Context(), req.def.Resource)
	if err != nil {
		h.logf("list resource=%s: %v", req.def.Resource, err)
		sink.Notify(workflow.Notice{Level: workflow.LevelError, Message: workflow.FailureMessage(err, req.loc)})
	}
	h.writeList(w, r, http.StatusOK, req, rows, sink, nil)
}

// HandleDeleteDialog opens the delete confirmation for ?id=.
func (h *Handler) HandleDeleteDialog(w http.ResponseWriter, r *http.Request, locale string, key string) {
	req, ok := h.resolve(w, r, locale, key)
	if !ok {
		return
	}
	encoded := strings.TrimSpace(r.URL.Query().Get("id"))
	id, err := workflow.DecodeID(encoded)
	if err != nil {
		h.notFound(w, r, req.loc, req.lang)
		return
	}
	controller, err := h.listController(req, &noticeSink{}, nil)
	if err != nil {
		h.logf("delete dialog resource=%s: %v", req.def.Resource, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if err := controller.RequestDelete(id); err != nil {
		h.notFound(w, r, req.loc, req.lang)
		return
	}
	dialog := h.deleteDialog(req, encoded, controller.Dialog())
	if httpx.IsHTMXRequest(r) {
		htmx.RenderFragment(w, r, http.StatusOK, dialog)
		return
	}
	rows, err := h.gateway.List(r.Context(), req.def.Resource)
	sink := &noticeSink{}
	if err != nil {
		h.logf("list resource=%s: %v", req.def.Resource, err)
		sink.Notify(workflow.Notice{Level: workflow.LevelError, Message: workflow.FailureMessage(err, req.loc)})
	}
	h.writeList(w, r, http.StatusOK, req, rows, sink, dialog)
}

// HandleDelete confirms a delete posted from the dialog.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request, locale string, key string) {
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
	encoded := strings.TrimSpace(r.PostForm.Get("id"))
	id, err := workflow.DecodeID(encoded)
	if err != nil {
		h.notFound(w, r, req.loc, req.lang)
		return
	}

	sink := &noticeSink{}
	var rows []map[string]any
	controller, err := h.listController(req, sink, func(rowsFetched []map[string]any) {
		rows = rowsFetched
	})
	if err != nil {
		h.logf("delete resource=%s: %v", req.def.Resource, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	if err := controller.RequestDelete(id); err != nil {
		h.notFound(w, r, req.loc, req.lang)
		return
	}
	listURL := routepath.Master(req.lang, req.def.Key)
	if _, err := controller.ConfirmDelete(r.Context()); err != nil {
		h.logf("delete resource=%s: %v", req.def.Resource, err)
		h.writeDeleteFailure(w, r, req, encoded, controller.Dialog(), sink, listURL)
		return
	}
	if !httpx.IsHTMXRequest(r) {
		sink.flash(w, r, h.flashPolicy)
		httpx.WriteRedirect(w, r, listURL)
		return
	}
	w.Header().Set("HX-Push-Url", listURL)
	h.writeList(w, r, http.StatusOK, req, rows, sink, nil)
}

// writeDeleteFailure reports a failed delete. HTMX clients get the notice
// swapped into the dialog region, which either closes the dialog or keeps it
// open with a retry button.
func (h *Handler) writeDeleteFailure(w http.ResponseWriter, r *http.Request, req pageRequest, encoded string, dialog workflow.Dialog, sink *noticeSink, listURL string) {
	var open templ.Component
	if dialog.Open {
		open = h.deleteDialog(req, encoded, dialog)
	}
	if httpx.IsHTMXRequest(r) {
		w.Header().Set("HX-Retarget", "#"+templates.DialogID)
		w.Header().Set("HX-Reswap", "innerHTML")
		htmx.RenderFragment(w, r, http.StatusOK, templ.Join(templates.Toasts(sink.list()), orEmpty(open)))
		return
	}
	if open == nil {
		sink.flash(w, r, h.flashPolicy)
		httpx.WriteRedirect(w, r, listURL)
		return
	}
	rows, err := h.gateway.List(r.Context(), req.def.Resource)
	if err != nil {
		h.logf("list resource=%s: %v", req.def.Resource, err)
	}
	h.writeList(w, r, http.StatusOK, req, rows, sink, open)
}

func (h *Handler) listController(req pageRequest, sink *noticeSink, reloaded func([]map[string]any)) (*workflow.ListController, error) {
	return workflow.NewListController(workflow.ListConfig{
		Resource: req.def.Resource,
		Deleter:  h.gateway,
		Notifier: sink,
		Reload: func(ctx context.Context) error {
			rows, err := h.gateway.List(ctx, req.def.Resource)
			if reloaded != nil {
				reloaded(rows)
			}
			return err
		},
		KeepOpenOnFailure: h.keepOpen,
		Localizer:         req.loc,
	})
}

func (h *Handler) deleteDialog(req pageRequest, encoded string, dialog workflow.Dialog) templ.Component {
	return templates.DeleteDialog(req.loc, templates.DeleteDialogView{
		Action:    routepath.MasterDelete(req.lang, req.def.Key, ""),
		EncodedID: encoded,
		Err:       dialog.Err,
	})
}

func (h *Handler) writeList(w http.ResponseWriter, r *http.Request, status int, req pageRequest, rows []map[string]any, sink *noticeSink, dialog templ.Component) {
	title := templates.T(req.loc, req.def.TitleKey)
	page := h.pageContext(w, r, req.lang, req.loc, title, req.def.Key)
	page.Notices = append(page.Notices, sink.list()...)
	h.writePage(w, r, status, page, templates.ListPage(req.loc, h.listView(req, rows, dialog)))
}

func (h *Handler) listView(req pageRequest, rows []map[string]any, dialog templ.Component) templates.ListView {
	view := templates.ListView{
		Title:     templates.T(req.loc, req.def.TitleKey),
		CreateURL: routepath.MasterCreate(req.lang, req.def.Key),
		Dialog:    dialog,
	}
	for _, column := range req.def.Columns {
		view.Columns = append(view.Columns, templates.T(req.loc, column.LabelKey))
	}
	if req.def.Resource == resource.Yards {
		rows = withParentYardCodes(rows)
	}
	for _, record := range rows {
		id := strings.TrimSpace(workflow.FormValue(record["id"]))
		row := templates.RowView{}
		for _, column := range req.def.Columns {
			row.Cells = append(row.Cells, cellValue(column, record))
		}
		if id != "" {
			encoded := workflow.EncodeID(id)
			row.EditURL = routepath.MasterUpdate(req.lang, req.def.Key, encoded)
			row.DeleteURL = routepath.MasterDelete(req.lang, req.def.Key, encoded)
		}
		view.Rows = append(view.Rows, row)
	}
	return view
}

func cellValue(column resource.Column, record map[string]any) string {
	value := workflow.FormValue(record[column.Field])
	if column.Mask && value != "" {
		return maskedValue
	}
	return value
}

// withParentYardCodes fills parentYardCode from the listed yards when the
// upstream omits it.
func withParentYardCodes(rows []map[string]any) []map[string]any {
	codes := make(map[string]string, len(rows))
	for _, record := range rows {
		id := workflow.FormValue(record["id"])
		if id != "" {
			codes[id] = workflow.FormValue(record["yardCode"])
		}
	}
	for _, record := range rows {
		if workflow.FormValue(record["parentYardCode"]) != "" {
			continue
		}
		if code, ok := codes[workflow.FormValue(record["parentYardId"])]; ok {
			record["parentYardCode"] = code
		}
	}
	return rows
}

func orEmpty(c templ.Component) templ.Component {
	if c == nil {
		return templ.NopComponent
	}
	return c
}
