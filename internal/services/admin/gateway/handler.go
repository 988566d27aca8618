package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/louisbranch/yardconsole/internal/services/admin/apperr"
	"github.com/louisbranch/yardconsole/internal/services/admin/httpx"
	"github.com/louisbranch/yardconsole/internal/services/admin/workflow"
)

const maxRequestBytes = 1 << 20

// Writer is the write surface the JSON routes relay to.
type Writer interface {
	CreateRaw(ctx context.Context, name string, body []byte) (workflow.Reply, error)
	UpdateRaw(ctx context.Context, name string, id string, body []byte) (workflow.Reply, error)
	Delete(ctx context.Context, name string, id string) (workflow.Reply, error)
}

// Handler serves the JSON gateway routes.
type Handler struct {
	writer Writer
}

// NewHandler builds JSON route handlers over writer.
func NewHandler(writer Writer) *Handler {
	return &Handler{writer: writer}
}

type createReply struct {
	Message string `json:"message"`
	// ID is a JSON number when numeric.
	ID any `json:"id,omitempty"`
}

// HandleCollection serves POST /yard-management-system/api/{resource}.
func (h *Handler) HandleCollection(w http.ResponseWriter, r *http.Request, name string) {
	if r.Method != http.MethodPost {
		httpx.MethodNotAllowed(http.MethodPost)(w, r)
		return
	}
	body, err := readBody(r)
	if err != nil {
		_ = httpx.WriteJSONMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	reply, err := h.writer.CreateRaw(httpx.RequestContext(r), name, body)
	if err != nil {
		writeFailure(w, err, true)
		return
	}
	out := createReply{Message: reply.Message}
	if reply.ID != "" {
		if _, err := strconv.ParseFloat(reply.ID, 64); err == nil {
			out.ID = json.Number(reply.ID)
		} else {
			out.ID = reply.ID
		}
	}
	_ = httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleItem serves PUT and DELETE /yard-management-system/api/{resource}/{id}
// where id is base64 encoded.
func (h *Handler) HandleItem(w http.ResponseWriter, r *http.Request, name string, encodedID string) {
	if r.Method != http.MethodPut && r.Method != http.MethodDelete {
		httpx.MethodNotAllowed(http.MethodPut, http.MethodDelete)(w, r)
		return
	}
	id, err := workflow.DecodeID(encodedID)
	if err != nil {
		_ = httpx.WriteJSONMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	var reply workflow.Reply
	if r.Method == http.MethodPut {
		body, readErr := readBody(r)
		if readErr != nil {
			_ = httpx.WriteJSONMessage(w, http.StatusBadRequest, readErr.Error())
			return
		}
		reply, err = h.writer.UpdateRaw(httpx.RequestContext(r), name, id, body)
	} else {
		reply, err = h.writer.Delete(httpx.RequestContext(r), name, id)
	}
	if err != nil {
		writeFailure(w, err, false)
		return
	}
	_ = httpx.WriteJSONMessage(w, http.StatusOK, reply.Message)
}

func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes+1))
	if err != nil {
		return nil, errors.New("read request body")
	}
	if len(body) > maxRequestBytes {
		return nil, errors.New("request body too large")
	}
	if !json.Valid(body) {
		return nil, errors.New("request body must be JSON")
	}
	return body, nil
}

// writeFailure relays err. Create failures carry one joined message; update
// and delete failures carry the message list.
func writeFailure(w http.ResponseWriter, err error, joined bool) {
	var upstreamErr *Error
	if !errors.As(err, &upstreamErr) {
		_ = httpx.WriteJSONMessage(w, apperr.HTTPStatus(err), err.Error())
		return
	}
	status := upstreamErr.HTTPStatus()
	if joined {
		_ = httpx.WriteJSONMessage(w, status, upstreamErr.Joined())
		return
	}
	messages := upstreamErr.Messages()
	if len(messages) == 0 {
		_ = httpx.WriteJSONMessage(w, status, UnknownError)
		return
	}
	_ = httpx.WriteJSONMessage(w, status, messages)
}
