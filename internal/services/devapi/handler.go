package devapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/louisbranch/yardconsole/internal/services/admin/httpx"
	"github.com/louisbranch/yardconsole/internal/services/devapi/storage/sqlite"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const (
	maxRequestBytes = 1 << 20
	defaultActor    = "devapi"
)

// Store is the record persistence the handler needs.
type Store interface {
	Insert(ctx context.Context, rec sqlite.Record) (int64, error)
	Get(ctx context.Context, resource string, id int64) (sqlite.Record, error)
	List(ctx context.Context, resource string) ([]sqlite.Record, error)
	Update(ctx context.Context, rec sqlite.Record) error
	Delete(ctx context.Context, resource string, id int64) error
}

// HandlerConfig configures the REST handler.
type HandlerConfig struct {
	Store Store
	// RequireToken rejects calls without a bearer token.
	RequireToken bool
	Now          func() time.Time
	NewLogID     func() string
	Logger       *log.Logger
}

// Handler serves the dev upstream REST surface.
type Handler struct {
	store        Store
	requireToken bool
	now          func() time.Time
	newLogID     func() string
	logger       *log.Logger
	collections  map[string]collection
}

// NewHandler validates cfg and builds a Handler.
func NewHandler(cfg HandlerConfig) (*Handler, error) {
	if cfg.Store == nil {
		return nil, errors.New("store is required")
	}
	h := &Handler{
		store:        cfg.Store,
		requireToken: cfg.RequireToken,
		now:          cfg.Now,
		newLogID:     cfg.NewLogID,
		logger:       cfg.Logger,
		collections:  defaultCollections(),
	}
	if h.now == nil {
		h.now = time.Now
	}
	if h.newLogID == nil {
		h.newLogID = uuid.NewString
	}
	if h.logger == nil {
		h.logger = log.Default()
	}
	return h, nil
}

// Routes returns the REST routes.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /{resource}", h.handleList)
	mux.HandleFunc("GET /{resource}/detail", h.handleDetail)
	mux.HandleFunc("POST /{resource}", h.handleCreate)
	mux.HandleFunc("PUT /{resource}/{id}", h.handleUpdate)
	mux.HandleFunc("DELETE /{resource}/{id}", h.handleDelete)
	return h.requireBearer(mux)
}

type envelope struct {
	Data    any    `json:"data"`
	Message string `json:"message"`
	LogID   string `json:"logId"`
}

type listMessage struct {
	ListMessage []string `json:"listMessage"`
}

type createdID struct {
	ID int64 `json:"id"`
}

type createdData struct {
	Raw []createdID `json:"raw"`
}

// apiError is a failure relayed to the caller as data.listMessage.
type apiError struct {
	status   int
	messages []string
}

func (e *apiError) Error() string {
	return strings.Join(e.messages, ", ")
}

func fail(status int, messages ...string) *apiError {
	return &apiError{status: status, messages: messages}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	coll, ok := h.collection(w, r)
	if !ok {
		return
	}
	records, err := h.store.List(r.Context(), coll.name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	refs := newReferences(h.store)
	filters := r.URL.Query()
	out := make([]json.RawMessage, 0, len(records))
	for _, rec := range records {
		body, err := h.render(r.Context(), coll, rec, refs)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		if !matches(body, filters) {
			continue
		}
		out = append(out, body)
	}
	h.writeData(w, http.StatusOK, out, "OK")
}

func (h *Handler) handleDetail(w http.ResponseWriter, r *http.Request) {
	coll, ok := h.collection(w, r)
	if !ok {
		return
	}
	id, err := parseID(r.URL.Query().Get("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	rec, err := h.store.Get(r.Context(), coll.name, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	body, err := h.render(r.Context(), coll, rec, newReferences(h.store))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeData(w, http.StatusOK, json.RawMessage(body), "OK")
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	coll, ok := h.collection(w, r)
	if !ok {
		return
	}
	raw, err := readBody(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	items := gjson.GetBytes(raw, "data")
	if !items.IsArray() {
		h.writeError(w, r, fail(http.StatusBadRequest, `body must be {"data": [...]}`))
		return
	}

	now := h.now().UTC()
	actor := actorOf(r)
	created := createdData{Raw: []createdID{}}
	for _, item := range items.Array() {
		doc, err := coll.normalize([]byte(item.Raw))
		if err != nil {
			h.writeError(w, r, fail(http.StatusBadRequest, err.Error()))
			return
		}
		if messages := coll.validate(doc); len(messages) > 0 {
			h.writeError(w, r, fail(http.StatusBadRequest, messages...))
			return
		}
		doc, err = stamp(doc, "createdBy", actor, "createdAt", now)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		id, err := h.store.Insert(r.Context(), sqlite.Record{
			Resource:  coll.name,
			Key:       coll.key(doc),
			Body:      doc,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if errors.Is(err, sqlite.ErrAlreadyExists) {
			h.writeError(w, r, fail(http.StatusBadRequest, coll.duplicateMessage(doc)))
			return
		}
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		created.Raw = append(created.Raw, createdID{ID: id})
	}
	h.writeData(w, http.StatusOK, created, "Created")
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	coll, ok := h.collection(w, r)
	if !ok {
		return
	}
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	raw, err := readBody(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	existing, err := h.store.Get(r.Context(), coll.name, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	doc, err := coll.normalize(raw)
	if err != nil {
		h.writeError(w, r, fail(http.StatusBadRequest, err.Error()))
		return
	}
	if messages := coll.validate(doc); len(messages) > 0 {
		h.writeError(w, r, fail(http.StatusBadRequest, messages...))
		return
	}
	for _, field := range []string{"createdBy", "createdAt"} {
		if prior := gjson.GetBytes(existing.Body, field); prior.Exists() {
			if doc, err = sjson.SetRawBytes(doc, field, []byte(prior.Raw)); err != nil {
				h.writeError(w, r, err)
				return
			}
		}
	}
	now := h.now().UTC()
	if doc, err = stamp(doc, "updatedBy", actorOf(r), "updatedAt", now); err != nil {
		h.writeError(w, r, err)
		return
	}
	err = h.store.Update(r.Context(), sqlite.Record{
		ID:        id,
		Resource:  coll.name,
		Key:       coll.key(doc),
		Body:      doc,
		UpdatedAt: now,
	})
	if errors.Is(err, sqlite.ErrAlreadyExists) {
		h.writeError(w, r, fail(http.StatusBadRequest, coll.duplicateMessage(doc)))
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeData(w, http.StatusOK, nil, "Updated")
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	coll, ok := h.collection(w, r)
	if !ok {
		return
	}
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if _, err := h.store.Get(r.Context(), coll.name, id); err != nil {
		h.writeError(w, r, err)
		return
	}
	for _, ref := range coll.referencedBy {
		count, err := h.countReferences(r.Context(), ref, id)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		if count > 0 {
			h.writeError(w, r, fail(http.StatusBadRequest, fmt.Sprintf("%s %d is used by %d %s", coll.name, id, count, ref.resource)))
			return
		}
	}
	if err := h.store.Delete(r.Context(), coll.name, id); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeData(w, http.StatusOK, nil, "Deleted")
}

func (h *Handler) collection(w http.ResponseWriter, r *http.Request) (collection, bool) {
	name := r.PathValue("resource")
	coll, ok := h.collections[name]
	if !ok {
		h.writeError(w, r, fail(http.StatusNotFound, fmt.Sprintf("unknown resource %q", name)))
		return collection{}, false
	}
	return coll, true
}

func (h *Handler) countReferences(ctx context.Context, ref reference, id int64) (int, error) {
	records, err := h.store.List(ctx, ref.resource)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, rec := range records {
		if gjson.GetBytes(rec.Body, ref.field).Int() == id {
			count++
		}
	}
	return count, nil
}

// render adds the id, derived lookup fields and seq to a stored body.
func (h *Handler) render(ctx context.Context, coll collection, rec sqlite.Record, refs *references) ([]byte, error) {
	body, err := sjson.SetBytes(rec.Body, "id", rec.ID)
	if err != nil {
		return nil, fmt.Errorf("render id: %w", err)
	}
	if coll.seq {
		if body, err = sjson.SetBytes(body, "seq", rec.ID); err != nil {
			return nil, fmt.Errorf("render seq: %w", err)
		}
	}
	for _, lk := range coll.lookups {
		refID := gjson.GetBytes(body, lk.idField).Int()
		if refID <= 0 {
			continue
		}
		value, ok, err := refs.field(ctx, lk.resource, refID, lk.field)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		if body, err = sjson.SetBytes(body, lk.as, value); err != nil {
			return nil, fmt.Errorf("render %s: %w", lk.as, err)
		}
	}
	return body, nil
}

func (h *Handler) writeData(w http.ResponseWriter, status int, data any, message string) {
	_ = httpx.WriteJSON(w, status, envelope{Data: data, Message: message, LogID: h.newLogID()})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *apiError
	switch {
	case errors.As(err, &apiErr):
	case errors.Is(err, sqlite.ErrNotFound):
		apiErr = fail(http.StatusNotFound, "record not found")
	default:
		apiErr = fail(http.StatusInternalServerError, "internal error")
	}
	logID := h.newLogID()
	if apiErr.status >= http.StatusInternalServerError {
		h.logger.Printf("devapi %s %s failed log_id=%s: %v", r.Method, r.URL.Path, logID, err)
	}
	_ = httpx.WriteJSON(w, apiErr.status, envelope{
		Data:    listMessage{ListMessage: apiErr.messages},
		Message: http.StatusText(apiErr.status),
		LogID:   logID,
	})
}

func (h *Handler) requireBearer(next http.Handler) http.Handler {
	if !h.requireToken {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/healthz" && bearerToken(r) == "" {
			h.writeError(w, r, fail(http.StatusUnauthorized, "missing bearer token"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// references memoizes referenced collections for one request.
type references struct {
	store  Store
	loaded map[string]map[int64][]byte
}

func newReferences(store Store) *references {
	return &references{store: store, loaded: map[string]map[int64][]byte{}}
}

func (r *references) field(ctx context.Context, resource string, id int64, field string) (string, bool, error) {
	bodies, ok := r.loaded[resource]
	if !ok {
		records, err := r.store.List(ctx, resource)
		if err != nil {
			return "", false, err
		}
		bodies = make(map[int64][]byte, len(records))
		for _, rec := range records {
			bodies[rec.ID] = rec.Body
		}
		r.loaded[resource] = bodies
	}
	body, ok := bodies[id]
	if !ok {
		return "", false, nil
	}
	value := gjson.GetBytes(body, field)
	if !value.Exists() {
		return "", false, nil
	}
	return value.String(), true, nil
}

// matches applies top-level equality filters.
func matches(body []byte, filters map[string][]string) bool {
	for field, values := range filters {
		if len(values) == 0 {
			continue
		}
		if gjson.GetBytes(body, field).String() != values[0] {
			return false
		}
	}
	return true
}

func stamp(doc []byte, byField string, actor string, atField string, at time.Time) ([]byte, error) {
	doc, err := sjson.SetBytes(doc, byField, actor)
	if err != nil {
		return nil, fmt.Errorf("stamp %s: %w", byField, err)
	}
	doc, err = sjson.SetBytes(doc, atField, at.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("stamp %s: %w", atField, err)
	}
	return doc, nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fail(http.StatusBadRequest, fmt.Sprintf("invalid id %q", raw))
	}
	return id, nil
}

func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes+1))
	if err != nil {
		return nil, fail(http.StatusBadRequest, "read request body")
	}
	if len(body) > maxRequestBytes {
		return nil, fail(http.StatusRequestEntityTooLarge, "request body too large")
	}
	if !gjson.ValidBytes(body) {
		return nil, fail(http.StatusBadRequest, "request body must be JSON")
	}
	return body, nil
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

// actorOf names the caller from unverified token claims for audit stamps.
func actorOf(r *http.Request) string {
	token := bearerToken(r)
	if token == "" {
		return defaultActor
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return defaultActor
	}
	for _, key := range []string{"preferred_username", "email", "sub"} {
		if value, ok := claims[key].(string); ok && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return defaultActor
}
