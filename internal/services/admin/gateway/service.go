package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/louisbranch/yardconsole/internal/services/admin/apperr"
	"github.com/louisbranch/yardconsole/internal/services/admin/integration/upstream"
	"github.com/louisbranch/yardconsole/internal/services/admin/resource"
	"github.com/louisbranch/yardconsole/internal/services/admin/workflow"
	"github.com/tidwall/gjson"
)

// Client is the upstream API surface the gateway consumes.
type Client interface {
	Do(ctx context.Context, method string, path string, body []byte) (upstream.Response, error)
	List(ctx context.Context, path string) ([]map[string]any, error)
	Detail(ctx context.Context, resource string, id string) (map[string]any, error)
}

// Service relays console operations to the upstream API.
type Service struct {
	client   Client
	registry *resource.Registry
	metrics  *Metrics
	logger   *log.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics records gateway writes on m.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLogger routes upstream failure logs to logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService builds a gateway over client for the resources in registry.
func NewService(client Client, registry *resource.Registry, opts ...Option) (*Service, error) {
	if client == nil {
		return nil, errors.New("upstream client is required")
	}
	if registry == nil {
		return nil, errors.New("resource registry is required")
	}
	s := &Service{client: client, registry: registry}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Create sends POST {resource} with the batch payload.
func (s *Service) Create(ctx context.Context, name string, payload workflow.CreatePayload) (workflow.Reply, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return workflow.Reply{}, apperr.Wrap(apperr.KindInvalidInput, "encode create payload", err)
	}
	return s.CreateRaw(ctx, name, body)
}

// CreateRaw sends an already encoded {"data": [...]} body to POST {resource}.
func (s *Service) CreateRaw(ctx context.Context, name string, body []byte) (workflow.Reply, error) {
	def, err := s.definition(name)
	if err != nil {
		return workflow.Reply{}, err
	}
	if !gjson.ValidBytes(body) || !gjson.GetBytes(body, "data").IsArray() {
		return workflow.Reply{}, apperr.E(apperr.KindInvalidInput, "body must be {\"data\": [...]}")
	}
	resp, err := s.send(ctx, http.MethodPost, def.Resource, def.Resource, body)
	if err != nil {
		return workflow.Reply{}, err
	}
	reply := workflow.Reply{Message: resp.Envelope.MessageText()}
	if def.ReturnsID {
		reply.ID = gjson.GetBytes(resp.Body, "data.raw.0.id").String()
	}
	return reply, nil
}

// Update sends PUT {resource}/{id} with the draft.
func (s *Service) Update(ctx context.Context, name string, id string, record workflow.Draft) (workflow.Reply, error) {
	body, err := json.Marshal(record)
	if err != nil {
		return workflow.Reply{}, apperr.Wrap(apperr.KindInvalidInput, "encode record", err)
	}
	return s.UpdateRaw(ctx, name, id, body)
}

// UpdateRaw sends an already encoded record to PUT {resource}/{id}.
func (s *Service) UpdateRaw(ctx context.Context, name string, id string, body []byte) (workflow.Reply, error) {
	def, err := s.definition(name)
	if err != nil {
		return workflow.Reply{}, err
	}
	if !gjson.ValidBytes(body) || !gjson.ParseBytes(body).IsObject() {
		return workflow.Reply{}, apperr.E(apperr.KindInvalidInput, "body must be a JSON object")
	}
	path, err := itemPath(def.Resource, id)
	if err != nil {
		return workflow.Reply{}, err
	}
	resp, err := s.send(ctx, http.MethodPut, def.Resource, path, body)
	if err != nil {
		return workflow.Reply{}, err
	}
	return workflow.Reply{Message: resp.Envelope.MessageText()}, nil
}

// Delete sends DELETE {resource}/{id}.
func (s *Service) Delete(ctx context.Context, name string, id string) (workflow.Reply, error) {
	def, err := s.definition(name)
	if err != nil {
		return workflow.Reply{}, err
	}
	path, err := itemPath(def.Resource, id)
	if err != nil {
		return workflow.Reply{}, err
	}
	resp, err := s.send(ctx, http.MethodDelete, def.Resource, path, nil)
	if err != nil {
		return workflow.Reply{}, err
	}
	return workflow.Reply{Message: resp.Envelope.MessageText()}, nil
}

// List fetches the rows of a resource collection.
func (s *Service) List(ctx context.Context, name string) ([]map[string]any, error) {
	def, err := s.definition(name)
	if err != nil {
		return nil, err
	}
	rows, err := s.client.List(ctx, def.Resource)
	if err != nil {
		normalized := Normalize(err)
		s.logFailure(http.MethodGet, def.Resource, normalized)
		return nil, normalized
	}
	return rows, nil
}

// Detail fetches one record to seed an update form.
func (s *Service) Detail(ctx context.Context, name string, id string) (map[string]any, error) {
	def, err := s.definition(name)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(id) == "" {
		return nil, apperr.E(apperr.KindInvalidInput, "id is required")
	}
	record, err := s.client.Detail(ctx, def.Resource, id)
	if err != nil {
		normalized := Normalize(err)
		s.logFailure(http.MethodGet, def.Resource, normalized)
		if normalized.Status == http.StatusNotFound {
			return nil, apperr.Wrap(apperr.KindNotFound, "record not found", normalized)
		}
		return nil, normalized
	}
	return record, nil
}

// Options loads the choices of a named option source.
func (s *Service) Options(ctx context.Context, sourceKey string) ([]workflow.Option, error) {
	source, ok := s.registry.Source(sourceKey)
	if !ok {
		return nil, apperr.E(apperr.KindNotFound, fmt.Sprintf("unknown option source %q", sourceKey))
	}
	records, err := s.client.List(ctx, source.Target())
	if err != nil {
		normalized := Normalize(err)
		s.logFailure(http.MethodGet, source.Path, normalized)
		return nil, normalized
	}
	return source.Options(records), nil
}

// OptionLoader adapts Options to workflow.OptionLoader.
func (s *Service) OptionLoader(sourceKey string) workflow.OptionLoader {
	return func(ctx context.Context) ([]workflow.Option, error) {
		return s.Options(ctx, sourceKey)
	}
}

// Registry returns the resource registry the service routes against.
func (s *Service) Registry() *resource.Registry {
	return s.registry
}

func (s *Service) definition(name string) (resource.Definition, error) {
	def, ok := s.registry.ByResource(strings.TrimSpace(name))
	if !ok {
		return resource.Definition{}, apperr.E(apperr.KindNotFound, fmt.Sprintf("unknown resource %q", name))
	}
	return def, nil
}

func (s *Service) send(ctx context.Context, method string, name string, path string, body []byte) (upstream.Response, error) {
	resp, err := s.client.Do(ctx, method, path, body)
	if err != nil {
		normalized := Normalize(err)
		s.metrics.countRequest(name, method, normalized.HTTPStatus())
		s.logFailure(method, path, normalized)
		return resp, normalized
	}
	s.metrics.countRequest(name, method, resp.Status)
	return resp, nil
}

func (s *Service) logFailure(method string, path string, err *Error) {
	printf := log.Printf
	if s.logger != nil {
		printf = s.logger.Printf
	}
	logID := err.LogID
	if logID == "" {
		logID = "-"
	}
	printf("upstream failure method=%s path=%s status=%d log_id=%s err=%v", method, path, err.Status, logID, err.Err)
}

func itemPath(name string, id string) (string, error) {
	id = strings.TrimSpace(id)
	switch id {
	case "":
		return "", apperr.E(apperr.KindInvalidInput, "id is required")
	case ".", "..":
		// Dot segments would resolve to another upstream path.
		return "", apperr.E(apperr.KindInvalidInput, "id is not a valid path segment")
	}
	return name + "/" + url.PathEscape(id), nil
}
