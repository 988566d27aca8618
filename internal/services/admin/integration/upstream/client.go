// Package upstream is the HTTP client for the yard management REST API.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/louisbranch/yardconsole/internal/platform/timeouts"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/louisbranch/yardconsole/internal/services/admin/integration/upstream"

// maxBodyBytes caps how much of an upstream reply is read.
const maxBodyBytes = 4 << 20

// Envelope is the upstream reply shape.
type Envelope struct {
	Data    json.RawMessage `json:"data"`
	Message json.RawMessage `json:"message"`
	LogID   string          `json:"logId"`
}

// MessageText returns the envelope message when it is a plain string.
func (e Envelope) MessageText() string {
	var text string
	if err := json.Unmarshal(e.Message, &text); err != nil {
		return ""
	}
	return text
}

// Response is a decoded upstream reply.
type Response struct {
	Status   int
	Envelope Envelope
	// Body is the raw reply body.
	Body []byte
}

// Error reports a failed upstream call. Status is zero when no response
// arrived.
type Error struct {
	Method string
	Path   string
	Status int
	Body   []byte
	Err    error
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("upstream %s %s: %v", e.Method, e.Path, e.Err)
	}
	return fmt.Sprintf("upstream %s %s: status %d", e.Method, e.Path, e.Status)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Responded reports whether the upstream returned an HTTP response.
func (e *Error) Responded() bool {
	return e != nil && e.Status > 0
}

// Observer receives one callback per finished upstream call.
type Observer func(method string, path string, status int, elapsed time.Duration)

// Options tunes a Client.
type Options struct {
	// Timeout bounds one call; defaults to timeouts.UpstreamRequest.
	Timeout    time.Duration
	HTTPClient *http.Client
	Observer   Observer
}

// Client calls the upstream REST API, relaying the bearer token found in the
// request context.
type Client struct {
	base       *url.URL
	http       *http.Client
	timeout    time.Duration
	observer   Observer
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
}

// NewClient builds a client rooted at baseURL.
func NewClient(baseURL string, opts Options) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("upstream base url is required")
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse upstream base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("upstream base url %q must be absolute", baseURL)
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = timeouts.UpstreamRequest
	}
	return &Client{
		base:       base,
		http:       client,
		timeout:    timeout,
		observer:   opts.Observer,
		tracer:     otel.Tracer(tracerName),
		propagator: otel.GetTextMapPropagator(),
	}, nil
}

// Do sends body to path and decodes the reply envelope. Non-2xx replies are
// returned as *Error alongside the decoded response.
func (c *Client) Do(ctx context.Context, method string, path string, body []byte) (Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	ctx, span := c.tracer.Start(ctx, "upstream "+method, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.String("yard.upstream.path", path),
	)

	started := time.Now()
	resp, err := c.do(ctx, method, path, body)
	if c.observer != nil {
		c.observer(method, path, resp.Status, time.Since(started))
	}
	span.SetAttributes(attribute.Int("http.response.status_code", resp.Status))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return resp, err
}

func (c *Client) do(ctx context.Context, method string, path string, body []byte) (Response, error) {
	target, err := c.resolve(path)
	if err != nil {
		return Response{}, &Error{Method: method, Path: path, Err: err}
	}
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return Response{}, &Error{Method: method, Path: path, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := TokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	c.propagator.Inject(ctx, propagation.HeaderCarrier(req.Header))

	httpResp, err := c.http.Do(req)
	if err != nil {
		return Response{}, &Error{Method: method, Path: path, Err: err}
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodyBytes))
	if err != nil {
		return Response{Status: httpResp.StatusCode}, &Error{Method: method, Path: path, Status: httpResp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	resp := Response{Status: httpResp.StatusCode, Body: raw}
	if len(bytes.TrimSpace(raw)) > 0 {
		// A non-envelope body is kept raw for error normalization.
		_ = json.Unmarshal(raw, &resp.Envelope)
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return resp, &Error{Method: method, Path: path, Status: httpResp.StatusCode, Body: raw}
	}
	return resp, nil
}

func (c *Client) resolve(path string) (string, error) {
	rawPath, rawQuery, _ := strings.Cut(strings.TrimSpace(path), "?")
	rawPath = strings.Trim(rawPath, "/")
	if rawPath == "" {
		return "", errors.New("upstream path is required")
	}
	if _, err := url.ParseQuery(rawQuery); err != nil {
		return "", fmt.Errorf("parse query: %w", err)
	}
	target := c.base.JoinPath(rawPath)
	target.RawQuery = rawQuery
	return target.String(), nil
}

// List fetches a collection; path may carry a query string.
func (c *Client) List(ctx context.Context, path string) ([]map[string]any, error) {
	resp, err := c.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var records []map[string]any
	if len(resp.Envelope.Data) == 0 || string(resp.Envelope.Data) == "null" {
		return records, nil
	}
	if err := decodeData(resp.Envelope.Data, &records); err != nil {
		return nil, fmt.Errorf("decode %s list: %w", path, err)
	}
	return records, nil
}

// Detail fetches one record through {resource}/detail?id=.
func (c *Client) Detail(ctx context.Context, resource string, id string) (map[string]any, error) {
	path := resource + "/detail?" + url.Values{"id": {id}}.Encode()
	resp, err := c.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	var record map[string]any
	if err := decodeData(resp.Envelope.Data, &record); err != nil {
		return nil, fmt.Errorf("decode %s detail: %w", resource, err)
	}
	if record == nil {
		return nil, &Error{Method: http.MethodGet, Path: path, Status: http.StatusNotFound, Body: resp.Body}
	}
	return record, nil
}

// decodeData decodes an envelope data payload; an empty payload leaves out
// untouched.
func decodeData(raw json.RawMessage, out any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}
