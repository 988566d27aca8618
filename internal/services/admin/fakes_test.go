package admin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/louisbranch/yardconsole/internal/services/admin/resource"
	"github.com/louisbranch/yardconsole/internal/services/admin/workflow"
)

const testOrigin = "http://example.com"

type createCall struct {
	resource string
	payload  workflow.CreatePayload
}

type updateCall struct {
	resource string
	id       string
	record   workflow.Draft
}

type deleteCall struct {
	resource string
	id       string
}

// fakeGateway records every write and serves canned reads.
type fakeGateway struct {
	mu sync.Mutex

	rows    map[string][]map[string]any
	details map[string]map[string]any
	options map[string][]workflow.Option

	createReply workflow.Reply
	createErr   error
	updateErr   error
	deleteErr   error
	listErr     error
	detailErr   error

	creates []createCall
	updates []updateCall
	deletes []deleteCall
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		rows:    map[string][]map[string]any{},
		details: map[string]map[string]any{},
		options: map[string][]workflow.Option{},
	}
}

func (f *fakeGateway) Create(_ context.Context, name string, payload workflow.CreatePayload) (workflow.Reply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, createCall{resource: name, payload: payload})
	if f.createErr != nil {
		return workflow.Reply{}, f.createErr
	}
	if name == resource.YardActivityCategories && f.createReply.ID != "" && len(payload.Data) > 0 {
		label := workflow.FormValue(payload.Data[0]["yardActivityCategory"])
		f.options[resource.SourceCategories] = append(f.options[resource.SourceCategories], workflow.Option{Value: f.createReply.ID, Label: label})
	}
	return f.createReply, nil
}

func (f *fakeGateway) Update(_ context.Context, name string, id string, record workflow.Draft) (workflow.Reply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, updateCall{resource: name, id: id, record: record})
	if f.updateErr != nil {
		return workflow.Reply{}, f.updateErr
	}
	return workflow.Reply{Message: "Updated"}, nil
}

func (f *fakeGateway) Delete(_ context.Context, name string, id string) (workflow.Reply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, deleteCall{resource: name, id: id})
	if f.deleteErr != nil {
		return workflow.Reply{}, f.deleteErr
	}
	if name == resource.YardActivityCategories {
		kept := f.options[resource.SourceCategories][:0]
		for _, option := range f.options[resource.SourceCategories] {
			if option.Value != id {
				kept = append(kept, option)
			}
		}
		f.options[resource.SourceCategories] = kept
	}
	return workflow.Reply{Message: "Deleted"}, nil
}

func (f *fakeGateway) List(_ context.Context, name string) ([]map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.rows[name], nil
}

func (f *fakeGateway) Detail(_ context.Context, name string, id string) (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.detailErr != nil {
		return nil, f.detailErr
	}
	return f.details[name+"/"+id], nil
}

func (f *fakeGateway) Options(_ context.Context, sourceKey string) ([]workflow.Option, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]workflow.Option(nil), f.options[sourceKey]...), nil
}

func (f *fakeGateway) createCalls() []createCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]createCall(nil), f.creates...)
}

func (f *fakeGateway) updateCalls() []updateCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]updateCall(nil), f.updates...)
}

func (f *fakeGateway) deleteCalls() []deleteCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]deleteCall(nil), f.deletes...)
}

func newTestHandler(t *testing.T, gw *fakeGateway, configure ...func(*HandlerConfig)) http.Handler {
	t.Helper()
	cfg := HandlerConfig{Gateway: gw}
	for _, fn := range configure {
		fn(&cfg)
	}
	handler, err := NewHandler(cfg)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	return handler.Routes()
}

func serve(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func getHTMX(target string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("HX-Request", "true")
	return req
}

func postForm(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Origin", testOrigin)
	return req
}

func postHTMX(target string, values url.Values) *http.Request {
	req := postForm(target, values)
	req.Header.Set("HX-Request", "true")
	return req
}

func assertContains(t *testing.T, body string, expected string) {
	t.Helper()
	if !strings.Contains(body, expected) {
		t.Fatalf("expected body to contain %q", expected)
	}
}

func assertNotContains(t *testing.T, body string, unexpected string) {
	t.Helper()
	if strings.Contains(body, unexpected) {
		t.Fatalf("expected body to not contain %q", unexpected)
	}
}
