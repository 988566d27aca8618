package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/louisbranch/yardconsole/internal/services/admin/apperr"
	"github.com/louisbranch/yardconsole/internal/services/admin/integration/upstream"
	"github.com/louisbranch/yardconsole/internal/services/admin/resource"
	"github.com/louisbranch/yardconsole/internal/services/admin/workflow"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type seenRequest struct {
	Method string
	Path   string
	Body   string
}

type fakeUpstream struct {
	mu     sync.Mutex
	seen   []seenRequest
	status int
	body   string
}

func (f *fakeUpstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.seen = append(f.seen, seenRequest{Method: r.Method, Path: r.URL.RequestURI(), Body: string(raw)})
	status, body := f.status, f.body
	f.mu.Unlock()
	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func (f *fakeUpstream) requests() []seenRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]seenRequest(nil), f.seen...)
}

func newService(t *testing.T, up *fakeUpstream, opts ...Option) (*Service, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(up)
	t.Cleanup(srv.Close)
	client, err := upstream.NewClient(srv.URL, upstream.Options{})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	opts = append([]Option{WithLogger(log.New(io.Discard, "", 0))}, opts...)
	svc, err := NewService(client, resource.Default(), opts...)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, srv
}

func serve(h *Handler, method string, target string, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	rr := httptest.NewRecorder()
	name, id, _ := strings.Cut(strings.TrimPrefix(target, "/yard-management-system/api/"), "/")
	if id == "" {
		h.HandleCollection(rr, req, name)
	} else {
		h.HandleItem(rr, req, name, id)
	}
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return out
}

func encoded(id string) string {
	return base64.StdEncoding.EncodeToString([]byte(id))
}

func TestPutFailureRelaysMessageList(t *testing.T) {
	t.Parallel()

	up := &fakeUpstream{status: http.StatusBadRequest, body: `{"data":{"listMessage":["a","b"]},"message":"Bad Request","logId":"L1"}`}
	svc, _ := newService(t, up)

	rr := serve(NewHandler(svc), http.MethodPut, "/yard-management-system/api/yards/"+encoded("5"), `{"yardCode":"X"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
	if diff := cmp.Diff(map[string]any{"message": []any{"a", "b"}}, decode(t, rr)); diff != "" {
		t.Fatalf("body mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]seenRequest{{Method: http.MethodPut, Path: "/yards/5", Body: `{"yardCode":"X"}`}}, up.requests()); diff != "" {
		t.Fatalf("upstream requests mismatch (-want +got):\n%s", diff)
	}
}

func TestItemFailureShapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
		want   any
	}{
		{name: "message only", status: http.StatusConflict, body: `{"data":null,"message":"in use"}`, want: []any{"in use"}},
		{name: "empty list falls back", status: http.StatusBadRequest, body: `{"data":{"listMessage":[]},"message":"bad"}`, want: []any{"bad"}},
		{name: "no message", status: http.StatusInternalServerError, body: `not json`, want: "Unknown Error!"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			svc, _ := newService(t, &fakeUpstream{status: tc.status, body: tc.body})
			rr := serve(NewHandler(svc), http.MethodDelete, "/yard-management-system/api/yard-cards/"+encoded("9"), "")
			if rr.Code != tc.status {
				t.Fatalf("status = %d, want %d", rr.Code, tc.status)
			}
			if diff := cmp.Diff(map[string]any{"message": tc.want}, decode(t, rr)); diff != "" {
				t.Fatalf("body mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPostFailureJoinsMessages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "list", body: `{"data":{"listMessage":["yardCode exists","yardName too long"]},"message":"Bad"}`, want: "yardCode exists, yardName too long"},
		{name: "message", body: `{"data":null,"message":"Bad"}`, want: "Bad"},
		{name: "nothing", body: `{}`, want: "Unknown Error!"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			svc, _ := newService(t, &fakeUpstream{status: http.StatusUnprocessableEntity, body: tc.body})
			rr := serve(NewHandler(svc), http.MethodPost, "/yard-management-system/api/yards", `{"data":[{"yardCode":"A"}]}`)
			if rr.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d, want %d", rr.Code, http.StatusUnprocessableEntity)
			}
			if diff := cmp.Diff(map[string]any{"message": tc.want}, decode(t, rr)); diff != "" {
				t.Fatalf("body mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPostSuccessReturnsCategoryID(t *testing.T) {
	t.Parallel()

	up := &fakeUpstream{body: `{"data":{"raw":[{"id":42}]},"message":"Created","logId":"x"}`}
	svc, _ := newService(t, up)

	rr := serve(NewHandler(svc), http.MethodPost, "/yard-management-system/api/yard-activity-categories", `{"data":[{"yardActivityCategory":"FUEL","isCreateTaskDoc":true}]}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if diff := cmp.Diff(map[string]any{"message": "Created", "id": float64(42)}, decode(t, rr)); diff != "" {
		t.Fatalf("body mismatch (-want +got):\n%s", diff)
	}

	rr = serve(NewHandler(svc), http.MethodPost, "/yard-management-system/api/yards", `{"data":[{"yardCode":"A"}]}`)
	if diff := cmp.Diff(map[string]any{"message": "Created"}, decode(t, rr)); diff != "" {
		t.Fatalf("yards body mismatch (-want +got):\n%s", diff)
	}
}

func TestNoUpstreamResponseIsBadGateway(t *testing.T) {
	t.Parallel()

	svc, srv := newService(t, &fakeUpstream{})
	srv.Close()

	for _, method := range []string{http.MethodPost, http.MethodPut} {
		target := "/yard-management-system/api/settings"
		if method == http.MethodPut {
			target += "/" + encoded("1")
		}
		rr := serve(NewHandler(svc), method, target, `{"data":[{}]}`)
		if rr.Code != http.StatusBadGateway {
			t.Fatalf("%s status = %d, want %d", method, rr.Code, http.StatusBadGateway)
		}
		if diff := cmp.Diff(map[string]any{"message": "Unknown Error!"}, decode(t, rr)); diff != "" {
			t.Fatalf("%s body mismatch (-want +got):\n%s", method, diff)
		}
	}
}

func TestHandlerRejectsBadRequests(t *testing.T) {
	t.Parallel()

	up := &fakeUpstream{}
	svc, _ := newService(t, up)
	h := NewHandler(svc)

	tests := []struct {
		name   string
		method string
		target string
		body   string
		want   int
	}{
		{name: "unknown resource", method: http.MethodPost, target: "/yard-management-system/api/widgets", body: `{"data":[]}`, want: http.StatusNotFound},
		{name: "malformed json", method: http.MethodPost, target: "/yard-management-system/api/yards", body: `{"data":`, want: http.StatusBadRequest},
		{name: "missing data array", method: http.MethodPost, target: "/yard-management-system/api/yards", body: `{"yardCode":"A"}`, want: http.StatusBadRequest},
		{name: "invalid id", method: http.MethodDelete, target: "/yard-management-system/api/yards/!!!", want: http.StatusBadRequest},
		{name: "dot id", method: http.MethodDelete, target: "/yard-management-system/api/yards/" + encoded("."), want: http.StatusBadRequest},
		{name: "dot-dot id", method: http.MethodPut, target: "/yard-management-system/api/yards/" + encoded(".."), body: `{"yardCode":"X"}`, want: http.StatusBadRequest},
		{name: "put array body", method: http.MethodPut, target: "/yard-management-system/api/yards/" + encoded("1"), body: `[]`, want: http.StatusBadRequest},
		{name: "get collection", method: http.MethodGet, target: "/yard-management-system/api/yards", want: http.StatusMethodNotAllowed},
		{name: "post item", method: http.MethodPost, target: "/yard-management-system/api/yards/" + encoded("1"), body: `{}`, want: http.StatusMethodNotAllowed},
	}
	for _, tc := range tests {
		rr := serve(h, tc.method, tc.target, tc.body)
		if rr.Code != tc.want {
			t.Fatalf("%s: status = %d, want %d (body %s)", tc.name, rr.Code, tc.want, rr.Body.String())
		}
	}
	if got := up.requests(); len(got) != 0 {
		t.Fatalf("upstream requests = %+v, want none", got)
	}
}

func TestServiceFeedsFormController(t *testing.T) {
	t.Parallel()

	up := &fakeUpstream{body: `{"data":null,"message":"Yard saved"}`}
	svc, _ := newService(t, up)
	def, _ := svc.Registry().ByKey(resource.KeyEvent)

	notices := make(chan workflow.Notice, 1)
	form, err := workflow.NewFormController(workflow.FormConfig{
		Resource: def.Resource,
		Schema:   def.Schema,
		Mode:     workflow.ModeUpdate,
		RecordID: "3",
		Store:    svc,
		Notifier: workflow.NotifierFunc(func(n workflow.Notice) { notices <- n }),
	}, workflow.Draft{"yardEvent": "GATE_IN", "yardEventDesc": "Gate in", "subToKafkaTopic": "yard.gate"})
	if err != nil {
		t.Fatalf("NewFormController: %v", err)
	}
	defer form.Close()

	result, err := form.Submit(context.Background())
	if err != nil || result.Outcome != workflow.OutcomeSaved {
		t.Fatalf("Submit = %+v, %v", result, err)
	}
	if got := <-notices; got.Message != "Yard saved" {
		t.Fatalf("notice = %+v", got)
	}
	seen := up.requests()
	if len(seen) != 1 || seen[0].Method != http.MethodPut || seen[0].Path != "/yard-events/3" {
		t.Fatalf("upstream requests = %+v", seen)
	}
	var body map[string]any
	if err := json.Unmarshal([]byte(seen[0].Body), &body); err != nil || body["yardEvent"] != "GATE_IN" {
		t.Fatalf("body = %s (%v)", seen[0].Body, err)
	}
}

func TestServiceFailureCarriesMessages(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t, &fakeUpstream{status: http.StatusBadRequest, body: `{"data":{"listMessage":["a","b"]}}`})
	_, err := svc.Create(context.Background(), resource.Settings, workflow.CreatePayload{Data: []workflow.Draft{{"settingId": "x"}}})
	if got := workflow.FailureMessage(err, nil); got != "a, b" {
		t.Fatalf("FailureMessage() = %q, want %q", got, "a, b")
	}
}

func TestDetailNotFound(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t, &fakeUpstream{body: `{"data":null}`})
	_, err := svc.Detail(context.Background(), resource.Yards, "99")
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("Detail error = %v, want not found", err)
	}
}

func TestOptionsMapsRecords(t *testing.T) {
	t.Parallel()

	up := &fakeUpstream{body: `{"data":[{"id":1,"yardCode":"EST1"},{"id":2,"yardCode":"EST2"}]}`}
	svc, _ := newService(t, up)

	options, err := svc.OptionLoader(resource.SourceEstates)(context.Background())
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	want := []workflow.Option{{Value: "1", Label: "EST1"}, {Value: "2", Label: "EST2"}}
	if diff := cmp.Diff(want, options); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
	if got := up.requests()[0].Path; got != "/yards?yardType=ESTATE" {
		t.Fatalf("path = %q, want %q", got, "/yards?yardType=ESTATE")
	}
	if _, err := svc.Options(context.Background(), "nope"); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("unknown source error = %v", err)
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	if Normalize(nil) != nil {
		t.Fatal("Normalize(nil) != nil")
	}
	plain := Normalize(errors.New("dial"))
	if plain.Status != 0 || plain.HTTPStatus() != http.StatusBadGateway || plain.Joined() != UnknownError {
		t.Fatalf("Normalize(plain) = %+v", plain)
	}
	responded := Normalize(&upstream.Error{Status: 400, Body: []byte(`{"message":["x"," y "],"logId":"L"}`)})
	if responded.Message != "x, y" || responded.LogID != "L" {
		t.Fatalf("Normalize(array message) = %+v", responded)
	}
	if again := Normalize(responded); again != responded {
		t.Fatal("Normalize(*Error) should return the same value")
	}
}

func TestFailureIsLoggedWithLogID(t *testing.T) {
	t.Parallel()

	var buffer bytes.Buffer
	svc, _ := newService(t, &fakeUpstream{status: http.StatusConflict, body: `{"message":"dup","logId":"log-7"}`}, WithLogger(log.New(&buffer, "", 0)))
	_, _ = svc.Delete(context.Background(), resource.YardEvents, "4")
	if got := buffer.String(); !strings.Contains(got, "status=409") || !strings.Contains(got, "log_id=log-7") {
		t.Fatalf("log = %q", got)
	}
}

func TestMetricsCountWrites(t *testing.T) {
	t.Parallel()

	metrics := NewMetrics()
	svc, _ := newService(t, &fakeUpstream{body: `{"message":"ok"}`}, WithMetrics(metrics))
	_, _ = svc.Delete(context.Background(), resource.YardCards, "1")
	_, _ = svc.Delete(context.Background(), resource.YardCards, "2")

	if got := testutil.ToFloat64(metrics.requests.WithLabelValues(resource.YardCards, http.MethodDelete, "200")); got != 2 {
		t.Fatalf("requests_total = %v, want 2", got)
	}
	metrics.ObserveUpstream(http.MethodGet, "yards/detail?id=3", 200, 0)
	if got := testutil.CollectAndCount(metrics.upstream); got != 1 {
		t.Fatalf("upstream series = %d, want 1", got)
	}

	rr := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rr.Body.String(), "yard_console_gateway_requests_total") {
		t.Fatalf("metrics body missing counter:\n%s", rr.Body.String())
	}
}

func TestResourceLabel(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"yards":                "yards",
		"/yard-cards/12":       "yard-cards",
		"settings?settingId=x": "settings",
		"yards/detail?id=3":    "yards",
		"":                     "unknown",
	}
	for in, want := range tests {
		if got := resourceLabel(in); got != want {
			t.Fatalf("resourceLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestItemPathRejectsDotSegments(t *testing.T) {
	t.Parallel()

	up := &fakeUpstream{body: `{"message":"Deleted"}`}
	svc, _ := newService(t, up)
	for _, id := range []string{".", "..", " .. "} {
		_, err := svc.Delete(context.Background(), "yards", id)
		if apperr.KindOf(err) != apperr.KindInvalidInput {
			t.Fatalf("Delete(%q) error = %v, want invalid input", id, err)
		}
	}
	if _, err := svc.Delete(context.Background(), "yards", "..."); err != nil {
		t.Fatalf("Delete(...) error = %v", err)
	}
	if diff := cmp.Diff([]seenRequest{{Method: http.MethodDelete, Path: "/yards/..."}}, up.requests()); diff != "" {
		t.Fatalf("upstream requests mismatch (-want +got):\n%s", diff)
	}
}
