package devapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/louisbranch/yardconsole/internal/services/admin/gateway"
	"github.com/louisbranch/yardconsole/internal/services/admin/integration/upstream"
	"github.com/louisbranch/yardconsole/internal/services/admin/resource"
	"github.com/louisbranch/yardconsole/internal/services/admin/workflow"
)

func TestNewServerValidatesConfig(t *testing.T) {
	t.Parallel()

	if _, err := NewServer(context.Background(), Config{DBPath: filepath.Join(t.TempDir(), "a.db")}); err == nil {
		t.Fatal("expected error for missing http address")
	}
	if _, err := NewServer(context.Background(), Config{HTTPAddr: ":0"}); err == nil {
		t.Fatal("expected error for missing db path")
	}
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	t.Parallel()

	server, err := NewServer(context.Background(), Config{
		HTTPAddr: "127.0.0.1:0",
		DBPath:   filepath.Join(t.TempDir(), "nested", "devapi.db"),
		Seed:     true,
	})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := server.ListenAndServe(ctx); err != nil {
		t.Fatalf("listen and serve: %v", err)
	}
}

// TestConsoleGatewayAgainstDevAPI drives the console gateway over real HTTP
// into the dev upstream.
func TestConsoleGatewayAgainstDevAPI(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	if _, err := SeedDefaults(context.Background(), store, fixedNow); err != nil {
		t.Fatalf("seed defaults: %v", err)
	}
	h, err := NewHandler(HandlerConfig{Store: store, RequireToken: true})
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	api := httptest.NewServer(h.Routes())
	t.Cleanup(api.Close)

	client, err := upstream.NewClient(api.URL, upstream.Options{})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	service, err := gateway.NewService(client, resource.Default())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	ctx := upstream.WithToken(context.Background(), "dev-token")

	yardTypes, err := service.Options(ctx, resource.SourceYardTypes)
	if err != nil {
		t.Fatalf("yard type options: %v", err)
	}
	if diff := cmp.Diff([]workflow.Option{{Value: "ESTATE", Label: "ESTATE"}, {Value: "YARD", Label: "YARD"}}, yardTypes); diff != "" {
		t.Fatalf("yard type options mismatch (-want +got):\n%s", diff)
	}

	reply, err := service.Create(ctx, resource.YardActivityCategories, workflow.CreatePayload{
		Data: []workflow.Draft{{"yardActivityCategory": "FUEL", "isCreateTaskDoc": true}},
	})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	if reply.ID != "1" {
		t.Fatalf("category id = %q, want 1", reply.ID)
	}
	categories, err := service.Options(ctx, resource.SourceCategories)
	if err != nil {
		t.Fatalf("category options: %v", err)
	}
	if diff := cmp.Diff([]workflow.Option{{Value: "1", Label: "FUEL"}}, categories); diff != "" {
		t.Fatalf("category options mismatch (-want +got):\n%s", diff)
	}

	_, err = service.Create(ctx, resource.YardActivityCategories, workflow.CreatePayload{
		Data: []workflow.Draft{{"yardActivityCategory": "FUEL", "isCreateTaskDoc": false}},
	})
	var upstreamErr *gateway.Error
	if !errors.As(err, &upstreamErr) {
		t.Fatalf("duplicate create error = %v, want gateway error", err)
	}
	if upstreamErr.Status != http.StatusBadRequest || upstreamErr.Joined() != "yardActivityCategory FUEL already exists" {
		t.Fatalf("duplicate create = %d %q", upstreamErr.Status, upstreamErr.Joined())
	}

	if _, err := service.Update(ctx, resource.YardActivityCategories, "1", workflow.Draft{"yardActivityCategory": "DIESEL", "isCreateTaskDoc": true}); err != nil {
		t.Fatalf("update category: %v", err)
	}
	record, err := service.Detail(ctx, resource.YardActivityCategories, "1")
	if err != nil {
		t.Fatalf("detail category: %v", err)
	}
	if record["yardActivityCategory"] != "DIESEL" || record["updatedBy"] != "devapi" {
		t.Fatalf("detail = %v", record)
	}

	if _, err := service.Delete(ctx, resource.YardActivityCategories, "1"); err != nil {
		t.Fatalf("delete category: %v", err)
	}
	if _, err := service.Detail(ctx, resource.YardActivityCategories, "1"); err == nil {
		t.Fatal("expected detail of deleted record to fail")
	}
}
