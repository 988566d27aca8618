package otel

import (
	"context"
	"strings"
	"testing"
)

func TestSetup_NoopWhenEndpointEmpty(t *testing.T) {
	t.Setenv("YARD_OTEL_ENDPOINT", "")
	t.Setenv("YARD_OTEL_ENABLED", "")

	shutdown, err := Setup(context.Background(), "test-service")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetup_NoopWhenExplicitlyDisabled(t *testing.T) {
	t.Setenv("YARD_OTEL_ENDPOINT", "http://localhost:4318")
	t.Setenv("YARD_OTEL_ENABLED", "false")

	shutdown, err := Setup(context.Background(), "test-service")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetup_CreatesProviderWhenEndpointSet(t *testing.T) {
	// Non-routable address so no export actually happens.
	t.Setenv("YARD_OTEL_ENDPOINT", "http://192.0.2.1:4318")
	t.Setenv("YARD_OTEL_ENABLED", "")

	shutdown, err := Setup(context.Background(), "test-service")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown error: %v", err)
	}
}

func TestSetup_RejectsMalformedSettings(t *testing.T) {
	t.Setenv("YARD_OTEL_SAMPLE_RATIO", "lots")

	_, err := Setup(context.Background(), "test-service")
	if err == nil {
		t.Fatal("expected malformed sample ratio to fail")
	}
	if !strings.Contains(err.Error(), "otel settings") {
		t.Fatalf("error = %v, want otel settings prefix", err)
	}
}

func TestSamplerBounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ratio float64
		want  string
	}{
		{ratio: 1, want: "AlwaysOnSampler"},
		{ratio: 2, want: "AlwaysOnSampler"},
		{ratio: 0, want: "AlwaysOffSampler"},
		{ratio: 0.5, want: "ParentBased"},
	}
	for _, tc := range tests {
		got := sampler(tc.ratio).Description()
		if !strings.HasPrefix(got, tc.want) {
			t.Fatalf("sampler(%v) = %q, want prefix %q", tc.ratio, got, tc.want)
		}
	}
}
