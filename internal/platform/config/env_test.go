package config

import (
	"strings"
	"testing"
	"time"
)

type envTestConfig struct {
	Port    int           `env:"YARD_TEST_PORT" envDefault:"123"`
	Timeout time.Duration `env:"YARD_TEST_TIMEOUT" envDefault:"4s"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Port != 123 {
		t.Fatalf("expected default port 123, got %d", cfg.Port)
	}
	if cfg.Timeout != 4*time.Second {
		t.Fatalf("expected default timeout 4s, got %v", cfg.Timeout)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("YARD_TEST_PORT", "not-an-int")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestFirstEnvPrefersEarlierKeys(t *testing.T) {
	t.Setenv("YARD_TEST_PRIMARY", "")
	t.Setenv("YARD_TEST_SECONDARY", "  http://upstream  ")
	t.Setenv("YARD_TEST_TERTIARY", "http://ignored")

	got := FirstEnv("YARD_TEST_MISSING", "YARD_TEST_PRIMARY", "YARD_TEST_SECONDARY", "YARD_TEST_TERTIARY")
	if got != "http://upstream" {
		t.Fatalf("FirstEnv = %q, want %q", got, "http://upstream")
	}
	if got := FirstEnv("YARD_TEST_MISSING"); got != "" {
		t.Fatalf("FirstEnv(missing) = %q, want empty", got)
	}
}
