// Package cmd holds the startup plumbing shared by the yard console processes.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/louisbranch/yardconsole/internal/platform/config"
	"github.com/louisbranch/yardconsole/internal/platform/otel"
)

const telemetryShutdownTimeout = 5 * time.Second

// Service identifiers for startup telemetry and log prefixes.
const (
	ServiceAdmin  = "yard-admin"
	ServiceDevAPI = "yard-devapi"
)

// ParseConfig loads environment defaults into cfg.
func ParseConfig[T any](cfg *T) error {
	if cfg == nil {
		return errors.New("config target is required")
	}
	return config.ParseEnv(cfg)
}

// ParseArgs parses command-line flags over the environment defaults.
func ParseArgs(fs *flag.FlagSet, args []string) error {
	if fs == nil {
		return errors.New("flag parser is required")
	}
	if args == nil {
		args = []string{}
	}
	return fs.Parse(args)
}

// LogPrefix returns the bracketed log prefix for a service, "[ADMIN] " for
// ServiceAdmin.
func LogPrefix(service string) string {
	name := strings.TrimPrefix(strings.TrimSpace(service), "yard-")
	if name == "" {
		return ""
	}
	return "[" + strings.ToUpper(name) + "] "
}

// SignalContext returns a context cancelled on interrupt or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// RunWithTelemetry configures tracing and executes a service run loop.
//
// Tracing is flushed after run returns, bounded by a fixed timeout.
func RunWithTelemetry(ctx context.Context, service string, run func(context.Context) error) error {
	service = strings.TrimSpace(service)
	if service == "" {
		return fmt.Errorf("service name is required")
	}
	if run == nil {
		return fmt.Errorf("run function is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	shutdown, err := otel.Setup(ctx, service)
	if err != nil {
		return fmt.Errorf("%s telemetry: %w", service, err)
	}
	started := time.Now()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			log.Printf("%s otel shutdown: %v", service, err)
		}
		log.Printf("%s stopped after %s", service, time.Since(started).Round(time.Second))
	}()
	return run(ctx)
}
