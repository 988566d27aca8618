// Package admin parses console command flags and launches the yard console.
package admin

import (
	"context"
	"flag"
	"fmt"
	"time"

	entrypoint "github.com/louisbranch/yardconsole/internal/platform/cmd"
	"github.com/louisbranch/yardconsole/internal/platform/config"
	"github.com/louisbranch/yardconsole/internal/services/admin"
)

// legacyAPIURLKey is the upstream variable shared with the rest of the deployment.
const legacyAPIURLKey = "API_URL"

// Config holds the console command configuration.
type Config struct {
	HTTPAddr       string        `env:"YARD_ADMIN_HTTP_ADDR" envDefault:":8090"`
	APIURL         string        `env:"YARD_ADMIN_API_URL"`
	APITimeout     time.Duration `env:"YARD_ADMIN_API_TIMEOUT" envDefault:"10s"`
	SuccessGrace   time.Duration `env:"YARD_ADMIN_SUCCESS_GRACE" envDefault:"4s"`
	DeleteKeepOpen bool          `env:"YARD_ADMIN_DELETE_KEEP_OPEN"`
	SecureCookies  bool          `env:"YARD_ADMIN_SECURE_COOKIES"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.APIURL == "" {
		cfg.APIURL = config.FirstEnv(legacyAPIURLKey)
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.APIURL, "api-url", cfg.APIURL, "Upstream REST API base URL")
	fs.DurationVar(&cfg.APITimeout, "api-timeout", cfg.APITimeout, "Upstream request timeout")
	fs.DurationVar(&cfg.SuccessGrace, "success-grace", cfg.SuccessGrace, "Delay between a save notice and navigation")
	fs.BoolVar(&cfg.DeleteKeepOpen, "delete-keep-open", cfg.DeleteKeepOpen, "Keep delete dialogs open after a failure")
	fs.BoolVar(&cfg.SecureCookies, "secure-cookies", cfg.SecureCookies, "Mark console cookies Secure")

	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if cfg.APIURL == "" {
		return Config{}, fmt.Errorf("api url is required: set YARD_ADMIN_API_URL, %s or -api-url", legacyAPIURLKey)
	}
	return cfg, nil
}

// Run starts the console server.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceAdmin, func(ctx context.Context) error {
		server, err := admin.NewServer(ctx, admin.Config{
			HTTPAddr:       cfg.HTTPAddr,
			APIURL:         cfg.APIURL,
			APITimeout:     cfg.APITimeout,
			SuccessGrace:   cfg.SuccessGrace,
			DeleteKeepOpen: cfg.DeleteKeepOpen,
			SecureCookies:  cfg.SecureCookies,
		})
		if err != nil {
			return fmt.Errorf("init admin server: %w", err)
		}
		defer server.Close()

		if err := server.ListenAndServe(ctx); err != nil {
			return fmt.Errorf("serve admin: %w", err)
		}
		return nil
	})
}
