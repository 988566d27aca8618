// Package devapi parses dev upstream command flags and launches the server.
package devapi

import (
	"context"
	"flag"
	"fmt"

	entrypoint "github.com/louisbranch/yardconsole/internal/platform/cmd"
	"github.com/louisbranch/yardconsole/internal/services/devapi"
)

// Config holds the dev upstream command configuration.
type Config struct {
	HTTPAddr     string `env:"YARD_DEVAPI_HTTP_ADDR" envDefault:":8091"`
	DBPath       string `env:"YARD_DEVAPI_DB_PATH" envDefault:"data/devapi.db"`
	RequireToken bool   `env:"YARD_DEVAPI_REQUIRE_TOKEN"`
	Seed         bool   `env:"YARD_DEVAPI_SEED" envDefault:"true"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "SQLite database path")
	fs.BoolVar(&cfg.RequireToken, "require-token", cfg.RequireToken, "Reject calls without a bearer token")
	fs.BoolVar(&cfg.Seed, "seed", cfg.Seed, "Insert default settings into an empty database")

	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the dev upstream server.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceDevAPI, func(ctx context.Context) error {
		server, err := devapi.NewServer(ctx, devapi.Config{
			HTTPAddr:     cfg.HTTPAddr,
			DBPath:       cfg.DBPath,
			RequireToken: cfg.RequireToken,
			Seed:         cfg.Seed,
		})
		if err != nil {
			return fmt.Errorf("init devapi server: %w", err)
		}
		defer server.Close()

		if err := server.ListenAndServe(ctx); err != nil {
			return fmt.Errorf("serve devapi: %w", err)
		}
		return nil
	})
}
