package devapi

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/yardconsole/internal/platform/timeouts"
	"github.com/louisbranch/yardconsole/internal/services/admin/httpx"
	"github.com/louisbranch/yardconsole/internal/services/devapi/storage/sqlite"
)

// Config defines the inputs for the dev upstream process.
type Config struct {
	HTTPAddr string
	DBPath   string
	// RequireToken rejects calls without a bearer token.
	RequireToken bool
	// Seed inserts default settings into an empty database.
	Seed   bool
	Logger *log.Logger
}

// Server hosts the dev upstream REST API.
type Server struct {
	httpAddr   string
	httpServer *http.Server
	store      *sqlite.Store
}

// NewServer opens storage and builds the HTTP server.
func NewServer(ctx context.Context, config Config) (*Server, error) {
	httpAddr := strings.TrimSpace(config.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	store, err := openStore(config.DBPath)
	if err != nil {
		return nil, err
	}
	if config.Seed {
		count, err := SeedDefaults(ctx, store, time.Now())
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("seed defaults: %w", err)
		}
		if count > 0 {
			log.Printf("seeded %d default settings", count)
		}
	}
	handler, err := NewHandler(HandlerConfig{
		Store:        store,
		RequireToken: config.RequireToken,
		Logger:       config.Logger,
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	routes := httpx.Chain(handler.Routes(),
		httpx.RequestID(),
		httpx.RecoverPanic(),
		httpx.LogRequests(config.Logger),
	)
	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           routes,
		ReadHeaderTimeout: timeouts.ReadHeader,
		BaseContext: func(_ net.Listener) context.Context {
			return context.WithoutCancel(ctx)
		},
	}
	return &Server{httpAddr: httpAddr, httpServer: httpServer, store: store}, nil
}

func openStore(path string) (*sqlite.Store, error) {
	cleanPath := filepath.Clean(strings.TrimSpace(path))
	if cleanPath == "." || cleanPath == "" {
		return nil, errors.New("db path is required")
	}
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := sqlite.Open(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	return store, nil
}

// ListenAndServe runs the HTTP server until the context ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("devapi server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	serveErr := make(chan error, 1)
	log.Printf("devapi listening on %s", s.httpAddr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// Close stops the HTTP server and closes storage.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.httpServer != nil {
		if err := s.httpServer.Close(); err != nil {
			log.Printf("close devapi http server: %v", err)
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("close devapi store: %v", err)
		}
	}
}
