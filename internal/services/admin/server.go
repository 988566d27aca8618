package admin

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/louisbranch/yardconsole/internal/platform/timeouts"
	"github.com/louisbranch/yardconsole/internal/services/admin/gateway"
	"github.com/louisbranch/yardconsole/internal/services/admin/httpx"
	"github.com/louisbranch/yardconsole/internal/services/admin/integration/upstream"
	"github.com/louisbranch/yardconsole/internal/services/admin/module/api"
	"github.com/louisbranch/yardconsole/internal/services/admin/resource"
	"github.com/louisbranch/yardconsole/internal/services/admin/transport/httpmux"
)

//go:embed static
var assetsFS embed.FS

var resolveStaticFS = func() (fs.FS, error) {
	return fs.Sub(assetsFS, "static")
}

// Config defines the inputs for the console process.
type Config struct {
	HTTPAddr string
	// APIURL is the base URL of the upstream REST API.
	APIURL     string
	APITimeout time.Duration
	// SuccessGrace is the delay between a save notice and navigation.
	SuccessGrace   time.Duration
	DeleteKeepOpen bool
	SecureCookies  bool
	// HTTPClient overrides the upstream transport.
	HTTPClient *http.Client
	Logger     *log.Logger
}

// Server hosts the console pages and the JSON gateway.
type Server struct {
	httpAddr   string
	httpServer *http.Server
}

// NewServer builds a configured console server.
func NewServer(ctx context.Context, config Config) (*Server, error) {
	httpAddr := strings.TrimSpace(config.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	handler, err := newRootHandler(config)
	if err != nil {
		return nil, err
	}
	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           handler,
		ReadHeaderTimeout: timeouts.ReadHeader,
		BaseContext: func(_ net.Listener) context.Context {
			return context.WithoutCancel(ctx)
		},
	}
	return &Server{httpAddr: httpAddr, httpServer: httpServer}, nil
}

// newRootHandler wires static assets, operational endpoints, the gateway and
// the console pages behind the shared middleware.
func newRootHandler(config Config) (http.Handler, error) {
	metrics := gateway.NewMetrics()
	client, err := upstream.NewClient(config.APIURL, upstream.Options{
		Timeout:    config.APITimeout,
		HTTPClient: config.HTTPClient,
		Observer:   metrics.ObserveUpstream,
	})
	if err != nil {
		return nil, fmt.Errorf("upstream client: %w", err)
	}
	registry := resource.Default()
	service, err := gateway.NewService(client, registry, gateway.WithMetrics(metrics), gateway.WithLogger(config.Logger))
	if err != nil {
		return nil, fmt.Errorf("gateway: %w", err)
	}
	console, err := NewHandler(HandlerConfig{
		Gateway:        service,
		Registry:       registry,
		SuccessGrace:   config.SuccessGrace,
		DeleteKeepOpen: config.DeleteKeepOpen,
		SecureCookies:  config.SecureCookies,
		Logger:         config.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("console: %w", err)
	}
	staticFS, err := resolveStaticFS()
	if err != nil {
		return nil, fmt.Errorf("static assets: %w", err)
	}

	gatewayMux := http.NewServeMux()
	api.RegisterRoutes(gatewayMux, gateway.NewHandler(service))

	rootMux := http.NewServeMux()
	httpmux.MountStatic(rootMux, staticFS, withStaticMime)
	httpmux.MountOperational(rootMux, http.HandlerFunc(handleHealthz), metrics.Handler())
	httpmux.MountGateway(rootMux, gatewayMux, api.Prefixes()...)
	httpmux.MountConsoleRoutes(rootMux, console.Routes())

	return httpx.Chain(rootMux,
		httpx.RequestID(),
		httpx.RecoverPanic(),
		httpx.LogRequests(config.Logger),
		relayToken,
	), nil
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		httpx.MethodNotAllowed(http.MethodGet, http.MethodHead)(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func withStaticMime(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch path := strings.ToLower(r.URL.Path); {
		case strings.HasSuffix(path, ".css"):
			w.Header().Set("Content-Type", "text/css")
		case strings.HasSuffix(path, ".js"):
			w.Header().Set("Content-Type", "application/javascript")
		case strings.HasSuffix(path, ".svg"):
			w.Header().Set("Content-Type", "image/svg+xml")
		}
		next.ServeHTTP(w, r)
	})
}

// ListenAndServe runs the HTTP server until the context ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("admin server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	serveErr := make(chan error, 1)
	log.Printf("admin listening on %s", s.httpAddr)
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

// Close stops the HTTP server immediately.
func (s *Server) Close() {
	if s == nil || s.httpServer == nil {
		return
	}
	if err := s.httpServer.Close(); err != nil {
		log.Printf("close admin http server: %v", err)
	}
}
