// Package server implements the docfold preview server: the built site
// at the root, a small JSON API, SSE streams for logs and live reload,
// and Prometheus metrics.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"

	"github.com/docfold/docfold/internal/directives"
	"github.com/docfold/docfold/internal/events"
	"github.com/docfold/docfold/internal/logging"
	"github.com/docfold/docfold/internal/version"
)

// Options configures the preview server.
type Options struct {
	SiteDir           string
	Title             string
	Bus               *events.Bus
	Domain            *directives.Domain
	PrometheusHandler http.Handler // Optional Prometheus metrics handler
}

// Server is the Huma v2 preview server.
type Server struct {
	api        huma.API
	mux        *http.ServeMux
	httpServer *http.Server
	options    *Options
	logger     *slog.Logger
}

// NewServer creates the preview server with Go 1.22+ native routing.
func NewServer(opts *Options) *Server {
	mux := http.NewServeMux()

	config := huma.DefaultConfig("docfold preview", version.String())
	config.Info.Description = "Documentation preview server with live reload"
	// Empty servers list will make OpenAPI use relative paths, working with any host
	config.Servers = []*huma.Server{}

	api := humago.New(mux, config)

	server := &Server{
		api:     api,
		mux:     mux,
		options: opts,
		logger:  logging.GetLogger("server"),
	}

	api.UseMiddleware(HTTPLoggingMiddleware)

	if opts.PrometheusHandler != nil {
		mux.Handle("GET /metrics", opts.PrometheusHandler)
	}

	server.registerRoutes()

	// Serve the built site at the root, leaving /api to Huma.
	site := http.FileServer(http.Dir(opts.SiteDir))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api") {
			http.NotFound(w, r)
			return
		}
		site.ServeHTTP(w, r)
	})

	return server
}

// GetMux returns the underlying HTTP ServeMux for additional setup
func (s *Server) GetMux() *http.ServeMux {
	return s.mux
}

// GetAPI returns the Huma API instance
func (s *Server) GetAPI() huma.API {
	return s.api
}

// Start starts the HTTP server on the specified address.
func (s *Server) Start(addr string) error {
	s.logger.Info("Starting preview server", "addr", addr, "site", s.options.SiteDir)
	s.logger.Info("OpenAPI documentation available", "url", "http://"+addr+"/docs")

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.mux,
	}
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	s.logger.Info("Stopping preview server")
	if s.httpServer != nil {
		return s.httpServer.Close()
	}
	return nil
}

// registerRoutes sets up all API endpoints.
func (s *Server) registerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "health-check",
		Method:      http.MethodGet,
		Path:        "/api/health",
		Summary:     "Health",
		Description: "Check server health status",
		Tags:        []string{"health"},
	}, func(ctx context.Context, input *struct{}) (*HealthResponse, error) {
		return &HealthResponse{
			Body: HealthData{
				Status:  "ok",
				Message: "Server is healthy",
			},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-version",
		Method:      http.MethodGet,
		Path:        "/api/version",
		Summary:     "Version",
		Description: "Get application version information",
		Tags:        []string{"system"},
	}, func(ctx context.Context, input *struct{}) (*VersionResponse, error) {
		return &VersionResponse{Body: version.Get()}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "list-objects",
		Method:      http.MethodGet,
		Path:        "/api/objects",
		Summary:     "Object Inventory",
		Description: "List the cross-referenceable objects collected from directive blocks",
		Tags:        []string{"objects"},
	}, func(ctx context.Context, input *struct{}) (*ObjectsResponse, error) {
		objects := s.options.Domain.Objects()
		return &ObjectsResponse{
			Body: ObjectsData{
				Count:   len(objects),
				Objects: objects,
			},
		}, nil
	})

	s.registerLogRoutes()
	s.registerEventRoutes()
}

// HealthData is the health check payload.
type HealthData struct {
	Status  string `json:"status" example:"ok" doc:"Health status"`
	Message string `json:"message" example:"Server is healthy" doc:"Status message"`
}

// HealthResponse wraps HealthData for Huma.
type HealthResponse struct {
	Body HealthData
}

// VersionResponse wraps version info for Huma.
type VersionResponse struct {
	Body version.Info
}

// ObjectsData is the object inventory payload.
type ObjectsData struct {
	Count   int                 `json:"count" doc:"Number of objects"`
	Objects []directives.Object `json:"objects" doc:"Collected objects sorted by kind then name"`
}

// ObjectsResponse wraps ObjectsData for Huma.
type ObjectsResponse struct {
	Body ObjectsData
}
