package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/custodia-labs/arrivals/internal/core/ports/driving"
)

//go:embed templates/*.html
var templateFS embed.FS

// Ports aggregates the driving ports used by the web server.
type Ports struct {
	Reconciler driving.Reconciler
	History    driving.HistoryService
	Snapshot   driving.SnapshotService

	// Observer receives the events of cycles started over HTTP. Optional.
	Observer driving.CycleObserver
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Reconciler == nil {
		return ErrMissingReconciler
	}
	if p.History == nil {
		return ErrMissingHistoryService
	}
	if p.Snapshot == nil {
		return ErrMissingSnapshotService
	}
	return nil
}

// Server serves the dashboard, the JSON API and the live snapshot socket.
type Server struct {
	ports  *Ports
	index  *template.Template
	router chi.Router

	// pingInterval is how often idle sockets are pinged.
	pingInterval time.Duration
}

// NewServer creates a web server with the given ports.
func NewServer(ports *Ports) (*Server, error) {
	if ports == nil {
		return nil, ErrMissingReconciler
	}
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	index, err := template.New("index.html").Funcs(template.FuncMap{
		"displayName": displayName,
	}).ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	s := &Server{
		ports:        ports,
		index:        index,
		pingInterval: 30 * time.Second,
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/ws", s.handleSocket)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.NoCache)
		r.Get("/snapshot", s.handleSnapshot)
		r.Get("/recents", s.handleRecents)
		r.Get("/history", s.handleHistory)
		r.Get("/history/{date}", s.handleBatch)
		r.Get("/updated-today", s.handleUpdatedToday)
		r.Post("/reconcile", s.handleReconcile)
	})
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
