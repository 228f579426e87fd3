package dashboard

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/maxbolgarin/servex/v2"

	"github.com/naka-gawa/pr-size-dashboard/internal/config"
	"github.com/naka-gawa/pr-size-dashboard/internal/storage"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Server serves the dashboard. It only ever reads the combined file,
// and re-reads it on every request so a fresh fetch shows up on reload.
type Server struct {
	cfg      config.DashboardConfig
	store    *storage.Store
	dataPath string
	logger   *log.Logger
	server   *servex.Server
}

// New creates a new dashboard server.
func New(cfg config.DashboardConfig, store *storage.Store, dataPath string, logger *log.Logger) (*Server, error) {
	server, err := servex.NewServer(
		servex.WithReadTimeout(10*time.Second),
		servex.WithIdleTimeout(60*time.Second),
		servex.WithHealthEndpoint(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create server: %w", err)
	}

	s := &Server{
		cfg:      cfg,
		store:    store,
		dataPath: dataPath,
		logger:   logger,
		server:   server,
	}

	server.HandleFunc("/", s.handleIndex)
	server.HandleFunc("/api/summary", s.handleSummary)

	return s, nil
}

// Start starts listening on the configured address. It does not block.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Printf("Dashboard listening on %s", s.cfg.Address)
	return s.server.StartHTTP(s.cfg.Address)
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.Load(s.dataPath)
	if err != nil {
		http.Error(w, "failed to load dataset", http.StatusInternalServerError)
		s.logger.Printf("Failed to load %s: %v", s.dataPath, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if len(records) == 0 {
		fmt.Fprintf(w, "<html><body><p>No data yet. Run <code>prsize fetch</code> and reload.</p></body></html>")
		return
	}

	page := buildPage(records, Summarize(records, s.cfg.TargetScore))
	if err := page.Render(w); err != nil {
		s.logger.Printf("Failed to render dashboard: %v", err)
	}
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.Load(s.dataPath)
	if err != nil {
		http.Error(w, "failed to load dataset", http.StatusInternalServerError)
		s.logger.Printf("Failed to load %s: %v", s.dataPath, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(Summarize(records, s.cfg.TargetScore)); err != nil {
		s.logger.Printf("Failed to encode summary: %v", err)
	}
}
