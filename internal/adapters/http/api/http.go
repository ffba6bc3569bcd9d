// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/okian/lapreplay/internal/domain/report"
	"github.com/okian/lapreplay/internal/domain/standings"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Replay reconstructs an uploaded event log.
	Replay(ctx context.Context, r io.Reader) (*report.Report, error)

	// Read operations expose the latest replay.
	Latest() (*report.Report, error)
	Standings(ctx context.Context, reader, limit int) ([]standings.Entry, error)
}

// Server wires HTTP routes for the replay API.
type Server struct {
	maxBodyBytes  int64
	maxLimit      int
	defaultReader int

	healthHandler    *HealthHandler
	replaysHandler   *ReplaysHandler
	standingsHandler *StandingsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		maxBodyBytes: defaultMaxBodyBytes,
		maxLimit:     defaultMaxLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.healthHandler = NewHealthHandler()
	s.replaysHandler = NewReplaysHandler(deps, s.maxBodyBytes)
	s.standingsHandler = NewStandingsHandler(deps, s.maxLimit, s.defaultReader)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", MetricsMiddleware(s.healthHandler.HandleMetrics, "metrics"))
	mux.HandleFunc("/replays", MetricsMiddleware(s.replaysHandler.HandlePostReplay, "replays"))
	mux.HandleFunc("/replays/latest", MetricsMiddleware(s.replaysHandler.HandleGetLatest, "replays_latest"))
	mux.HandleFunc("/standings", MetricsMiddleware(s.standingsHandler.HandleGetStandings, "standings"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
