package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/okian/lapreplay/internal/domain/standings"
)

// StandingsDependencies defines the interface for standings operations.
type StandingsDependencies interface {
	Standings(ctx context.Context, reader, limit int) ([]standings.Entry, error)
}

// StandingsHandler handles standings requests.
type StandingsHandler struct {
	deps          StandingsDependencies
	maxLimit      int
	defaultReader int
}

// NewStandingsHandler creates a new standings handler.
func NewStandingsHandler(deps StandingsDependencies, maxLimit, defaultReader int) *StandingsHandler {
	return &StandingsHandler{deps: deps, maxLimit: maxLimit, defaultReader: defaultReader}
}

// HandleGetStandings handles GET /standings?reader=R&limit=N requests. Both
// parameters are optional.
func (h *StandingsHandler) HandleGetStandings(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_standings"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()

	reader := h.defaultReader
	if v := q.Get("reader"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, errors.New("invalid reader")))
			return
		}
		reader = n
	}

	limit := h.maxLimit
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, errors.New("invalid limit")))
			return
		}
		if n > h.maxLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded", wrapKind(op, ErrBadRequest, errors.New("limit exceeds maximum")))
			return
		}
		limit = n
	}

	entries, err := h.deps.Standings(r.Context(), reader, limit)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// notFound is implemented by errors that map to 404.
type notFound interface {
	NotFound() bool
}

// isNotFound allows the API to translate upstream not-found errors to 404
// without importing the service package.
func isNotFound(err error) bool {
	var nf notFound
	return errors.As(err, &nf) && nf.NotFound()
}
