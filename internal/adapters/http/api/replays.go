package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/okian/lapreplay/internal/domain/eventlog"
	"github.com/okian/lapreplay/internal/domain/passes"
	"github.com/okian/lapreplay/internal/domain/report"
)

// ReplayDependencies defines the interface for replay operations.
type ReplayDependencies interface {
	Replay(ctx context.Context, r io.Reader) (*report.Report, error)
	Latest() (*report.Report, error)
}

// ReplaysHandler handles replay requests.
type ReplaysHandler struct {
	deps         ReplayDependencies
	maxBodyBytes int64
}

// NewReplaysHandler creates a new replays handler.
func NewReplaysHandler(deps ReplayDependencies, maxBodyBytes int64) *ReplaysHandler {
	return &ReplaysHandler{deps: deps, maxBodyBytes: maxBodyBytes}
}

// HandlePostReplay handles POST /replays requests. The body is a raw event log.
func (h *ReplaysHandler) HandlePostReplay(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_replay"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	body := &bodyReader{r: http.MaxBytesReader(w, r.Body, h.maxBodyBytes)}
	rep, err := h.deps.Replay(r.Context(), body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(body.err, &tooLarge), errors.As(err, &tooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "too_large", wrapKind(op, ErrBodyTooLarge, err))
		case errors.Is(err, eventlog.ErrMalformed), errors.Is(err, eventlog.ErrLineTooLong):
			writeError(w, http.StatusBadRequest, "malformed_log", wrapKind(op, ErrBadRequest, err))
		case errors.Is(err, passes.ErrTagNotAssigned):
			writeError(w, http.StatusBadRequest, "tag_not_assigned", wrapKind(op, ErrBadRequest, err))
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", wrap(op, err))
		}
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// HandleGetLatest handles GET /replays/latest requests.
func (h *ReplaysHandler) HandleGetLatest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	rep, err := h.deps.Latest()
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// bodyReader keeps the first read error. A truncated upload usually surfaces
// as a malformed last line before the reader error reaches the caller.
type bodyReader struct {
	r   io.Reader
	err error
}

func (b *bodyReader) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	if err != nil && b.err == nil && !errors.Is(err, io.EOF) {
		b.err = err
	}
	return n, err
}
