// Package service wires decoding, reconstruction, banding and standings into
// the operations used by the CLI and the HTTP API.
package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/okian/lapreplay/internal/adapters/export"
	"github.com/okian/lapreplay/internal/adapters/liststore"
	"github.com/okian/lapreplay/internal/adapters/logfilter"
	"github.com/okian/lapreplay/internal/domain/eventlog"
	"github.com/okian/lapreplay/internal/domain/model"
	"github.com/okian/lapreplay/internal/domain/passes"
	"github.com/okian/lapreplay/internal/domain/report"
	"github.com/okian/lapreplay/internal/domain/standings"
	"github.com/okian/lapreplay/pkg/logger"
	"github.com/okian/lapreplay/pkg/metrics"
)

// Service runs replays and keeps the most recent report.
type Service struct {
	readers         int
	teams           []int
	names           map[int]string
	excluded        []int
	threshold       float64
	stopOnEnd       bool
	tags            map[string]int
	standingsReader int
	maxLineBytes    int

	latest atomic.Pointer[report.Report]

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		readers:   defaultReaders,
		teams:     defaultTeams(),
		names:     map[int]string{},
		threshold: passes.DefaultThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s
}

// Pairs returns the declared (reader, team) pairs.
func (s *Service) Pairs() []model.Pair {
	return model.CrossProduct(s.readers, s.teams)
}

// Replay reconstructs passes from an event log and builds the report. The
// report becomes the latest one on success.
func (s *Service) Replay(ctx context.Context, r io.Reader) (*report.Report, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := s.logger.Named("replay")

	var decOpts []eventlog.Option
	if s.maxLineBytes > 0 {
		decOpts = append(decOpts, eventlog.WithMaxLineBytes(s.maxLineBytes))
	}
	dec := eventlog.NewDecoder(r, decOpts...)
	rec := passes.New(s.Pairs(),
		passes.WithThreshold(s.threshold),
		passes.WithStopOnEnd(s.stopOnEnd),
		passes.WithTags(s.tags),
		passes.WithLogger(log),
	)

	result, err := rec.Run(ctx, dec.All())
	metrics.ObserveReplayDuration(time.Since(start).Seconds())
	if err != nil {
		metrics.RecordReplayRun("error")
		log.Error(ctx, "replay failed",
			logger.String("run_id", runID),
			logger.Int("line", dec.Line()),
			logger.Error(err),
		)
		return nil, fmt.Errorf("replay: %w", err)
	}
	metrics.RecordReplayRun("ok")

	rep := report.Build(result, report.Params{
		RunID:           runID,
		Threshold:       s.threshold,
		Names:           s.names,
		Excluded:        s.excluded,
		StandingsReader: s.standingsReader,
	})
	s.latest.Store(rep)

	log.Info(ctx, "replay finished",
		logger.String("run_id", runID),
		logger.Int("lines", dec.Line()),
		logger.Int("accepted", result.Stats.Accepted),
		logger.Int("debounced", result.Stats.Debounced),
		logger.Int("pairs", len(rep.Pairs)),
		logger.Any("duration", time.Since(start)),
	)
	return rep, nil
}

// ReplayFile replays the event log at path.
func (s *Service) ReplayFile(ctx context.Context, path string) (*report.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}
	defer f.Close()
	return s.Replay(ctx, f)
}

// Latest returns the most recent report.
func (s *Service) Latest() (*report.Report, error) {
	rep := s.latest.Load()
	if rep == nil {
		return nil, ErrNoReplay
	}
	return rep, nil
}

// Standings returns up to limit entries ranked at reader for the latest
// report.
func (s *Service) Standings(_ context.Context, reader, limit int) ([]standings.Entry, error) {
	rep, err := s.Latest()
	if err != nil {
		return nil, err
	}
	return rep.StandingsFor(reader).TopN(limit)
}

// Export writes rep to dest.
func (s *Service) Export(ctx context.Context, rep *report.Report, dest export.Destination) ([]string, error) {
	return export.NewExporter(dest, export.WithLogger(s.logger.Named("export"))).Export(ctx, rep)
}

// Filter trims the reader log at path in place.
func (s *Service) Filter(ctx context.Context, path string, c logfilter.Criteria) (logfilter.Stats, error) {
	st, err := logfilter.FilterFile(ctx, path, c)
	if err != nil {
		return st, fmt.Errorf("filter %s: %w", path, err)
	}
	s.logger.Info(ctx, "reader log filtered",
		logger.String("path", path),
		logger.Int("kept", st.Kept),
		logger.Int("dropped", st.Dropped),
	)
	return st, nil
}

// Import bulk-loads the log at path into list.
func (s *Service) Import(ctx context.Context, store liststore.Store, path, list string) (int, error) {
	n, err := liststore.ImportFile(ctx, store, path, list)
	if err != nil {
		return n, fmt.Errorf("import %s: %w", path, err)
	}
	s.logger.Info(ctx, "log imported", logger.String("list", list), logger.Int("items", n))
	return n, nil
}
