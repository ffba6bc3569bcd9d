package simulate

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/lapreplay/internal/domain/report"
	"github.com/okian/lapreplay/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0o600
)

// Replayer turns an event log into a report.
type Replayer interface {
	Replay(ctx context.Context, r io.Reader) (*report.Report, error)
}

// Stats holds simulation statistics.
type Stats struct {
	Lines        int
	PairsChecked int
	Accepted     int
	Debounced    int
	Discarded    int
	Duration     time.Duration
}

// Run generates a race, replays it and verifies the result.
func Run(ctx context.Context, cfg Config, threshold float64, replayer Replayer) (*Stats, error) {
	if err := cfg.Validate(threshold); err != nil {
		return nil, err
	}
	start := time.Now()
	log := logger.Get().Named("simulate")

	race := Generate(cfg)
	var buf bytes.Buffer
	if _, err := race.WriteTo(&buf); err != nil {
		return nil, err
	}
	log.Info(ctx, "race generated",
		logger.Int("teams", len(cfg.Teams)),
		logger.Int("readers", cfg.Readers),
		logger.Int("laps", cfg.Laps),
		logger.Int("lines", race.Lines()),
	)

	if cfg.OutputFile != "" {
		if err := os.WriteFile(cfg.OutputFile, buf.Bytes(), logFilePermission); err != nil {
			return nil, fmt.Errorf("failed to save race log: %w", err)
		}
		log.Info(ctx, "race log saved", logger.String("filename", cfg.OutputFile))
	}

	rep, err := replayer.Replay(ctx, &buf)
	if err != nil {
		return nil, fmt.Errorf("replay failed: %w", err)
	}
	checked, err := Verify(rep, race.Truth)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		Lines:        race.Lines(),
		PairsChecked: checked,
		Accepted:     rep.Stats.Accepted,
		Debounced:    rep.Stats.Debounced,
		Discarded:    rep.Stats.DiscardedNotStarted + rep.Stats.DiscardedUnassigned,
		Duration:     time.Since(start),
	}
	log.Info(ctx, "replay verified",
		logger.String("run_id", rep.RunID),
		logger.Int("pairsChecked", stats.PairsChecked),
		logger.Int("accepted", stats.Accepted),
		logger.Int("debounced", stats.Debounced),
		logger.Int("discarded", stats.Discarded),
		logger.String("duration", stats.Duration.String()),
	)
	return stats, nil
}
