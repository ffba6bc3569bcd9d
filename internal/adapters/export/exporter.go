// Package export writes replay reports as chart CSVs and a JSON summary.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/okian/lapreplay/internal/domain/report"
	"github.com/okian/lapreplay/pkg/logger"
	"github.com/okian/lapreplay/pkg/metrics"
)

// ReportKey is the object key of the JSON summary.
const ReportKey = "report.json"

// Option applies a configuration option to the Exporter.
type Option func(*Exporter)

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Exporter) {
		if l != nil {
			e.logger = l
		}
	}
}

// Exporter writes reports to a destination.
type Exporter struct {
	dest   Destination
	logger logger.Logger
}

// NewExporter creates an exporter writing to dest.
func NewExporter(dest Destination, opts ...Option) *Exporter {
	e := &Exporter{dest: dest}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logger.Get().Named("export")
	}
	return e
}

// Export writes one CSV per pair and the JSON report. It returns the keys
// written, in order.
func (e *Exporter) Export(ctx context.Context, r *report.Report) ([]string, error) {
	keys := make([]string, 0, len(r.Pairs)+1)
	var buf bytes.Buffer
	for _, p := range r.Pairs {
		buf.Reset()
		if err := WriteCSV(&buf, p.Series(), p.Bands); err != nil {
			return keys, err
		}
		key := ChartKey(p.Team, p.Name, p.Reader)
		if err := e.write(ctx, key, buf.Bytes()); err != nil {
			return keys, err
		}
		keys = append(keys, key)
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return keys, fmt.Errorf("encode report: %w", err)
	}
	if err := e.write(ctx, ReportKey, data); err != nil {
		return keys, err
	}
	keys = append(keys, ReportKey)

	e.logger.Info(ctx, "report exported",
		logger.String("run_id", r.RunID),
		logger.String("destination", e.dest.Name()),
		logger.Int("objects", len(keys)),
	)
	return keys, nil
}

func (e *Exporter) write(ctx context.Context, key string, data []byte) error {
	if err := e.dest.Write(ctx, key, data); err != nil {
		metrics.RecordErrorByComponent("export", e.dest.Name())
		return fmt.Errorf("export %s: %w", key, err)
	}
	metrics.RecordExportObject(e.dest.Name())
	return nil
}

var keyReplacer = strings.NewReplacer(" ", "_", "/", "_", "\\", "_") //nolint:gochecknoglobals // immutable

// ChartKey names the CSV of one pair: chart_<team:02d>_<name>_<reader>.csv.
func ChartKey(team int, name string, reader int) string {
	if name == "" {
		name = "team"
	}
	return fmt.Sprintf("chart_%02d_%s_%d.csv", team, keyReplacer.Replace(name), reader)
}
