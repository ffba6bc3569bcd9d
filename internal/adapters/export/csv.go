package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/okian/lapreplay/internal/domain/outlier"
	"github.com/okian/lapreplay/internal/domain/passes"
)

var csvHeader = []string{"time", "gap", "fast", "outlier"} //nolint:gochecknoglobals // fixed header

// WriteCSV writes one row per accepted pass. The flag columns stay empty when
// bands is nil.
func WriteCSV(w io.Writer, s passes.Series, bands *outlier.Bands) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i, t := range s.Passes {
		row := []string{formatFloat(t), formatFloat(s.Gaps[i]), "", ""}
		if bands != nil {
			f := bands.Classify(s.Gaps[i])
			row[2] = strconv.FormatBool(f.Fast)
			row[3] = strconv.FormatBool(f.Outlier)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
