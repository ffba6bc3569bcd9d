// Package logfilter trims raw reader logs to one event window and tag range.
package logfilter

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/okian/lapreplay/internal/domain/eventlog"
	"github.com/okian/lapreplay/pkg/metrics"
)

// Criteria selects the reads to keep.
type Criteria struct {
	// Start and End bound updateTime, both inclusive.
	Start float64
	End   float64
	// Pattern must match at the beginning of the tag.
	Pattern string
}

// Stats counts the lines seen by one filter run.
type Stats struct {
	Kept    int `json:"kept"`
	Dropped int `json:"dropped"`
}

func (c Criteria) compile() (*regexp.Regexp, error) {
	if c.Start > c.End {
		return nil, fmt.Errorf("%w: start %v after end %v", ErrInvalidCriteria, c.Start, c.End)
	}
	re, err := regexp.Compile(`^(?:` + c.Pattern + `)`)
	if err != nil {
		return nil, fmt.Errorf("%w: pattern: %w", ErrInvalidCriteria, err)
	}
	return re, nil
}

// Filter copies the lines of r that match c to w unchanged. Blank lines are
// dropped; any other line that is not a reader record is an error.
func Filter(ctx context.Context, r io.Reader, w io.Writer, c Criteria) (Stats, error) {
	var st Stats
	re, err := c.compile()
	if err != nil {
		return st, err
	}

	br := bufio.NewReader(r)
	for lineNo := 1; ; lineNo++ {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		line, readErr := br.ReadBytes('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return st, fmt.Errorf("read line %d: %w", lineNo, readErr)
		}
		if len(bytes.TrimSpace(line)) > 0 {
			update, err := eventlog.DecodeTagUpdate(line)
			if err != nil {
				return st, fmt.Errorf("line %d: %w", lineNo, err)
			}
			keep := update.UpdateTime >= c.Start && update.UpdateTime <= c.End && re.MatchString(update.Tag)
			metrics.RecordFilterLine(keep)
			if keep {
				st.Kept++
				if _, err := w.Write(line); err != nil {
					return st, fmt.Errorf("write line %d: %w", lineNo, err)
				}
			} else {
				st.Dropped++
			}
		}
		if readErr != nil {
			return st, nil
		}
	}
}

// FilterFile filters the file at path in place. The result is written to a
// temporary file next to it and renamed over the original, so a failed run
// leaves the log untouched.
func FilterFile(ctx context.Context, path string, c Criteria) (Stats, error) {
	in, err := os.Open(path)
	if err != nil {
		return Stats{}, fmt.Errorf("open reader log: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return Stats{}, fmt.Errorf("stat reader log: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return Stats{}, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after a successful rename

	bw := bufio.NewWriter(tmp)
	st, err := Filter(ctx, in, bw, c)
	if err == nil {
		err = bw.Flush()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return st, err
	}
	if err := os.Chmod(tmp.Name(), info.Mode().Perm()); err != nil {
		return st, fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return st, fmt.Errorf("replace reader log: %w", err)
	}
	return st, nil
}
