// Package eventlog decodes newline-delimited race event logs.
//
// Every line is one JSON object with a "type" field. Decoding is strict: a
// record that is not an object, has no string "type", or lacks a field its
// type requires stops the stream with ErrMalformed.
package eventlog

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/okian/lapreplay/internal/domain/model"
)

// record mirrors the wire shape; pointers tell absent fields from zero values.
type record struct {
	Type     *string  `json:"type"`
	Tag      *string  `json:"tag"`
	TeamNb   *int     `json:"teamNb"`
	ReaderID *int     `json:"readerId"`
	Time     *float64 `json:"time"`
}

type tagUpdateRecord struct {
	ReaderID    *int     `json:"readerId"`
	UpdateCount int64    `json:"updateCount"`
	UpdateTime  *float64 `json:"updateTime"`
	Tag         *string  `json:"tag"`
}

// Decoder reads events one line at a time.
type Decoder struct {
	scanner      *bufio.Scanner
	line         int
	maxLineBytes int
	err          error
}

// NewDecoder creates a decoder over r.
func NewDecoder(r io.Reader, opts ...Option) *Decoder {
	d := &Decoder{maxLineBytes: defaultMaxLineBytes}
	for _, opt := range opts {
		opt(d)
	}
	d.scanner = bufio.NewScanner(r)
	d.scanner.Buffer(make([]byte, 0, min(64*1024, d.maxLineBytes)), d.maxLineBytes)
	return d
}

// Line returns the number of the last line read.
func (d *Decoder) Line() int { return d.line }

// Next returns the next event, or io.EOF when the log is exhausted.
// After any other error the decoder keeps returning that error.
func (d *Decoder) Next() (model.Event, error) {
	if d.err != nil {
		return model.Event{}, d.err
	}
	for d.scanner.Scan() {
		d.line++
		raw := bytes.TrimSpace(d.scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		ev, err := ParseEvent(raw)
		if err != nil {
			d.err = fmt.Errorf("line %d: %w", d.line, err)
			return model.Event{}, d.err
		}
		ev.Line = d.line
		return ev, nil
	}
	if err := d.scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			d.err = fmt.Errorf("line %d: %w (%d bytes)", d.line+1, ErrLineTooLong, d.maxLineBytes)
		} else {
			d.err = fmt.Errorf("read log: %w", err)
		}
		return model.Event{}, d.err
	}
	d.err = io.EOF
	return model.Event{}, io.EOF
}

// All yields the remaining events in order. A decode error is yielded once
// and ends the sequence; io.EOF is not yielded.
func (d *Decoder) All() iter.Seq2[model.Event, error] {
	return func(yield func(model.Event, error) bool) {
		for {
			ev, err := d.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(model.Event{}, err)
				return
			}
			if !yield(ev, nil) {
				return
			}
		}
	}
}

// ParseEvent decodes a single event log line.
func ParseEvent(line []byte) (model.Event, error) {
	var rec record
	if err := json.Unmarshal(line, &rec); err != nil {
		return model.Event{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if rec.Type == nil {
		return model.Event{}, fmt.Errorf("%w: missing type", ErrMalformed)
	}
	ev := model.Event{Type: model.EventType(*rec.Type)}

	switch ev.Type {
	case model.AddTag:
		if rec.Tag == nil || rec.TeamNb == nil {
			return model.Event{}, missing(ev.Type, "tag", "teamNb")
		}
		ev.Tag, ev.TeamNb = *rec.Tag, *rec.TeamNb
	case model.RemoveTag:
		if rec.Tag == nil {
			return model.Event{}, missing(ev.Type, "tag")
		}
		ev.Tag = *rec.Tag
	case model.TagSeen:
		if rec.Tag == nil || rec.ReaderID == nil || rec.Time == nil {
			return model.Event{}, missing(ev.Type, "tag", "readerId", "time")
		}
		ev.Tag, ev.ReaderID, ev.Time = *rec.Tag, *rec.ReaderID, *rec.Time
	}
	return ev, nil
}

// DecodeTagUpdate decodes one raw reader log line.
func DecodeTagUpdate(line []byte) (model.TagUpdate, error) {
	var rec tagUpdateRecord
	if err := json.Unmarshal(line, &rec); err != nil {
		return model.TagUpdate{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if rec.Tag == nil || rec.UpdateTime == nil || rec.ReaderID == nil {
		return model.TagUpdate{}, fmt.Errorf("%w: reader log record needs tag, updateTime and readerId", ErrMalformed)
	}
	return model.TagUpdate{
		ReaderID:    *rec.ReaderID,
		UpdateCount: rec.UpdateCount,
		UpdateTime:  *rec.UpdateTime,
		Tag:         *rec.Tag,
	}, nil
}

func missing(t model.EventType, fields ...string) error {
	return fmt.Errorf("%w: %s record needs %v", ErrMalformed, t, fields)
}
