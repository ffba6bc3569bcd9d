// Package liststore appends log lines to named, ordered lists.
package liststore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/okian/lapreplay/pkg/logger"
	"github.com/okian/lapreplay/pkg/metrics"
)

// Store is an append-only list store.
type Store interface {
	// Push appends items to list, in order.
	Push(ctx context.Context, list string, items [][]byte) error
	// Len returns the number of items in list.
	Len(ctx context.Context, list string) (uint64, error)
	// Items returns every item of list, oldest first.
	Items(ctx context.Context, list string) ([][]byte, error)
	Close() error
}

var listName = regexp.MustCompile(`^[A-Za-z0-9_-]+$`) //nolint:gochecknoglobals // compiled once

// ValidateListName reports whether list can name a stream.
func ValidateListName(list string) error {
	if !listName.MatchString(list) {
		return fmt.Errorf("%w: %q", ErrInvalidListName, list)
	}
	return nil
}

// StreamName returns the JetStream stream backing list.
func StreamName(list string) string { return "LAPREPLAY_" + list }

// Subject returns the subject items of list are published on.
func Subject(list string) string { return "lapreplay.list." + list }

// JetStream stores each list as a JetStream stream.
type JetStream struct {
	nc          *nats.Conn
	js          jetstream.JetStream
	logger      logger.Logger
	maxPending  int
	connectOpts []nats.Option

	mu      sync.Mutex
	streams map[string]jetstream.Stream
}

// NewJetStream connects to the NATS server at url.
func NewJetStream(url string, opts ...Option) (*JetStream, error) {
	s := &JetStream{
		maxPending: defaultMaxPending,
		streams:    make(map[string]jetstream.Stream),
		connectOpts: []nats.Option{
			nats.Name("lapreplay"),
			nats.ReconnectWait(time.Second),
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("liststore")
	}

	nc, err := nats.Connect(url, s.connectOpts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	js, err := jetstream.New(nc, jetstream.WithPublishAsyncMaxPending(s.maxPending))
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream context: %w", err)
	}
	s.nc, s.js = nc, js
	return s, nil
}

// stream returns the stream of list, creating it when create is set.
func (s *JetStream) stream(ctx context.Context, list string, create bool) (jetstream.Stream, error) {
	if err := ValidateListName(list); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.streams[list]; ok {
		return st, nil
	}

	var (
		st  jetstream.Stream
		err error
	)
	if create {
		st, err = s.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
			Name:      StreamName(list),
			Subjects:  []string{Subject(list)},
			Storage:   jetstream.FileStorage,
			Retention: jetstream.LimitsPolicy,
		})
	} else {
		st, err = s.js.Stream(ctx, StreamName(list))
		if errors.Is(err, jetstream.ErrStreamNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrListNotFound, list)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("stream %s: %w", StreamName(list), err)
	}
	s.streams[list] = st
	return st, nil
}

// Push publishes items asynchronously in windows of maxPending and waits for
// every acknowledgement before returning.
func (s *JetStream) Push(ctx context.Context, list string, items [][]byte) error {
	if _, err := s.stream(ctx, list, true); err != nil {
		return err
	}
	subject := Subject(list)
	for start := 0; start < len(items); start += s.maxPending {
		window := items[start:min(start+s.maxPending, len(items))]
		futures := make([]jetstream.PubAckFuture, 0, len(window))
		for _, item := range window {
			f, err := s.js.PublishAsync(subject, item)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrPublish, err)
			}
			futures = append(futures, f)
		}

		select {
		case <-s.js.PublishAsyncComplete():
		case <-ctx.Done():
			return ctx.Err()
		}
		for i, f := range futures {
			select {
			case <-f.Ok():
			case err := <-f.Err():
				metrics.RecordErrorByComponent("liststore", "publish")
				return fmt.Errorf("%w: item %d: %w", ErrPublish, start+i, err)
			}
		}
		metrics.RecordImportItems(len(window))
	}
	s.logger.Debug(ctx, "items pushed", logger.String("list", list), logger.Int("count", len(items)))
	return nil
}

// Len returns the number of messages in the list's stream.
func (s *JetStream) Len(ctx context.Context, list string) (uint64, error) {
	st, err := s.stream(ctx, list, false)
	if err != nil {
		return 0, err
	}
	info, err := st.Info(ctx)
	if err != nil {
		return 0, fmt.Errorf("stream info: %w", err)
	}
	return info.State.Msgs, nil
}

// Items reads the whole list by sequence number.
func (s *JetStream) Items(ctx context.Context, list string) ([][]byte, error) {
	st, err := s.stream(ctx, list, false)
	if err != nil {
		return nil, err
	}
	info, err := st.Info(ctx)
	if err != nil {
		return nil, fmt.Errorf("stream info: %w", err)
	}
	out := make([][]byte, 0, info.State.Msgs)
	if info.State.Msgs == 0 {
		return out, nil
	}
	for seq := info.State.FirstSeq; seq <= info.State.LastSeq; seq++ {
		msg, err := st.GetMsg(ctx, seq)
		if errors.Is(err, jetstream.ErrMsgNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get message %d: %w", seq, err)
		}
		out = append(out, msg.Data)
	}
	return out, nil
}

// Close drains the connection.
func (s *JetStream) Close() error {
	if err := s.nc.Drain(); err != nil {
		s.nc.Close()
		return fmt.Errorf("drain nats connection: %w", err)
	}
	return nil
}
