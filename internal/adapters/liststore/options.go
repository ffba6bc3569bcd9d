package liststore

import (
	"github.com/nats-io/nats.go"
	"github.com/okian/lapreplay/pkg/logger"
)

const defaultMaxPending = 512

// Option applies a configuration option to the JetStream store.
type Option func(*JetStream)

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *JetStream) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxPending bounds the number of unacknowledged publishes in flight.
func WithMaxPending(n int) Option {
	return func(s *JetStream) {
		if n > 0 {
			s.maxPending = n
		}
	}
}

// WithConnectOptions passes extra options to nats.Connect.
func WithConnectOptions(opts ...nats.Option) Option {
	return func(s *JetStream) {
		s.connectOpts = append(s.connectOpts, opts...)
	}
}
