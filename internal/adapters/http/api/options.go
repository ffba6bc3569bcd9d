package api

const (
	defaultMaxBodyBytes = 64 << 20
	defaultMaxLimit     = 100
)

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithMaxBodyBytes bounds the size of an uploaded event log.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithMaxLimit caps the standings limit parameter.
func WithMaxLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

// WithDefaultReader sets the reader used when a standings request omits it.
func WithDefaultReader(reader int) Option {
	return func(s *Server) {
		if reader >= 0 {
			s.defaultReader = reader
		}
	}
}
