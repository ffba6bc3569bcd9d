package eventlog

const defaultMaxLineBytes = 1 << 20

// Option applies a configuration option to the Decoder.
type Option func(*Decoder)

// WithMaxLineBytes bounds the size of a single log line.
func WithMaxLineBytes(n int) Option {
	return func(d *Decoder) {
		if n > 0 {
			d.maxLineBytes = n
		}
	}
}
