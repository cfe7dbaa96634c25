package multibuf

import "log/slog"

// DefaultEventBuffer is the default capacity of event channels returned
// by Events.
const DefaultEventBuffer = 64

// Option configures a MultiBuffer.
type Option func(*MultiBuffer)

// WithDefaultPadding sets the context padding applied to excerpt specs
// that request none.
func WithDefaultPadding(p Padding) Option {
	return func(m *MultiBuffer) {
		m.defaultPadding = p
	}
}

// WithEventBuffer sets the capacity of event channels returned by
// Events. Values below one are ignored.
func WithEventBuffer(n int) Option {
	return func(m *MultiBuffer) {
		if n > 0 {
			m.eventBuffer = n
		}
	}
}

// WithLogger sets the logger used for recovery diagnostics (buffer
// desync resyncs). Defaults to slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(m *MultiBuffer) {
		if l != nil {
			m.logger = l
		}
	}
}
