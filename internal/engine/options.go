package engine

import (
	"go.uber.org/zap"

	"github.com/dshills/fieldedit/internal/engine/layout"
)

// Option configures an Engine during creation.
type Option func(*Engine)

// WithParams sets the initial parameters. Invalid parameters are ignored
// and logged.
func WithParams(p Params) Option {
	return func(e *Engine) {
		e.initParams = &p
	}
}

// WithSink sets the host event sink.
func WithSink(sink EventSink) Option {
	return func(e *Engine) {
		if sink != nil {
			e.sink = sink
		}
	}
}

// WithLineBreaker replaces the default CellBreaker.
func WithLineBreaker(lb layout.LineBreaker) Option {
	return func(e *Engine) {
		if lb != nil {
			e.lb = lb
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithChunkSize sets the text buffer chunk capacity.
func WithChunkSize(size int) Option {
	return func(e *Engine) {
		if size > 0 {
			e.chunkSize = size
		}
	}
}
