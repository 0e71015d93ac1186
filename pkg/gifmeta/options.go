package gifmeta

import (
	"io"
	"log/slog"
)

// TrailerPolicy decides what happens to bytes after the trailer.
type TrailerPolicy int

const (
	// TrailerContinue keeps scanning after 0x3B, so data appended past the
	// trailer is still found.
	TrailerContinue TrailerPolicy = iota
	// TrailerStop ignores everything after the first trailer.
	TrailerStop
)

// DefaultMaxTextLength caps a concatenated comment or plain text.
const DefaultMaxTextLength = 64 << 10

type Option func(*Parser)

// WithLogger sets the logger for diagnostics. Block-level detail is logged
// at debug, header facts at info.
func WithLogger(l *slog.Logger) Option {
	return func(p *Parser) {
		if l != nil {
			p.log = l
		}
	}
}

func WithTrailerPolicy(tp TrailerPolicy) Option {
	return func(p *Parser) {
		p.trailerPolicy = tp
	}
}

// WithMaxTextLength sets the text cap; n <= 0 restores the default.
func WithMaxTextLength(n int) Option {
	return func(p *Parser) {
		if n <= 0 {
			n = DefaultMaxTextLength
		}
		p.maxText = n
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
