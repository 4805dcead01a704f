package edm

import (
	"os"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog for the core's non-fatal warning channel (§7
// "Propagation policy"). A nil *Logger is legal and silently discards
// every call, so the numeric core stays usable as a pure library with
// no logging side effect forced on callers.
type Logger struct {
	z       zerolog.Logger
	verbose bool
}

// NewLogger builds a Logger writing to stderr. verbose gates the
// per-row debug messages (self-match skip, SMap target lookup past the
// library); the once-per-call warnings (overlap, degenerate neighbors,
// Tp overrun, multivariable S-Map, alpha clamp) are always emitted when
// the Logger is non-nil.
func NewLogger(verbose bool) *Logger {
	return &Logger{
		z:       zerolog.New(os.Stderr).With().Timestamp().Logger(),
		verbose: verbose,
	}
}

func (l *Logger) warn(msg string) {
	if l == nil {
		return
	}
	l.z.Warn().Msg(msg)
}

func (l *Logger) debugf(format string, args ...any) {
	if l == nil || !l.verbose {
		return
	}
	l.z.Debug().Msgf(format, args...)
}
