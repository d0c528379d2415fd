package httpx

import (
	"strings"

	"github.com/rs/zerolog"
)

// restyLogger routes resty's internal diagnostics to zerolog.
type restyLogger struct{ l zerolog.Logger }

func (r restyLogger) Errorf(format string, v ...any) {
	r.l.Error().Str("component", "resty").Msgf(strings.TrimSpace(format), v...)
}

func (r restyLogger) Warnf(format string, v ...any) {
	r.l.Warn().Str("component", "resty").Msgf(strings.TrimSpace(format), v...)
}

func (r restyLogger) Debugf(format string, v ...any) {
	r.l.Debug().Str("component", "resty").Msgf(strings.TrimSpace(format), v...)
}
