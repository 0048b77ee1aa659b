package middleware

import (
	"net/http"

	"github.com/felixge/httpsnoop"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RequestLogger puts a request-scoped logger in the context and logs one line per request:
// error level for responses of 400 and above, debug otherwise.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l := log.With().Str("request_id", chimw.GetReqID(r.Context())).Logger()
		r = r.WithContext(l.WithContext(r.Context()))

		m := httpsnoop.CaptureMetrics(next, w, r)

		var ev *zerolog.Event
		if m.Code >= http.StatusBadRequest {
			ev = l.Error()
		} else {
			ev = l.Debug()
		}
		ev.Str("method", r.Method).
			Str("uri", r.URL.RequestURI()).
			Int("status", m.Code).
			Int64("size", m.Written).
			Int64("duration_ms", m.Duration.Milliseconds()).
			Str("ip", r.RemoteAddr).
			Str("user_agent", r.UserAgent()).
			Msg("request")
	})
}
