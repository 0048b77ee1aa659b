package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimit(t *testing.T) {
	h := RateLimit(1)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	send := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
		req.RemoteAddr = ip + ":40000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusNoContent, send("10.0.0.1").Code)

	limited := send("10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "application/json", limited.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"Too many requests, please slow down."}`, limited.Body.String())

	assert.Equal(t, http.StatusNoContent, send("10.0.0.2").Code, "other clients keep their own budget")
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	old := log.Logger
	log.Logger = zerolog.New(&buf).Level(zerolog.DebugLevel)
	t.Cleanup(func() { log.Logger = old })

	tests := []struct {
		name   string
		status int
		level  string
	}{
		{"ok", http.StatusOK, `"level":"debug"`},
		{"client error", http.StatusBadRequest, `"level":"error"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			var ctxLogged bool
			h := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ctxLogged = zerolog.Ctx(r.Context()).GetLevel() != zerolog.Disabled
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("hello"))
			}))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats?x=1", nil))

			require.Equal(t, tt.status, rec.Code)
			assert.True(t, ctxLogged)
			out := buf.String()
			assert.Contains(t, out, tt.level)
			assert.Contains(t, out, `"uri":"/api/stats?x=1"`)
			assert.Contains(t, out, `"status":`+strconv.Itoa(tt.status))
			assert.Contains(t, out, `"size":5`)
			assert.Contains(t, out, `"method":"GET"`)
			assert.Contains(t, out, `"ip":"192.0.2.1:1234"`)
		})
	}
}
