package middleware

import (
	"net/http"
	"sync/atomic"
)

// Metrics counts requests by outcome.
type Metrics struct {
	Requests     atomic.Int64
	ClientErrors atomic.Int64
	ServerErrors atomic.Int64
	Throttled    atomic.Int64
}

// MetricsSnapshot is a point-in-time copy of the counters.
type MetricsSnapshot struct {
	Requests     int64 `json:"request_count"`
	ClientErrors int64 `json:"client_error_count"`
	ServerErrors int64 `json:"server_error_count"`
	Throttled    int64 `json:"throttled_count"`
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Requests:     m.Requests.Load(),
		ClientErrors: m.ClientErrors.Load(),
		ServerErrors: m.ServerErrors.Load(),
		Throttled:    m.Throttled.Load(),
	}
}

// Middleware returns middleware that counts requests and errors.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.Requests.Add(1)

		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)

		switch {
		case rw.statusCode == http.StatusTooManyRequests:
			m.Throttled.Add(1)
			m.ClientErrors.Add(1)
		case rw.statusCode >= 500:
			m.ServerErrors.Add(1)
		case rw.statusCode >= 400:
			m.ClientErrors.Add(1)
		}
	})
}
