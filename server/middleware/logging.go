package middleware

import (
	"net/http"
	"time"

	"github.com/kbukum/forohub/logger"
)

// quietPaths are probed often and logged only on failure.
var quietPaths = map[string]bool{"/health": true}

// RequestLogger logs each request once it completes. The level follows
// the status: 5xx error, 4xx warn, anything else debug.
func RequestLogger(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &recorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			status := rec.Status()
			if quietPaths[r.URL.Path] && status < http.StatusInternalServerError {
				return
			}
			fields := logger.Fields(
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"size", rec.bytes,
				logger.FieldDuration, time.Since(start).Milliseconds(),
			)
			l := log.WithContext(r.Context())
			switch {
			case status >= http.StatusInternalServerError:
				l.Error("request completed", fields)
			case status >= http.StatusBadRequest:
				l.Warn("request completed", fields)
			default:
				l.Debug("request completed", fields)
			}
		})
	}
}

// recorder captures the first status written and counts body bytes.
type recorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

// Status is 200 when the handler wrote a body without a header.
func (r *recorder) Status() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

func (r *recorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *recorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func (r *recorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the connection.
func (r *recorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
