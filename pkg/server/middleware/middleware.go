package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/yhk1105/114-1-DBFinal/pkg/auth"
	"github.com/yhk1105/114-1-DBFinal/pkg/model"
)

type Middleware func(http.Handler) http.Handler

// Chain applies middlewares so that the first one is the outermost.
type Chain []Middleware

func (c Chain) Then(h http.Handler) http.Handler {
	for i := len(c) - 1; i >= 0; i-- {
		h = c[i](h)
	}
	return h
}

func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				slog.Error("panic caught",
					slog.String("method", r.Method),
					slog.String("request_uri", r.URL.RequestURI()),
					slog.Any("panic", p),
					slog.String("stacktrace", string(debug.Stack())),
				)

				w.WriteHeader(http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

type responseWriter struct {
	http.ResponseWriter

	status  int
	written int
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += n
	return n, err
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	rw.status = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func Log(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !slog.Default().Enabled(r.Context(), slog.LevelDebug) {
			next.ServeHTTP(w, r)
			return
		}

		schema := "http"
		if r.TLS != nil {
			schema = "https"
		}

		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		now := time.Now()

		next.ServeHTTP(rw, r)

		// headers are not logged, they carry bearer tokens
		slog.Debug("request served",
			slog.Duration("delay", time.Since(now)),
			slog.String("method", r.Method),
			slog.String("schema", schema),
			slog.String("uri", r.URL.RequestURI()),
			slog.Int("status", rw.status),
			slog.Int("response_length", rw.written),
		)
	})
}

type IdentityResolver interface {
	Resolve(token string) (model.Identity, error)
}

// Auth resolves the bearer token and stores the identity in request context.
// Requests without a valid token pass through anonymous; handlers decide whether that's allowed.
func Auth(resolver IdentityResolver) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			id, err := resolver.Resolve(strings.TrimSpace(token))
			if err != nil {
				slog.Debug("can't resolve token", slog.Any("error", err))
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}

