package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"rokomferi-storefront/pkg/logger"

	"github.com/google/uuid"
)

// requestTrace collects facts learned deeper in the chain that belong on the
// access log line.
type requestTrace struct {
	userID string
}

type traceKey struct{}

// traceUser records the authenticated shopper for the access log.
func traceUser(ctx context.Context, userID string) {
	if trace, ok := ctx.Value(traceKey{}).(*requestTrace); ok {
		trace.userID = userID
	}
}

// RequestLogger writes one access log line per request and puts a request
// scoped logger into the context. A request ID sent by the storefront client
// is reused so both sides log the same ID.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()[:8]
		}

		reqLogger := logger.WithRequestID(requestID)
		trace := &requestTrace{}
		ctx := logger.NewContext(r.Context(), &reqLogger)
		ctx = context.WithValue(ctx, traceKey{}, trace)
		r = r.WithContext(ctx)

		w.Header().Set("X-Request-ID", requestID)

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		// A 404 from a cart or wishlist delete is the client retrying an
		// already applied change.
		event := reqLogger.Info()
		switch {
		case wrapped.statusCode >= 500:
			event = reqLogger.Error()
		case wrapped.statusCode >= 400 && wrapped.statusCode != http.StatusNotFound:
			event = reqLogger.Warn()
		}

		event.
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapped.statusCode).
			Int("bytes", wrapped.written).
			Dur("duration_ms", time.Since(start)).
			Str("ip", getClientIP(r)).
			Str("origin", r.Header.Get("Origin")).
			Str("user_agent", r.UserAgent()).
			Str("user_id", trace.userID).
			Msg("HTTP")
	})
}

// responseWriter captures the status code and body size.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	written     int
	wroteHeader bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.wroteHeader {
		rw.statusCode = code
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	n, err := rw.ResponseWriter.Write(b)
	rw.written += n
	return n, err
}

// getClientIP returns the originating address without its port. Behind a
// proxy chain only the first X-Forwarded-For hop is the client.
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
