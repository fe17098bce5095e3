package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// RequestIDHeader carries the correlation id in both directions.
const RequestIDHeader = "X-Request-ID"

const maxRequestIDLen = 64

type ctxRequestIDKey struct{}

// RequestID tags every request with a correlation id used by the access log
// and the design pipeline logs. A caller-supplied id is kept when it is short
// and printable, so a frontend can follow one mood board across REST and
// WebSocket traffic. Anything else is replaced by a fresh UUID.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get(RequestIDHeader)
		if !validRequestID(rid) {
			rid = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, rid)
		next.ServeHTTP(w, r.WithContext(WithRequestID(r.Context(), rid)))
	})
}

// WithRequestID stores rid on ctx.
func WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey{}, rid)
}

// RequestIDFromContext returns the id set by RequestID, or "".
func RequestIDFromContext(ctx context.Context) string {
	rid, _ := ctx.Value(ctxRequestIDKey{}).(string)
	return rid
}

// validRequestID accepts ids made of letters, digits and -_.: only. Header
// values end up in log lines, so controls and spaces are refused.
func validRequestID(rid string) bool {
	if rid == "" || len(rid) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(rid); i++ {
		c := rid[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-' || c == '_' || c == '.' || c == ':':
		default:
			return false
		}
	}
	return true
}
