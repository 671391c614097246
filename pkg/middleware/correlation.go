package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// correlationHeader is the header clients may supply to tie a simulate call,
// its poll requests and the detached render-loop log lines together.
const correlationHeader = "X-Correlation-ID"

type contextKey string

// CorrelationIDKey is the context key under which the correlation id travels
const CorrelationIDKey contextKey = "correlation_id"

// CorrelationID extracts the caller's correlation id or generates a fresh one,
// echoes it on the response and threads it through the request context.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		correlationID := r.Header.Get(correlationHeader)
		if correlationID == "" {
			correlationID = uuid.New().String()
		}

		w.Header().Set(correlationHeader, correlationID)

		ctx := context.WithValue(r.Context(), CorrelationIDKey, correlationID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetCorrelationID extracts the correlation id from a request context
func GetCorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(CorrelationIDKey).(string); ok {
		return id
	}
	return ""
}
