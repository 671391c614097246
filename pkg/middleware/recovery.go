package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"
)

// maxTraceLen bounds the stack trace returned to clients; the tail carries
// the frames closest to the panic.
const maxTraceLen = 800

// panicResponse is the catch-all failure body. Returning the message and a
// truncated trace keeps the API available across partial failures from
// volatile upstream SDKs instead of crashing the process.
type panicResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Trace   string `json:"trace,omitempty"`
}

// Recovery middleware recovers from panics, logs them and returns a generic
// JSON failure response
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				correlationID := GetCorrelationID(r.Context())
				stack := string(debug.Stack())

				slog.Error("Panic recovered",
					"error", err,
					"stack_trace", stack,
					"method", r.Method,
					"path", r.URL.Path,
					"correlation_id", correlationID,
				)

				trace := stack
				if len(trace) > maxTraceLen {
					trace = trace[len(trace)-maxTraceLen:]
				}

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(panicResponse{
					Error:   http.StatusText(http.StatusInternalServerError),
					Message: toString(err),
					Trace:   trace,
				})
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func toString(v interface{}) string {
	if err, ok := v.(error); ok {
		return err.Error()
	}
	if s, ok := v.(string); ok {
		return s
	}
	data, _ := json.Marshal(v)
	return string(data)
}
