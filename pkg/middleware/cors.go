// Package middleware carries the HTTP middleware chain for the simulation
// API: CORS for the browser frontend, panic recovery, request logging and
// correlation ids that tie a request to its detached render-loop logs.
package middleware

import (
	"net/http"
	"strconv"
)

// CORSConfig holds CORS configuration. The browser frontend runs on a
// different origin and only ever issues GET and POST calls, so the allowed
// method list defaults narrow.
type CORSConfig struct {
	AllowedOrigins   string
	AllowedMethods   string
	AllowedHeaders   string
	AllowCredentials bool
	MaxAge           int
}

// CORS adds cross-origin headers and short-circuits preflight requests
func CORS(config CORSConfig) func(http.Handler) http.Handler {
	methods := config.AllowedMethods
	if methods == "" {
		methods = "GET, POST, OPTIONS"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", config.AllowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", methods)
			w.Header().Set("Access-Control-Allow-Headers", config.AllowedHeaders)

			if config.AllowCredentials {
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}

			if config.MaxAge > 0 {
				w.Header().Set("Access-Control-Max-Age", strconv.Itoa(config.MaxAge))
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
