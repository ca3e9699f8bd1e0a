// ABOUTME: CORS middleware for browser clients of the auth API
// ABOUTME: Allows only configured origins; handles preflight requests

package gateway

import (
	"net/http"
)

// corsMiddleware allows configured origins to call the API from a browser.
// With no configured origins the middleware passes requests through
// untouched.
func (g *Gateway) corsMiddleware(next http.Handler) http.Handler {
	allowed := make(map[string]bool, len(g.config.CORS.AllowedOrigins))
	for _, origin := range g.config.CORS.AllowedOrigins {
		allowed[origin] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Vary", "Origin")

			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}
