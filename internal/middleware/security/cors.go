package security

import (
	"net/http"
	"strings"
)

// CORS answers preflight requests and tags responses for allowed origins.
// Requests from other origins are served without CORS headers, which the
// browser then rejects.
type CORS struct {
	origins map[string]bool
	any     bool
	methods string
	headers string
}

func NewCORS(origins []string) *CORS {
	c := &CORS{
		origins: make(map[string]bool, len(origins)),
		methods: "GET, POST, DELETE, OPTIONS",
		headers: "Content-Type, Accept, X-Request-ID",
	}
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			c.any = true
			continue
		}
		if o != "" {
			c.origins[o] = true
		}
	}
	return c
}

func (c *CORS) allowed(origin string) bool {
	return c.any || c.origins[origin]
}

func (c *CORS) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			w.Header().Add("Vary", "Origin")
		}
		if origin != "" && c.allowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.Header().Set("Access-Control-Allow-Methods", c.methods)
				w.Header().Set("Access-Control-Allow-Headers", c.headers)
				w.Header().Set("Access-Control-Max-Age", "600")
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
