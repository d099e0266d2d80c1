package middleware

import "net/http"

// CORSMiddleware sets Cross-Origin Resource Sharing headers so the
// dashboard frontend can call the API from another origin.
type CORSMiddleware struct {
	allowed map[string]bool
}

// NewCORSMiddleware builds the middleware. With no origins given,
// every origin is accepted.
func NewCORSMiddleware(allowedOrigins ...string) *CORSMiddleware {
	c := &CORSMiddleware{}
	if len(allowedOrigins) > 0 {
		c.allowed = make(map[string]bool, len(allowedOrigins))
		for _, origin := range allowedOrigins {
			c.allowed[origin] = true
		}
	}
	return c
}

// Wrap adds CORS headers to cross-origin requests and answers
// preflight OPTIONS requests directly.
func (c *CORSMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" && c.originAllowed(origin) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Max-Age", "86400")
			h.Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (c *CORSMiddleware) originAllowed(origin string) bool {
	if c.allowed == nil {
		return true
	}
	return c.allowed[origin] || c.allowed["*"]
}
