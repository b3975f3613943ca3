package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/drunkyet/pkg/logger"
)

// CORSConfig describes which browser origins may call the API.
type CORSConfig struct {
	AllowedOrigins   []string
	AllowCredentials bool
	// MaxAge is the preflight cache lifetime in seconds; 0 omits the header.
	MaxAge int
}

const (
	corsAllowMethods  = "GET, POST, OPTIONS"
	corsAllowHeaders  = "Content-Type, " + RequestIDHeader
	corsExposeHeaders = RequestIDHeader
)

func (c CORSConfig) wildcard() bool {
	for _, o := range c.AllowedOrigins {
		if o == "*" {
			return true
		}
	}
	return false
}

func (c CORSConfig) allows(origin string) bool {
	for _, o := range c.AllowedOrigins {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

// CORSMiddleware applies cfg to cross-origin requests and answers preflights.
// Requests without an Origin header pass through untouched.
func CORSMiddleware(cfg CORSConfig, log logger.Logger, next http.Handler) http.Handler {
	wildcard := cfg.wildcard()
	if wildcard && log != nil {
		log.Warn(context.Background(), "CORS wildcard origin (*) is insecure; use specific origins in production")
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			next.ServeHTTP(w, r)
			return
		}

		preflight := r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""
		h := w.Header()
		h.Add("Vary", "Origin")

		if !cfg.allows(origin) {
			if preflight {
				writeError(w, http.StatusForbidden, "origin_not_allowed", NewKind("api.cors", ErrOriginNotAllowed))
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		if wildcard && !cfg.AllowCredentials {
			h.Set("Access-Control-Allow-Origin", "*")
		} else {
			h.Set("Access-Control-Allow-Origin", origin)
		}
		if cfg.AllowCredentials {
			h.Set("Access-Control-Allow-Credentials", "true")
		}

		if !preflight {
			h.Set("Access-Control-Expose-Headers", corsExposeHeaders)
			next.ServeHTTP(w, r)
			return
		}

		h.Add("Vary", "Access-Control-Request-Method")
		h.Add("Vary", "Access-Control-Request-Headers")
		h.Set("Access-Control-Allow-Methods", corsAllowMethods)
		h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
		if cfg.MaxAge > 0 {
			h.Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
		}
		w.WriteHeader(http.StatusNoContent)
	})
}
