package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type ctxKey int

const ctxKeyMatch ctxKey = iota

func matchMiddleware(matches *Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m, err := matches.Get(chi.URLParam(r, "matchID"))
			if err != nil {
				writeError(w, http.StatusNotFound, "match not found")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyMatch, m)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// hostAuthMiddleware requires the match's host key. It must run after
// matchMiddleware.
func hostAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := matchFrom(r).Authorize(hostKeyFromRequest(r)); err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or missing host key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func matchFrom(r *http.Request) *Match {
	return r.Context().Value(ctxKeyMatch).(*Match)
}
