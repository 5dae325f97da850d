// Package api implements the Oikos REST API using chi.
package api

import (
	"context"
	"net/http"

	"github.com/starford/oikos/internal/session"
)

// SessionHeader carries the client's session id. The server issues a fresh
// id when the header is absent, adopts an unknown one, and echoes the
// resolved id on every response.
const SessionHeader = "X-Session-ID"

type ctxKey int

const sessionCtxKey ctxKey = iota

// SessionMiddleware resolves (or creates) the per-client session and makes
// it available to handlers via the request context.
func SessionMiddleware(mgr *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := mgr.GetOrCreate(r.Header.Get(SessionHeader))
			w.Header().Set(SessionHeader, sess.ID)
			ctx := context.WithValue(r.Context(), sessionCtxKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// sessionFrom returns the session resolved by SessionMiddleware.
func sessionFrom(r *http.Request) *session.Session {
	sess, _ := r.Context().Value(sessionCtxKey).(*session.Session)
	return sess
}
