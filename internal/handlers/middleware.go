package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/REGINA562/new-project/internal/session"
	"github.com/REGINA562/new-project/types"
)

type contextKey string

const contextUserKey contextKey = "user"

// RequireAuth gates every data route: a request whose session resolves
// to an authenticated user proceeds with that user in context; anything
// else is sent to the login page with a notice. Only the login, logout,
// and public registration routes bypass it.
func (s *Site) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := sessionIDFromRequest(r); id != "" {
			payload, err := s.Sessions.Get(r.Context(), id)
			if err == nil && payload.User != nil {
				ctx := context.WithValue(r.Context(), contextUserKey, *payload.User)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
			if err != nil && !errors.Is(err, session.ErrNotFound) {
				s.serverError(w, r, err)
				return
			}
		}

		s.redirect(w, r, "/login", types.Flash{Kind: "error", Message: "authentication required"})
	})
}

// UserFromContext returns the authenticated user injected by
// RequireAuth.
func UserFromContext(ctx context.Context) (types.SessionUser, bool) {
	user, ok := ctx.Value(contextUserKey).(types.SessionUser)
	return user, ok
}

// MethodOverride lets HTML forms issue DELETE by posting a _method
// field or query parameter. Multipart bodies are left untouched.
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			override := r.URL.Query().Get("_method")
			if override == "" && strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
				if err := r.ParseForm(); err == nil {
					override = r.PostFormValue("_method")
				}
			}
			switch strings.ToUpper(strings.TrimSpace(override)) {
			case http.MethodPut, http.MethodPatch, http.MethodDelete:
				r.Method = strings.ToUpper(strings.TrimSpace(override))
			}
		}
		next.ServeHTTP(w, r)
	})
}
