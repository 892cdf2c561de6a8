package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/REGINA562/new-project/internal/services"
	"github.com/REGINA562/new-project/types"
	"github.com/go-chi/chi/v5"
)

// AuthHandler provides the login and logout pages.
type AuthHandler struct {
	site *Site
	auth *services.AuthService
}

func NewAuthHandler(site *Site, auth *services.AuthService) *AuthHandler {
	return &AuthHandler{site: site, auth: auth}
}

// AuthRouter registers the unauthenticated auth routes.
func AuthRouter(r chi.Router, site *Site, auth *services.AuthService) {
	handler := NewAuthHandler(site, auth)

	r.Get("/login", handler.LoginPage)
	r.Post("/login", handler.Login)
	r.Post("/logout", handler.Logout)
}

// LoginPage renders the login form. A user who is already signed in is
// sent to the dashboard instead.
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if id := sessionIDFromRequest(r); id != "" {
		payload, err := h.site.Sessions.Get(r.Context(), id)
		if err == nil && payload.User != nil {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
	}
	h.site.render(w, r, http.StatusOK, "login.html", "Sign in", nil)
}

// Login verifies the submitted credentials and starts a fresh session.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.site.redirect(w, r, "/login", types.Flash{Kind: "error", Message: "invalid form submission"})
		return
	}

	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")
	if email == "" || password == "" {
		h.site.redirect(w, r, "/login", types.Flash{Kind: "error", Message: "fill in email and password"})
		return
	}

	user, err := h.auth.Authenticate(r.Context(), email, password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			h.site.redirect(w, r, "/login", types.Flash{Kind: "error", Message: services.ErrInvalidCredentials.Error()})
			return
		}
		h.site.serverError(w, r, err)
		return
	}

	// Any pre-login session (anonymous flash carrier or a stale
	// login) is discarded; the new identity gets a fresh identifier.
	if old := sessionIDFromRequest(r); old != "" {
		_ = h.site.Sessions.Destroy(r.Context(), old)
	}

	payload := types.SessionPayload{
		User: &types.SessionUser{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
			Role:  user.Role,
		},
		Flashes: []types.Flash{{Kind: "success", Message: "signed in"}},
	}
	id, expiry, err := h.site.Sessions.Create(r.Context(), payload)
	if err != nil {
		h.site.serverError(w, r, err)
		return
	}

	h.site.setSessionCookie(w, id, expiry)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout destroys the session and clears the cookie. Logging out of an
// already-dead session is fine.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if id := sessionIDFromRequest(r); id != "" {
		if err := h.site.Sessions.Destroy(r.Context(), id); err != nil {
			h.site.serverError(w, r, err)
			return
		}
	}
	h.site.clearSessionCookie(w)
	h.site.redirect(w, r, "/login", types.Flash{Kind: "info", Message: "signed out"})
}
