package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/REGINA562/new-project/internal/session"
	"github.com/REGINA562/new-project/types"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

// pages that render inside the layout.
var pageNames = []string{
	"login.html",
	"dashboard.html",
	"students.html",
	"student_detail.html",
	"student_form.html",
	"note_form.html",
	"register.html",
	"register_success.html",
	"error.html",
}

// Site carries the dependencies shared by every HTML handler: the
// session manager, the logger, and the parsed templates.
type Site struct {
	Sessions *session.Manager
	Logger   *zap.Logger

	templates map[string]*template.Template
}

func NewSite(sessions *session.Manager, logger *zap.Logger) *Site {
	templates := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		templates[name] = template.Must(template.ParseFS(
			templateFS,
			"templates/layout.html",
			"templates/"+name,
		))
	}
	return &Site{
		Sessions:  sessions,
		Logger:    logger,
		templates: templates,
	}
}

// pageData is the envelope every template renders with.
type pageData struct {
	Title       string
	CurrentUser *types.SessionUser
	Flashes     []types.Flash
	Data        any
}

// render writes a page inside the layout. Flashes queued on the
// session are consumed here, so each one is shown exactly once.
func (s *Site) render(w http.ResponseWriter, r *http.Request, status int, page, title string, data any) {
	pd := pageData{Title: title, Data: data}

	if id := sessionIDFromRequest(r); id != "" {
		payload, err := s.Sessions.Get(r.Context(), id)
		if err == nil {
			pd.CurrentUser = payload.User
			flashes, err := s.Sessions.PopFlashes(r.Context(), id)
			if err == nil {
				pd.Flashes = flashes
			}
		}
	}

	tmpl, ok := s.templates[page]
	if !ok {
		s.Logger.Error("unknown template", zap.String("page", page))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", pd); err != nil {
		s.Logger.Error("render template", zap.String("page", page), zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// renderError writes the error page with the given status.
func (s *Site) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	s.render(w, r, status, "error.html", http.StatusText(status), message)
}

// serverError logs the cause and renders a generic 500 page.
func (s *Site) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.Logger.Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	s.renderError(w, r, http.StatusInternalServerError, "something went wrong")
}

// redirect queues the given flashes and issues a 303 See Other.
func (s *Site) redirect(w http.ResponseWriter, r *http.Request, url string, flashes ...types.Flash) {
	if len(flashes) > 0 {
		s.flash(w, r, flashes...)
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

// flash stores one-shot notices on the current session. When there is
// no live session, an anonymous one is created just to carry them.
func (s *Site) flash(w http.ResponseWriter, r *http.Request, flashes ...types.Flash) {
	ctx := r.Context()

	if id := sessionIDFromRequest(r); id != "" {
		queued := true
		for _, flash := range flashes {
			if err := s.Sessions.AddFlash(ctx, id, flash); err != nil {
				queued = false
				break
			}
		}
		if queued {
			return
		}
	}

	id, expiry, err := s.Sessions.Create(ctx, types.SessionPayload{Flashes: flashes})
	if err != nil {
		s.Logger.Error("create flash session", zap.Error(err))
		return
	}
	s.setSessionCookie(w, id, expiry)
}

func (s *Site) setSessionCookie(w http.ResponseWriter, id string, expiry time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    id,
		Path:     "/",
		Expires:  expiry,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Site) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func sessionIDFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(session.CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
