package handlers

import (
	"errors"
	"net/http"

	"github.com/REGINA562/new-project/internal/services"
	"github.com/REGINA562/new-project/internal/uploads"
	"github.com/REGINA562/new-project/types"
	"github.com/go-chi/chi/v5"
)

// RegisterHandler provides the public self-registration page. It is
// the one data-mutating surface that runs without authentication, so
// the notes it creates carry no author.
type RegisterHandler struct {
	site     *Site
	students *services.StudentService
	saver    *uploads.Saver
}

func NewRegisterHandler(site *Site, students *services.StudentService, saver *uploads.Saver) *RegisterHandler {
	return &RegisterHandler{site: site, students: students, saver: saver}
}

// RegisterRouter registers the public self-registration routes.
func RegisterRouter(r chi.Router, site *Site, students *services.StudentService, saver *uploads.Saver) {
	handler := NewRegisterHandler(site, students, saver)

	r.Get("/", handler.RegisterForm)
	r.Post("/", handler.Register)
}

func (h *RegisterHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.site.render(w, r, http.StatusOK, "register.html", "Student registration", nil)
}

func (h *RegisterHandler) Register(w http.ResponseWriter, r *http.Request) {
	if flash := parseUploadForm(w, r); flash != nil {
		h.site.redirect(w, r, "/register", *flash)
		return
	}

	student, err := studentFromForm(r)
	if err != nil {
		h.site.redirect(w, r, "/register", types.Flash{Kind: "error", Message: err.Error()})
		return
	}

	// A rejected photo does not block registration: the student row
	// is still written, just with no photo reference.
	if fh := formFile(r, "photo"); fh != nil {
		stored, err := h.saver.Save(r.Context(), fh)
		switch {
		case err == nil:
			student.Photo = &stored
		case isUploadValidationErr(err):
			h.site.flash(w, r, types.Flash{Kind: "error", Message: err.Error()})
		default:
			h.site.serverError(w, r, err)
			return
		}
	}

	created, err := h.students.Register(r.Context(), student, r.FormValue("initial_note"))
	if err != nil {
		if errors.Is(err, services.ErrMissingField) {
			h.site.redirect(w, r, "/register", types.Flash{Kind: "error", Message: "full name is required"})
			return
		}
		h.site.serverError(w, r, err)
		return
	}

	h.site.render(w, r, http.StatusOK, "register_success.html", "Thank you", created)
}
