package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/REGINA562/new-project/internal/services"
	"github.com/REGINA562/new-project/internal/store"
	"github.com/REGINA562/new-project/internal/uploads"
	"github.com/REGINA562/new-project/types"
	"github.com/go-chi/chi/v5"
)

// StudentHandler provides the roster and note pages.
type StudentHandler struct {
	site     *Site
	students *services.StudentService
	notes    *services.NoteService
	saver    *uploads.Saver
}

func NewStudentHandler(site *Site, students *services.StudentService, notes *services.NoteService, saver *uploads.Saver) *StudentHandler {
	return &StudentHandler{
		site:     site,
		students: students,
		notes:    notes,
		saver:    saver,
	}
}

// StudentRouter registers the authenticated roster routes.
func StudentRouter(r chi.Router, site *Site, students *services.StudentService, notes *services.NoteService, saver *uploads.Saver) {
	handler := NewStudentHandler(site, students, notes, saver)

	r.Get("/", handler.ListStudents)
	r.Get("/add", handler.AddStudentForm)
	r.Post("/add", handler.AddStudent)
	r.Route("/{studentID}", func(r chi.Router) {
		r.Get("/", handler.StudentDetail)
		r.Get("/edit", handler.EditStudentForm)
		r.Post("/edit", handler.EditStudent)
		r.Delete("/", handler.DeleteStudent)
		r.Get("/notes/add", handler.AddNoteForm)
		r.Post("/notes/add", handler.AddNote)
	})
}

// NoteRouter registers the authenticated note routes that are not
// nested under a student.
func NoteRouter(r chi.Router, site *Site, students *services.StudentService, notes *services.NoteService, saver *uploads.Saver) {
	handler := NewStudentHandler(site, students, notes, saver)
	r.Delete("/{noteID}", handler.DeleteNote)
}

func (h *StudentHandler) ListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.students.List(r.Context())
	if err != nil {
		h.site.serverError(w, r, err)
		return
	}
	h.site.render(w, r, http.StatusOK, "students.html", "Students", students)
}

type studentFormData struct {
	Student types.Student
	Action  string
}

func (h *StudentHandler) AddStudentForm(w http.ResponseWriter, r *http.Request) {
	h.site.render(w, r, http.StatusOK, "student_form.html", "Add student", studentFormData{
		Action: "/students/add",
	})
}

func (h *StudentHandler) AddStudent(w http.ResponseWriter, r *http.Request) {
	if flash := parseUploadForm(w, r); flash != nil {
		h.site.redirect(w, r, "/students/add", *flash)
		return
	}

	student, err := studentFromForm(r)
	if err != nil {
		h.site.redirect(w, r, "/students/add", types.Flash{Kind: "error", Message: err.Error()})
		return
	}

	photo, ok := h.saveUpload(w, r, "photo")
	if !ok {
		return
	}
	student.Photo = photo

	if _, err := h.students.Create(r.Context(), student); err != nil {
		if errors.Is(err, services.ErrMissingField) {
			h.site.redirect(w, r, "/students/add", types.Flash{Kind: "error", Message: "full name is required"})
			return
		}
		h.site.serverError(w, r, err)
		return
	}

	h.site.redirect(w, r, "/students", types.Flash{Kind: "success", Message: "student added"})
}

type studentDetailData struct {
	Student types.Student
	Notes   []types.Note
}

func (h *StudentHandler) StudentDetail(w http.ResponseWriter, r *http.Request) {
	student, ok := h.loadStudent(w, r)
	if !ok {
		return
	}

	notes, err := h.notes.ListByStudent(r.Context(), student.ID)
	if err != nil {
		h.site.serverError(w, r, err)
		return
	}

	h.site.render(w, r, http.StatusOK, "student_detail.html", student.FullName, studentDetailData{
		Student: student,
		Notes:   notes,
	})
}

func (h *StudentHandler) EditStudentForm(w http.ResponseWriter, r *http.Request) {
	student, ok := h.loadStudent(w, r)
	if !ok {
		return
	}
	h.site.render(w, r, http.StatusOK, "student_form.html", "Edit student", studentFormData{
		Student: student,
		Action:  fmt.Sprintf("/students/%d/edit", student.ID),
	})
}

func (h *StudentHandler) EditStudent(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.loadStudent(w, r)
	if !ok {
		return
	}
	formURL := fmt.Sprintf("/students/%d/edit", existing.ID)

	if flash := parseUploadForm(w, r); flash != nil {
		h.site.redirect(w, r, formURL, *flash)
		return
	}

	student, err := studentFromForm(r)
	if err != nil {
		h.site.redirect(w, r, formURL, types.Flash{Kind: "error", Message: err.Error()})
		return
	}
	student.ID = existing.ID
	student.CreatedAt = existing.CreatedAt

	// A new photo replaces the old reference; without one the
	// existing reference stays.
	student.Photo = existing.Photo
	if photo, ok := h.saveUpload(w, r, "photo"); !ok {
		return
	} else if photo != nil {
		student.Photo = photo
	}

	if _, err := h.students.Update(r.Context(), student); err != nil {
		switch {
		case errors.Is(err, services.ErrMissingField):
			h.site.redirect(w, r, formURL, types.Flash{Kind: "error", Message: "full name is required"})
		case errors.Is(err, store.ErrNotFound):
			h.site.renderError(w, r, http.StatusNotFound, "student not found")
		default:
			h.site.serverError(w, r, err)
		}
		return
	}

	h.site.redirect(w, r, fmt.Sprintf("/students/%d", student.ID),
		types.Flash{Kind: "success", Message: "student updated"})
}

func (h *StudentHandler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "studentID")
	if err != nil {
		h.site.renderError(w, r, http.StatusNotFound, "student not found")
		return
	}

	if err := h.students.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.site.renderError(w, r, http.StatusNotFound, "student not found")
			return
		}
		h.site.serverError(w, r, err)
		return
	}

	h.site.redirect(w, r, "/students", types.Flash{Kind: "info", Message: "student deleted"})
}

func (h *StudentHandler) AddNoteForm(w http.ResponseWriter, r *http.Request) {
	student, ok := h.loadStudent(w, r)
	if !ok {
		return
	}
	h.site.render(w, r, http.StatusOK, "note_form.html", "Add note", student)
}

func (h *StudentHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	student, ok := h.loadStudent(w, r)
	if !ok {
		return
	}
	formURL := fmt.Sprintf("/students/%d/notes/add", student.ID)

	if flash := parseUploadForm(w, r); flash != nil {
		h.site.redirect(w, r, formURL, *flash)
		return
	}

	note := types.Note{
		StudentID: student.ID,
		Content:   r.FormValue("content"),
	}

	// Staff-created notes carry the acting user as author.
	if user, ok := UserFromContext(r.Context()); ok {
		note.AuthorID = &user.ID
	}

	attachment, ok := h.saveUpload(w, r, "attachment")
	if !ok {
		return
	}
	note.Attachment = attachment

	if _, err := h.notes.Create(r.Context(), note); err != nil {
		if errors.Is(err, services.ErrMissingField) {
			h.site.redirect(w, r, formURL, types.Flash{Kind: "error", Message: "note text is required"})
			return
		}
		h.site.serverError(w, r, err)
		return
	}

	h.site.redirect(w, r, fmt.Sprintf("/students/%d", student.ID),
		types.Flash{Kind: "success", Message: "note added"})
}

func (h *StudentHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "noteID")
	if err != nil {
		h.site.renderError(w, r, http.StatusNotFound, "note not found")
		return
	}

	note, err := h.notes.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.site.renderError(w, r, http.StatusNotFound, "note not found")
			return
		}
		h.site.serverError(w, r, err)
		return
	}

	if err := h.notes.Delete(r.Context(), id); err != nil && !errors.Is(err, store.ErrNotFound) {
		h.site.serverError(w, r, err)
		return
	}

	h.site.redirect(w, r, fmt.Sprintf("/students/%d", note.StudentID),
		types.Flash{Kind: "info", Message: "note deleted"})
}

// loadStudent fetches the student named in the URL, rendering a 404
// when it does not exist.
func (h *StudentHandler) loadStudent(w http.ResponseWriter, r *http.Request) (types.Student, bool) {
	id, err := parseIDParam(r, "studentID")
	if err != nil {
		h.site.renderError(w, r, http.StatusNotFound, "student not found")
		return types.Student{}, false
	}

	student, err := h.students.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.site.renderError(w, r, http.StatusNotFound, "student not found")
			return types.Student{}, false
		}
		h.site.serverError(w, r, err)
		return types.Student{}, false
	}
	return student, true
}

// saveUpload stores an optional file from the parsed form. A rejected
// file (wrong type, oversize) is reported as a flash and the operation
// continues with no reference; only infrastructure failures stop the
// request, in which case ok is false and a response has been written.
func (h *StudentHandler) saveUpload(w http.ResponseWriter, r *http.Request, field string) (name *string, ok bool) {
	fh := formFile(r, field)
	if fh == nil {
		return nil, true
	}

	stored, err := h.saver.Save(r.Context(), fh)
	if err != nil {
		if isUploadValidationErr(err) {
			h.site.flash(w, r, types.Flash{Kind: "error", Message: err.Error()})
			return nil, true
		}
		h.site.serverError(w, r, err)
		return nil, false
	}
	return &stored, true
}
