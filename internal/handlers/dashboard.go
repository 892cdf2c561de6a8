package handlers

import (
	"net/http"

	"github.com/REGINA562/new-project/internal/services"
	"github.com/REGINA562/new-project/types"
	"github.com/go-chi/chi/v5"
)

// recentStudentCount is how many newly added students the dashboard
// shows.
const recentStudentCount = 5

// DashboardHandler renders the landing page with on-demand aggregates.
type DashboardHandler struct {
	site     *Site
	students *services.StudentService
	notes    *services.NoteService
}

func NewDashboardHandler(site *Site, students *services.StudentService, notes *services.NoteService) *DashboardHandler {
	return &DashboardHandler{site: site, students: students, notes: notes}
}

// DashboardRouter registers the dashboard route.
func DashboardRouter(r chi.Router, site *Site, students *services.StudentService, notes *services.NoteService) {
	handler := NewDashboardHandler(site, students, notes)
	r.Get("/", handler.Dashboard)
}

type dashboardData struct {
	TotalStudents int
	TotalNotes    int
	Recent        []types.Student
}

func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	totalStudents, err := h.students.Count(r.Context())
	if err != nil {
		h.site.serverError(w, r, err)
		return
	}

	totalNotes, err := h.notes.Count(r.Context())
	if err != nil {
		h.site.serverError(w, r, err)
		return
	}

	recent, err := h.students.Recent(r.Context(), recentStudentCount)
	if err != nil {
		h.site.serverError(w, r, err)
		return
	}

	h.site.render(w, r, http.StatusOK, "dashboard.html", "Dashboard", dashboardData{
		TotalStudents: totalStudents,
		TotalNotes:    totalNotes,
		Recent:        recent,
	})
}
