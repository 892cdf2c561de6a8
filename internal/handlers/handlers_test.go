package handlers

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/REGINA562/new-project/internal/services"
	"github.com/REGINA562/new-project/internal/session"
	"github.com/REGINA562/new-project/internal/uploads"
	"github.com/REGINA562/new-project/types"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// testApp wires the real handlers, services, session manager, and
// templates over in-memory fakes, mirroring the route layout of the
// server package.
type testApp struct {
	router   chi.Router
	users    *fakeUserRepo
	students *fakeStudentRepo
	notes    *fakeNoteRepo
	sessions *fakeSessionRepo
	files    *memStore
}

const (
	testAdminEmail    = "admin@example.com"
	testAdminPassword = "adminpass"
)

var (
	adminHashOnce sync.Once
	adminHash     string
)

// testAdminHash hashes the test password once; bcrypt is too slow to
// redo per test.
func testAdminHash(t *testing.T) string {
	t.Helper()
	adminHashOnce.Do(func() {
		hash, err := services.HashPassword(testAdminPassword)
		if err != nil {
			t.Fatalf("HashPassword: %v", err)
		}
		adminHash = hash
	})
	return adminHash
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	userRepo := newFakeUserRepo()
	noteRepo := newFakeNoteRepo()
	studentRepo := newFakeStudentRepo(noteRepo)
	sessionRepo := newFakeSessionRepo()
	files := newMemStore()

	if _, err := userRepo.Create(context.Background(), types.User{
		Name:         "Admin",
		Email:        testAdminEmail,
		Role:         "admin",
		PasswordHash: testAdminHash(t),
	}); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	authService := services.NewAuthService(userRepo)
	studentService := services.NewStudentService(studentRepo, noteRepo)
	noteService := services.NewNoteService(noteRepo)
	sessions := session.NewManager(sessionRepo)
	saver := uploads.NewSaver(files)
	site := NewSite(sessions, zap.NewNop())

	router := chi.NewRouter()
	router.Use(MethodOverride)
	router.Get("/healthz", Healthz)

	AuthRouter(router, site, authService)
	router.Route("/register", func(r chi.Router) {
		RegisterRouter(r, site, studentService, saver)
	})
	router.Route("/uploads", func(r chi.Router) {
		FilesRouter(r, site, files)
	})

	router.Group(func(r chi.Router) {
		r.Use(site.RequireAuth)
		DashboardRouter(r, site, studentService, noteService)
		r.Route("/students", func(r chi.Router) {
			StudentRouter(r, site, studentService, noteService, saver)
		})
		r.Route("/notes", func(r chi.Router) {
			NoteRouter(r, site, studentService, noteService, saver)
		})
	})

	return &testApp{
		router:   router,
		users:    userRepo,
		students: studentRepo,
		notes:    noteRepo,
		sessions: sessionRepo,
		files:    files,
	}
}

func (app *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, req)
	return rec
}

func postForm(target string, form url.Values, cookies ...*http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

// multipartForm builds a multipart request body. An empty filename
// omits the file part.
func multipartForm(t *testing.T, target string, fields map[string]string, fileField, filename, content string, cookies ...*http.Cookie) *http.Request {
	t.Helper()

	var body strings.Builder
	writer := multipart.NewWriter(&body)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("WriteField: %v", err)
		}
	}
	if filename != "" {
		part, err := writer.CreateFormFile(fileField, filename)
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		if _, err := io.WriteString(part, content); err != nil {
			t.Fatalf("write file part: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body.String()))
	req.Header.Set("Content-Type", writer.FormDataContentType())
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName && c.Value != "" {
			return c
		}
	}
	t.Fatalf("no session cookie in response")
	return nil
}

func login(t *testing.T, app *testApp) *http.Cookie {
	t.Helper()
	rec := app.do(postForm("/login", url.Values{
		"email":    {testAdminEmail},
		"password": {testAdminPassword},
	}))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("login status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Fatalf("login redirected to %q, want /", loc)
	}
	return sessionCookie(t, rec)
}

func TestHealthzIsPublic(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestGuardRedirectsAnonymous(t *testing.T) {
	app := newTestApp(t)

	for _, target := range []string{"/", "/students", "/students/add", "/students/1"} {
		rec := app.do(httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != http.StatusSeeOther {
			t.Fatalf("GET %s status = %d, want 303", target, rec.Code)
		}
		if loc := rec.Header().Get("Location"); loc != "/login" {
			t.Fatalf("GET %s redirected to %q, want /login", target, loc)
		}
	}
}

func TestLoginLogoutLifecycle(t *testing.T) {
	app := newTestApp(t)
	cookie := login(t, app)

	req := httptest.NewRequest(http.MethodGet, "/students", nil)
	req.AddCookie(cookie)
	if rec := app.do(req); rec.Code != http.StatusOK {
		t.Fatalf("authenticated roster status = %d, want 200", rec.Code)
	}

	logout := postForm("/logout", url.Values{}, cookie)
	rec := app.do(logout)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Fatalf("logout: status %d location %q", rec.Code, rec.Header().Get("Location"))
	}

	// The server-side session is gone, so the old cookie is worthless.
	req = httptest.NewRequest(http.MethodGet, "/students", nil)
	req.AddCookie(cookie)
	rec = app.do(req)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
		t.Fatalf("stale cookie: status %d location %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestLoginFailureIsUniform(t *testing.T) {
	app := newTestApp(t)

	message := func(form url.Values) string {
		rec := app.do(postForm("/login", form))
		if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
			t.Fatalf("failed login: status %d location %q", rec.Code, rec.Header().Get("Location"))
		}
		// The notice rides on an anonymous session; follow the redirect
		// with its cookie to read it.
		follow := httptest.NewRequest(http.MethodGet, "/login", nil)
		follow.AddCookie(sessionCookie(t, rec))
		body := app.do(follow).Body.String()

		start := strings.Index(body, `class="flash`)
		if start < 0 {
			t.Fatalf("no flash rendered: %s", body)
		}
		return body[start:]
	}

	wrongPassword := message(url.Values{"email": {testAdminEmail}, "password": {"nope"}})
	unknownEmail := message(url.Values{"email": {"ghost@example.com"}, "password": {"nope"}})

	if !strings.Contains(wrongPassword, services.ErrInvalidCredentials.Error()) {
		t.Fatalf("wrong password flash: %s", wrongPassword)
	}
	if !strings.Contains(unknownEmail, services.ErrInvalidCredentials.Error()) {
		t.Fatalf("unknown email flash: %s", unknownEmail)
	}
}

func TestLoginRotatesSessionID(t *testing.T) {
	app := newTestApp(t)

	// Provoke an anonymous flash-carrier session first.
	rec := app.do(postForm("/login", url.Values{"email": {testAdminEmail}, "password": {"nope"}}))
	anon := sessionCookie(t, rec)

	req := postForm("/login", url.Values{
		"email":    {testAdminEmail},
		"password": {testAdminPassword},
	}, anon)
	authed := sessionCookie(t, app.do(req))

	if authed.Value == anon.Value {
		t.Fatalf("session identifier survived login")
	}
	if _, ok := app.sessions.rows[anon.Value]; ok {
		t.Fatalf("pre-login session not destroyed")
	}
}

func TestAddStudentWithPhoto(t *testing.T) {
	app := newTestApp(t)
	cookie := login(t, app)

	req := multipartForm(t, "/students/add",
		map[string]string{"full_name": "Ana P.", "age": "9", "level": "beginner"},
		"photo", "ana.png", "png-bytes", cookie)
	rec := app.do(req)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/students" {
		t.Fatalf("add student: status %d location %q", rec.Code, rec.Header().Get("Location"))
	}

	if len(app.students.students) != 1 {
		t.Fatalf("expected 1 student, got %d", len(app.students.students))
	}
	for _, student := range app.students.students {
		if student.FullName != "Ana P." {
			t.Fatalf("unexpected name %q", student.FullName)
		}
		if student.Age == nil || *student.Age != 9 {
			t.Fatalf("age not stored: %v", student.Age)
		}
		if student.Photo == nil {
			t.Fatalf("photo reference missing")
		}
		data, ok := app.files.files[*student.Photo]
		if !ok {
			t.Fatalf("photo %q not in storage", *student.Photo)
		}
		if string(data) != "png-bytes" {
			t.Fatalf("photo content mismatch")
		}
	}
}

func TestAddStudentRequiresFullName(t *testing.T) {
	app := newTestApp(t)
	cookie := login(t, app)

	req := multipartForm(t, "/students/add",
		map[string]string{"full_name": "   "}, "", "", "", cookie)
	rec := app.do(req)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/students/add" {
		t.Fatalf("status %d location %q", rec.Code, rec.Header().Get("Location"))
	}
	if len(app.students.students) != 0 {
		t.Fatalf("student created despite missing name")
	}
}

func TestRegisterCreatesStudentAndAuthorlessNote(t *testing.T) {
	app := newTestApp(t)

	req := multipartForm(t, "/register",
		map[string]string{"full_name": "Boris K.", "initial_note": "trial class"},
		"", "", "")
	rec := app.do(req)
	if rec.Code != http.StatusOK {
		t.Fatalf("register status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Boris K.") {
		t.Fatalf("confirmation page does not name the student")
	}

	if len(app.students.students) != 1 {
		t.Fatalf("expected 1 student, got %d", len(app.students.students))
	}
	if len(app.notes.notes) != 1 {
		t.Fatalf("expected 1 note, got %d", len(app.notes.notes))
	}
	for _, note := range app.notes.notes {
		if note.AuthorID != nil {
			t.Fatalf("public registration note has an author: %d", *note.AuthorID)
		}
		if note.Content != "trial class" {
			t.Fatalf("note content %q", note.Content)
		}
	}
}

// A disallowed photo is dropped with a notice; the registration itself
// still goes through.
func TestRegisterRejectsExecutablePhotoButKeepsStudent(t *testing.T) {
	app := newTestApp(t)

	req := multipartForm(t, "/register",
		map[string]string{"full_name": "Vera L."},
		"photo", "song.exe", "MZ...")
	rec := app.do(req)
	if rec.Code != http.StatusOK {
		t.Fatalf("register status = %d, want 200", rec.Code)
	}

	if len(app.students.students) != 1 {
		t.Fatalf("expected 1 student, got %d", len(app.students.students))
	}
	for _, student := range app.students.students {
		if student.Photo != nil {
			t.Fatalf("rejected photo stored a reference: %q", *student.Photo)
		}
	}
	if len(app.files.files) != 0 {
		t.Fatalf("rejected file reached storage")
	}
}

func TestStaffNoteCarriesAuthor(t *testing.T) {
	app := newTestApp(t)
	cookie := login(t, app)

	student, err := app.students.Create(context.Background(), types.Student{FullName: "Ana P."})
	if err != nil {
		t.Fatalf("seed student: %v", err)
	}

	req := multipartForm(t, "/students/1/notes/add",
		map[string]string{"content": "ready for grade 2"},
		"attachment", "scales.pdf", "%PDF-1.4", cookie)
	rec := app.do(req)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/students/1" {
		t.Fatalf("add note: status %d location %q", rec.Code, rec.Header().Get("Location"))
	}

	if len(app.notes.notes) != 1 {
		t.Fatalf("expected 1 note, got %d", len(app.notes.notes))
	}
	for _, note := range app.notes.notes {
		if note.StudentID != student.ID {
			t.Fatalf("note bound to student %d", note.StudentID)
		}
		if note.AuthorID == nil {
			t.Fatalf("staff note has no author")
		}
		if note.Attachment == nil {
			t.Fatalf("attachment reference missing")
		}
		if _, ok := app.files.files[*note.Attachment]; !ok {
			t.Fatalf("attachment not in storage")
		}
	}
}

func TestDeleteStudentCascades(t *testing.T) {
	app := newTestApp(t)
	cookie := login(t, app)
	ctx := context.Background()

	target, _ := app.students.Create(ctx, types.Student{FullName: "Ana P."})
	other, _ := app.students.Create(ctx, types.Student{FullName: "Boris K."})
	for i := 0; i < 3; i++ {
		if _, err := app.notes.Create(ctx, types.Note{StudentID: target.ID, Content: "n"}); err != nil {
			t.Fatalf("seed note: %v", err)
		}
	}
	kept, _ := app.notes.Create(ctx, types.Note{StudentID: other.ID, Content: "keep"})

	// HTML forms cannot issue DELETE; the override middleware turns
	// this POST into one.
	req := postForm("/students/1", url.Values{"_method": {"DELETE"}}, cookie)
	rec := app.do(req)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/students" {
		t.Fatalf("delete: status %d location %q", rec.Code, rec.Header().Get("Location"))
	}

	if _, ok := app.students.students[target.ID]; ok {
		t.Fatalf("student survived delete")
	}
	for _, note := range app.notes.notes {
		if note.StudentID == target.ID {
			t.Fatalf("note %d survived the cascade", note.ID)
		}
	}
	if _, ok := app.notes.notes[kept.ID]; !ok {
		t.Fatalf("unrelated note deleted")
	}
}

func TestDeleteNoteRedirectsToStudent(t *testing.T) {
	app := newTestApp(t)
	cookie := login(t, app)
	ctx := context.Background()

	student, _ := app.students.Create(ctx, types.Student{FullName: "Ana P."})
	note, _ := app.notes.Create(ctx, types.Note{StudentID: student.ID, Content: "n"})

	req := postForm("/notes/1", url.Values{"_method": {"DELETE"}}, cookie)
	rec := app.do(req)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/students/1" {
		t.Fatalf("status %d location %q", rec.Code, rec.Header().Get("Location"))
	}
	if _, ok := app.notes.notes[note.ID]; ok {
		t.Fatalf("note survived delete")
	}
	if _, ok := app.students.students[student.ID]; !ok {
		t.Fatalf("student deleted alongside note")
	}
}

func TestEditStudentKeepsPhotoWithoutNewUpload(t *testing.T) {
	app := newTestApp(t)
	cookie := login(t, app)

	photo := "existing.png"
	if _, err := app.students.Create(context.Background(), types.Student{FullName: "Ana P.", Photo: &photo}); err != nil {
		t.Fatalf("seed student: %v", err)
	}

	req := multipartForm(t, "/students/1/edit",
		map[string]string{"full_name": "Ana Petrova"}, "", "", "", cookie)
	rec := app.do(req)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/students/1" {
		t.Fatalf("edit: status %d location %q", rec.Code, rec.Header().Get("Location"))
	}

	updated := app.students.students[1]
	if updated.FullName != "Ana Petrova" {
		t.Fatalf("name not updated: %q", updated.FullName)
	}
	if updated.Photo == nil || *updated.Photo != photo {
		t.Fatalf("photo reference lost on edit: %v", updated.Photo)
	}
}

func TestStudentDetailUnknownIs404(t *testing.T) {
	app := newTestApp(t)
	cookie := login(t, app)

	for _, target := range []string{"/students/99", "/students/abc"} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		req.AddCookie(cookie)
		if rec := app.do(req); rec.Code != http.StatusNotFound {
			t.Fatalf("GET %s status = %d, want 404", target, rec.Code)
		}
	}
}

func TestServeUploadByStorageNameOnly(t *testing.T) {
	app := newTestApp(t)

	name := uploads.StorageName("photo.png")
	app.files.files[name] = []byte("png-bytes")
	app.files.files["secret.png"] = []byte("not addressable")

	rec := app.do(httptest.NewRequest(http.MethodGet, "/uploads/"+name, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "png-bytes" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "image/png") {
		t.Fatalf("content type %q", ct)
	}

	// Names that are not UUID-plus-allowed-extension never reach
	// storage, even when a matching object exists.
	for _, bad := range []string{"secret.png", "evil.exe", "..%2F..%2Fetc%2Fpasswd"} {
		rec := app.do(httptest.NewRequest(http.MethodGet, "/uploads/"+bad, nil))
		if rec.Code != http.StatusNotFound {
			t.Fatalf("GET /uploads/%s status = %d, want 404", bad, rec.Code)
		}
	}
}
