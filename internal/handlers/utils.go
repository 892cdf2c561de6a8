package handlers

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/REGINA562/new-project/internal/uploads"
	"github.com/REGINA562/new-project/types"
	"github.com/go-chi/chi/v5"
)

const (
	// maxMultipartMemory bounds the in-memory portion of form parsing.
	maxMultipartMemory = 32 << 20

	// maxFormBytes caps a whole upload-carrying request: one file at
	// the ceiling plus headroom for the other fields. Oversize bodies
	// are rejected before anything reaches storage.
	maxFormBytes = uploads.MaxFileBytes + 1<<20
)

// Healthz reports liveness.
func Healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func parseIDParam(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// optionalString maps an empty form value to nil so "unset" stays
// distinguishable from "empty" in storage.
func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func optionalInt(value string) (*int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// studentFromForm reads the shared student fields of the add, edit, and
// registration forms. The form must already be parsed.
func studentFromForm(r *http.Request) (types.Student, error) {
	age, err := optionalInt(r.FormValue("age"))
	if err != nil {
		return types.Student{}, errors.New("age must be a number")
	}

	return types.Student{
		FullName:  strings.TrimSpace(r.FormValue("full_name")),
		Age:       age,
		Phone:     optionalString(r.FormValue("phone")),
		Email:     optionalString(r.FormValue("email")),
		Level:     optionalString(r.FormValue("level")),
		PaidUntil: optionalString(r.FormValue("paid_until")),
	}, nil
}

// formFile returns the first file uploaded under the given field, or
// nil when the field was left empty.
func formFile(r *http.Request, field string) *multipart.FileHeader {
	if r.MultipartForm == nil {
		return nil
	}
	files := r.MultipartForm.File[field]
	if len(files) == 0 {
		return nil
	}
	if files[0].Filename == "" {
		return nil
	}
	return files[0]
}

// parseUploadForm parses a multipart form with the request body capped.
// The returned flash is non-nil when the caller should bounce the user
// back to the form.
func parseUploadForm(w http.ResponseWriter, r *http.Request) *types.Flash {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return &types.Flash{Kind: "error", Message: uploads.ErrTooLarge.Error()}
		}
		return &types.Flash{Kind: "error", Message: "invalid form submission"}
	}
	return nil
}

func isUploadValidationErr(err error) bool {
	return errors.Is(err, uploads.ErrDisallowedType) || errors.Is(err, uploads.ErrTooLarge)
}
