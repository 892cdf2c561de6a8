package services

import (
	"context"
	"strings"

	"github.com/REGINA562/new-project/types"
)

// NoteRepository defines persistence operations for notes.
type NoteRepository interface {
	ListByStudent(ctx context.Context, studentID int) ([]types.Note, error)
	Get(ctx context.Context, id int) (types.Note, error)
	Create(ctx context.Context, note types.Note) (types.Note, error)
	Delete(ctx context.Context, id int) error
	Count(ctx context.Context) (int, error)
}

// NoteService encapsulates note use-cases.
type NoteService struct {
	repo NoteRepository
}

func NewNoteService(repo NoteRepository) *NoteService {
	return &NoteService{repo: repo}
}

func (s *NoteService) ListByStudent(ctx context.Context, studentID int) ([]types.Note, error) {
	return s.repo.ListByStudent(ctx, studentID)
}

func (s *NoteService) Get(ctx context.Context, id int) (types.Note, error) {
	return s.repo.Get(ctx, id)
}

// Create stores a new note. AuthorID carries the acting staff member's
// id, or nil for notes written through self-registration.
func (s *NoteService) Create(ctx context.Context, note types.Note) (types.Note, error) {
	if strings.TrimSpace(note.Content) == "" {
		return types.Note{}, ErrMissingField
	}
	return s.repo.Create(ctx, note)
}

// Delete removes a single note; the owning student is untouched.
func (s *NoteService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

func (s *NoteService) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
