package services

import (
	"context"
	"errors"
	"strings"

	"github.com/REGINA562/new-project/types"
)

// ErrMissingField is returned when a required field is empty. The
// failing operation performs no writes.
var ErrMissingField = errors.New("missing required field")

// StudentRepository defines persistence operations for students.
type StudentRepository interface {
	List(ctx context.Context) ([]types.Student, error)
	Recent(ctx context.Context, limit int) ([]types.Student, error)
	Get(ctx context.Context, id int) (types.Student, error)
	Create(ctx context.Context, student types.Student) (types.Student, error)
	Update(ctx context.Context, student types.Student) (types.Student, error)
	Delete(ctx context.Context, id int) error
	Count(ctx context.Context) (int, error)
}

// StudentService encapsulates roster use-cases.
type StudentService struct {
	students StudentRepository
	notes    NoteRepository
}

func NewStudentService(students StudentRepository, notes NoteRepository) *StudentService {
	return &StudentService{students: students, notes: notes}
}

func (s *StudentService) List(ctx context.Context) ([]types.Student, error) {
	return s.students.List(ctx)
}

func (s *StudentService) Recent(ctx context.Context, limit int) ([]types.Student, error) {
	return s.students.Recent(ctx, limit)
}

func (s *StudentService) Get(ctx context.Context, id int) (types.Student, error) {
	return s.students.Get(ctx, id)
}

func (s *StudentService) Create(ctx context.Context, student types.Student) (types.Student, error) {
	if strings.TrimSpace(student.FullName) == "" {
		return types.Student{}, ErrMissingField
	}
	return s.students.Create(ctx, student)
}

func (s *StudentService) Update(ctx context.Context, student types.Student) (types.Student, error) {
	if strings.TrimSpace(student.FullName) == "" {
		return types.Student{}, ErrMissingField
	}
	return s.students.Update(ctx, student)
}

// Delete removes the student together with all of its notes.
func (s *StudentService) Delete(ctx context.Context, id int) error {
	return s.students.Delete(ctx, id)
}

func (s *StudentService) Count(ctx context.Context) (int, error) {
	return s.students.Count(ctx)
}

// Register handles public self-registration: it creates the student
// and, when an initial note was written, attaches it without an author.
func (s *StudentService) Register(ctx context.Context, student types.Student, initialNote string) (types.Student, error) {
	created, err := s.Create(ctx, student)
	if err != nil {
		return types.Student{}, err
	}

	initialNote = strings.TrimSpace(initialNote)
	if initialNote != "" {
		_, err = s.notes.Create(ctx, types.Note{
			StudentID: created.ID,
			Content:   initialNote,
		})
		if err != nil {
			return types.Student{}, err
		}
	}

	return created, nil
}
