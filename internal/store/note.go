package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/REGINA562/new-project/types"
)

// NoteRepository handles persistence for student notes.
type NoteRepository struct {
	db *sql.DB
}

func NewNoteRepository(db *sql.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

// ListByStudent returns a student's notes newest first, with the author
// display name joined in when the note still has an author.
func (r *NoteRepository) ListByStudent(ctx context.Context, studentID int) ([]types.Note, error) {
	const query = `
		SELECT n.id, n.student_id, n.author_id, COALESCE(u.name, ''), n.content, n.attachment, n.created_at
		FROM notes n
		LEFT JOIN users u ON n.author_id = u.id
		WHERE n.student_id = $1
		ORDER BY n.created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	notes := make([]types.Note, 0)
	for rows.Next() {
		var note types.Note
		if err := rows.Scan(
			&note.ID,
			&note.StudentID,
			&note.AuthorID,
			&note.AuthorName,
			&note.Content,
			&note.Attachment,
			&note.CreatedAt,
		); err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return notes, nil
}

func (r *NoteRepository) Get(ctx context.Context, id int) (types.Note, error) {
	const query = `
		SELECT id, student_id, author_id, content, attachment, created_at
		FROM notes
		WHERE id = $1`
	var note types.Note
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&note.ID,
		&note.StudentID,
		&note.AuthorID,
		&note.Content,
		&note.Attachment,
		&note.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Note{}, ErrNotFound
		}
		return types.Note{}, err
	}
	return note, nil
}

func (r *NoteRepository) Create(ctx context.Context, note types.Note) (types.Note, error) {
	note.CreatedAt = time.Now()

	const query = `
		INSERT INTO notes (student_id, author_id, content, attachment, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		note.StudentID,
		note.AuthorID,
		note.Content,
		note.Attachment,
		note.CreatedAt,
	).Scan(&note.ID); err != nil {
		return types.Note{}, err
	}
	return note, nil
}

func (r *NoteRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM notes WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Count reports the total number of notes.
func (r *NoteRepository) Count(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(1) FROM notes`
	var total int
	if err := r.db.QueryRowContext(ctx, query).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
