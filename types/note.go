package types

import "time"

// Note is a timestamped annotation on a student. Notes are created once
// and never mutated afterwards.
type Note struct {
	// ID is the unique identifier of the note.
	ID int `json:"id" db:"id"`

	// StudentID references the owning student. Deleting the student
	// deletes the note.
	StudentID int `json:"student_id" db:"student_id"`

	// AuthorID references the staff member who wrote the note. It is
	// nil for notes created through public self-registration, and is
	// nulled out when the author account is deleted.
	AuthorID *int `json:"author_id,omitempty" db:"author_id"`

	// AuthorName is the author's display name, joined in by listing
	// queries. Empty when AuthorID is nil.
	AuthorName string `json:"author_name,omitempty" db:"author_name"`

	// Content is the note text. Required.
	Content string `json:"content" db:"content"`

	// Attachment is the generated storage name of an uploaded file.
	Attachment *string `json:"attachment,omitempty" db:"attachment"`

	// CreatedAt is the timestamp when the note was written.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
