package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/REGINA562/new-project/types"
)

// StudentRepository handles persistence for roster entries.
type StudentRepository struct {
	db *sql.DB
}

func NewStudentRepository(db *sql.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns all students ordered alphabetically by name.
func (r *StudentRepository) List(ctx context.Context) ([]types.Student, error) {
	const query = `
		SELECT id, full_name, age, phone, email, level, photo, paid_until, created_at
		FROM students
		ORDER BY full_name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	students := make([]types.Student, 0)
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, student)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return students, nil
}

// Recent returns the most recently added students, newest first.
func (r *StudentRepository) Recent(ctx context.Context, limit int) ([]types.Student, error) {
	if limit < 1 {
		limit = 5
	}

	const query = `
		SELECT id, full_name, age, phone, email, level, photo, paid_until, created_at
		FROM students
		ORDER BY created_at DESC
		LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	students := make([]types.Student, 0, limit)
	for rows.Next() {
		student, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, student)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return students, nil
}

func (r *StudentRepository) Get(ctx context.Context, id int) (types.Student, error) {
	const query = `
		SELECT id, full_name, age, phone, email, level, photo, paid_until, created_at
		FROM students
		WHERE id = $1`
	var student types.Student
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&student.ID,
		&student.FullName,
		&student.Age,
		&student.Phone,
		&student.Email,
		&student.Level,
		&student.Photo,
		&student.PaidUntil,
		&student.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Student{}, ErrNotFound
		}
		return types.Student{}, err
	}
	return student, nil
}

func (r *StudentRepository) Create(ctx context.Context, student types.Student) (types.Student, error) {
	student.CreatedAt = time.Now()

	const query = `
		INSERT INTO students (full_name, age, phone, email, level, photo, paid_until, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		student.FullName,
		student.Age,
		student.Phone,
		student.Email,
		student.Level,
		student.Photo,
		student.PaidUntil,
		student.CreatedAt,
	).Scan(&student.ID); err != nil {
		return types.Student{}, err
	}
	return student, nil
}

// Update replaces the whole row. Concurrent edits to the same student
// follow last-writer-wins.
func (r *StudentRepository) Update(ctx context.Context, student types.Student) (types.Student, error) {
	const query = `
		UPDATE students
		SET full_name = $1,
			age = $2,
			phone = $3,
			email = $4,
			level = $5,
			photo = $6,
			paid_until = $7
		WHERE id = $8`
	result, err := r.db.ExecContext(
		ctx,
		query,
		student.FullName,
		student.Age,
		student.Phone,
		student.Email,
		student.Level,
		student.Photo,
		student.PaidUntil,
		student.ID,
	)
	if err != nil {
		return types.Student{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Student{}, err
	}
	if affected == 0 {
		return types.Student{}, ErrNotFound
	}
	return student, nil
}

// Delete removes a student and all of its notes in one transaction.
// The schema also cascades on student_id, so either mechanism alone
// would keep the invariant; the transaction makes the unit explicit.
func (r *StudentRepository) Delete(ctx context.Context, id int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM notes WHERE student_id = $1`, id); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
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

	return tx.Commit()
}

// Count reports the total number of students.
func (r *StudentRepository) Count(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(1) FROM students`
	var total int
	if err := r.db.QueryRowContext(ctx, query).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func scanStudent(rows *sql.Rows) (types.Student, error) {
	var student types.Student
	err := rows.Scan(
		&student.ID,
		&student.FullName,
		&student.Age,
		&student.Phone,
		&student.Email,
		&student.Level,
		&student.Photo,
		&student.PaidUntil,
		&student.CreatedAt,
	)
	return student, err
}
