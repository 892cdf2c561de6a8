package handlers

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/REGINA562/new-project/internal/store"
	"github.com/REGINA562/new-project/types"
)

// In-memory stand-ins for the Postgres repositories and the upload
// backend, mirroring their contracts (session expiry on read, student
// delete cascading to notes).

type fakeUserRepo struct {
	users  map[int]types.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int]types.User), nextID: 1}
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int) (types.User, error) {
	user, ok := f.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (f *fakeUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	user.ID = f.nextID
	f.nextID++
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) Update(_ context.Context, user types.User) (types.User, error) {
	if _, ok := f.users[user.ID]; !ok {
		return types.User{}, store.ErrNotFound
	}
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id int) error {
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) Count(_ context.Context) (int, error) {
	return len(f.users), nil
}

type fakeStudentRepo struct {
	students map[int]types.Student
	notes    *fakeNoteRepo
	nextID   int
}

func newFakeStudentRepo(notes *fakeNoteRepo) *fakeStudentRepo {
	return &fakeStudentRepo{
		students: make(map[int]types.Student),
		notes:    notes,
		nextID:   1,
	}
}

func (f *fakeStudentRepo) List(_ context.Context) ([]types.Student, error) {
	out := make([]types.Student, 0, len(f.students))
	for _, student := range f.students {
		out = append(out, student)
	}
	return out, nil
}

func (f *fakeStudentRepo) Recent(ctx context.Context, _ int) ([]types.Student, error) {
	return f.List(ctx)
}

func (f *fakeStudentRepo) Get(_ context.Context, id int) (types.Student, error) {
	student, ok := f.students[id]
	if !ok {
		return types.Student{}, store.ErrNotFound
	}
	return student, nil
}

func (f *fakeStudentRepo) Create(_ context.Context, student types.Student) (types.Student, error) {
	student.ID = f.nextID
	f.nextID++
	f.students[student.ID] = student
	return student, nil
}

func (f *fakeStudentRepo) Update(_ context.Context, student types.Student) (types.Student, error) {
	if _, ok := f.students[student.ID]; !ok {
		return types.Student{}, store.ErrNotFound
	}
	f.students[student.ID] = student
	return student, nil
}

func (f *fakeStudentRepo) Delete(_ context.Context, id int) error {
	if _, ok := f.students[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.students, id)
	for noteID, note := range f.notes.notes {
		if note.StudentID == id {
			delete(f.notes.notes, noteID)
		}
	}
	return nil
}

func (f *fakeStudentRepo) Count(_ context.Context) (int, error) {
	return len(f.students), nil
}

type fakeNoteRepo struct {
	notes  map[int]types.Note
	nextID int
}

func newFakeNoteRepo() *fakeNoteRepo {
	return &fakeNoteRepo{notes: make(map[int]types.Note), nextID: 1}
}

func (f *fakeNoteRepo) ListByStudent(_ context.Context, studentID int) ([]types.Note, error) {
	out := make([]types.Note, 0)
	for _, note := range f.notes {
		if note.StudentID == studentID {
			out = append(out, note)
		}
	}
	return out, nil
}

func (f *fakeNoteRepo) Get(_ context.Context, id int) (types.Note, error) {
	note, ok := f.notes[id]
	if !ok {
		return types.Note{}, store.ErrNotFound
	}
	return note, nil
}

func (f *fakeNoteRepo) Create(_ context.Context, note types.Note) (types.Note, error) {
	note.ID = f.nextID
	f.nextID++
	f.notes[note.ID] = note
	return note, nil
}

func (f *fakeNoteRepo) Delete(_ context.Context, id int) error {
	if _, ok := f.notes[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.notes, id)
	return nil
}

func (f *fakeNoteRepo) Count(_ context.Context) (int, error) {
	return len(f.notes), nil
}

type fakeSessionRepo struct {
	rows map[string]fakeSessionRow
}

type fakeSessionRow struct {
	payload []byte
	expiry  time.Time
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{rows: make(map[string]fakeSessionRow)}
}

func (f *fakeSessionRepo) Create(_ context.Context, id string, payload []byte, expiry time.Time) error {
	f.rows[id] = fakeSessionRow{payload: payload, expiry: expiry}
	return nil
}

func (f *fakeSessionRepo) Get(_ context.Context, id string) ([]byte, error) {
	row, ok := f.rows[id]
	if !ok || !row.expiry.After(time.Now()) {
		return nil, store.ErrNotFound
	}
	return row.payload, nil
}

func (f *fakeSessionRepo) UpdatePayload(_ context.Context, id string, payload []byte) error {
	row, ok := f.rows[id]
	if !ok || !row.expiry.After(time.Now()) {
		return store.ErrNotFound
	}
	row.payload = payload
	f.rows[id] = row
	return nil
}

func (f *fakeSessionRepo) Delete(_ context.Context, id string) error {
	delete(f.rows, id)
	return nil
}

func (f *fakeSessionRepo) DeleteExpired(_ context.Context) (int64, error) {
	var reaped int64
	for id, row := range f.rows {
		if !row.expiry.After(time.Now()) {
			delete(f.rows, id)
			reaped++
		}
	}
	return reaped, nil
}

type memStore struct {
	files map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{files: make(map[string][]byte)}
}

func (m *memStore) Ensure(context.Context) error { return nil }

func (m *memStore) Put(_ context.Context, name string, r io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.files[name] = data
	return nil
}

func (m *memStore) Get(_ context.Context, name string) (io.ReadCloser, error) {
	data, ok := m.files[name]
	if !ok {
		return nil, store.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memStore) Delete(_ context.Context, name string) error {
	delete(m.files, name)
	return nil
}
