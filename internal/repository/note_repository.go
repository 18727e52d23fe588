package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/tutor-desk-api/internal/models"
)

const noteColumns = "id, student_id, title, content, created_at, updated_at"

// NoteRepository manages free-form notes.
type NoteRepository struct {
	db *sqlx.DB
}

// NewNoteRepository constructs a NoteRepository.
func NewNoteRepository(db *sqlx.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

// List returns notes newest first, optionally for one student.
func (r *NoteRepository) List(ctx context.Context, filter models.NoteFilter) ([]models.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes`
	var args []interface{}
	if filter.StudentID != "" {
		query += ` WHERE student_id = $1`
		args = append(args, filter.StudentID)
	}
	query += ` ORDER BY updated_at DESC`
	notes := make([]models.Note, 0)
	if err := r.db.SelectContext(ctx, &notes, query, args...); err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return notes, nil
}

// FindByID fetches a note.
func (r *NoteRepository) FindByID(ctx context.Context, id string) (*models.Note, error) {
	var note models.Note
	if err := r.db.GetContext(ctx, &note, `SELECT `+noteColumns+` FROM notes WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find note: %w", err)
	}
	return &note, nil
}

// Create inserts a note.
func (r *NoteRepository) Create(ctx context.Context, note *models.Note) error {
	if note.ID == "" {
		note.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	note.CreatedAt = now
	note.UpdatedAt = now
	const query = `INSERT INTO notes (id, student_id, title, content, created_at, updated_at) VALUES (:id, :student_id, :title, :content, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, note); err != nil {
		return fmt.Errorf("create note: %w", err)
	}
	return nil
}

// Update rewrites a note.
func (r *NoteRepository) Update(ctx context.Context, note *models.Note) error {
	note.UpdatedAt = time.Now().UTC()
	const query = `UPDATE notes SET student_id = :student_id, title = :title, content = :content, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, note)
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	return expectAffected(res)
}

// Delete removes a note.
func (r *NoteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return expectAffected(res)
}
