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

const recurringColumns = "id, template_lesson_id, frequency, end_date, series_id, created_at"

// RecurringLessonRepository stores series markers and materialises their occurrences.
type RecurringLessonRepository struct {
	db *sqlx.DB
}

// NewRecurringLessonRepository constructs the repository.
func NewRecurringLessonRepository(db *sqlx.DB) *RecurringLessonRepository {
	return &RecurringLessonRepository{db: db}
}

// Create inserts the marker, stamps its series id on the template lesson and inserts the
// generated occurrences, all in one transaction.
func (r *RecurringLessonRepository) Create(ctx context.Context, marker *models.RecurringLesson, occurrences []models.Lesson) (err error) {
	if marker.ID == "" {
		marker.ID = uuid.NewString()
	}
	if marker.CreatedAt.IsZero() {
		marker.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin recurring lesson transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insertMarker = `INSERT INTO recurring_lessons (id, template_lesson_id, frequency, end_date, series_id, created_at)
        VALUES (:id, :template_lesson_id, :frequency, :end_date, :series_id, :created_at)`
	if _, err = tx.NamedExecContext(ctx, insertMarker, marker); err != nil {
		return fmt.Errorf("insert recurring lesson: %w", err)
	}

	res, err := tx.ExecContext(ctx, `UPDATE lessons SET series_id = $2, updated_at = $3 WHERE id = $1`, marker.TemplateLessonID, marker.SeriesID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("stamp template lesson: %w", err)
	}
	if err = expectAffected(res); err != nil {
		return err
	}

	for i := range occurrences {
		if err = insertLesson(ctx, tx, &occurrences[i]); err != nil {
			return fmt.Errorf("insert occurrence: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit recurring lesson: %w", err)
	}
	return nil
}

// List returns all series markers, newest first.
func (r *RecurringLessonRepository) List(ctx context.Context) ([]models.RecurringLesson, error) {
	markers := make([]models.RecurringLesson, 0)
	if err := r.db.SelectContext(ctx, &markers, `SELECT `+recurringColumns+` FROM recurring_lessons ORDER BY created_at DESC`); err != nil {
		return nil, fmt.Errorf("list recurring lessons: %w", err)
	}
	return markers, nil
}

// FindByID fetches a marker by ID.
func (r *RecurringLessonRepository) FindByID(ctx context.Context, id string) (*models.RecurringLesson, error) {
	var marker models.RecurringLesson
	if err := r.db.GetContext(ctx, &marker, `SELECT `+recurringColumns+` FROM recurring_lessons WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find recurring lesson: %w", err)
	}
	return &marker, nil
}

// Delete removes the marker only; lessons of the series stay.
func (r *RecurringLessonRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM recurring_lessons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete recurring lesson: %w", err)
	}
	return expectAffected(res)
}
