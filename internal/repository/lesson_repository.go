package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/tutor-desk-api/internal/models"
)

const lessonColumns = "id, student_id, subject, date_time, duration, price_per_hour, meeting_link, payment_status, series_id, created_at, updated_at"

const insertLessonQuery = `INSERT INTO lessons (id, student_id, subject, date_time, duration, price_per_hour, meeting_link, payment_status, series_id, created_at, updated_at)
        VALUES (:id, :student_id, :subject, :date_time, :duration, :price_per_hour, :meeting_link, :payment_status, :series_id, :created_at, :updated_at)`

// LessonRepository manages persistence for lessons.
type LessonRepository struct {
	db *sqlx.DB
}

// NewLessonRepository constructs a LessonRepository.
func NewLessonRepository(db *sqlx.DB) *LessonRepository {
	return &LessonRepository{db: db}
}

// List returns lessons ordered by start time.
func (r *LessonRepository) List(ctx context.Context, filter models.LessonFilter) ([]models.Lesson, error) {
	var (
		conditions = []string{"1=1"}
		args       []interface{}
	)
	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("date_time >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("date_time < $%d", len(args)+1))
		args = append(args, *filter.To)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("payment_status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}

	query := fmt.Sprintf("SELECT %s FROM lessons WHERE %s ORDER BY date_time, id", lessonColumns, strings.Join(conditions, " AND "))
	lessons := make([]models.Lesson, 0)
	if err := r.db.SelectContext(ctx, &lessons, query, args...); err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	return lessons, nil
}

// ListByStudent returns every lesson of a student.
func (r *LessonRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Lesson, error) {
	return r.List(ctx, models.LessonFilter{StudentID: studentID})
}

// FindByID fetches a lesson by ID.
func (r *LessonRepository) FindByID(ctx context.Context, id string) (*models.Lesson, error) {
	var lesson models.Lesson
	if err := r.db.GetContext(ctx, &lesson, `SELECT `+lessonColumns+` FROM lessons WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find lesson: %w", err)
	}
	return &lesson, nil
}

// Create inserts a lesson.
func (r *LessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	if err := insertLesson(ctx, r.db, lesson); err != nil {
		return fmt.Errorf("create lesson: %w", err)
	}
	return nil
}

// Update rewrites the mutable lesson fields in place.
func (r *LessonRepository) Update(ctx context.Context, lesson *models.Lesson) error {
	lesson.UpdatedAt = time.Now().UTC()
	const query = `UPDATE lessons SET student_id = :student_id, subject = :subject, date_time = :date_time, duration = :duration,
        price_per_hour = :price_per_hour, meeting_link = :meeting_link, payment_status = :payment_status, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, lesson)
	if err != nil {
		return fmt.Errorf("update lesson: %w", err)
	}
	return expectAffected(res)
}

// Delete removes a single lesson.
func (r *LessonRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM lessons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete lesson: %w", err)
	}
	return expectAffected(res)
}

// DeleteByIDs removes the listed lessons in one statement. Ids that are already gone
// are skipped; the count reports removed rows.
func (r *LessonRepository) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM lessons WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return 0, fmt.Errorf("delete lessons: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return deleted, nil
}

// markLessonsPaid sets payment_status to paid for the listed lessons inside tx.
func markLessonsPaid(ctx context.Context, tx *sqlx.Tx, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	const query = `UPDATE lessons SET payment_status = 'paid', updated_at = $2 WHERE id = ANY($1)`
	if _, err := tx.ExecContext(ctx, query, pq.Array(ids), time.Now().UTC()); err != nil {
		return fmt.Errorf("mark lessons paid: %w", err)
	}
	return nil
}

// releaseLessons returns the listed paid lessons to pending when no payment links them anymore.
func releaseLessons(ctx context.Context, tx *sqlx.Tx, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	const query = `UPDATE lessons SET payment_status = 'pending', updated_at = $2
        WHERE id = ANY($1) AND payment_status = 'paid'
        AND NOT EXISTS (SELECT 1 FROM payment_lessons pl WHERE pl.lesson_id = lessons.id)`
	if _, err := tx.ExecContext(ctx, query, pq.Array(ids), time.Now().UTC()); err != nil {
		return fmt.Errorf("release unpaid lessons: %w", err)
	}
	return nil
}

func insertLesson(ctx context.Context, ext sqlx.ExtContext, lesson *models.Lesson) error {
	if lesson.ID == "" {
		lesson.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if lesson.CreatedAt.IsZero() {
		lesson.CreatedAt = now
	}
	lesson.UpdatedAt = now
	if lesson.PaymentStatus == "" {
		lesson.PaymentStatus = models.PaymentStatusPending
	}
	_, err := sqlx.NamedExecContext(ctx, ext, insertLessonQuery, lesson)
	return err
}
