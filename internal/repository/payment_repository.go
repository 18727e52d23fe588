package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/tutor-desk-api/internal/models"
)

const paymentColumns = "id, student_id, parent_id, amount, payment_date, notes, created_at, updated_at"

// PaymentRepository manages payments and their lesson links.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository constructs a PaymentRepository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// List returns payments newest first.
func (r *PaymentRepository) List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, error) {
	var (
		conditions = []string{"1=1"}
		args       []interface{}
	)
	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.ParentID != "" {
		conditions = append(conditions, fmt.Sprintf("parent_id = $%d", len(args)+1))
		args = append(args, filter.ParentID)
	}
	query := fmt.Sprintf("SELECT %s FROM payments WHERE %s ORDER BY payment_date DESC, id", paymentColumns, strings.Join(conditions, " AND "))
	payments := make([]models.Payment, 0)
	if err := r.db.SelectContext(ctx, &payments, query, args...); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}

// FindByID fetches a payment without its lesson links.
func (r *PaymentRepository) FindByID(ctx context.Context, id string) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.GetContext(ctx, &payment, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find payment: %w", err)
	}
	return &payment, nil
}

// LessonIDs returns the lessons linked to a payment.
func (r *PaymentRepository) LessonIDs(ctx context.Context, paymentID string) ([]string, error) {
	ids := make([]string, 0)
	const query = `SELECT pl.lesson_id FROM payment_lessons pl JOIN lessons l ON l.id = pl.lesson_id WHERE pl.payment_id = $1 ORDER BY l.date_time`
	if err := r.db.SelectContext(ctx, &ids, query, paymentID); err != nil {
		return nil, fmt.Errorf("list payment lessons: %w", err)
	}
	return ids, nil
}

// Create inserts the payment and links lessonIDs, marking them paid, in one transaction.
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment, lessonIDs []string) (err error) {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	payment.CreatedAt = now
	payment.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin payment transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `INSERT INTO payments (id, student_id, parent_id, amount, payment_date, notes, created_at, updated_at)
        VALUES (:id, :student_id, :parent_id, :amount, :payment_date, :notes, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, query, payment); err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	if err = linkLessons(ctx, tx, payment.ID, lessonIDs); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit payment: %w", err)
	}
	payment.LessonIDs = lessonIDs
	return nil
}

// Update rewrites amount, date and notes. When lessonIDs is non-nil the links are fully
// replaced, the new lessons marked paid and lessons left without any payment set back to pending.
func (r *PaymentRepository) Update(ctx context.Context, payment *models.Payment, lessonIDs []string) (err error) {
	payment.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin payment transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `UPDATE payments SET amount = :amount, payment_date = :payment_date, notes = :notes, updated_at = :updated_at WHERE id = :id`
	res, err := tx.NamedExecContext(ctx, query, payment)
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	if err = expectAffected(res); err != nil {
		return err
	}

	if lessonIDs != nil {
		var removed []string
		if removed, err = unlinkLessons(ctx, tx, payment.ID); err != nil {
			return err
		}
		if err = linkLessons(ctx, tx, payment.ID, lessonIDs); err != nil {
			return err
		}
		if err = releaseLessons(ctx, tx, removed); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit payment: %w", err)
	}
	return nil
}

// Delete removes a payment and its links. Lessons no other payment covers go back to pending.
func (r *PaymentRepository) Delete(ctx context.Context, id string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin payment transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	removed, err := unlinkLessons(ctx, tx, id)
	if err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}
	if err = expectAffected(res); err != nil {
		return err
	}
	if err = releaseLessons(ctx, tx, removed); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit payment: %w", err)
	}
	return nil
}

// unlinkLessons drops every link of the payment and returns the lesson ids it held.
func unlinkLessons(ctx context.Context, tx *sqlx.Tx, paymentID string) ([]string, error) {
	var ids []string
	if err := tx.SelectContext(ctx, &ids, `DELETE FROM payment_lessons WHERE payment_id = $1 RETURNING lesson_id`, paymentID); err != nil {
		return nil, fmt.Errorf("clear payment lessons: %w", err)
	}
	return ids, nil
}

func linkLessons(ctx context.Context, tx *sqlx.Tx, paymentID string, lessonIDs []string) error {
	const query = `INSERT INTO payment_lessons (payment_id, lesson_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	for _, lessonID := range lessonIDs {
		if _, err := tx.ExecContext(ctx, query, paymentID, lessonID); err != nil {
			return fmt.Errorf("link payment lesson: %w", err)
		}
	}
	return markLessonsPaid(ctx, tx, lessonIDs)
}
