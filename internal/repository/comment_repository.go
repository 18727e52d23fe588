package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/tutor-desk-api/internal/models"
)

const commentColumns = "id, lesson_id, content, visible_to_student, tags, created_at, updated_at"

// CommentRepository manages lesson comments.
type CommentRepository struct {
	db *sqlx.DB
}

// NewCommentRepository constructs a CommentRepository.
func NewCommentRepository(db *sqlx.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// ListByLesson returns a lesson's comments oldest first, optionally only student-visible ones.
func (r *CommentRepository) ListByLesson(ctx context.Context, lessonID string, visibleOnly bool) ([]models.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM comments WHERE lesson_id = $1`
	if visibleOnly {
		query += ` AND visible_to_student = TRUE`
	}
	query += ` ORDER BY created_at`
	comments := make([]models.Comment, 0)
	if err := r.db.SelectContext(ctx, &comments, query, lessonID); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// FindByID fetches a comment.
func (r *CommentRepository) FindByID(ctx context.Context, id string) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.GetContext(ctx, &comment, `SELECT `+commentColumns+` FROM comments WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find comment: %w", err)
	}
	return &comment, nil
}

// Create inserts a comment.
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	if comment.Tags == nil {
		comment.Tags = pq.StringArray{}
	}
	const query = `INSERT INTO comments (id, lesson_id, content, visible_to_student, tags, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.db.ExecContext(ctx, query, comment.ID, comment.LessonID, comment.Content, comment.VisibleToStudent, pq.Array([]string(comment.Tags)), comment.CreatedAt, comment.UpdatedAt); err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

// Update rewrites content, visibility and tags.
func (r *CommentRepository) Update(ctx context.Context, comment *models.Comment) error {
	comment.UpdatedAt = time.Now().UTC()
	if comment.Tags == nil {
		comment.Tags = pq.StringArray{}
	}
	const query = `UPDATE comments SET content = $2, visible_to_student = $3, tags = $4, updated_at = $5 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, comment.ID, comment.Content, comment.VisibleToStudent, pq.Array([]string(comment.Tags)), comment.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	return expectAffected(res)
}

// Delete removes a comment.
func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return expectAffected(res)
}
