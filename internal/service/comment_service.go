package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/tutor-desk-api/internal/models"
	appErrors "github.com/noah-isme/tutor-desk-api/pkg/errors"
	"github.com/noah-isme/tutor-desk-api/pkg/validation"
)

type commentRepository interface {
	ListByLesson(ctx context.Context, lessonID string, visibleOnly bool) ([]models.Comment, error)
	FindByID(ctx context.Context, id string) (*models.Comment, error)
	Create(ctx context.Context, comment *models.Comment) error
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id string) error
}

// CommentRequest holds the payload for a lesson comment.
type CommentRequest struct {
	Content          string   `json:"content" validate:"required,max=5000"`
	VisibleToStudent bool     `json:"visibleToStudent"`
	Tags             []string `json:"tags" validate:"omitempty,max=20,dive,required,max=40"`
}

// CommentService handles lesson comments.
type CommentService struct {
	repo      commentRepository
	lessons   templateLessonLookup
	validator *validation.Validator
	logger    *zap.Logger
}

// NewCommentService constructs the comment service.
func NewCommentService(repo commentRepository, lessons templateLessonLookup, validate *validation.Validator, logger *zap.Logger) *CommentService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommentService{repo: repo, lessons: lessons, validator: validate, logger: logger}
}

// ListByLesson returns a lesson's comments, optionally only those shared with the student.
func (s *CommentService) ListByLesson(ctx context.Context, lessonID string, visibleOnly bool) ([]models.Comment, error) {
	if err := s.ensureLesson(ctx, lessonID); err != nil {
		return nil, err
	}
	comments, err := s.repo.ListByLesson(ctx, lessonID, visibleOnly)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list comments")
	}
	return comments, nil
}

// Create attaches a comment to a lesson.
func (s *CommentService) Create(ctx context.Context, lessonID string, req CommentRequest) (*models.Comment, error) {
	if err := s.validator.Check(req, "invalid comment payload"); err != nil {
		return nil, err
	}
	if err := s.ensureLesson(ctx, lessonID); err != nil {
		return nil, err
	}
	comment := &models.Comment{
		LessonID:         lessonID,
		Content:          req.Content,
		VisibleToStudent: req.VisibleToStudent,
		Tags:             normalizeTags(req.Tags),
	}
	if err := s.repo.Create(ctx, comment); err != nil {
		return nil, appErrors.Internal(err, "failed to create comment")
	}
	return comment, nil
}

// Update replaces a comment's content, visibility and tags.
func (s *CommentService) Update(ctx context.Context, id string, req CommentRequest) (*models.Comment, error) {
	if err := s.validator.Check(req, "invalid comment payload"); err != nil {
		return nil, err
	}
	comment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "comment not found")
		}
		return nil, appErrors.Internal(err, "failed to load comment")
	}
	comment.Content = req.Content
	comment.VisibleToStudent = req.VisibleToStudent
	comment.Tags = normalizeTags(req.Tags)
	if err := s.repo.Update(ctx, comment); err != nil {
		return nil, appErrors.Internal(err, "failed to update comment")
	}
	return comment, nil
}

// Delete removes a comment.
func (s *CommentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "comment not found")
		}
		return appErrors.Internal(err, "failed to delete comment")
	}
	return nil
}

func (s *CommentService) ensureLesson(ctx context.Context, lessonID string) error {
	if _, err := s.lessons.FindByID(ctx, lessonID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
		}
		return appErrors.Internal(err, "failed to load lesson")
	}
	return nil
}

// normalizeTags trims, lowercases and de-duplicates tags, keeping first-seen order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
