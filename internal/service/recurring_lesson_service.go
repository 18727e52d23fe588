package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/tutor-desk-api/internal/models"
	appErrors "github.com/noah-isme/tutor-desk-api/pkg/errors"
	"github.com/noah-isme/tutor-desk-api/pkg/validation"
)

const endDateLayout = "2006-01-02"

type recurringLessonRepository interface {
	Create(ctx context.Context, marker *models.RecurringLesson, occurrences []models.Lesson) error
	List(ctx context.Context) ([]models.RecurringLesson, error)
	FindByID(ctx context.Context, id string) (*models.RecurringLesson, error)
	Delete(ctx context.Context, id string) error
}

type templateLessonLookup interface {
	FindByID(ctx context.Context, id string) (*models.Lesson, error)
}

// RecurringLessonRequest turns an existing lesson into the template of a series.
type RecurringLessonRequest struct {
	TemplateLessonID string           `json:"templateLessonId" validate:"required,uuid"`
	Frequency        models.Frequency `json:"frequency" validate:"required,oneof=weekly biweekly"`
	EndDate          string           `json:"endDate" validate:"required,datetime=2006-01-02"`
}

// RecurringLessonResult reports the created marker and the lessons generated for it.
type RecurringLessonResult struct {
	RecurringLesson *models.RecurringLesson `json:"recurringLesson"`
	Generated       int                     `json:"generated"`
	Truncated       bool                    `json:"truncated"`
}

// RecurringLessonService materializes lesson series.
type RecurringLessonService struct {
	repo           recurringLessonRepository
	lessons        templateLessonLookup
	cache          *CacheService
	metrics        *MetricsService
	validator      *validation.Validator
	logger         *zap.Logger
	location       *time.Location
	maxOccurrences int
}

// NewRecurringLessonService constructs the service. maxOccurrences bounds a single expansion.
func NewRecurringLessonService(repo recurringLessonRepository, lessons templateLessonLookup, cache *CacheService, metrics *MetricsService, validate *validation.Validator, logger *zap.Logger, loc *time.Location, maxOccurrences int) *RecurringLessonService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &RecurringLessonService{
		repo:           repo,
		lessons:        lessons,
		cache:          cache,
		metrics:        metrics,
		validator:      validate,
		logger:         logger,
		location:       loc,
		maxOccurrences: maxOccurrences,
	}
}

// Create stamps a new series id on the template lesson and generates its pending
// occurrences up to and including the end date.
func (s *RecurringLessonService) Create(ctx context.Context, req RecurringLessonRequest) (*RecurringLessonResult, error) {
	if err := s.validator.Check(req, "invalid recurring lesson payload"); err != nil {
		return nil, err
	}
	endDate, err := time.ParseInLocation(endDateLayout, req.EndDate, s.location)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid end date").WithDetails(map[string]string{"endDate": "endDate must be a date (YYYY-MM-DD)"})
	}

	template, err := s.lessons.FindByID(ctx, req.TemplateLessonID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "template lesson not found")
		}
		return nil, appErrors.Internal(err, "failed to load template lesson")
	}
	if template.SeriesID != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "lesson already belongs to a series")
	}

	starts, truncated, err := ExpandOccurrences(template.DateTime, req.Frequency, endDate, s.location, s.maxOccurrences)
	if err != nil {
		if errors.Is(err, ErrEndBeforeStart) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "end date precedes the template lesson").WithDetails(map[string]string{"endDate": "endDate must not precede the template lesson"})
		}
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	seriesID := uuid.NewString()
	occurrences := make([]models.Lesson, 0, len(starts))
	for _, start := range starts {
		occurrences = append(occurrences, models.Lesson{
			StudentID:     template.StudentID,
			Subject:       template.Subject,
			DateTime:      start,
			Duration:      template.Duration,
			PricePerHour:  template.PricePerHour,
			MeetingLink:   template.MeetingLink,
			PaymentStatus: models.PaymentStatusPending,
			SeriesID:      &seriesID,
		})
	}

	marker := &models.RecurringLesson{
		TemplateLessonID: template.ID,
		Frequency:        req.Frequency,
		EndDate:          endDate,
		SeriesID:         seriesID,
	}
	if err := s.repo.Create(ctx, marker, occurrences); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "template lesson not found")
		}
		return nil, appErrors.Internal(err, "failed to create recurring lesson")
	}

	if truncated {
		s.logger.Warn("recurring lesson expansion truncated", zap.String("series_id", seriesID), zap.Int("limit", s.maxOccurrences))
	}
	s.metrics.LessonsGenerated(len(occurrences))
	s.cache.Invalidate(ctx, CachePatternLessons)
	s.logger.Info("recurring lesson created", zap.String("series_id", seriesID), zap.Int("occurrences", len(occurrences)))
	return &RecurringLessonResult{RecurringLesson: marker, Generated: len(occurrences), Truncated: truncated}, nil
}

// List returns all series markers.
func (s *RecurringLessonService) List(ctx context.Context) ([]models.RecurringLesson, error) {
	markers, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list recurring lessons")
	}
	return markers, nil
}

// Get returns a series marker.
func (s *RecurringLessonService) Get(ctx context.Context, id string) (*models.RecurringLesson, error) {
	marker, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "recurring lesson not found")
		}
		return nil, appErrors.Internal(err, "failed to load recurring lesson")
	}
	return marker, nil
}

// Delete removes the marker only; generated lessons stay and keep their series id.
func (s *RecurringLessonService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "recurring lesson not found")
		}
		return appErrors.Internal(err, "failed to delete recurring lesson")
	}
	return nil
}
