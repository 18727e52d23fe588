package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/tutor-desk-api/internal/dto"
	"github.com/noah-isme/tutor-desk-api/internal/models"
	appErrors "github.com/noah-isme/tutor-desk-api/pkg/errors"
	"github.com/noah-isme/tutor-desk-api/pkg/validation"
)

type lessonRepository interface {
	List(ctx context.Context, filter models.LessonFilter) ([]models.Lesson, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Lesson, error)
	FindByID(ctx context.Context, id string) (*models.Lesson, error)
	Create(ctx context.Context, lesson *models.Lesson) error
	Update(ctx context.Context, lesson *models.Lesson) error
	Delete(ctx context.Context, id string) error
	DeleteByIDs(ctx context.Context, ids []string) (int64, error)
}

type studentLookup interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

// LessonRequest holds the payload for creating or replacing a lesson. Subject, price and
// meeting link fall back to the student's defaults when omitted.
type LessonRequest struct {
	StudentID     string               `json:"studentId" validate:"required,uuid"`
	Subject       string               `json:"subject" validate:"omitempty,max=120"`
	DateTime      time.Time            `json:"dateTime" validate:"required"`
	Duration      int                  `json:"duration" validate:"required,min=1,max=1440"`
	PricePerHour  string               `json:"pricePerHour" validate:"omitempty,decimal"`
	MeetingLink   *string              `json:"meetingLink" validate:"omitempty,url"`
	PaymentStatus models.PaymentStatus `json:"paymentStatus" validate:"omitempty,oneof=pending paid unpaid free cancelled overdue"`
}

// BulkDeleteRequest lists the lessons to remove at once.
type BulkDeleteRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,uuid"`
}

// ScheduleOptions controls agenda windows.
type ScheduleOptions struct {
	Location     *time.Location
	LookbackDays int
}

// LessonService handles lesson use-cases, series deletion and the agenda.
type LessonService struct {
	repo      lessonRepository
	students  studentLookup
	cache     *CacheService
	metrics   *MetricsService
	validator *validation.Validator
	logger    *zap.Logger
	schedule  ScheduleOptions
}

// NewLessonService constructs the lesson service.
func NewLessonService(repo lessonRepository, students studentLookup, cache *CacheService, metrics *MetricsService, validate *validation.Validator, logger *zap.Logger, schedule ScheduleOptions) *LessonService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if schedule.Location == nil {
		schedule.Location = time.UTC
	}
	if schedule.LookbackDays < 0 {
		schedule.LookbackDays = 7
	}
	return &LessonService{
		repo:      repo,
		students:  students,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		schedule:  schedule,
	}
}

// List returns lessons ordered by start time. The unfiltered collection is served from
// cache when enabled.
func (s *LessonService) List(ctx context.Context, filter models.LessonFilter) (lessons []models.Lesson, cached bool, err error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "invalid payment status").WithDetails(map[string]string{"status": "unknown payment status"})
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "invalid date range").WithDetails(map[string]string{"to": "must not precede from"})
	}
	if filter.IsZero() && s.cache.Get(ctx, CacheKeyLessons, &lessons) {
		return lessons, true, nil
	}

	lessons, err = s.repo.List(ctx, filter)
	if err != nil {
		return nil, false, appErrors.Internal(err, "failed to list lessons")
	}
	if filter.IsZero() {
		s.cache.Set(ctx, CacheKeyLessons, lessons)
	}
	return lessons, false, nil
}

// Get returns a lesson.
func (s *LessonService) Get(ctx context.Context, id string) (*models.Lesson, error) {
	lesson, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
		}
		return nil, appErrors.Internal(err, "failed to load lesson")
	}
	return lesson, nil
}

// Create schedules a single lesson.
func (s *LessonService) Create(ctx context.Context, req LessonRequest) (*models.Lesson, error) {
	lesson := &models.Lesson{PaymentStatus: models.PaymentStatusPending}
	if err := s.apply(ctx, lesson, req); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, lesson); err != nil {
		return nil, appErrors.Internal(err, "failed to create lesson")
	}
	s.cache.Invalidate(ctx, CachePatternLessons)
	return lesson, nil
}

// Update edits a lesson in place.
func (s *LessonService) Update(ctx context.Context, id string, req LessonRequest) (*models.Lesson, error) {
	lesson, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, lesson, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, lesson); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
		}
		return nil, appErrors.Internal(err, "failed to update lesson")
	}
	s.cache.Invalidate(ctx, CachePatternLessons)
	return lesson, nil
}

// Delete removes one lesson.
func (s *LessonService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
		}
		return appErrors.Internal(err, "failed to delete lesson")
	}
	s.metrics.LessonsDeleted(DeleteModeSingle, 1)
	s.cache.Invalidate(ctx, CachePatternLessons)
	return nil
}

// DeleteSeries removes the referenced lesson and every later lesson of its series in one
// transaction and returns how many were deleted.
func (s *LessonService) DeleteSeries(ctx context.Context, id string) (int64, error) {
	reference, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	siblings, err := s.repo.ListByStudent(ctx, reference.StudentID)
	if err != nil {
		return 0, appErrors.Internal(err, "failed to delete lesson series")
	}

	members := SeriesMembers(*reference, siblings)
	ids := make([]string, 0, len(members)+1)
	seen := false
	for _, lesson := range members {
		ids = append(ids, lesson.ID)
		if lesson.ID == reference.ID {
			seen = true
		}
	}
	if !seen {
		ids = append(ids, reference.ID)
	}

	deleted, err := s.repo.DeleteByIDs(ctx, ids)
	if err != nil {
		return 0, appErrors.Internal(err, "failed to delete lesson series")
	}
	s.metrics.LessonsDeleted(DeleteModeSeries, deleted)
	s.cache.Invalidate(ctx, CachePatternLessons)
	s.logger.Info("lesson series deleted", zap.String("lesson_id", id), zap.Int64("count", deleted))
	return deleted, nil
}

// BulkDelete removes the listed lessons in one transaction. Unknown ids are skipped.
func (s *LessonService) BulkDelete(ctx context.Context, req BulkDeleteRequest) (int64, error) {
	if err := s.validator.Check(req, "invalid bulk delete payload"); err != nil {
		return 0, err
	}
	ids := uniqueStrings(req.IDs)
	deleted, err := s.repo.DeleteByIDs(ctx, ids)
	if err != nil {
		return 0, appErrors.Internal(err, "failed to delete lessons")
	}
	s.metrics.LessonsDeleted(DeleteModeBulk, deleted)
	s.cache.Invalidate(ctx, CachePatternLessons)
	s.logger.Info("lessons bulk deleted", zap.Int("requested", len(ids)), zap.Int64("count", deleted))
	return deleted, nil
}

// Agenda joins lessons with their students and groups them by local day starting at the
// lookback window.
func (s *LessonService) Agenda(ctx context.Context, now time.Time) (*dto.Agenda, error) {
	from := AgendaWindowStart(now, s.schedule.Location, s.schedule.LookbackDays)
	lessons, err := s.repo.List(ctx, models.LessonFilter{From: &from})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load agenda")
	}
	students, _, err := s.students.List(ctx, models.StudentFilter{})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load agenda")
	}

	views := TransformLessons(lessons, students)
	return &dto.Agenda{
		Today:  now.In(s.schedule.Location).Format(dateKeyLayout),
		From:   from,
		Groups: GroupByDate(views, now, s.schedule.Location, s.schedule.LookbackDays),
	}, nil
}

func (s *LessonService) apply(ctx context.Context, lesson *models.Lesson, req LessonRequest) error {
	if err := s.validator.Check(req, "invalid lesson payload"); err != nil {
		return err
	}
	student, err := s.students.FindByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "student does not exist").WithDetails(map[string]string{"studentId": "student does not exist"})
		}
		return appErrors.Internal(err, "failed to load student")
	}

	subject := req.Subject
	if subject == "" && student.DefaultSubject != nil {
		subject = *student.DefaultSubject
	}
	price := req.PricePerHour
	if price == "" && student.DefaultPricePerHour != nil {
		price = *student.DefaultPricePerHour
	}
	details := map[string]string{}
	if subject == "" {
		details["subject"] = "subject is required"
	}
	if price == "" {
		details["pricePerHour"] = "pricePerHour is required"
	}
	if len(details) > 0 {
		return appErrors.Clone(appErrors.ErrValidation, "invalid lesson payload").WithDetails(details)
	}

	lesson.StudentID = student.ID
	lesson.Subject = subject
	lesson.DateTime = req.DateTime.UTC()
	lesson.Duration = req.Duration
	lesson.PricePerHour = price
	lesson.MeetingLink = req.MeetingLink
	if lesson.MeetingLink == nil {
		lesson.MeetingLink = student.DefaultMeetingLink
	}
	if req.PaymentStatus != "" {
		lesson.PaymentStatus = req.PaymentStatus
	}
	return nil
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
