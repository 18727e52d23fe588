package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"github.com/noah-isme/tutor-desk-api/internal/models"
	appErrors "github.com/noah-isme/tutor-desk-api/pkg/errors"
	"github.com/noah-isme/tutor-desk-api/pkg/validation"
)

const publicIDAttempts = 10

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ExistsByPublicID(ctx context.Context, publicID string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
}

type parentLookup interface {
	FindByID(ctx context.Context, id string) (*models.Parent, error)
}

// StudentRequest holds the payload for creating or replacing a student.
type StudentRequest struct {
	FirstName           string  `json:"firstName" validate:"required,max=100"`
	LastName            *string `json:"lastName" validate:"omitempty,max=100"`
	Email               *string `json:"email" validate:"omitempty,email"`
	Phone               *string `json:"phone" validate:"omitempty,max=40"`
	ParentID            *string `json:"parentId" validate:"omitempty,uuid"`
	DefaultSubject      *string `json:"defaultSubject" validate:"omitempty,max=120"`
	DefaultPricePerHour *string `json:"defaultPricePerHour" validate:"omitempty,decimal"`
	DefaultMeetingLink  *string `json:"defaultMeetingLink" validate:"omitempty,url"`
	Color               *string `json:"color" validate:"omitempty,hexcolor_short"`
}

// StudentService handles student use-cases.
type StudentService struct {
	repo      studentRepository
	parents   parentLookup
	cache     *CacheService
	validator *validation.Validator
	logger    *zap.Logger
	publicID  func() string
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, parents parentLookup, cache *CacheService, validate *validation.Validator, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{
		repo:      repo,
		parents:   parents,
		cache:     cache,
		validator: validate,
		logger:    logger,
		publicID:  func() string { return fmt.Sprintf("%06d", 100000+rand.Intn(900000)) },
	}
}

// List returns students. The unfiltered collection is served from cache when enabled;
// cached reports whether that happened.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) (students []models.Student, pagination *models.Pagination, cached bool, err error) {
	if filter.IsZero() && s.cache.Get(ctx, CacheKeyStudents, &students) {
		return students, nil, true, nil
	}

	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, false, appErrors.Internal(err, "failed to list students")
	}
	if filter.IsZero() {
		s.cache.Set(ctx, CacheKeyStudents, students)
	}
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		pagination = &models.Pagination{Page: page, PageSize: filter.PageSize, TotalCount: total}
	}
	return students, pagination, false, nil
}

// Get returns a student.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Internal(err, "failed to load student")
	}
	return student, nil
}

// Create registers a new student under a fresh six digit public id.
func (s *StudentService) Create(ctx context.Context, req StudentRequest) (*models.Student, error) {
	if err := s.validator.Check(req, "invalid student payload"); err != nil {
		return nil, err
	}
	if err := s.ensureParent(ctx, req.ParentID); err != nil {
		return nil, err
	}
	publicID, err := s.nextPublicID(ctx)
	if err != nil {
		return nil, err
	}

	student := &models.Student{PublicID: publicID}
	applyStudentRequest(student, req)
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Internal(err, "failed to create student")
	}
	s.cache.Invalidate(ctx, CachePatternStudents)
	s.logger.Info("student created", zap.String("student_id", student.ID), zap.String("public_id", student.PublicID))
	return student, nil
}

// Update replaces a student's editable fields.
func (s *StudentService) Update(ctx context.Context, id string, req StudentRequest) (*models.Student, error) {
	if err := s.validator.Check(req, "invalid student payload"); err != nil {
		return nil, err
	}
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureParent(ctx, req.ParentID); err != nil {
		return nil, err
	}
	applyStudentRequest(student, req)
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Internal(err, "failed to update student")
	}
	s.cache.Invalidate(ctx, CachePatternStudents, CachePatternLessons)
	return student, nil
}

// Delete removes a student together with their lessons.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Internal(err, "failed to delete student")
	}
	s.cache.Invalidate(ctx, CachePatternStudents, CachePatternLessons)
	s.logger.Info("student deleted", zap.String("student_id", id))
	return nil
}

func (s *StudentService) ensureParent(ctx context.Context, parentID *string) error {
	if parentID == nil || *parentID == "" || s.parents == nil {
		return nil
	}
	if _, err := s.parents.FindByID(ctx, *parentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "parent does not exist").WithDetails(map[string]string{"parentId": "parent does not exist"})
		}
		return appErrors.Internal(err, "failed to load parent")
	}
	return nil
}

func (s *StudentService) nextPublicID(ctx context.Context) (string, error) {
	for i := 0; i < publicIDAttempts; i++ {
		candidate := s.publicID()
		exists, err := s.repo.ExistsByPublicID(ctx, candidate)
		if err != nil {
			return "", appErrors.Internal(err, "failed to allocate public id")
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", appErrors.Clone(appErrors.ErrConflict, "could not allocate a unique public id")
}

func applyStudentRequest(student *models.Student, req StudentRequest) {
	student.FirstName = req.FirstName
	student.LastName = req.LastName
	student.Email = req.Email
	student.Phone = req.Phone
	student.ParentID = nilIfEmpty(req.ParentID)
	student.DefaultSubject = req.DefaultSubject
	student.DefaultPricePerHour = nilIfEmpty(req.DefaultPricePerHour)
	student.DefaultMeetingLink = req.DefaultMeetingLink
	student.Color = req.Color
}

func nilIfEmpty(v *string) *string {
	if v == nil || *v == "" {
		return nil
	}
	return v
}
