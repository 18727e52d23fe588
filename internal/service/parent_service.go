package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/tutor-desk-api/internal/models"
	appErrors "github.com/noah-isme/tutor-desk-api/pkg/errors"
	"github.com/noah-isme/tutor-desk-api/pkg/validation"
)

type parentRepository interface {
	List(ctx context.Context, filter models.ParentFilter) ([]models.Parent, int, error)
	FindByID(ctx context.Context, id string) (*models.Parent, error)
	Create(ctx context.Context, parent *models.Parent) error
	Update(ctx context.Context, parent *models.Parent) error
	Delete(ctx context.Context, id string) error
}

// ParentRequest holds the payload for creating or replacing a parent.
type ParentRequest struct {
	FirstName string  `json:"firstName" validate:"required,max=100"`
	LastName  *string `json:"lastName" validate:"omitempty,max=100"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Phone     *string `json:"phone" validate:"omitempty,max=40"`
}

// ParentService handles parent use-cases.
type ParentService struct {
	repo      parentRepository
	cache     *CacheService
	validator *validation.Validator
	logger    *zap.Logger
}

// NewParentService constructs the parent service.
func NewParentService(repo parentRepository, cache *CacheService, validate *validation.Validator, logger *zap.Logger) *ParentService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ParentService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns parents with pagination when paging was requested.
func (s *ParentService) List(ctx context.Context, filter models.ParentFilter) ([]models.Parent, *models.Pagination, error) {
	parents, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "failed to list parents")
	}
	var pagination *models.Pagination
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		pagination = &models.Pagination{Page: page, PageSize: filter.PageSize, TotalCount: total}
	}
	return parents, pagination, nil
}

// Get returns a parent.
func (s *ParentService) Get(ctx context.Context, id string) (*models.Parent, error) {
	parent, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "parent not found")
		}
		return nil, appErrors.Internal(err, "failed to load parent")
	}
	return parent, nil
}

// Create registers a parent.
func (s *ParentService) Create(ctx context.Context, req ParentRequest) (*models.Parent, error) {
	if err := s.validator.Check(req, "invalid parent payload"); err != nil {
		return nil, err
	}
	parent := &models.Parent{FirstName: req.FirstName, LastName: req.LastName, Email: req.Email, Phone: req.Phone}
	if err := s.repo.Create(ctx, parent); err != nil {
		return nil, appErrors.Internal(err, "failed to create parent")
	}
	return parent, nil
}

// Update replaces a parent's fields.
func (s *ParentService) Update(ctx context.Context, id string, req ParentRequest) (*models.Parent, error) {
	if err := s.validator.Check(req, "invalid parent payload"); err != nil {
		return nil, err
	}
	parent, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	parent.FirstName = req.FirstName
	parent.LastName = req.LastName
	parent.Email = req.Email
	parent.Phone = req.Phone
	if err := s.repo.Update(ctx, parent); err != nil {
		return nil, appErrors.Internal(err, "failed to update parent")
	}
	return parent, nil
}

// Delete removes a parent; their students are detached, their payments removed.
func (s *ParentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "parent not found")
		}
		return appErrors.Internal(err, "failed to delete parent")
	}
	s.cache.Invalidate(ctx, CachePatternStudents)
	s.logger.Info("parent deleted", zap.String("parent_id", id))
	return nil
}
