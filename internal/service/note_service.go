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

type noteRepository interface {
	List(ctx context.Context, filter models.NoteFilter) ([]models.Note, error)
	FindByID(ctx context.Context, id string) (*models.Note, error)
	Create(ctx context.Context, note *models.Note) error
	Update(ctx context.Context, note *models.Note) error
	Delete(ctx context.Context, id string) error
}

// NoteRequest holds the payload for a free-form note, optionally tied to a student.
type NoteRequest struct {
	StudentID *string `json:"studentId" validate:"omitempty,uuid"`
	Title     string  `json:"title" validate:"required,max=200"`
	Content   string  `json:"content" validate:"max=20000"`
}

// NoteService handles notes.
type NoteService struct {
	repo      noteRepository
	students  studentLookup
	validator *validation.Validator
	logger    *zap.Logger
}

// NewNoteService constructs the note service.
func NewNoteService(repo noteRepository, students studentLookup, validate *validation.Validator, logger *zap.Logger) *NoteService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoteService{repo: repo, students: students, validator: validate, logger: logger}
}

// List returns notes, optionally for one student.
func (s *NoteService) List(ctx context.Context, filter models.NoteFilter) ([]models.Note, error) {
	notes, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list notes")
	}
	return notes, nil
}

// Get returns a note.
func (s *NoteService) Get(ctx context.Context, id string) (*models.Note, error) {
	note, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "note not found")
		}
		return nil, appErrors.Internal(err, "failed to load note")
	}
	return note, nil
}

// Create stores a note.
func (s *NoteService) Create(ctx context.Context, req NoteRequest) (*models.Note, error) {
	if err := s.validate(ctx, req); err != nil {
		return nil, err
	}
	note := &models.Note{StudentID: nilIfEmpty(req.StudentID), Title: req.Title, Content: req.Content}
	if err := s.repo.Create(ctx, note); err != nil {
		return nil, appErrors.Internal(err, "failed to create note")
	}
	return note, nil
}

// Update replaces a note.
func (s *NoteService) Update(ctx context.Context, id string, req NoteRequest) (*models.Note, error) {
	if err := s.validate(ctx, req); err != nil {
		return nil, err
	}
	note, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	note.StudentID = nilIfEmpty(req.StudentID)
	note.Title = req.Title
	note.Content = req.Content
	if err := s.repo.Update(ctx, note); err != nil {
		return nil, appErrors.Internal(err, "failed to update note")
	}
	return note, nil
}

// Delete removes a note.
func (s *NoteService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "note not found")
		}
		return appErrors.Internal(err, "failed to delete note")
	}
	return nil
}

func (s *NoteService) validate(ctx context.Context, req NoteRequest) error {
	if err := s.validator.Check(req, "invalid note payload"); err != nil {
		return err
	}
	if req.StudentID == nil || *req.StudentID == "" {
		return nil
	}
	if _, err := s.students.FindByID(ctx, *req.StudentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "student does not exist").WithDetails(map[string]string{"studentId": "student does not exist"})
		}
		return appErrors.Internal(err, "failed to load student")
	}
	return nil
}
