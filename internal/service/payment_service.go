package service

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/tutor-desk-api/internal/dto"
	"github.com/noah-isme/tutor-desk-api/internal/models"
	appErrors "github.com/noah-isme/tutor-desk-api/pkg/errors"
	"github.com/noah-isme/tutor-desk-api/pkg/validation"
)

type paymentRepository interface {
	List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, error)
	FindByID(ctx context.Context, id string) (*models.Payment, error)
	LessonIDs(ctx context.Context, paymentID string) ([]string, error)
	Create(ctx context.Context, payment *models.Payment, lessonIDs []string) error
	Update(ctx context.Context, payment *models.Payment, lessonIDs []string) error
	Delete(ctx context.Context, id string) error
}

type payerLessonSource interface {
	List(ctx context.Context, filter models.LessonFilter) ([]models.Lesson, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Lesson, error)
}

// CreatePaymentRequest records a payment against a payer and the lessons it covers.
type CreatePaymentRequest struct {
	models.Payer
	Amount      string    `json:"amount" validate:"required,decimal"`
	PaymentDate time.Time `json:"paymentDate" validate:"required"`
	Notes       *string   `json:"notes" validate:"omitempty,max=2000"`
	LessonIDs   []string  `json:"lessonIds" validate:"omitempty,dive,uuid"`
}

// UpdatePaymentRequest edits a payment. A nil LessonIDs keeps the existing links; any
// other value, including an empty list, replaces them.
type UpdatePaymentRequest struct {
	Amount      string    `json:"amount" validate:"required,decimal"`
	PaymentDate time.Time `json:"paymentDate" validate:"required"`
	Notes       *string   `json:"notes" validate:"omitempty,max=2000"`
	LessonIDs   []string  `json:"lessonIds" validate:"omitempty,dive,uuid"`
}

// PaymentService records payments and drives lesson selection for the payment form.
type PaymentService struct {
	repo      paymentRepository
	lessons   payerLessonSource
	students  studentLookup
	parents   parentLookup
	cache     *CacheService
	metrics   *MetricsService
	validator *validation.Validator
	logger    *zap.Logger
}

// NewPaymentService constructs the payment service.
func NewPaymentService(repo paymentRepository, lessons payerLessonSource, students studentLookup, parents parentLookup, cache *CacheService, metrics *MetricsService, validate *validation.Validator, logger *zap.Logger) *PaymentService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{
		repo:      repo,
		lessons:   lessons,
		students:  students,
		parents:   parents,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// List returns payments, optionally for one student or parent.
func (s *PaymentService) List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, error) {
	payments, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list payments")
	}
	return payments, nil
}

// Get returns a payment with its linked lesson ids.
func (s *PaymentService) Get(ctx context.Context, id string) (*models.Payment, error) {
	payment, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	ids, err := s.repo.LessonIDs(ctx, id)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load payment lessons")
	}
	payment.LessonIDs = ids
	return payment, nil
}

// Lessons returns the ids of the lessons a payment covers.
func (s *PaymentService) Lessons(ctx context.Context, id string) ([]string, error) {
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}
	ids, err := s.repo.LessonIDs(ctx, id)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load payment lessons")
	}
	return ids, nil
}

// Create records a payment; the linked lessons are marked paid in the same transaction.
func (s *PaymentService) Create(ctx context.Context, req CreatePaymentRequest) (*models.Payment, error) {
	if err := s.validator.Check(req, "invalid payment payload"); err != nil {
		return nil, err
	}
	if err := checkPositiveAmount(req.Amount); err != nil {
		return nil, err
	}

	lessonIDs := uniqueStrings(req.LessonIDs)
	pool, err := s.candidatePool(ctx, req.Payer, true)
	if err != nil {
		return nil, err
	}
	if err := checkLessonsOwned(lessonIDs, pool); err != nil {
		return nil, err
	}

	payment := &models.Payment{
		Amount:      req.Amount,
		PaymentDate: req.PaymentDate.UTC(),
		Notes:       req.Notes,
	}
	payerID := req.Payer.ID
	if req.Payer.Type == models.PayerParent {
		payment.ParentID = &payerID
	} else {
		payment.StudentID = &payerID
	}

	if err := s.repo.Create(ctx, payment, lessonIDs); err != nil {
		return nil, appErrors.Internal(err, "failed to record payment")
	}
	payment.LessonIDs = lessonIDs
	s.metrics.PaymentRecorded()
	s.cache.Invalidate(ctx, CachePatternLessons)
	s.logger.Info("payment recorded", zap.String("payment_id", payment.ID), zap.String("payer_type", string(req.Payer.Type)), zap.Int("lessons", len(lessonIDs)))
	return payment, nil
}

// Update replaces amount, date and notes, and the lesson links when provided.
func (s *PaymentService) Update(ctx context.Context, id string, req UpdatePaymentRequest) (*models.Payment, error) {
	if err := s.validator.Check(req, "invalid payment payload"); err != nil {
		return nil, err
	}
	if err := checkPositiveAmount(req.Amount); err != nil {
		return nil, err
	}

	payment, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	var lessonIDs []string
	if req.LessonIDs != nil {
		lessonIDs = uniqueStrings(req.LessonIDs)
		pool, err := s.candidatePool(ctx, payment.Payer(), true)
		if err != nil {
			return nil, err
		}
		if err := checkLessonsOwned(lessonIDs, pool); err != nil {
			return nil, err
		}
	}

	payment.Amount = req.Amount
	payment.PaymentDate = req.PaymentDate.UTC()
	payment.Notes = req.Notes
	if err := s.repo.Update(ctx, payment, lessonIDs); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
		}
		return nil, appErrors.Internal(err, "failed to update payment")
	}
	if lessonIDs != nil {
		payment.LessonIDs = lessonIDs
		s.cache.Invalidate(ctx, CachePatternLessons)
	}
	return payment, nil
}

// Delete removes a payment and its lesson links. Lessons no other payment covers return to pending.
func (s *PaymentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "payment not found")
		}
		return appErrors.Internal(err, "failed to delete payment")
	}
	return nil
}

// Candidates lists the payer's lessons eligible for a payment, flagging the selected ones.
func (s *PaymentService) Candidates(ctx context.Context, payer models.Payer, showAll bool, selected []string) (*dto.CandidatesResponse, error) {
	if err := s.validator.Check(payer, "invalid payer"); err != nil {
		return nil, err
	}
	pool, err := s.candidatePool(ctx, payer, showAll)
	if err != nil {
		return nil, err
	}
	students, err := s.payerStudents(ctx, payer)
	if err != nil {
		return nil, err
	}

	sel := dto.Selection{LessonIDs: selected}
	views := TransformLessons(pool, students)
	out := make([]dto.CandidateLesson, 0, len(views))
	for _, view := range views {
		out = append(out, dto.CandidateLesson{ViewLesson: view, Selected: sel.Contains(view.ID)})
	}
	return &dto.CandidatesResponse{Payer: payer, ShowAll: showAll, Lessons: out}, nil
}

// Toggle flips one lesson in the submitted selection and recomputes its amount. Without
// showAll only pending lessons can be added.
func (s *PaymentService) Toggle(ctx context.Context, req dto.ToggleSelectionRequest) (*dto.Selection, error) {
	if err := s.validator.Check(req, "invalid selection payload"); err != nil {
		return nil, err
	}
	pool, err := s.candidatePool(ctx, req.Payer, true)
	if err != nil {
		return nil, err
	}
	if !req.ShowAll && !req.Selection.Contains(req.LessonID) {
		pool = hideSettled(pool, req.LessonID)
	}
	next, err := ToggleLesson(req.Selection, req.LessonID, pool)
	if err != nil {
		if errors.Is(err, ErrLessonNotCandidate) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "lesson cannot be selected for this payer").WithDetails(map[string]string{"lessonId": err.Error()})
		}
		return nil, appErrors.Internal(err, "failed to toggle lesson")
	}
	return &next, nil
}

// AutoSelect replaces the selection with pending lessons greedily matched to the amount.
// An amount that is not a positive number leaves the selection untouched.
func (s *PaymentService) AutoSelect(ctx context.Context, req dto.AutoSelectRequest) (*dto.AutoSelectResponse, error) {
	if err := s.validator.Check(req, "invalid auto-select payload"); err != nil {
		return nil, err
	}
	pool, err := s.candidatePool(ctx, req.Payer, true)
	if err != nil {
		return nil, err
	}

	selected, total, ok := AutoSelectByAmount(pool, req.Amount)
	if !ok {
		return &dto.AutoSelectResponse{Selection: req.Selection, MatchedTotal: FormatAmount(0)}, nil
	}

	target, _ := ParseAmount(req.Amount)
	next := dto.Selection{
		LessonIDs:    make([]string, 0, len(selected)),
		Amount:       req.Amount,
		PaymentDate:  req.Selection.PaymentDate,
		DateExplicit: req.Selection.DateExplicit,
	}
	for _, lesson := range selected {
		next.LessonIDs = append(next.LessonIDs, lesson.ID)
	}
	return &dto.AutoSelectResponse{
		Selection:    next,
		MatchedTotal: FormatAmount(total),
		Exact:        math.Abs(total-target) < amountTolerance,
		Applied:      true,
	}, nil
}

func (s *PaymentService) find(ctx context.Context, id string) (*models.Payment, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
		}
		return nil, appErrors.Internal(err, "failed to load payment")
	}
	return payment, nil
}

// payerStudents resolves the students a payer pays for, failing when the payer is unknown.
func (s *PaymentService) payerStudents(ctx context.Context, payer models.Payer) ([]models.Student, error) {
	switch payer.Type {
	case models.PayerStudent:
		student, err := s.students.FindByID(ctx, payer.ID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
			}
			return nil, appErrors.Internal(err, "failed to load payer")
		}
		return []models.Student{*student}, nil
	case models.PayerParent:
		if _, err := s.parents.FindByID(ctx, payer.ID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "parent not found")
			}
			return nil, appErrors.Internal(err, "failed to load payer")
		}
		students, _, err := s.students.List(ctx, models.StudentFilter{ParentID: payer.ID})
		if err != nil {
			return nil, appErrors.Internal(err, "failed to load payer students")
		}
		return students, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown payer type").WithDetails(map[string]string{"payerType": "payerType must be student or parent"})
	}
}

func (s *PaymentService) candidatePool(ctx context.Context, payer models.Payer, showAll bool) ([]models.Lesson, error) {
	students, err := s.payerStudents(ctx, payer)
	if err != nil {
		return nil, err
	}

	var lessons []models.Lesson
	if payer.Type == models.PayerStudent {
		lessons, err = s.lessons.ListByStudent(ctx, payer.ID)
	} else {
		lessons, err = s.lessons.List(ctx, models.LessonFilter{})
	}
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load payer lessons")
	}
	return CandidateLessons(lessons, students, payer, showAll), nil
}

// hideSettled drops the lesson from the pool when it is not pending, so it cannot be added
// while settled lessons are hidden. Amounts of already selected lessons still resolve.
func hideSettled(pool []models.Lesson, lessonID string) []models.Lesson {
	out := make([]models.Lesson, 0, len(pool))
	for _, lesson := range pool {
		if lesson.ID == lessonID && lesson.PaymentStatus != models.PaymentStatusPending {
			continue
		}
		out = append(out, lesson)
	}
	return out
}

func checkPositiveAmount(raw string) error {
	if amount, ok := ParseAmount(raw); !ok || amount <= 0 {
		return appErrors.Clone(appErrors.ErrValidation, "invalid payment payload").WithDetails(map[string]string{"amount": "amount must be greater than zero"})
	}
	return nil
}

func checkLessonsOwned(ids []string, pool []models.Lesson) error {
	owned := make(map[string]struct{}, len(pool))
	for _, lesson := range pool {
		owned[lesson.ID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := owned[id]; !ok {
			return appErrors.Clone(appErrors.ErrValidation, "invalid payment payload").WithDetails(map[string]string{"lessonIds": "lesson " + id + " does not belong to the payer"})
		}
	}
	return nil
}
