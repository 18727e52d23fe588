package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/tutor-desk-api/internal/models"
	appErrors "github.com/noah-isme/tutor-desk-api/pkg/errors"
	"github.com/noah-isme/tutor-desk-api/pkg/export"
)

type exportLessonSource interface {
	List(ctx context.Context, filter models.LessonFilter) ([]models.Lesson, error)
}

// ExportResult is a rendered document ready for download.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders lesson listings as CSV or PDF.
type ExportService struct {
	lessons  exportLessonSource
	students studentLookup
	location *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

// NewExportService constructs an ExportService. Dates are printed in loc.
func NewExportService(lessons exportLessonSource, students studentLookup, loc *time.Location, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &ExportService{lessons: lessons, students: students, location: loc, logger: logger, now: time.Now}
}

// Lessons renders the lessons matching filter in the requested format.
func (s *ExportService) Lessons(ctx context.Context, format export.Format, filter models.LessonFilter) (*ExportResult, error) {
	renderer, err := export.ForFormat(format)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format").WithDetails(map[string]string{"format": "format must be csv or pdf"})
	}

	lessons, err := s.lessons.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load lessons for export")
	}
	students, _, err := s.students.List(ctx, models.StudentFilter{})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load students for export")
	}

	payload, err := renderer.Render(s.lessonDataset(lessons, students))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render export")
	}

	filename := fmt.Sprintf("lessons-%s.%s", s.now().In(s.location).Format("20060102-1504"), renderer.Extension())
	s.logger.Info("lessons exported", zap.String("format", renderer.Extension()), zap.Int("rows", len(lessons)))
	return &ExportResult{Filename: filename, ContentType: renderer.ContentType(), Payload: payload}, nil
}

func (s *ExportService) lessonDataset(lessons []models.Lesson, students []models.Student) export.Dataset {
	dataset := export.Dataset{
		Title:   "Lessons",
		Headers: []string{"Date", "Student", "Subject", "Duration (min)", "Price/h", "Total", "Status"},
		Weights: []float64{1.4, 1.6, 1.6, 0.9, 0.8, 0.8, 0.9},
		Rows:    make([][]string, 0, len(lessons)),
	}
	for _, view := range TransformLessons(lessons, students) {
		dataset.Rows = append(dataset.Rows, []string{
			view.DateTime.In(s.location).Format("2006-01-02 15:04"),
			view.StudentName,
			view.Subject,
			strconv.Itoa(view.Duration),
			FormatAmount(view.PricePerHour),
			FormatAmount(view.TotalPrice),
			string(view.PaymentStatus),
		})
	}
	return dataset
}
