package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutor-desk-api/internal/models"
	appErrors "github.com/noah-isme/tutor-desk-api/pkg/errors"
	"github.com/noah-isme/tutor-desk-api/pkg/export"
)

func TestExportServiceLessonsCSV(t *testing.T) {
	students := newMockStudentRepo(models.Student{ID: lessonStudentID, FirstName: "Ada", LastName: strPtr("Lovelace")})
	lesson := lessonAt("l1", lessonStudentID, time.Date(2024, 5, 6, 14, 30, 0, 0, time.UTC))
	lesson.Subject = "Math"
	lesson.Duration = 90
	svc := NewExportService(newMockLessonRepo(lesson), students, time.UTC, nil)
	svc.now = func() time.Time { return time.Date(2024, 5, 7, 9, 0, 0, 0, time.UTC) }

	result, err := svc.Lessons(context.Background(), export.FormatCSV, models.LessonFilter{})
	require.NoError(t, err)
	assert.Equal(t, "lessons-20240507-0900.csv", result.Filename)
	assert.Equal(t, "text/csv", result.ContentType)

	lines := strings.Split(strings.TrimSpace(string(result.Payload)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Date,Student,Subject,Duration (min),Price/h,Total,Status", lines[0])
	assert.Equal(t, "2024-05-06 14:30,Ada Lovelace,Math,90,40.00,60.00,pending", lines[1])
}

func TestExportServiceLessonsPDF(t *testing.T) {
	svc := NewExportService(newMockLessonRepo(), newMockStudentRepo(), nil, nil)

	result, err := svc.Lessons(context.Background(), export.FormatPDF, models.LessonFilter{})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasPrefix(string(result.Payload), "%PDF"))
}

func TestExportServiceRejectsUnknownFormat(t *testing.T) {
	svc := NewExportService(newMockLessonRepo(), newMockStudentRepo(), nil, nil)

	_, err := svc.Lessons(context.Background(), "xlsx", models.LessonFilter{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
