package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutor-desk-api/internal/models"
	appErrors "github.com/noah-isme/tutor-desk-api/pkg/errors"
)

type mockRecurringRepo struct {
	lessons *mockLessonRepo
	markers map[string]models.RecurringLesson
	created [][]models.Lesson
}

func (m *mockRecurringRepo) Create(ctx context.Context, marker *models.RecurringLesson, occurrences []models.Lesson) error {
	template, ok := m.lessons.lessons[marker.TemplateLessonID]
	if !ok {
		return sql.ErrNoRows
	}
	marker.ID = "marker-1"
	m.markers[marker.ID] = *marker
	template.SeriesID = &marker.SeriesID
	m.lessons.lessons[template.ID] = template
	for i := range occurrences {
		if err := m.lessons.Create(ctx, &occurrences[i]); err != nil {
			return err
		}
	}
	m.created = append(m.created, occurrences)
	return nil
}

func (m *mockRecurringRepo) List(ctx context.Context) ([]models.RecurringLesson, error) {
	out := make([]models.RecurringLesson, 0, len(m.markers))
	for _, marker := range m.markers {
		out = append(out, marker)
	}
	return out, nil
}

func (m *mockRecurringRepo) FindByID(ctx context.Context, id string) (*models.RecurringLesson, error) {
	if marker, ok := m.markers[id]; ok {
		return &marker, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockRecurringRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.markers[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.markers, id)
	return nil
}

const templateID = "9c0e2b1a-7f3d-4c5e-8a6b-1d2e3f4a5b6c"

func newRecurringFixture(t *testing.T, maxOccurrences int, loc *time.Location) (*RecurringLessonService, *mockRecurringRepo, *MetricsService) {
	t.Helper()
	template := lessonAt(templateID, lessonStudentID, time.Date(2024, 1, 1, 15, 0, 0, 0, time.UTC))
	template.Subject = "Math"
	template.MeetingLink = strPtr("https://meet.example.com/m")
	template.PaymentStatus = models.PaymentStatusPaid
	lessons := newMockLessonRepo(template)
	repo := &mockRecurringRepo{lessons: lessons, markers: map[string]models.RecurringLesson{}}
	metrics := NewMetricsService()
	svc := NewRecurringLessonService(repo, lessons, nil, metrics, nil, nil, loc, maxOccurrences)
	return svc, repo, metrics
}

func TestRecurringLessonServiceCreateWeekly(t *testing.T) {
	svc, repo, _ := newRecurringFixture(t, 0, time.UTC)

	result, err := svc.Create(context.Background(), RecurringLessonRequest{TemplateLessonID: templateID, Frequency: models.FrequencyWeekly, EndDate: "2024-01-29"})
	require.NoError(t, err)
	assert.Equal(t, 4, result.Generated)
	assert.False(t, result.Truncated)
	require.Len(t, repo.created, 1)

	occurrences := repo.created[0]
	assert.Equal(t, time.Date(2024, 1, 8, 15, 0, 0, 0, time.UTC), occurrences[0].DateTime)
	assert.Equal(t, time.Date(2024, 1, 29, 15, 0, 0, 0, time.UTC), occurrences[3].DateTime)
	for _, o := range occurrences {
		assert.Equal(t, "Math", o.Subject)
		assert.Equal(t, models.PaymentStatusPending, o.PaymentStatus)
		require.NotNil(t, o.SeriesID)
		assert.Equal(t, result.RecurringLesson.SeriesID, *o.SeriesID)
	}

	template := repo.lessons.lessons[templateID]
	require.NotNil(t, template.SeriesID)
	assert.Equal(t, result.RecurringLesson.SeriesID, *template.SeriesID)
}

func TestRecurringLessonServiceCreateBiweeklyTruncated(t *testing.T) {
	svc, _, _ := newRecurringFixture(t, 3, time.UTC)

	result, err := svc.Create(context.Background(), RecurringLessonRequest{TemplateLessonID: templateID, Frequency: models.FrequencyBiweekly, EndDate: "2024-12-31"})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Generated)
	assert.True(t, result.Truncated)
}

func TestRecurringLessonServiceCreateExactlyAtLimitIsNotTruncated(t *testing.T) {
	svc, _, _ := newRecurringFixture(t, 3, time.UTC)

	result, err := svc.Create(context.Background(), RecurringLessonRequest{TemplateLessonID: templateID, Frequency: models.FrequencyWeekly, EndDate: "2024-01-22"})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Generated)
	assert.False(t, result.Truncated)
}

func TestRecurringLessonServiceRejectsInvalidRequests(t *testing.T) {
	svc, repo, _ := newRecurringFixture(t, 0, time.UTC)
	ctx := context.Background()

	_, err := svc.Create(ctx, RecurringLessonRequest{TemplateLessonID: templateID, Frequency: "daily", EndDate: "01/02/2024"})
	require.Error(t, err)
	details := appErrors.FromError(err).Details
	assert.Contains(t, details, "frequency")
	assert.Contains(t, details, "endDate")

	_, err = svc.Create(ctx, RecurringLessonRequest{TemplateLessonID: templateID, Frequency: models.FrequencyWeekly, EndDate: "2023-12-01"})
	require.Error(t, err)
	assert.Contains(t, appErrors.FromError(err).Details, "endDate")

	_, err = svc.Create(ctx, RecurringLessonRequest{TemplateLessonID: "1c0e2b1a-7f3d-4c5e-8a6b-1d2e3f4a5b6c", Frequency: models.FrequencyWeekly, EndDate: "2024-02-01"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.created)
}

func TestRecurringLessonServiceRejectsTemplateInSeries(t *testing.T) {
	svc, _, _ := newRecurringFixture(t, 0, time.UTC)
	ctx := context.Background()

	_, err := svc.Create(ctx, RecurringLessonRequest{TemplateLessonID: templateID, Frequency: models.FrequencyWeekly, EndDate: "2024-01-15"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, RecurringLessonRequest{TemplateLessonID: templateID, Frequency: models.FrequencyWeekly, EndDate: "2024-02-15"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestRecurringLessonServiceMarkerLifecycle(t *testing.T) {
	svc, repo, _ := newRecurringFixture(t, 0, time.UTC)
	ctx := context.Background()

	result, err := svc.Create(ctx, RecurringLessonRequest{TemplateLessonID: templateID, Frequency: models.FrequencyWeekly, EndDate: "2024-01-15"})
	require.NoError(t, err)

	markers, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, markers, 1)

	got, err := svc.Get(ctx, result.RecurringLesson.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FrequencyWeekly, got.Frequency)

	require.NoError(t, svc.Delete(ctx, result.RecurringLesson.ID))
	assert.Len(t, repo.lessons.lessons, 3)

	err = svc.Delete(ctx, result.RecurringLesson.ID)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
