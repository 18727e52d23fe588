package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutor-desk-api/internal/dto"
	"github.com/noah-isme/tutor-desk-api/internal/models"
)

func strPtr(s string) *string { return &s }

func TestTransformLessonWithStudent(t *testing.T) {
	lesson := models.Lesson{ID: "l1", StudentID: "s1", Subject: "Math", DateTime: time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC), Duration: 45, PricePerHour: "60.00"}

	view := TransformLessonWithStudent(lesson, &models.Student{ID: "s1", FirstName: "Ana", LastName: strPtr("Diaz"), Color: strPtr("#ff0000")})
	assert.Equal(t, "Ana Diaz", view.StudentName)
	assert.Equal(t, "#ff0000", view.StudentColor)
	assert.InDelta(t, 60.0, view.PricePerHour, 1e-9)
	assert.InDelta(t, 45.0, view.TotalPrice, 1e-9)

	view = TransformLessonWithStudent(lesson, &models.Student{ID: "s1", FirstName: "Ana", Color: strPtr("")})
	assert.Equal(t, "Ana", view.StudentName)
	assert.Equal(t, DefaultStudentColor, view.StudentColor)
}

func TestTransformLessonWithoutStudent(t *testing.T) {
	view := TransformLessonWithStudent(models.Lesson{ID: "l1", PricePerHour: "abc", Duration: 60}, nil)
	assert.Equal(t, "Unknown Student", view.StudentName)
	assert.Equal(t, "#3b82f6", view.StudentColor)
	assert.Zero(t, view.PricePerHour)
}

func TestTransformLessonsLooksUpStudents(t *testing.T) {
	lessons := []models.Lesson{{ID: "a", StudentID: "s1"}, {ID: "b", StudentID: "gone"}}
	views := TransformLessons(lessons, []models.Student{{ID: "s1", FirstName: "Ana"}})
	require.Len(t, views, 2)
	assert.Equal(t, "Ana", views[0].StudentName)
	assert.Equal(t, UnknownStudentName, views[1].StudentName)
}

func dates(groups []dto.DateGroup) []string {
	out := make([]string, 0, len(groups))
	for _, g := range groups {
		out = append(out, g.Date)
	}
	return out
}

func TestGroupByDateWindowAndOrdering(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)
	views := []dto.ViewLesson{
		{ID: "future", DateTime: time.Date(2024, 4, 2, 10, 0, 0, 0, time.UTC)},
		{ID: "edge", DateTime: time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)},
		{ID: "too-old", DateTime: time.Date(2024, 3, 2, 23, 59, 0, 0, time.UTC)},
		{ID: "late", DateTime: time.Date(2024, 3, 12, 18, 0, 0, 0, time.UTC)},
		{ID: "early", DateTime: time.Date(2024, 3, 12, 8, 0, 0, 0, time.UTC)},
	}

	groups := GroupByDate(views, now, time.UTC, 7)
	assert.Equal(t, []string{"2024-03-03", "2024-03-10", "2024-03-12", "2024-04-02"}, dates(groups))

	assert.True(t, groups[0].FirstOfMonth)
	assert.False(t, groups[1].FirstOfMonth)
	assert.True(t, groups[1].IsToday)
	assert.Empty(t, groups[1].Lessons)
	assert.Equal(t, "early", groups[2].Lessons[0].ID)
	assert.Equal(t, "late", groups[2].Lessons[1].ID)
	assert.True(t, groups[3].FirstOfMonth)
}

func TestGroupByDateAlwaysHasToday(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)
	groups := GroupByDate(nil, now, time.UTC, 7)
	require.Len(t, groups, 1)
	assert.Equal(t, "2024-03-10", groups[0].Date)
	assert.True(t, groups[0].IsToday)
	assert.True(t, groups[0].FirstOfMonth)
}

func TestGroupByDateUsesLocation(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, tokyo)
	views := []dto.ViewLesson{{ID: "l", DateTime: time.Date(2024, 3, 10, 20, 0, 0, 0, time.UTC)}}

	groups := GroupByDate(views, now, tokyo, 7)
	assert.Equal(t, []string{"2024-03-10", "2024-03-11"}, dates(groups))
}
