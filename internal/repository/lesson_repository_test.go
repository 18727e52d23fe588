package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutor-desk-api/internal/models"
)

var lessonRowColumns = []string{"id", "student_id", "subject", "date_time", "duration", "price_per_hour", "meeting_link", "payment_status", "series_id", "created_at", "updated_at"}

func TestLessonRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	at := time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(lessonRowColumns).
		AddRow("l1", "s1", "Math", at, 60, []byte("45.00"), nil, []byte("pending"), "series-1", at, at)
	mock.ExpectQuery(regexp.QuoteMeta("FROM lessons WHERE 1=1 AND student_id = $1 AND date_time >= $2 AND payment_status = $3 ORDER BY date_time, id")).
		WithArgs("s1", from, models.PaymentStatusPending).
		WillReturnRows(rows)

	lessons, err := repo.List(context.Background(), models.LessonFilter{StudentID: "s1", From: &from, Status: models.PaymentStatusPending})
	require.NoError(t, err)
	require.Len(t, lessons, 1)
	assert.Equal(t, "45.00", lessons[0].PricePerHour)
	assert.Equal(t, models.PaymentStatusPending, lessons[0].PaymentStatus)
	assert.Equal(t, "series-1", *lessons[0].SeriesID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM lessons WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.Equal(t, sql.ErrNoRows, err)
}

func TestLessonRepositoryCreateDefaultsStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	mock.ExpectExec("INSERT INTO lessons").WithArgs(anyArgs(11)...).WillReturnResult(sqlmock.NewResult(1, 1))

	lesson := &models.Lesson{StudentID: "s1", Subject: "Math", DateTime: time.Now(), Duration: 60, PricePerHour: "40"}
	require.NoError(t, repo.Create(context.Background(), lesson))
	assert.Equal(t, models.PaymentStatusPending, lesson.PaymentStatus)
	assert.NotEmpty(t, lesson.ID)
}

func TestLessonRepositoryDeleteByIDs(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM lessons WHERE id = ANY($1)")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))

	deleted, err := repo.DeleteByIDs(context.Background(), []string{"a", "b", "gone"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	deleted, err = repo.DeleteByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepositoryDeleteByIDsError(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM lessons")).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.DeleteByIDs(context.Background(), []string{"a"})
	assert.ErrorContains(t, err, "delete lessons")
}
