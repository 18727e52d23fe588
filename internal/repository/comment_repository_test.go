package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutor-desk-api/internal/models"
)

func TestCommentRepositoryListVisibleOnly(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCommentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM comments WHERE lesson_id = $1 AND visible_to_student = TRUE ORDER BY created_at")).
		WithArgs("l1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "lesson_id", "content", "visible_to_student", "tags", "created_at", "updated_at"}).
			AddRow("c1", "l1", "Great progress", true, []byte("{homework,algebra}"), time.Now(), time.Now()))

	comments, err := repo.ListByLesson(context.Background(), "l1", true)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, []string{"homework", "algebra"}, []string(comments[0].Tags))
}

func TestCommentRepositoryCreateDefaultsTags(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCommentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO comments")).
		WithArgs(sqlmock.AnyArg(), "l1", "Bring calculator", false, "{}", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	comment := &models.Comment{LessonID: "l1", Content: "Bring calculator"}
	require.NoError(t, repo.Create(context.Background(), comment))
	assert.NotNil(t, comment.Tags)
	assert.NoError(t, mock.ExpectationsWereMet())
}
