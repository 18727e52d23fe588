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

func TestSessionRepositoryLifecycle(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectExec("INSERT INTO sessions").WithArgs(anyArgs(7)...).WillReturnResult(sqlmock.NewResult(1, 1))
	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("FROM sessions WHERE id = $1")).
		WithArgs("sess-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "expires_at", "created_at", "revoked", "revoked_at", "ip_address", "user_agent"}).
			AddRow("sess-1", "u1", now.Add(time.Hour), now, false, nil, "127.0.0.1", "test"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE sessions SET revoked = TRUE, revoked_at = $2 WHERE id = $1")).
		WithArgs("sess-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("WHERE user_id = $1 AND revoked = FALSE")).
		WithArgs("u1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sessions WHERE expires_at < $1")).
		WillReturnResult(sqlmock.NewResult(0, 4))

	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &models.Session{ID: "sess-1", UserID: "u1", ExpiresAt: now.Add(time.Hour)}))
	session, err := repo.FindByID(ctx, "sess-1")
	require.NoError(t, err)
	assert.True(t, session.Active(now))
	require.NoError(t, repo.Revoke(ctx, "sess-1"))
	require.NoError(t, repo.RevokeAllForUser(ctx, "u1"))
	pruned, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(4), pruned)
	assert.NoError(t, mock.ExpectationsWereMet())
}
