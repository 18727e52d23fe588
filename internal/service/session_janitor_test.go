package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutor-desk-api/pkg/jobs"
)

type stubExpiredSessions struct {
	before time.Time
	err    error
}

func (s *stubExpiredSessions) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	s.before = before
	return 2, s.err
}

func TestSessionJanitorPrune(t *testing.T) {
	store := &stubExpiredSessions{}
	janitor := NewSessionJanitor(store, 24*time.Hour, nil)
	now := time.Date(2024, 6, 2, 8, 0, 0, 0, time.UTC)
	janitor.now = func() time.Time { return now }

	require.NoError(t, janitor.Prune(context.Background(), jobs.Job{ID: "job-1", Type: JobPruneSessions}))
	assert.Equal(t, now.Add(-24*time.Hour), store.before)

	store.err = errors.New("connection reset")
	assert.Error(t, janitor.Prune(context.Background(), jobs.Job{ID: "job-2", Type: JobPruneSessions}))
}
