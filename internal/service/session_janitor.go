package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/tutor-desk-api/pkg/jobs"
)

// JobPruneSessions is the maintenance job type removing long expired sessions.
const JobPruneSessions = "sessions.prune"

type expiredSessionStore interface {
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// SessionJanitor deletes sessions whose expiry lies further back than the grace period.
type SessionJanitor struct {
	sessions expiredSessionStore
	grace    time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewSessionJanitor constructs the janitor.
func NewSessionJanitor(sessions expiredSessionStore, grace time.Duration, logger *zap.Logger) *SessionJanitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionJanitor{sessions: sessions, grace: grace, logger: logger, now: time.Now}
}

// Prune is a jobs.Handler for JobPruneSessions.
func (j *SessionJanitor) Prune(ctx context.Context, job jobs.Job) error {
	removed, err := j.sessions.DeleteExpired(ctx, j.now().Add(-j.grace))
	if err != nil {
		return err
	}
	if removed > 0 {
		j.logger.Info("expired sessions pruned", zap.String("job_id", job.ID), zap.Int64("count", removed))
	}
	return nil
}
