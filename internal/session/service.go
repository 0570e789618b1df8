package session

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"hourskill/internal/metrics"
)

type Service interface {
	Ping(ctx context.Context, sessionID, userID int) (int, error)
	GetOrCreate(ctx context.Context, userID, videoID int) (*WatchSession, error)
}

type service struct {
	db   *sqlx.DB
	repo Repository
	now  func() time.Time
}

func NewService(database *sqlx.DB, repo Repository) Service {
	return &service{db: database, repo: repo, now: time.Now}
}

// Ping is a single-row atomic increment. watched_seconds is not capped at
// the video duration.
func (s *service) Ping(ctx context.Context, sessionID, userID int) (int, error) {
	watched, err := s.repo.Ping(ctx, s.db, sessionID, userID, HeartbeatStep, s.now().UTC())
	if err != nil {
		return 0, err
	}
	metrics.RecordHeartbeat()
	return watched, nil
}

func (s *service) GetOrCreate(ctx context.Context, userID, videoID int) (*WatchSession, error) {
	return s.repo.GetOrCreate(ctx, s.db, userID, videoID)
}
