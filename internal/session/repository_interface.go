package session

import (
	"context"
	"time"

	"hourskill/internal/db"
)

type Repository interface {
	GetOrCreate(ctx context.Context, q db.Queryer, userID, videoID int) (*WatchSession, error)
	GetOrCreateForUpdate(ctx context.Context, q db.Queryer, userID, videoID int) (*WatchSession, error)
	MarkUnlocked(ctx context.Context, q db.Queryer, id int) error
	Ping(ctx context.Context, q db.Queryer, id, userID, step int, at time.Time) (int, error)
}
