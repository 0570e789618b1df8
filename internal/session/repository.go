package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"hourskill/internal/db"
)

var ErrSessionNotFound = errors.New("watch session not found")

const sessionColumns = `id, user_id, video_id, start_time, last_ping_time, watched_seconds, is_unlocked`

type repository struct{}

func NewRepository() Repository {
	return &repository{}
}

func (r *repository) GetOrCreate(ctx context.Context, q db.Queryer, userID, videoID int) (*WatchSession, error) {
	return r.getOrCreate(ctx, q, userID, videoID, "")
}

// GetOrCreateForUpdate also holds the row lock until the caller's
// transaction ends.
func (r *repository) GetOrCreateForUpdate(ctx context.Context, q db.Queryer, userID, videoID int) (*WatchSession, error) {
	return r.getOrCreate(ctx, q, userID, videoID, " FOR UPDATE")
}

func (r *repository) getOrCreate(ctx context.Context, q db.Queryer, userID, videoID int, lock string) (*WatchSession, error) {
	insert := `
		INSERT INTO watch_sessions (user_id, video_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, video_id) DO NOTHING
	`
	if _, err := q.ExecContext(ctx, insert, userID, videoID); err != nil {
		return nil, fmt.Errorf("create watch session: %w", err)
	}

	query := `SELECT ` + sessionColumns + ` FROM watch_sessions WHERE user_id = $1 AND video_id = $2` + lock

	var s WatchSession
	if err := q.GetContext(ctx, &s, query, userID, videoID); err != nil {
		return nil, fmt.Errorf("get watch session: %w", err)
	}
	return &s, nil
}

func (r *repository) MarkUnlocked(ctx context.Context, q db.Queryer, id int) error {
	res, err := q.ExecContext(ctx, `UPDATE watch_sessions SET is_unlocked = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("unlock watch session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// Ping adds step seconds to a session owned by userID. A session owned by
// anyone else is reported as not found.
func (r *repository) Ping(ctx context.Context, q db.Queryer, id, userID, step int, at time.Time) (int, error) {
	query := `
		UPDATE watch_sessions
		SET watched_seconds = watched_seconds + $1, last_ping_time = $2
		WHERE id = $3 AND user_id = $4
		RETURNING watched_seconds
	`

	var watched int
	if err := q.GetContext(ctx, &watched, query, step, at, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrSessionNotFound
		}
		return 0, fmt.Errorf("ping watch session: %w", err)
	}
	return watched, nil
}
