package video

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hourskill/internal/db"
)

var ErrVideoNotFound = errors.New("video not found")

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	videoColumns = `id, title, description, creator_id, file_key, duration_seconds, price_tc, is_active, created_at`
)

type repository struct{}

func NewRepository() Repository {
	return &repository{}
}

// GetActive treats a deactivated video the same as a missing one.
func (r *repository) GetActive(ctx context.Context, q db.Queryer, id int) (*Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos WHERE id = $1 AND is_active = TRUE`

	var v Video
	if err := q.GetContext(ctx, &v, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVideoNotFound
		}
		return nil, fmt.Errorf("get video: %w", err)
	}
	return &v, nil
}

func (r *repository) ListActive(ctx context.Context, q db.Queryer, limit, offset int) ([]Video, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT ` + videoColumns + `
		FROM videos
		WHERE is_active = TRUE
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`

	videos := []Video{}
	if err := q.SelectContext(ctx, &videos, query, limit, offset); err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	return videos, nil
}

func (r *repository) Create(ctx context.Context, q db.Queryer, v *Video) error {
	query := `
		INSERT INTO videos (title, description, creator_id, file_key, duration_seconds, price_tc)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + videoColumns

	if err := q.GetContext(ctx, v, query, v.Title, v.Description, v.CreatorID, v.FileKey, v.DurationSeconds, v.PriceTC); err != nil {
		return fmt.Errorf("create video: %w", err)
	}
	return nil
}

// Deactivate soft-deletes a video owned by creatorID.
func (r *repository) Deactivate(ctx context.Context, q db.Queryer, id, creatorID int) error {
	query := `UPDATE videos SET is_active = FALSE WHERE id = $1 AND creator_id = $2 AND is_active = TRUE`

	res, err := q.ExecContext(ctx, query, id, creatorID)
	if err != nil {
		return fmt.Errorf("deactivate video: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrVideoNotFound
	}
	return nil
}
