package video

import (
	"context"

	"hourskill/internal/db"
)

type Repository interface {
	GetActive(ctx context.Context, q db.Queryer, id int) (*Video, error)
	ListActive(ctx context.Context, q db.Queryer, limit, offset int) ([]Video, error)
	Create(ctx context.Context, q db.Queryer, v *Video) error
	Deactivate(ctx context.Context, q db.Queryer, id, creatorID int) error
}
