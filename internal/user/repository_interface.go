package user

import (
	"context"

	"hourskill/internal/db"
)

type Repository interface {
	Create(ctx context.Context, q db.Queryer, u *User) error
	FindByEmail(ctx context.Context, q db.Queryer, email string) (*User, error)
	FindByID(ctx context.Context, q db.Queryer, id int) (*User, error)
	EmailExists(ctx context.Context, q db.Queryer, email string) (bool, error)
	DecrementTrustScore(ctx context.Context, q db.Queryer, id, points int) (int, error)
}
