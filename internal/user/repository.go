package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hourskill/internal/db"
)

var ErrUserNotFound = errors.New("user not found")

const userColumns = `id, username, email, password_hash, is_creator, is_vip, vip_expiry, trust_score, created_at`

type repository struct{}

func NewRepository() Repository {
	return &repository{}
}

// Create inserts u and fills in the generated columns.
func (r *repository) Create(ctx context.Context, q db.Queryer, u *User) error {
	query := `
		INSERT INTO users (username, email, password_hash, is_creator)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns

	if err := q.GetContext(ctx, u, query, u.Username, u.Email, u.PasswordHash, u.IsCreator); err != nil {
		if db.IsUniqueViolation(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *repository) FindByEmail(ctx context.Context, q db.Queryer, email string) (*User, error) {
	return r.findOne(ctx, q, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *repository) FindByID(ctx context.Context, q db.Queryer, id int) (*User, error) {
	return r.findOne(ctx, q, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *repository) findOne(ctx context.Context, q db.Queryer, query string, arg interface{}) (*User, error) {
	var u User
	if err := q.GetContext(ctx, &u, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func (r *repository) EmailExists(ctx context.Context, q db.Queryer, email string) (bool, error) {
	return db.Exists(ctx, q, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email)
}

// DecrementTrustScore lowers the score by points and returns the new value.
func (r *repository) DecrementTrustScore(ctx context.Context, q db.Queryer, id, points int) (int, error) {
	query := `UPDATE users SET trust_score = trust_score - $1 WHERE id = $2 RETURNING trust_score`

	var score int
	if err := q.GetContext(ctx, &score, query, points, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrUserNotFound
		}
		return 0, fmt.Errorf("decrement trust score: %w", err)
	}
	return score, nil
}
