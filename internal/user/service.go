package user

import (
	"context"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"hourskill/internal/auth"
	"hourskill/internal/db"
	"hourskill/internal/logger"
	"hourskill/internal/wallet"
)

var (
	ErrEmailExists        = errors.New("email or username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*LoginResponse, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	GetByID(ctx context.Context, userID int) (*User, error)
	RefreshToken(ctx context.Context, refreshToken string) (*RefreshResponse, error)
	PenalizeTrust(ctx context.Context, userID, points int) (int, error)
}

type service struct {
	db        *sqlx.DB
	repo      Repository
	wallets   wallet.Service
	jwtSecret string
}

func NewService(database *sqlx.DB, repo Repository, wallets wallet.Service, jwtSecret string) Service {
	return &service{
		db:        database,
		repo:      repo,
		wallets:   wallets,
		jwtSecret: jwtSecret,
	}
}

// Register creates the user and its wallet in one transaction, so no user
// ever exists without a wallet.
func (s *service) Register(ctx context.Context, req RegisterRequest) (*LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := s.repo.EmailExists(ctx, s.db, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	u := &User{
		Username:     req.Username,
		Email:        email,
		PasswordHash: hash,
		IsCreator:    req.IsCreator,
	}

	err = db.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := s.repo.Create(ctx, tx, u); err != nil {
			return err
		}
		_, err := s.wallets.Provision(ctx, tx, u.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info("user registered", "user_id", u.ID, "is_creator", u.IsCreator)
	return s.issue(u)
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	u, err := s.repo.FindByEmail(ctx, s.db, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}

	return s.issue(u)
}

func (s *service) GetByID(ctx context.Context, userID int) (*User, error) {
	return s.repo.FindByID(ctx, s.db, userID)
}

func (s *service) RefreshToken(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	claims, err := auth.ParseRefreshToken(refreshToken, s.jwtSecret)
	if err != nil {
		return nil, err
	}

	u, err := s.repo.FindByID(ctx, s.db, claims.UserID)
	if err != nil {
		return nil, err
	}

	access, err := auth.GenerateAccessToken(u.ID, u.Username, auth.RoleFor(u.IsCreator), s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &RefreshResponse{AccessToken: access, User: *u}, nil
}

// PenalizeTrust commits on its own connection; the caller's transaction may
// be rolling back.
func (s *service) PenalizeTrust(ctx context.Context, userID, points int) (int, error) {
	score, err := s.repo.DecrementTrustScore(ctx, s.db, userID, points)
	if err != nil {
		return 0, err
	}
	logger.Warn("trust score penalized", "user_id", userID, "points", points, "trust_score", score)
	return score, nil
}

func (s *service) issue(u *User) (*LoginResponse, error) {
	access, refresh, err := auth.GenerateTokens(u.ID, u.Username, auth.RoleFor(u.IsCreator), s.jwtSecret)
	if err != nil {
		return nil, err
	}
	return &LoginResponse{AccessToken: access, RefreshToken: refresh, User: *u}, nil
}
