package video

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"hourskill/internal/logger"
)

var ErrInvalidPrice = errors.New("price must be non-negative with at most 2 decimal places")

// maxPrice is the largest value NUMERIC(8,2) holds.
var maxPrice = decimal.RequireFromString("999999.99")

type Service interface {
	Get(ctx context.Context, id int) (*Video, error)
	List(ctx context.Context, limit, offset int) ([]Video, error)
	Create(ctx context.Context, creatorID int, req CreateVideoRequest) (*Video, error)
	Deactivate(ctx context.Context, id, creatorID int) error
}

type service struct {
	db   *sqlx.DB
	repo Repository
}

func NewService(database *sqlx.DB, repo Repository) Service {
	return &service{db: database, repo: repo}
}

func (s *service) Get(ctx context.Context, id int) (*Video, error) {
	return s.repo.GetActive(ctx, s.db, id)
}

func (s *service) List(ctx context.Context, limit, offset int) ([]Video, error) {
	return s.repo.ListActive(ctx, s.db, limit, offset)
}

func (s *service) Create(ctx context.Context, creatorID int, req CreateVideoRequest) (*Video, error) {
	price, err := ParsePrice(req.PriceTC)
	if err != nil {
		return nil, err
	}

	v := &Video{
		Title:           req.Title,
		Description:     req.Description,
		CreatorID:       creatorID,
		FileKey:         req.FileKey,
		DurationSeconds: req.DurationSeconds,
		PriceTC:         price,
	}
	if err := s.repo.Create(ctx, s.db, v); err != nil {
		return nil, err
	}

	logger.Info("video published", "video_id", v.ID, "creator_id", creatorID, "price_tc", v.PriceTC.StringFixed(2))
	return v, nil
}

func (s *service) Deactivate(ctx context.Context, id, creatorID int) error {
	if err := s.repo.Deactivate(ctx, s.db, id, creatorID); err != nil {
		return err
	}
	logger.Info("video deactivated", "video_id", id, "creator_id", creatorID)
	return nil
}

// ParsePrice accepts a TC price such as "0", "3" or "2.50".
func ParsePrice(s string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidPrice
	}
	if price.IsNegative() || !price.Round(2).Equal(price) || price.GreaterThan(maxPrice) {
		return decimal.Zero, ErrInvalidPrice
	}
	return price, nil
}
