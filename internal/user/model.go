package user

import "time"

// DefaultTrustScore is assigned on signup. Each throttled ad claim costs
// points and the score has no floor.
const DefaultTrustScore = 100

type User struct {
	ID           int        `db:"id" json:"id"`
	Username     string     `db:"username" json:"username"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	IsCreator    bool       `db:"is_creator" json:"is_creator"`
	IsVIP        bool       `db:"is_vip" json:"is_vip"`
	VIPExpiry    *time.Time `db:"vip_expiry" json:"vip_expiry,omitempty"`
	TrustScore   int        `db:"trust_score" json:"trust_score"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

type RegisterRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=150,alphanum"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	IsCreator bool   `json:"is_creator"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

type RefreshResponse struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}
