package user

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userRows = []string{"id", "username", "email", "password_hash", "is_creator", "is_vip", "vip_expiry", "trust_score", "created_at"}

func setupUserMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(conn, "sqlmock")
	t.Cleanup(func() { sqlxDB.Close() })
	return sqlxDB, mock
}

func TestCreateAndFindUser(t *testing.T) {
	sqlxDB, mock := setupUserMock(t)
	repo := NewRepository()
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users (username, email, password_hash, is_creator) VALUES ($1, $2, $3, $4) RETURNING id, username")).
		WithArgs("alice", "a@example.com", "hash", true).
		WillReturnRows(sqlmock.NewRows(userRows).AddRow(1, "alice", "a@example.com", "hash", true, false, nil, 100, now))

	u := &User{Username: "alice", Email: "a@example.com", PasswordHash: "hash", IsCreator: true}
	require.NoError(t, repo.Create(context.Background(), sqlxDB, u))
	assert.Equal(t, 1, u.ID)
	assert.Equal(t, DefaultTrustScore, u.TrustScore)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).
		WithArgs("a@example.com").
		WillReturnRows(sqlmock.NewRows(userRows).AddRow(1, "alice", "a@example.com", "hash", true, false, nil, 100, now))

	found, err := repo.FindByEmail(context.Background(), sqlxDB, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice", found.Username)
	assert.Nil(t, found.VIPExpiry)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)")).
		WithArgs("a@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.EmailExists(context.Background(), sqlxDB, "a@example.com")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_UniqueViolation(t *testing.T) {
	sqlxDB, mock := setupUserMock(t)
	repo := NewRepository()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), sqlxDB, &User{Username: "alice", Email: "a@example.com"})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestFindByID_NotFound(t *testing.T) {
	sqlxDB, mock := setupUserMock(t)
	repo := NewRepository()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
		WithArgs(99).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), sqlxDB, 99)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDecrementTrustScore(t *testing.T) {
	sqlxDB, mock := setupUserMock(t)
	repo := NewRepository()

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE users SET trust_score = trust_score - $1 WHERE id = $2 RETURNING trust_score")).
		WithArgs(5, 7).
		WillReturnRows(sqlmock.NewRows([]string{"trust_score"}).AddRow(95))

	score, err := repo.DecrementTrustScore(context.Background(), sqlxDB, 7, 5)
	require.NoError(t, err)
	assert.Equal(t, 95, score)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE users SET trust_score")).
		WithArgs(5, 8).
		WillReturnError(sql.ErrNoRows)

	_, err = repo.DecrementTrustScore(context.Background(), sqlxDB, 8, 5)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
