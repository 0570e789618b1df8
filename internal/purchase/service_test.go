package purchase

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"hourskill/internal/db"
	"hourskill/internal/ledger"
	"hourskill/internal/session"
	"hourskill/internal/video"
	"hourskill/internal/wallet"
	"hourskill/internal/wallet/wallettest"
)

type mockVideos struct {
	mock.Mock
}

func (m *mockVideos) GetActive(ctx context.Context, q db.Queryer, id int) (*video.Video, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*video.Video), args.Error(1)
}

func (m *mockVideos) ListActive(ctx context.Context, q db.Queryer, limit, offset int) ([]video.Video, error) {
	args := m.Called(ctx, q, limit, offset)
	return args.Get(0).([]video.Video), args.Error(1)
}

func (m *mockVideos) Create(ctx context.Context, q db.Queryer, v *video.Video) error {
	return m.Called(ctx, q, v).Error(0)
}

func (m *mockVideos) Deactivate(ctx context.Context, q db.Queryer, id, creatorID int) error {
	return m.Called(ctx, q, id, creatorID).Error(0)
}

type mockSessions struct {
	mock.Mock
}

func (m *mockSessions) GetOrCreate(ctx context.Context, q db.Queryer, userID, videoID int) (*session.WatchSession, error) {
	args := m.Called(ctx, q, userID, videoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.WatchSession), args.Error(1)
}

func (m *mockSessions) GetOrCreateForUpdate(ctx context.Context, q db.Queryer, userID, videoID int) (*session.WatchSession, error) {
	args := m.Called(ctx, q, userID, videoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.WatchSession), args.Error(1)
}

func (m *mockSessions) MarkUnlocked(ctx context.Context, q db.Queryer, id int) error {
	return m.Called(ctx, q, id).Error(0)
}

func (m *mockSessions) Ping(ctx context.Context, q db.Queryer, id, userID, step int, at time.Time) (int, error) {
	args := m.Called(ctx, q, id, userID, step, at)
	return args.Int(0), args.Error(1)
}

type fixture struct {
	svc      Service
	videos   *mockVideos
	sessions *mockSessions
	wallets  *wallettest.Service
	sql      sqlmock.Sqlmock
}

func newFixture(t *testing.T) *fixture {
	conn, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(conn, "sqlmock")
	t.Cleanup(func() { sqlxDB.Close() })

	f := &fixture{
		videos:   new(mockVideos),
		sessions: new(mockSessions),
		wallets:  new(wallettest.Service),
		sql:      sqlMock,
	}
	f.svc = NewService(sqlxDB, f.videos, f.sessions, f.wallets)
	return f
}

func tc(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

const (
	buyerID   = 7
	creatorID = 9
	videoID   = 3
)

func paidVideo() *video.Video {
	return &video.Video{ID: videoID, CreatorID: creatorID, PriceTC: tc("3.00"), FileKey: "videos/3.mp4", IsActive: true}
}

func freeVideo() *video.Video {
	return &video.Video{ID: videoID, CreatorID: creatorID, PriceTC: decimal.Zero, FileKey: "videos/3.mp4", IsActive: true}
}

func TestUnlock_PaidCommitsTransferAndFlagTogether(t *testing.T) {
	f := newFixture(t)
	receipt := &wallet.Receipt{
		Transaction: ledger.Transaction{ID: 50, Type: ledger.TypeSpendView},
		Balances:    map[int]decimal.Decimal{buyerID: tc("2.00"), creatorID: tc("8.00")},
	}

	f.videos.On("GetActive", mock.Anything, mock.Anything, videoID).Return(paidVideo(), nil)
	f.sql.ExpectBegin()
	f.sessions.On("GetOrCreateForUpdate", mock.Anything, mock.AnythingOfType("*sqlx.Tx"), buyerID, videoID).
		Return(&session.WatchSession{ID: 21, UserID: buyerID, VideoID: videoID}, nil)
	f.wallets.On("TransferTx", mock.Anything, mock.AnythingOfType("*sqlx.Tx"), buyerID, creatorID, wallettest.Amount("3"), ledger.TypeSpendView, mock.MatchedBy(func(id *int) bool {
		return id != nil && *id == videoID
	})).Return(receipt, nil)
	f.sessions.On("MarkUnlocked", mock.Anything, mock.AnythingOfType("*sqlx.Tx"), 21).Return(nil)
	f.sql.ExpectCommit()
	f.wallets.On("Settled", mock.Anything, []*wallet.Receipt{receipt}).Return()

	res, err := f.svc.Unlock(context.Background(), buyerID, videoID)
	require.NoError(t, err)
	assert.True(t, res.Unlocked)
	require.NotNil(t, res.RemainingTC)
	assert.True(t, res.RemainingTC.Equal(tc("2")))

	require.NoError(t, f.sql.ExpectationsWereMet())
	f.sessions.AssertExpectations(t)
	f.wallets.AssertExpectations(t)
}

func TestUnlock_AlreadyUnlocked(t *testing.T) {
	f := newFixture(t)

	f.videos.On("GetActive", mock.Anything, mock.Anything, videoID).Return(paidVideo(), nil)
	f.sql.ExpectBegin()
	f.sessions.On("GetOrCreateForUpdate", mock.Anything, mock.Anything, buyerID, videoID).
		Return(&session.WatchSession{ID: 21, IsUnlocked: true}, nil)
	f.sql.ExpectRollback()

	_, err := f.svc.Unlock(context.Background(), buyerID, videoID)
	assert.ErrorIs(t, err, ErrAlreadyUnlocked)

	require.NoError(t, f.sql.ExpectationsWereMet())
	f.wallets.AssertNotCalled(t, "TransferTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.wallets.AssertNotCalled(t, "Settled", mock.Anything, mock.Anything)
	f.sessions.AssertNotCalled(t, "MarkUnlocked", mock.Anything, mock.Anything, mock.Anything)
}

func TestUnlock_InsufficientFundsLeavesSessionLocked(t *testing.T) {
	f := newFixture(t)

	f.videos.On("GetActive", mock.Anything, mock.Anything, videoID).Return(paidVideo(), nil)
	f.sql.ExpectBegin()
	f.sessions.On("GetOrCreateForUpdate", mock.Anything, mock.Anything, buyerID, videoID).
		Return(&session.WatchSession{ID: 21}, nil)
	f.wallets.On("TransferTx", mock.Anything, mock.Anything, buyerID, creatorID, mock.Anything, ledger.TypeSpendView, mock.Anything).
		Return(nil, wallet.ErrInsufficientFunds)
	f.sql.ExpectRollback()

	_, err := f.svc.Unlock(context.Background(), buyerID, videoID)
	assert.ErrorIs(t, err, wallet.ErrInsufficientFunds)

	require.NoError(t, f.sql.ExpectationsWereMet())
	f.sessions.AssertNotCalled(t, "MarkUnlocked", mock.Anything, mock.Anything, mock.Anything)
	f.wallets.AssertNotCalled(t, "Settled", mock.Anything, mock.Anything)
}

func TestUnlock_FreeVideoSkipsWallet(t *testing.T) {
	f := newFixture(t)

	f.videos.On("GetActive", mock.Anything, mock.Anything, videoID).Return(freeVideo(), nil)
	f.sql.ExpectBegin()
	f.sessions.On("GetOrCreateForUpdate", mock.Anything, mock.Anything, buyerID, videoID).
		Return(&session.WatchSession{ID: 21}, nil)
	f.sessions.On("MarkUnlocked", mock.Anything, mock.Anything, 21).Return(nil)
	f.sql.ExpectCommit()
	f.wallets.On("GetBalance", mock.Anything, buyerID).Return(&wallet.Balance{TC: tc("5.00")}, nil)

	res, err := f.svc.Unlock(context.Background(), buyerID, videoID)
	require.NoError(t, err)
	assert.True(t, res.Unlocked)
	assert.True(t, res.RemainingTC.Equal(tc("5")))
	f.wallets.AssertNotCalled(t, "TransferTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUnlock_CreatorOwnVideoSkipsPayment(t *testing.T) {
	f := newFixture(t)

	f.videos.On("GetActive", mock.Anything, mock.Anything, videoID).Return(paidVideo(), nil)
	f.sql.ExpectBegin()
	f.sessions.On("GetOrCreateForUpdate", mock.Anything, mock.Anything, creatorID, videoID).
		Return(&session.WatchSession{ID: 30}, nil)
	f.sessions.On("MarkUnlocked", mock.Anything, mock.Anything, 30).Return(nil)
	f.sql.ExpectCommit()
	f.wallets.On("GetBalance", mock.Anything, creatorID).Return(nil, wallet.ErrWalletNotFound)

	res, err := f.svc.Unlock(context.Background(), creatorID, videoID)
	require.NoError(t, err)
	assert.True(t, res.Unlocked)
	assert.Nil(t, res.RemainingTC)
	f.wallets.AssertNotCalled(t, "TransferTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUnlock_VideoNotFound(t *testing.T) {
	f := newFixture(t)
	f.videos.On("GetActive", mock.Anything, mock.Anything, videoID).Return(nil, video.ErrVideoNotFound)

	_, err := f.svc.Unlock(context.Background(), buyerID, videoID)
	assert.ErrorIs(t, err, video.ErrVideoNotFound)
	require.NoError(t, f.sql.ExpectationsWereMet())
}

func TestDetail_FreeVideoAutoUnlocks(t *testing.T) {
	f := newFixture(t)

	f.videos.On("GetActive", mock.Anything, mock.Anything, videoID).Return(freeVideo(), nil)
	f.sessions.On("GetOrCreate", mock.Anything, mock.Anything, buyerID, videoID).
		Return(&session.WatchSession{ID: 21}, nil)
	f.sessions.On("MarkUnlocked", mock.Anything, mock.Anything, 21).Return(nil)

	d, err := f.svc.Detail(context.Background(), buyerID, videoID)
	require.NoError(t, err)
	assert.True(t, d.Unlocked)
	assert.Equal(t, "videos/3.mp4", d.FileKey)
	assert.Empty(t, f.wallets.Calls)
}

func TestDetail_PaidLockedHidesFileKey(t *testing.T) {
	f := newFixture(t)

	f.videos.On("GetActive", mock.Anything, mock.Anything, videoID).Return(paidVideo(), nil)
	f.sessions.On("GetOrCreate", mock.Anything, mock.Anything, buyerID, videoID).
		Return(&session.WatchSession{ID: 21, WatchedSeconds: 20}, nil)

	d, err := f.svc.Detail(context.Background(), buyerID, videoID)
	require.NoError(t, err)
	assert.False(t, d.Unlocked)
	assert.Empty(t, d.FileKey)
	assert.Equal(t, 20, d.WatchedSeconds)
	f.sessions.AssertNotCalled(t, "MarkUnlocked", mock.Anything, mock.Anything, mock.Anything)
}

func TestDetail_UnlockedShowsFileKey(t *testing.T) {
	f := newFixture(t)

	f.videos.On("GetActive", mock.Anything, mock.Anything, videoID).Return(paidVideo(), nil)
	f.sessions.On("GetOrCreate", mock.Anything, mock.Anything, buyerID, videoID).
		Return(&session.WatchSession{ID: 21, IsUnlocked: true}, nil)

	d, err := f.svc.Detail(context.Background(), buyerID, videoID)
	require.NoError(t, err)
	assert.Equal(t, "videos/3.mp4", d.FileKey)
}
