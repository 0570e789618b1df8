package wallet

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hourskill/internal/db"
	"hourskill/internal/ledger"
)

// memRedis keeps string keys in a map and runs fillScript natively. Commands
// the cache does not use fall through to the nil embedded Cmdable.
type memRedis struct {
	redis.Cmdable

	mu   sync.Mutex
	data map[string]string
}

func newMemRedis() *memRedis {
	return &memRedis{data: make(map[string]string)}
}

func (m *memRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()

	cmd := redis.NewStringCmd(ctx, "get", key)
	if v, ok := m.data[key]; ok {
		cmd.SetVal(v)
	} else {
		cmd.SetErr(redis.Nil)
	}
	return cmd
}

func (m *memRedis) Incr(ctx context.Context, key string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, _ := strconv.ParseInt(m.data[key], 10, 64)
	n++
	m.data[key] = strconv.FormatInt(n, 10)

	cmd := redis.NewIntCmd(ctx, "incr", key)
	cmd.SetVal(n)
	return cmd
}

func (m *memRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for _, k := range keys {
		if _, ok := m.data[k]; ok {
			delete(m.data, k)
			n++
		}
	}
	cmd := redis.NewIntCmd(ctx, "del")
	cmd.SetVal(n)
	return cmd
}

func (m *memRedis) EvalSha(ctx context.Context, sha string, keys []string, args ...interface{}) *redis.Cmd {
	m.mu.Lock()
	defer m.mu.Unlock()

	cmd := redis.NewCmd(ctx, "evalsha", sha)
	if sha != fillScript.Hash() {
		cmd.SetErr(errors.New("NOSCRIPT No matching script"))
		return cmd
	}

	gen, ok := m.data[keys[1]]
	if !ok {
		gen = "0"
	}
	if gen != args[0].(string) {
		cmd.SetVal(int64(0))
		return cmd
	}
	m.data[keys[0]] = args[1].(string)
	cmd.SetVal(int64(1))
	return cmd
}

// hookedRepository runs afterRead once the wallet row has been loaded.
type hookedRepository struct {
	Repository
	afterRead func()
}

func (r *hookedRepository) GetByUserID(ctx context.Context, q db.Queryer, userID int) (*Wallet, error) {
	w, err := r.Repository.GetByUserID(ctx, q, userID)
	if r.afterRead != nil {
		hook := r.afterRead
		r.afterRead = nil
		hook()
	}
	return w, err
}

func TestGetBalance_FillAfterInvalidationIsDropped(t *testing.T) {
	rdb := newMemRedis()
	svc, mock := newTestService(t, NewBalanceCache(rdb), nil)

	readQuery := regexp.QuoteMeta("SELECT id, user_id, tc_balance, fiat_balance, updated_at FROM wallets WHERE user_id = $1")
	mock.ExpectQuery(readQuery).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(walletColumns).AddRow(4, 7, "5.00", "0", fixedNow))
	mock.ExpectQuery(readQuery).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(walletColumns).AddRow(4, 7, "2.00", "0", fixedNow))

	// A debit commits between the reader's row load and its cache fill.
	svc.repo = &hookedRepository{
		Repository: svc.repo,
		afterRead: func() {
			svc.Settled(context.Background(), &Receipt{
				Transaction: ledger.Transaction{ID: 11, Type: ledger.TypeSpendView},
				Balances:    map[int]decimal.Decimal{7: tc("2.00")},
			})
		},
	}

	first, err := svc.GetBalance(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, first.TC.Equal(tc("5.00")))

	_, err = svc.cache.Get(context.Background(), 7)
	assert.ErrorIs(t, err, ErrCacheMiss)

	second, err := svc.GetBalance(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, second.TC.Equal(tc("2.00")), "got %s", second.TC)

	cached, err := svc.cache.Get(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, cached.TC.Equal(tc("2.00")))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBalanceCache_FillWithCurrentGeneration(t *testing.T) {
	rdb := newMemRedis()
	cache := NewBalanceCache(rdb)
	ctx := context.Background()

	gen, err := cache.Generation(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(0), gen)

	ok, err := cache.Fill(ctx, 3, gen, &Balance{TC: tc("1.5"), Fiat: decimal.Zero, UpdatedAt: fixedNow})
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, cache.Delete(ctx, 3))

	gen, err = cache.Generation(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(1), gen)

	ok, err = cache.Fill(ctx, 3, 0, &Balance{TC: tc("1.5"), Fiat: decimal.Zero, UpdatedAt: fixedNow})
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = cache.Get(ctx, 3)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestBalanceCache_NilIsAlwaysMiss(t *testing.T) {
	var cache *BalanceCache
	ctx := context.Background()

	_, err := cache.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrCacheMiss)

	ok, err := cache.Fill(ctx, 1, 0, &Balance{})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, cache.Delete(ctx, 1))
}
