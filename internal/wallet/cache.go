package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const balanceCacheTTL = 5 * time.Minute

var ErrCacheMiss = errors.New("balance not cached")

// fillScript writes KEYS[1] only while the generation in KEYS[2] still
// matches ARGV[1]. A missing generation counts as "0".
var fillScript = redis.NewScript(`
local gen = redis.call('GET', KEYS[2]) or '0'
if gen ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

// BalanceCache is a read-through cache for get_balance. Every invalidation
// bumps a per-wallet generation, and a fill is dropped when the generation
// moved between the reader's snapshot and its write. A nil *BalanceCache is
// valid and always misses.
type BalanceCache struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewBalanceCache(client redis.Cmdable) *BalanceCache {
	return &BalanceCache{
		client: client,
		prefix: "wallet:",
		ttl:    balanceCacheTTL,
	}
}

func (c *BalanceCache) Get(ctx context.Context, userID int) (*Balance, error) {
	if c == nil {
		return nil, ErrCacheMiss
	}

	raw, err := c.client.Get(ctx, c.key(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}

	var b Balance
	if err := json.Unmarshal([]byte(raw), &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// Generation returns the invalidation counter for a wallet. Read it before
// loading the row that will be passed to Fill.
func (c *BalanceCache) Generation(ctx context.Context, userID int) (int64, error) {
	if c == nil {
		return 0, nil
	}

	gen, err := c.client.Get(ctx, c.genKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Fill caches b unless the wallet was invalidated after gen was read. It
// reports whether the entry was written.
func (c *BalanceCache) Fill(ctx context.Context, userID int, gen int64, b *Balance) (bool, error) {
	if c == nil {
		return false, nil
	}

	data, err := json.Marshal(b)
	if err != nil {
		return false, err
	}

	n, err := fillScript.Run(ctx, c.client,
		[]string{c.key(userID), c.genKey(userID)},
		strconv.FormatInt(gen, 10), string(data), strconv.FormatInt(c.ttl.Milliseconds(), 10),
	).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Delete bumps the generation before dropping the entry, so a fill that
// started earlier can no longer land.
func (c *BalanceCache) Delete(ctx context.Context, userIDs ...int) error {
	if c == nil || len(userIDs) == 0 {
		return nil
	}

	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		if err := c.client.Incr(ctx, c.genKey(id)).Err(); err != nil {
			return err
		}
		keys = append(keys, c.key(id))
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *BalanceCache) key(userID int) string {
	return c.prefix + strconv.Itoa(userID) + ":balance"
}

func (c *BalanceCache) genKey(userID int) string {
	return c.prefix + strconv.Itoa(userID) + ":gen"
}
