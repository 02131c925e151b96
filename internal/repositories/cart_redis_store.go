package repositories

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"sportshop/internal/models"

	"github.com/redis/go-redis/v9"
)

// decrementScript lowers a hash field by one and drops it at zero, in one
// round trip so no reader sees a half-applied change. ARGV[2] is the TTL in
// milliseconds to refresh; 0 leaves the key without expiry.
var decrementScript = redis.NewScript(`
if redis.call('HEXISTS', KEYS[1], ARGV[1]) == 0 then
  return 0
end
local q = redis.call('HINCRBY', KEYS[1], ARGV[1], -1)
if q <= 0 then
  redis.call('HDEL', KEYS[1], ARGV[1])
end
local ttl = tonumber(ARGV[2])
if ttl > 0 and redis.call('EXISTS', KEYS[1]) == 1 then
  redis.call('PEXPIRE', KEYS[1], ttl)
end
return q
`)

// RedisCartStore keeps each cart in a Redis hash of productID -> quantity.
// Guest carts expire after guestTTL of inactivity; user carts never expire.
type RedisCartStore struct {
	client   *redis.Client
	guestTTL time.Duration
}

// NewRedisCartStore creates a new instance of RedisCartStore.
func NewRedisCartStore(client *redis.Client, guestTTL time.Duration) *RedisCartStore {
	return &RedisCartStore{client: client, guestTTL: guestTTL}
}

func cartKey(owner string) string {
	return "cart:" + owner
}

func (s *RedisCartStore) Lines(ctx context.Context, owner string) ([]models.CartLine, error) {
	raw, err := s.client.HGetAll(ctx, cartKey(owner)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load cart %s: %w", owner, err)
	}

	lines := make([]models.CartLine, 0, len(raw))
	for field, value := range raw {
		pid, err := strconv.ParseUint(field, 10, 64)
		if err != nil {
			continue
		}
		qty, err := strconv.Atoi(value)
		if err != nil || qty < 1 {
			continue
		}
		lines = append(lines, models.CartLine{Owner: owner, ProductID: uint(pid), Quantity: qty})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })
	return lines, nil
}

func (s *RedisCartStore) Add(ctx context.Context, owner string, productID uint, delta int) error {
	key := cartKey(owner)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, key, field(productID), int64(delta))
		s.touch(ctx, pipe, owner, key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to add product %d to cart %s: %w", productID, owner, err)
	}
	return nil
}

func (s *RedisCartStore) Decrement(ctx context.Context, owner string, productID uint) error {
	err := decrementScript.Run(ctx, s.client, []string{cartKey(owner)}, field(productID), s.ttlFor(owner).Milliseconds()).Err()
	if err != nil {
		return fmt.Errorf("failed to decrement product %d in cart %s: %w", productID, owner, err)
	}
	return nil
}

func (s *RedisCartStore) Remove(ctx context.Context, owner string, productID uint) error {
	if err := s.client.HDel(ctx, cartKey(owner), field(productID)).Err(); err != nil {
		return fmt.Errorf("failed to remove product %d from cart %s: %w", productID, owner, err)
	}
	return nil
}

func (s *RedisCartStore) Clear(ctx context.Context, owner string) error {
	if err := s.client.Del(ctx, cartKey(owner)).Err(); err != nil {
		return fmt.Errorf("failed to clear cart %s: %w", owner, err)
	}
	return nil
}

func (s *RedisCartStore) touch(ctx context.Context, pipe redis.Pipeliner, owner, key string) {
	if ttl := s.ttlFor(owner); ttl > 0 {
		pipe.Expire(ctx, key, ttl)
	}
}

// ttlFor is the expiry refreshed on every write to owner's cart; 0 for user
// carts.
func (s *RedisCartStore) ttlFor(owner string) time.Duration {
	if isGuestOwner(owner) && s.guestTTL > 0 {
		return s.guestTTL
	}
	return 0
}

func field(productID uint) string {
	return strconv.FormatUint(uint64(productID), 10)
}

func isGuestOwner(owner string) bool {
	return strings.HasPrefix(owner, "guest:")
}
