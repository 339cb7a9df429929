package cart

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// Redis is the production Carts implementation. Each cart is a redis hash
// keyed by session and store id; entries expire with the session TTL so
// abandoned carts age out on their own.
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedis connects to redis and verifies the connection.
func NewRedis(addr, password string, db int, ttl time.Duration) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Redis{rdb: rdb, ttl: ttl}, nil
}

// Close closes the redis connection.
func (r *Redis) Close() error {
	return r.rdb.Close()
}

func cartKey(sessionID string, storeID int64) string {
	return fmt.Sprintf("cart:%s:store:%d", sessionID, storeID)
}

// Get returns the cart contents, empty map when no cart exists.
func (r *Redis) Get(ctx context.Context, sessionID string, storeID int64) (map[int64]int, error) {
	raw, err := r.rdb.HGetAll(ctx, cartKey(sessionID, storeID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}

	out := make(map[int64]int, len(raw))
	for field, value := range raw {
		productID, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed cart field %q: %w", field, err)
		}
		qty, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("malformed cart quantity %q: %w", value, err)
		}
		out[productID] = qty
	}
	return out, nil
}

// Add accumulates qty onto the product's entry and refreshes the TTL.
func (r *Redis) Add(ctx context.Context, sessionID string, storeID int64, productID int64, qty int) (int, error) {
	key := cartKey(sessionID, storeID)

	pipe := r.rdb.TxPipeline()
	incr := pipe.HIncrBy(ctx, key, strconv.FormatInt(productID, 10), int64(qty))
	pipe.Expire(ctx, key, r.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to add to cart: %w", err)
	}
	return int(incr.Val()), nil
}

// SetQuantity overwrites the product's entry and refreshes the TTL.
func (r *Redis) SetQuantity(ctx context.Context, sessionID string, storeID int64, productID int64, qty int) error {
	key := cartKey(sessionID, storeID)

	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, key, strconv.FormatInt(productID, 10), qty)
	pipe.Expire(ctx, key, r.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set cart quantity: %w", err)
	}
	return nil
}

// Clear drops the cart.
func (r *Redis) Clear(ctx context.Context, sessionID string, storeID int64) error {
	if err := r.rdb.Del(ctx, cartKey(sessionID, storeID)).Err(); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
