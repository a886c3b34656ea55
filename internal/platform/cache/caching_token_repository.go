// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"taskandtime_backend/internal/feature/auth/domain/entity"
	"taskandtime_backend/internal/feature/auth/usecase"
)

// CachingTokenRepository decorates a TokenRepository with Redis caching of
// per-token lookups. Writes that retire tokens bump a namespace generation
// counter and drop the affected entries. A fill that overlaps a generation
// bump removes its own entry again, so a concurrent rotation cannot leave a
// stale VALID entry behind. A stale entry can survive a failed invalidation
// for at most one TTL.
type CachingTokenRepository struct {
	inner     usecase.TokenRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.TokenRepository = (*CachingTokenRepository)(nil)

// NewCachingTokenRepository decorates a TokenRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "tokens".
// A nil rdb turns the decorator into a pass-through.
func NewCachingTokenRepository(rdb *redis.Client, ttl time.Duration, inner usecase.TokenRepository, namespace string) *CachingTokenRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "tokens"
	}
	return &CachingTokenRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// FindValidByUserID is not cached.
func (c *CachingTokenRepository) FindValidByUserID(ctx context.Context, userID uint) ([]*entity.AccessToken, error) {
	return c.inner.FindValidByUserID(ctx, userID)
}

// FindByToken checks the cache first, then falls back to the ledger.
// Misses are not cached.
func (c *CachingTokenRepository) FindByToken(ctx context.Context, raw string) (*entity.AccessToken, error) {
	if c.rdb == nil {
		return c.inner.FindByToken(ctx, raw)
	}

	key := c.tokenKey(raw)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out entity.AccessToken
		if err := json.Unmarshal(b, &out); err == nil {
			return &out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database, remembering the generation seen before the read
	gen, genErr := c.generation(ctx)
	tok, err := c.inner.FindByToken(ctx, raw)
	if err != nil {
		return nil, err
	}
	if genErr != nil {
		return tok, nil
	}

	// 3) Store in cache and index it by owner (best effort)
	b, err := json.Marshal(tok)
	if err != nil {
		return tok, nil
	}
	if err := c.rdb.Set(ctx, key, b, c.ttl).Err(); err != nil {
		return tok, nil
	}
	idx := c.userIndexKey(tok.UserID)
	_ = c.rdb.SAdd(ctx, idx, key).Err()
	_ = c.rdb.Expire(ctx, idx, c.ttl).Err()

	// 4) An invalidation ran while we were reading: the value may be stale
	if now, err := c.generation(ctx); err != nil || now != gen {
		_ = c.rdb.Del(ctx, key).Err()
	}

	return tok, nil
}

// RotateForUser delegates and then drops every cached token of the user.
func (c *CachingTokenRepository) RotateForUser(ctx context.Context, userID uint, token *entity.AccessToken) error {
	if err := c.inner.RotateForUser(ctx, userID, token); err != nil {
		return err
	}
	c.invalidateUser(ctx, userID)
	return nil
}

// RevokeAllByUserID delegates and then drops every cached token of the user.
func (c *CachingTokenRepository) RevokeAllByUserID(ctx context.Context, userID uint) (int64, error) {
	n, err := c.inner.RevokeAllByUserID(ctx, userID)
	if err != nil {
		return n, err
	}
	c.invalidateUser(ctx, userID)
	return n, nil
}

// Revoke delegates and then drops the cached entry of the token.
func (c *CachingTokenRepository) Revoke(ctx context.Context, raw string) error {
	if err := c.inner.Revoke(ctx, raw); err != nil {
		return err
	}
	if c.rdb != nil {
		_ = c.rdb.Incr(ctx, c.generationKey()).Err()
		_ = c.rdb.Del(ctx, c.tokenKey(raw)).Err()
	}
	return nil
}

// invalidateUser deletes the user's cached tokens and their index.
func (c *CachingTokenRepository) invalidateUser(ctx context.Context, userID uint) {
	if c.rdb == nil {
		return
	}
	_ = c.rdb.Incr(ctx, c.generationKey()).Err()

	idx := c.userIndexKey(userID)
	keys, err := c.rdb.SMembers(ctx, idx).Result()
	if err != nil {
		return
	}
	_ = c.rdb.Del(ctx, append(keys, idx)...).Err()
}

// generation returns the invalidation counter. An absent counter reads as 0.
func (c *CachingTokenRepository) generation(ctx context.Context) (int64, error) {
	n, err := c.rdb.Get(ctx, c.generationKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

func (c *CachingTokenRepository) generationKey() string {
	return c.namespace + ":gen"
}

// tokenKey never embeds the raw bearer token.
func (c *CachingTokenRepository) tokenKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s:%s", c.namespace, hex.EncodeToString(sum[:]))
}

func (c *CachingTokenRepository) userIndexKey(userID uint) string {
	return fmt.Sprintf("%s:user:%d", c.namespace, userID)
}
