// Package ratelimiter は固定ウィンドウでクライアントごとのリクエスト頻度を制限します。
package ratelimiter

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiterは、キーごとにウィンドウ内でlimit件までのリクエストを許可します。
type RateLimiter struct {
	mu       sync.Mutex
	limit    int
	interval time.Duration
	clients  map[string]*bucket
	now      func() time.Time
}

type bucket struct {
	count     int
	windowEnd time.Time
}

// NewRateLimiterは新しいRateLimiterのインスタンスを生成します。
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:    limit,
		interval: interval,
		clients:  make(map[string]*bucket),
		now:      time.Now,
	}
}

// Allowはkeyのリクエストを1件記録します。上限に達している場合はfalseと
// ウィンドウがリセットされるまでの残り時間を返します。
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.clients[key]
	if !ok || !now.Before(b.windowEnd) {
		rl.sweep(now)
		rl.clients[key] = &bucket{count: 1, windowEnd: now.Add(rl.interval)}
		return true, 0
	}

	if b.count >= rl.limit {
		return false, b.windowEnd.Sub(now)
	}
	b.count++
	return true, 0
}

// sweepは終了したウィンドウを削除します。呼び出し側がmuを保持していること。
func (rl *RateLimiter) sweep(now time.Time) {
	for k, b := range rl.clients {
		if !now.Before(b.windowEnd) {
			delete(rl.clients, k)
		}
	}
}

// Middlewareは上限を超えたリクエストを429とRetry-Afterヘッダーで拒否します。
// keyFnでクライアントキーを決定し、空の場合はクライアントIPを使います。
func (rl *RateLimiter) Middleware(keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := ""
		if keyFn != nil {
			key = keyFn(c)
		}
		if key == "" {
			key = c.ClientIP()
		}

		ok, retryAfter := rl.Allow(c.FullPath() + "|" + key)
		if !ok {
			secs := int((retryAfter + time.Second - 1) / time.Second)
			c.Header("Retry-After", strconv.Itoa(secs))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}

// KeyByIPは未認証エンドポイントをクライアントIPでキー付けします。
func KeyByIP(c *gin.Context) string {
	return c.ClientIP()
}
