// Package ratelimit はルート単位のリクエスト回数制限を提供します。
// 制限はミドルウェアとして差し込む方針で、業務ロジック側はカウンタを知りません。
package ratelimit

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"

	"github.com/yourusername/community-board/internal/auth"
)

// window は固定窓の長さです。
const window = time.Minute

var errTooManyRequests = &auth.Error{
	Status:  http.StatusTooManyRequests,
	Code:    "TOO_MANY_REQUESTS",
	Message: "リクエスト回数の上限を超えました",
}

// Limiter はキーごとのカウンタを1つ進め、許容回数内かどうかを返します。
type Limiter interface {
	Allow(ctx context.Context, key string, limit int) (bool, error)
}

// PerMinute は指定キー（ルート名+クライアントIP）で分間回数を制限する
// ミドルウェアを返します。超過時は 429 TOO_MANY_REQUESTS を返します。
func PerMinute(limiter Limiter, route string, limit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := route + "|" + c.ClientIP()
		allowed, err := limiter.Allow(c.Request.Context(), key, limit)
		if err != nil {
			// カウンタ側の障害ではリクエストを遮断しない（フェイルオープン）
			log.Printf("rate limit check failed (key=%s): %v", key, err)
			c.Next()
			return
		}
		if !allowed {
			auth.AbortWithError(c, errTooManyRequests)
			return
		}
		c.Next()
	}
}

type windowState struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter はプロセス内メモリの固定窓カウンタです。
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*windowState
	now     func() time.Time
}

// NewMemoryLimiter は MemoryLimiter を作成します。
func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		windows: make(map[string]*windowState),
		now:     time.Now,
	}
}

// Allow はカウンタを進め、limit 回以内なら true を返します。
func (l *MemoryLimiter) Allow(_ context.Context, key string, limit int) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	state, ok := l.windows[key]
	if !ok || now.After(state.resetAt) {
		state = &windowState{resetAt: now.Add(window)}
		l.windows[key] = state
	}

	state.count++
	return state.count <= limit, nil
}

// RedisLimiter は Redis の固定窓カウンタです。複数プロセスで上限を共有できます。
type RedisLimiter struct {
	rdb *redis.Client
}

// NewRedisLimiter は RedisLimiter を作成します。
func NewRedisLimiter(rdb *redis.Client) *RedisLimiter {
	return &RedisLimiter{rdb: rdb}
}

// Allow は INCR でカウンタを進め、初回アクセス時に窓のTTLを設定します。
func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int) (bool, error) {
	redisKey := "ratelimit:" + key
	count, err := l.rdb.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := l.rdb.Expire(ctx, redisKey, window).Err(); err != nil {
			return false, err
		}
	}
	return count <= int64(limit), nil
}
