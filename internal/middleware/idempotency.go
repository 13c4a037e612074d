package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/bsm/redislock"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	// ReplayedHeader 标记响应来自缓存
	ReplayedHeader = "Idempotent-Replayed"

	idempotencyLockTTL = 30 * time.Second
	maxIdempotencyKey  = 128
)

// Idempotency 基于 Idempotency-Key 的写请求去重
type Idempotency struct {
	rdb    *redis.Client
	locker *redislock.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewIdempotency rdb 为 nil 时中间件直接放行
func NewIdempotency(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *Idempotency {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	i := &Idempotency{rdb: rdb, ttl: ttl, logger: logger}
	if rdb != nil {
		i.locker = redislock.New(rdb)
	}
	return i
}

type cachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

type bodyWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Handle 同 key 请求进行中返回 409，已完成的非 5xx 响应在 ttl 内原样重放
func (i *Idempotency) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if i == nil || i.rdb == nil || key == "" {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKey {
			abort(c, http.StatusBadRequest, "Idempotency-Key too long")
			return
		}

		ctx := c.Request.Context()
		scope := "idem:" + c.GetString("user_id") + ":" + c.Request.Method + ":" + c.FullPath() + ":" + key

		lock, err := i.locker.Obtain(ctx, scope+":lock", idempotencyLockTTL, nil)
		if errors.Is(err, redislock.ErrNotObtained) {
			abort(c, http.StatusConflict, "A request with this Idempotency-Key is already in progress")
			return
		}
		if err != nil {
			i.logger.Warn("idempotency lock unavailable", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}
		defer func() {
			if err := lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
				i.logger.Warn("idempotency lock release failed", zap.String("key", key), zap.Error(err))
			}
		}()

		raw, err := i.rdb.Get(ctx, scope).Bytes()
		switch {
		case err == nil:
			var cached cachedResponse
			if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
				c.Header(ReplayedHeader, "true")
				c.Data(cached.Status, cached.ContentType, cached.Body)
				c.Abort()
				return
			}
		case !errors.Is(err, redis.Nil):
			i.logger.Warn("idempotency lookup failed", zap.String("key", key), zap.Error(err))
		}

		w := &bodyWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = w
		c.Next()

		status := w.Status()
		if status >= http.StatusInternalServerError {
			return
		}
		payload, err := json.Marshal(cachedResponse{
			Status:      status,
			ContentType: w.Header().Get("Content-Type"),
			Body:        w.body.Bytes(),
		})
		if err != nil {
			return
		}
		if err := i.rdb.Set(ctx, scope, payload, i.ttl).Err(); err != nil {
			i.logger.Warn("idempotency store failed", zap.String("key", key), zap.Error(err))
		}
	}
}
