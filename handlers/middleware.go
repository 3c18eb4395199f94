package handlers

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"selfcheck/config"
	"selfcheck/logging"
	"selfcheck/sessions"
)

// RequestLogger tags each request with an id and logs its outcome.
func RequestLogger(log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		reqID := c.GetHeader("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set(ctxRequestID, reqID)
		c.Header("X-Request-ID", reqID)

		c.Next()

		log.Info(c.Request.Context(), "request",
			"request_id", reqID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
		)
	}
}

// SessionGate rejects requests without a live session and stores the
// session's user id on the context for the handlers behind it.
func SessionGate(store sessions.Store, log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(sessions.CookieName)
		if err != nil || token == "" {
			rejectUnauthenticated(c)
			return
		}

		session, err := store.Get(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, sessions.ErrNotFound) && !errors.Is(err, sessions.ErrExpired) {
				log.Error(c.Request.Context(), "session lookup failed", "request_id", c.GetString(ctxRequestID), "error", err)
			}
			rejectUnauthenticated(c)
			return
		}

		userID, err := uuid.Parse(session.UserID)
		if err != nil {
			log.Warn(c.Request.Context(), "session with malformed user id", "request_id", c.GetString(ctxRequestID))
			rejectUnauthenticated(c)
			return
		}

		if err := store.Touch(c.Request.Context(), token); err != nil {
			log.Warn(c.Request.Context(), "could not update session activity", "error", err)
		}

		c.Set(ctxUserID, userID)
		c.Set(ctxSessionToken, token)
		c.Next()
	}
}

func rejectUnauthenticated(c *gin.Context) {
	if isFormRequest(c) {
		redirectWithError(c, "/index.html", codeSessionError)
		c.Abort()
		return
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "unauthorized"})
}

var tokenBucket = redis.NewScript(`
	local key = KEYS[1]
	local now_ms = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local interval_ms = tonumber(ARGV[3])
	local ttl_seconds = tonumber(ARGV[4])

	local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
	local tokens = tonumber(state[1])
	local last_refill = tonumber(state[2])

	if tokens == nil or last_refill == nil then
		tokens = capacity
		last_refill = now_ms
	end

	local elapsed = math.max(0, now_ms - last_refill)
	local intervals = math.floor(elapsed / interval_ms)
	if intervals > 0 then
		tokens = math.min(capacity, tokens + intervals)
		last_refill = last_refill + (intervals * interval_ms)
	end

	local allowed = 0
	local retry_after_ms = 0
	if tokens > 0 then
		allowed = 1
		tokens = tokens - 1
	else
		retry_after_ms = math.max(0, interval_ms - (now_ms - last_refill))
	end

	redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
	redis.call('EXPIRE', key, ttl_seconds)

	return { allowed, tokens, retry_after_ms }
`)

// RateLimit is a per-client token bucket kept in Redis. The client is
// c.ClientIP(), which only honors forwarding headers from trusted proxies.
// When Redis is unavailable requests are let through.
func RateLimit(cfg config.RateLimitConfig, rdb *redis.Client, log logging.Logger) gin.HandlerFunc {
	if !cfg.Enabled || rdb == nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		key := strings.Join([]string{cfg.Prefix, "ip", c.ClientIP(), "route", c.FullPath()}, ":")

		vals, err := tokenBucket.Run(c.Request.Context(), rdb, []string{key},
			time.Now().UnixMilli(),
			cfg.Capacity,
			cfg.RefillInterval.Milliseconds(),
			int64(cfg.TTL/time.Second),
		).Int64Slice()
		if err != nil || len(vals) != 3 {
			log.Warn(c.Request.Context(), "rate limiter unavailable", "key", key, "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(vals[1], 10))

		if vals[0] != 1 {
			secs := int(math.Ceil(float64(vals[2]) / 1000.0))
			c.Header("Retry-After", strconv.Itoa(secs))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"message": fmt.Sprintf("too many requests, retry in %d seconds", secs),
			})
			return
		}
		c.Next()
	}
}
