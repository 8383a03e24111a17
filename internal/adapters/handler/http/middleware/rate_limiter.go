package middleware

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimit is a fixed window: at most Limit requests per client IP within
// each Window.
type RateLimit struct {
	Limit  int
	Window time.Duration
}

// fixedWindow increments the counter and arms its expiry on the first hit in
// one round trip, so a key is never left without a TTL.
var fixedWindow = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {n, redis.call("PTTL", KEYS[1])}
`)

func rateLimitKey(clientIP string) string {
	return fmt.Sprintf("rate_limit:%s", clientIP)
}

// RateLimiterMiddleware counts requests in redis. When redis is unavailable
// requests pass through unthrottled.
func RateLimiterMiddleware(rdb *redis.Client, rl RateLimit) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := rateLimitKey(c.ClientIP())

		res, err := fixedWindow.Run(ctx, rdb, []string{key}, rl.Window.Milliseconds()).Int64Slice()
		if err != nil || len(res) != 2 {
			log.Printf("[RATELIMIT] Redis error, request not throttled: %v", err)
			c.Next()
			return
		}

		count := res[0]
		remaining := time.Duration(res[1]) * time.Millisecond
		if remaining <= 0 {
			remaining = rl.Window
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.Limit))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, int64(rl.Limit)-count), 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(remaining).Unix(), 10))

		if count > int64(rl.Limit) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"status":     "error",
				"message":    "Too many requests. Slow down!",
				"retry_in_s": int(remaining.Seconds()),
			})
			return
		}

		c.Next()
	}
}
