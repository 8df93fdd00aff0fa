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

// RateLimit allows limit requests per client IP in each fixed window, counted
// in Redis. A nil client disables the limit. Redis failures let the request
// through.
func RateLimit(client *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	if client == nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := "rate_limit:" + c.ClientIP()

		var (
			incr *redis.IntCmd
			ttl  *redis.DurationCmd
		)
		_, err := client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			incr = pipe.Incr(ctx, key)
			ttl = pipe.TTL(ctx, key)
			return nil
		})
		if err != nil {
			log.Printf("rate limit check failed: %v", err)
			c.Next()
			return
		}
		n := incr.Val()

		// No TTL: a new window, or an earlier EXPIRE that failed.
		if ttl.Val() < 0 {
			if err := client.Expire(ctx, key, window).Err(); err != nil {
				log.Printf("rate limit expire failed for %s: %v", key, err)
			}
		}

		count := int(n)
		remaining := limit - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if count > limit {
			retry := ttl.Val()
			if retry <= 0 {
				retry = window
			}
			c.Header("Retry-After", strconv.Itoa(int(retry.Seconds())))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": fmt.Sprintf("Too many requests. Try again in %d seconds", int(retry.Seconds())),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
