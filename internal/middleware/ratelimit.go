package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// RateLimit enforces a fixed-window request ceiling per client IP using
// Redis. Fails open when the cache is unavailable.
func RateLimit(cache *redis.Client, max int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cache == nil || max <= 0 {
			return c.Next()
		}
		key := fmt.Sprintf("rl:ip:%s", c.IP())
		cnt, err := cache.Incr(c.UserContext(), key).Result()
		if err != nil {
			return c.Next()
		}
		if cnt == 1 {
			cache.Expire(c.UserContext(), key, window)
		}
		if cnt > int64(max) {
			return fiber.NewError(http.StatusTooManyRequests, "Too many requests, try again later")
		}
		return c.Next()
	}
}

// OTPRateLimit limits OTP issuance per phone (or IP when the body has no
// phone) to slow down enumeration and SMS abuse.
func OTPRateLimit(cache *redis.Client, maxPerMin int) fiber.Handler {
	if maxPerMin <= 0 {
		maxPerMin = 5
	}
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next()
		}
		var req struct {
			PhoneNumber  string `json:"phoneNumber"`
			EmailOrPhone string `json:"emailOrPhone"`
		}
		_ = c.BodyParser(&req)
		target := strings.TrimSpace(req.PhoneNumber)
		if target == "" {
			target = strings.TrimSpace(req.EmailOrPhone)
		}
		if target == "" {
			target = c.IP()
		}
		key := "rl:otp:" + target
		cnt, err := cache.Incr(c.UserContext(), key).Result()
		if err != nil {
			return c.Next() // fail-open on cache errors
		}
		if cnt == 1 {
			cache.Expire(c.UserContext(), key, time.Minute)
		}
		if cnt > int64(maxPerMin) {
			return fiber.NewError(http.StatusTooManyRequests, "Too many OTP requests, try again later")
		}
		return c.Next()
	}
}
