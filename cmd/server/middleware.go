package main

import (
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	limiter "github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	smemory "github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"

	"codeberg.org/parley/server/internal/logger"
)

// per-IP request ceiling in front of the whole API; the per-session message
// quota is enforced separately inside the turn pipeline
const apiRateFormat = "120-M"

// allows the configured frontend origins
func CORSMiddleware() gin.HandlerFunc {
	origins := []string{"http://localhost:5173"}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		origins = strings.Split(env, ",")
	}

	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

// returns a redis-backed per-IP rate limit middleware. Falls back to
// an in-memory store when the shared store cannot be set up, so a redis
// hiccup at boot never disables the gate entirely.
func RateLimitMiddleware(client *redis.Client) gin.HandlerFunc {
	rate, err := limiter.NewRateFromFormatted(apiRateFormat)
	if err != nil {
		logger.Fatal("invalid rate limit format", "format", apiRateFormat)
	}

	store, err := sredis.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix: "parley_rate",
	})
	if err != nil {
		logger.ErrorErr(err, "redis rate limit store unavailable, using in-memory store")
		return mgin.NewMiddleware(limiter.New(smemory.NewStore(), rate))
	}

	return mgin.NewMiddleware(limiter.New(store, rate))
}
