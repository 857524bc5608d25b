package utils

import (
	"expert-api/internal/logger"

	"github.com/redis/go-redis/v9"
)

// OpenRedisFromEnv returns a client for REDIS_HOST:REDIS_PORT, or nil when
// REDIS_ENABLED=false. REDIS_DB parse failures fall back to 0.
func OpenRedisFromEnv() *redis.Client {
	if !EnvBool("REDIS_ENABLED", true) {
		return nil
	}
	addr := EnvString("REDIS_HOST", "127.0.0.1") + ":" + EnvString("REDIS_PORT", "6379")
	db := EnvInt("REDIS_DB", 0)
	if db < 0 {
		db = 0
	}
	logger.L().Debug("redis_env", "addr", addr, "db", db)
	return redis.NewClient(&redis.Options{Addr: addr, Password: EnvString("REDIS_PASS", ""), DB: db})
}
