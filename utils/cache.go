package utils

import (
	"context"
	"fmt"
	"time"

	"fashionstudio/config"

	"github.com/go-redis/redis/v8"
)

// OTPCacheClient holds verification cooldowns and spent challenge tokens.
var OTPCacheClient *redis.Client

// InitOTPCache initializes the Redis client used by phone verification.
func InitOTPCache() error {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisOTPDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to connect to Redis (OTP): %w", err)
	}
	OTPCacheClient = client
	return nil
}

// GetOTPCacheClient returns the Redis client used by phone verification.
func GetOTPCacheClient() *redis.Client {
	return OTPCacheClient
}
