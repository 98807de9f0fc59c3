package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	redis_models "Spielhalle/models/redis"
	redis_utils "Spielhalle/services/redis/utils"
)

// RedisClient handles Redis operations
type RedisClient struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisClient creates a new Redis client instance
func NewRedisClient(Addr string, DB int) *RedisClient {
	var client *redis.Client
	if Addr != "localhost:6379" {
		log.Println("Connecting to remote Redis...")
		opt, err := redis.ParseURL(Addr)
		if err != nil {
			panic("Error parsing Redis URL")
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{
			Addr: Addr,
			DB:   DB,
		})
	}
	return &RedisClient{
		client: client,
		ctx:    context.Background(),
	}
}

// SavePlayerPresence stores a player's presence in Redis
// Key format: "presence:{userID}"
// TTL: 24 hours
func (rc *RedisClient) SavePlayerPresence(presence *redis_models.PlayerPresence) error {
	key := redis_utils.FormatPresenceKey(presence.UserID)
	data, err := json.Marshal(presence)
	if err != nil {
		return fmt.Errorf("error marshaling presence data: %v", err)
	}
	return rc.client.Set(rc.ctx, key, data, 24*time.Hour).Err()
}

// GetPlayerPresence retrieves a player's presence from Redis
// Returns: PlayerPresence struct or error
func (rc *RedisClient) GetPlayerPresence(userID string) (*redis_models.PlayerPresence, error) {
	key := redis_utils.FormatPresenceKey(userID)
	data, err := rc.client.Get(rc.ctx, key).Bytes()
	if err != nil {
		return nil, fmt.Errorf("error getting presence data: %v", err)
	}

	var presence redis_models.PlayerPresence
	if err := json.Unmarshal(data, &presence); err != nil {
		return nil, fmt.Errorf("error unmarshaling presence data: %v", err)
	}
	return &presence, nil
}

// DeletePlayerPresence removes a player's presence from Redis
func (rc *RedisClient) DeletePlayerPresence(userID string) error {
	key := redis_utils.FormatPresenceKey(userID)
	if err := rc.client.Del(rc.ctx, key).Err(); err != nil {
		return fmt.Errorf("error deleting presence data: %v", err)
	}
	return nil
}

// TryDailyClaim marks the user's daily claim for the next 24 hours.
// Returns false without error when the cooldown is still running.
func (rc *RedisClient) TryDailyClaim(userID string) (bool, error) {
	key := redis_utils.FormatDailyClaimKey(userID)
	ok, err := rc.client.SetNX(rc.ctx, key, time.Now().Unix(), 24*time.Hour).Result()
	if err != nil {
		return false, fmt.Errorf("error setting daily claim cooldown: %v", err)
	}
	return ok, nil
}

// TryWeeklyBonus marks the user's weekly bonus claim for the next 7 days.
func (rc *RedisClient) TryWeeklyBonus(userID string) (bool, error) {
	key := redis_utils.FormatWeeklyBonusKey(userID)
	ok, err := rc.client.SetNX(rc.ctx, key, time.Now().Unix(), 7*24*time.Hour).Result()
	if err != nil {
		return false, fmt.Errorf("error setting weekly bonus cooldown: %v", err)
	}
	return ok, nil
}

// ReleaseDailyClaim removes the cooldown again, used when the ledger credit
// failed after the cooldown was taken.
func (rc *RedisClient) ReleaseDailyClaim(userID string) error {
	return rc.client.Del(rc.ctx, redis_utils.FormatDailyClaimKey(userID)).Err()
}

// ReleaseWeeklyBonus removes the weekly cooldown again.
func (rc *RedisClient) ReleaseWeeklyBonus(userID string) error {
	return rc.client.Del(rc.ctx, redis_utils.FormatWeeklyBonusKey(userID)).Err()
}

// DailyClaimTTL reports how long until the next daily claim is possible.
// Zero means the claim is available now.
func (rc *RedisClient) DailyClaimTTL(userID string) (time.Duration, error) {
	ttl, err := rc.client.TTL(rc.ctx, redis_utils.FormatDailyClaimKey(userID)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("error reading daily claim TTL: %v", err)
	}
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}
