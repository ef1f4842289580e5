package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/carelink/backend/internal/models"
)

// Channel carrying read-state change events. Interested consumers (e.g. a
// notification service) subscribe instead of polling the database.
const readStateChannel = "read-state"

// ReadStateEvent is published whenever a user's unread state changes
type ReadStateEvent struct {
	UserID         uuid.UUID `json:"user_id"`
	ConversationID uuid.UUID `json:"conversation_id"`
	ChangedAt      time.Time `json:"changed_at"`
}

type RedisClient struct {
	client     *redis.Client
	ctx        context.Context
	summaryTTL time.Duration
}

// NewRedisClient creates a new Redis client
func NewRedisClient(addr, password string, db int, summaryTTLSec int) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx := context.Background()

	// Test connection
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisClient{
		client:     client,
		ctx:        ctx,
		summaryTTL: time.Duration(summaryTTLSec) * time.Second,
	}, nil
}

// Close closes the Redis connection
func (r *RedisClient) Close() error {
	return r.client.Close()
}

func summaryKey(userID uuid.UUID) string {
	return fmt.Sprintf("unread-summary:%s", userID.String())
}

// GetUnreadSummary returns the cached unread summary for a user, or nil on
// a cache miss
func (r *RedisClient) GetUnreadSummary(userID uuid.UUID) (*models.UnreadSummary, error) {
	data, err := r.client.Get(r.ctx, summaryKey(userID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var summary models.UnreadSummary
	if err := json.Unmarshal([]byte(data), &summary); err != nil {
		return nil, err
	}

	return &summary, nil
}

// SetUnreadSummary caches a user's unread summary with a short TTL so the
// 30s poll loop rarely touches the database
func (r *RedisClient) SetUnreadSummary(userID uuid.UUID, summary *models.UnreadSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}

	return r.client.Set(r.ctx, summaryKey(userID), data, r.summaryTTL).Err()
}

// InvalidateUnreadSummary drops a user's cached summary after their read
// state changed
func (r *RedisClient) InvalidateUnreadSummary(userID uuid.UUID) error {
	return r.client.Del(r.ctx, summaryKey(userID)).Err()
}

// PublishReadStateChanged notifies subscribers that a user's unread state
// changed (new message or mark-read)
func (r *RedisClient) PublishReadStateChanged(event ReadStateEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return r.client.Publish(r.ctx, readStateChannel, data).Err()
}

// SubscribeReadState subscribes to read-state change events
func (r *RedisClient) SubscribeReadState() *redis.PubSub {
	return r.client.Subscribe(r.ctx, readStateChannel)
}
