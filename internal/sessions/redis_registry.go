package sessions

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// RedisRegistry implements Registry using one Redis set per user under
// key: "usersessions:<userID>". Set operations give the required
// concurrency safety across service replicas.
type RedisRegistry struct {
	client *redis.Client
	prefix string
}

// NewRedisRegistry creates a Redis-backed session registry. Prefix may be empty.
func NewRedisRegistry(client *redis.Client, prefix string) *RedisRegistry {
	if prefix == "" {
		prefix = "usersessions:"
	}
	return &RedisRegistry{client: client, prefix: prefix}
}

func (r *RedisRegistry) key(userID string) string {
	return r.prefix + userID
}

func (r *RedisRegistry) Register(ctx context.Context, userID, sessionID string) error {
	return r.client.SAdd(ctx, r.key(userID), sessionID).Err()
}

func (r *RedisRegistry) List(ctx context.Context, userID string) ([]string, error) {
	ids, err := r.client.SMembers(ctx, r.key(userID)).Result()
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

func (r *RedisRegistry) Remove(ctx context.Context, userID, sessionID string) error {
	return r.client.SRem(ctx, r.key(userID), sessionID).Err()
}

func (r *RedisRegistry) RemoveAll(ctx context.Context, userID string) error {
	return r.client.Del(ctx, r.key(userID)).Err()
}
