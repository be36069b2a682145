package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"solar-relay/internal/domain/ports"
)

// DefaultKey is the redis key shared by every relay process.
const DefaultKey = "solar-relay:cycle"

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a CycleLock shared across processes through SET NX PX.
type Redis struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
	logger ports.Logger
}

var _ ports.CycleLock = (*Redis)(nil)

// NewRedis builds a Redis lock. ttl bounds how long a crashed holder blocks others.
func NewRedis(client redis.UniversalClient, key string, ttl time.Duration, logger ports.Logger) *Redis {
	if key == "" {
		key = DefaultKey
	}
	return &Redis{client: client, key: key, ttl: ttl, logger: logger}
}

// TryLock attempts to take the lock without waiting.
func (r *Redis) TryLock(ctx context.Context) (func(), bool, error) {
	token := uuid.NewString()
	ok, err := r.client.SetNX(ctx, r.key, token, r.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire cycle lock: %w", err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func() {
		// the cycle context may already be done
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, r.client, []string{r.key}, token).Err(); err != nil {
			r.logger.Error(ctx, "failed to release cycle lock", "key", r.key, "error", err)
		}
	}
	return release, true, nil
}
