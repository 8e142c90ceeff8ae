package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/deep-platform/deep-api/pkg/config"
)

func TestLockerWithoutClientIsNoop(t *testing.T) {
	locker := NewLocker(nil, "slot:", time.Second, zap.NewNop())
	release, err := locker.Acquire(context.Background(), "mentor:2025-03-03")
	require.NoError(t, err)
	require.NotNil(t, release)
	release()
}

func TestLockerDegradesWhenRedisUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer client.Close() //nolint:errcheck

	locker := NewLocker(client, "slot:", time.Second, nil)
	release, err := locker.Acquire(context.Background(), "mentor:2025-03-03")
	assert.NoError(t, err)
	release()
}

func TestNewRedisDisabled(t *testing.T) {
	client, err := NewRedis(config.RedisConfig{Enabled: false})
	assert.NoError(t, err)
	assert.Nil(t, client)
}
