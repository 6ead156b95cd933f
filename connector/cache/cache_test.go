package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestNewForcesSingleSocket(t *testing.T) {
	c := NewWithOptions(&redis.Options{Addr: "localhost:6379", PoolSize: 20, MinIdleConns: 5})
	assert.Equal(t, 1, c.opts.PoolSize)
	assert.Equal(t, 0, c.opts.MinIdleConns)
}

func TestNewWithOptionsDoesNotMutateCaller(t *testing.T) {
	opts := &redis.Options{Addr: "localhost:6379", PoolSize: 20}
	NewWithOptions(opts)
	assert.Equal(t, 20, opts.PoolSize)
}

func TestConnectFailsFastOnBadAddress(t *testing.T) {
	c := New("127.0.0.1:1")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := c.Connect(ctx)
	assert.Error(t, err)
}
