package persistence

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/rtc-usersig/internal/config"
)

func TestNewRedisConnects(t *testing.T) {
	mr := miniredis.RunT(t)
	core, logs := observer.New(zapcore.InfoLevel)

	r := NewRedis(context.Background(), config.RedisConfig{Addr: mr.Addr()}, zap.New(core))
	defer r.Close()

	require.NoError(t, r.Ping(context.Background()))
	assert.Equal(t, 1, logs.FilterMessage("connected to redis").Len())
}

func TestNewRedisToleratesUnreachableServer(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	core, logs := observer.New(zapcore.InfoLevel)

	r := NewRedis(context.Background(), config.RedisConfig{Addr: addr}, zap.New(core))
	defer r.Close()

	assert.Error(t, r.Ping(context.Background()))
	assert.Equal(t, 1, logs.FilterMessage("unable to reach redis").Len())
}

func TestNilRedis(t *testing.T) {
	var r *Redis
	assert.Error(t, r.Ping(context.Background()))
	assert.NotPanics(t, r.Close)
}
