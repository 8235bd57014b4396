package state

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStore(t *testing.T) {
	ctx := context.Background()

	t.Run("missing key yields defaults", func(t *testing.T) {
		mr := miniredis.RunT(t)
		s, err := NewRedisStore(ctx, &redis.Options{Addr: mr.Addr()}, "")
		require.NoError(t, err)
		defer s.Close()

		assert.Equal(t, DefaultRedisKey, s.Key())
		got, err := s.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, Default(), got)
	})

	t.Run("save overwrites one key", func(t *testing.T) {
		mr := miniredis.RunT(t)
		s, err := NewRedisStore(ctx, &redis.Options{Addr: mr.Addr()}, "test:state")
		require.NoError(t, err)
		defer s.Close()

		require.NoError(t, s.Save(ctx, Default()))
		want := sampleState()
		require.NoError(t, s.Save(ctx, want))

		got, err := s.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, []string{"test:state"}, mr.Keys())
	})

	t.Run("corrupt value", func(t *testing.T) {
		mr := miniredis.RunT(t)
		require.NoError(t, mr.Set("test:state", "{"))
		s, err := NewRedisStore(ctx, &redis.Options{Addr: mr.Addr()}, "test:state")
		require.NoError(t, err)
		defer s.Close()

		_, err = s.Load(ctx)
		assert.True(t, errors.Is(err, ErrCorrupt))
	})

	t.Run("open via options", func(t *testing.T) {
		mr := miniredis.RunT(t)
		s, err := Open(ctx, Options{Backend: BackendRedis, RedisAddr: mr.Addr(), RedisKey: "k"})
		require.NoError(t, err)
		defer s.Close()
		require.NoError(t, s.Save(ctx, sampleState()))
		assert.True(t, mr.Exists("k"))
	})

	t.Run("unreachable server", func(t *testing.T) {
		_, err := NewRedisStore(ctx, &redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1}, "k")
		assert.Error(t, err)
	})
}
