package sessions

import (
	"context"
	"fmt"
	"sync"
	"testing"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestMemoryRegistry_EmptyForUnknownUser(t *testing.T) {
	reg := NewMemoryRegistry()
	got, err := reg.List(context.Background(), "nobody")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestMemoryRegistry_RegisterListRemove(t *testing.T) {
	reg := NewMemoryRegistry()
	ctx := context.Background()

	require.NoError(t, reg.Register(ctx, "u1", "s1"))
	require.NoError(t, reg.Register(ctx, "u1", "s2"))
	require.NoError(t, reg.Register(ctx, "u2", "s3"))

	got, err := reg.List(ctx, "u1")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"s1", "s2"}, got)

	// removing one session keeps the rest
	require.NoError(t, reg.Remove(ctx, "u1", "s1"))
	got, err = reg.List(ctx, "u1")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"s2"}, got)

	// other users are untouched
	got, err = reg.List(ctx, "u2")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"s3"}, got)

	require.NoError(t, reg.RemoveAll(ctx, "u1"))
	got, err = reg.List(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestMemoryRegistry_DuplicateRegisterIsIdempotent(t *testing.T) {
	reg := NewMemoryRegistry()
	ctx := context.Background()
	require.NoError(t, reg.Register(ctx, "u1", "s1"))
	require.NoError(t, reg.Register(ctx, "u1", "s1"))
	got, err := reg.List(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, []string{"s1"}, got)
}

func TestMemoryRegistry_ConcurrentAccess(t *testing.T) {
	reg := NewMemoryRegistry()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			sid := fmt.Sprintf("s%d", n)
			_ = reg.Register(ctx, "u1", sid)
			_, _ = reg.List(ctx, "u1")
		}(i)
	}
	wg.Wait()

	got, err := reg.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 50)
}

func TestRedisRegistry_RegisterListRemove(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	reg := NewRedisRegistry(client, "test:usersessions:")
	ctx := context.Background()

	// unknown user -> empty, not error
	got, err := reg.List(ctx, "nobody")
	require.NoError(t, err)
	require.Empty(t, got)

	require.NoError(t, reg.Register(ctx, "u1", "s1"))
	require.NoError(t, reg.Register(ctx, "u1", "s2"))

	got, err = reg.List(ctx, "u1")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"s1", "s2"}, got)

	require.NoError(t, reg.Remove(ctx, "u1", "s1"))
	got, err = reg.List(ctx, "u1")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"s2"}, got)

	require.NoError(t, reg.RemoveAll(ctx, "u1"))
	got, err = reg.List(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, got)
}
