package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	os.Unsetenv("SERVER_PORT")
	os.Unsetenv("TRENDING_DEFAULT_LIMIT")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "5001", cfg.Server.Port)
	require.Equal(t, "0.0.0.0", cfg.Server.Host)
	require.Equal(t, 10, cfg.Trending.DefaultLimit)
	require.Positive(t, cfg.JWT.AccessTokenTTL)
	require.Positive(t, cfg.JWT.RefreshTokenTTL)
}

func TestLoadConfigFromEnv(t *testing.T) {
	os.Setenv("SERVER_PORT", "6001")
	os.Setenv("REDIS_HOST", "redis.local")
	os.Setenv("TRENDING_DEFAULT_LIMIT", "25")
	defer func() {
		os.Unsetenv("SERVER_PORT")
		os.Unsetenv("REDIS_HOST")
		os.Unsetenv("TRENDING_DEFAULT_LIMIT")
	}()

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, "6001", cfg.Server.Port)
	require.Equal(t, "redis.local", cfg.Redis.Host)
	require.Equal(t, 25, cfg.Trending.DefaultLimit)
}

func TestLoadConfigRejectsNonPositiveTrendingLimit(t *testing.T) {
	os.Setenv("TRENDING_DEFAULT_LIMIT", "-3")
	defer os.Unsetenv("TRENDING_DEFAULT_LIMIT")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, 10, cfg.Trending.DefaultLimit)
}
