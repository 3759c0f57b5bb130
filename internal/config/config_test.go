package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "API Fusion", cfg.App.Name)
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, []string{"https://hnrss.org/newest"}, cfg.RSS.Feeds)
	assert.Equal(t, ModeMock, cfg.Client.Mode)
	assert.Equal(t, 350*time.Millisecond, cfg.Client.Debounce)
	assert.Equal(t, 20, cfg.Client.Limit)
	assert.Zero(t, cfg.Client.Timeout)
	assert.Equal(t, 15*time.Second, cfg.Sources.CacheTTL)
}

func TestFromViper_EnvOverrides(t *testing.T) {
	t.Setenv("CLIENT_MODE", "api")
	t.Setenv("CLIENT_BASE_URL", "http://backend:9000/")
	t.Setenv("RSS_FEEDS", " https://a.example/feed , ,https://b.example/rss")
	t.Setenv("GITHUB_TOKEN", "secret")

	cfg, err := FromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, ModeAPI, cfg.Client.Mode)
	assert.Equal(t, "http://backend:9000", cfg.Client.BaseURL)
	assert.Equal(t, []string{"https://a.example/feed", "https://b.example/rss"}, cfg.RSS.Feeds)
	assert.Equal(t, "secret", cfg.GitHub.Token)
}

func TestFromViper_InvalidMode(t *testing.T) {
	t.Setenv("CLIENT_MODE", "grpc")

	_, err := FromViper(viper.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client.mode")
}
