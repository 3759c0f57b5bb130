package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	ModeMock = "mock"
	ModeAPI  = "api"
	ModeLive = "live"
)

type Config struct {
	App struct {
		Name     string
		Env      string
		LogLevel string
	}
	Server struct {
		Port string
	}
	Database struct {
		URL string
	}
	Redis struct {
		URL string
	}
	HTTP struct {
		Timeout time.Duration
	}
	GitHub struct {
		Token   string
		BaseURL string
	}
	HackerNews struct {
		BaseURL  string
		ProbeURL string
	}
	RSS struct {
		Feeds []string
	}
	Search struct {
		// Mode is "live" (real connectors) or "mock" (in-process generator).
		Mode     string
		CacheTTL time.Duration
		Retries  int
	}
	Sources struct {
		CacheTTL      time.Duration
		ProbeInterval time.Duration
	}
	RateLimit struct {
		PerMinute int
	}
	CORS struct {
		Origins []string
	}
	Client struct {
		Mode     string
		BaseURL  string
		Timeout  time.Duration
		Debounce time.Duration
		Limit    int
	}
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	return FromViper(v)
}

// FromViper applies defaults and environment overrides to v and decodes it.
func FromViper(v *viper.Viper) (*Config, error) {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	var config Config

	config.App.Name = v.GetString("app.name")
	config.App.Env = v.GetString("app.env")
	config.App.LogLevel = v.GetString("log.level")
	config.Server.Port = v.GetString("server.port")
	config.Database.URL = v.GetString("database.url")
	config.Redis.URL = v.GetString("redis.url")
	config.HTTP.Timeout = v.GetDuration("http.timeout")
	config.GitHub.Token = v.GetString("github.token")
	config.GitHub.BaseURL = strings.TrimRight(v.GetString("github.base_url"), "/")
	config.HackerNews.BaseURL = strings.TrimRight(v.GetString("hackernews.base_url"), "/")
	config.HackerNews.ProbeURL = v.GetString("hackernews.probe_url")
	config.RSS.Feeds = splitCSV(v.GetString("rss.feeds"))
	config.Search.Mode = v.GetString("search.mode")
	config.Search.CacheTTL = v.GetDuration("search.cache_ttl")
	config.Search.Retries = v.GetInt("search.retries")
	config.Sources.CacheTTL = v.GetDuration("sources.cache_ttl")
	config.Sources.ProbeInterval = v.GetDuration("sources.probe_interval")
	config.RateLimit.PerMinute = v.GetInt("ratelimit.per_minute")
	config.CORS.Origins = splitCSV(v.GetString("cors.origins"))
	config.Client.Mode = v.GetString("client.mode")
	config.Client.BaseURL = strings.TrimRight(v.GetString("client.base_url"), "/")
	config.Client.Timeout = v.GetDuration("client.timeout")
	config.Client.Debounce = v.GetDuration("client.debounce")
	config.Client.Limit = v.GetInt("client.limit")

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "API Fusion")
	v.SetDefault("app.env", "local")
	v.SetDefault("log.level", "info")
	v.SetDefault("server.port", "8000")
	v.SetDefault("database.url", "")
	v.SetDefault("redis.url", "")
	v.SetDefault("http.timeout", 3*time.Second)
	v.SetDefault("github.token", "")
	v.SetDefault("github.base_url", "https://api.github.com")
	v.SetDefault("hackernews.base_url", "https://hn.algolia.com/api/v1")
	v.SetDefault("hackernews.probe_url", "https://hacker-news.firebaseio.com/v0/topstories.json")
	v.SetDefault("rss.feeds", "https://hnrss.org/newest")
	v.SetDefault("search.mode", ModeLive)
	v.SetDefault("search.cache_ttl", 5*time.Minute)
	v.SetDefault("search.retries", 1)
	v.SetDefault("sources.cache_ttl", 15*time.Second)
	v.SetDefault("sources.probe_interval", 0)
	v.SetDefault("ratelimit.per_minute", 120)
	v.SetDefault("cors.origins", "http://localhost:5173")
	v.SetDefault("client.mode", ModeMock)
	v.SetDefault("client.base_url", "http://localhost:8000")
	v.SetDefault("client.timeout", 0)
	v.SetDefault("client.debounce", 350*time.Millisecond)
	v.SetDefault("client.limit", 20)
}

func (c *Config) Validate() error {
	switch c.Client.Mode {
	case ModeMock, ModeAPI:
	default:
		return fmt.Errorf("client.mode must be %q or %q, got %q", ModeMock, ModeAPI, c.Client.Mode)
	}
	switch c.Search.Mode {
	case ModeMock, ModeLive:
	default:
		return fmt.Errorf("search.mode must be %q or %q, got %q", ModeMock, ModeLive, c.Search.Mode)
	}
	if c.Client.Mode == ModeAPI && c.Client.BaseURL == "" {
		return fmt.Errorf("client.base_url is required in api mode")
	}
	if c.Client.Limit <= 0 {
		return fmt.Errorf("client.limit must be positive")
	}
	if c.Client.Timeout < 0 || c.Client.Debounce < 0 {
		return fmt.Errorf("client durations cannot be negative")
	}
	if c.Search.Retries < 0 {
		return fmt.Errorf("search.retries cannot be negative")
	}
	return nil
}

func splitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}
