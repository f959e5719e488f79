package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// History window modes for message listing.
const (
	HistoryWindowOldest = "oldest"
	HistoryWindowLatest = "latest"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName              string
	AppEnv               string
	AppPort              string
	LogLevel             string
	DatabaseURL          string
	RedisURL             string
	NATSURL              string
	RealtimeChannelBase  string
	JWTSecret            string
	LiveKitURL           string
	LiveKitAPIKey        string
	LiveKitAPISecret     string
	LiveKitTokenTTL      time.Duration
	MessageHistoryWindow string
	MessageRateLimit     int
	RateLimitWindow      time.Duration
	CORSAllowOrigins     []string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// IsDevelopment reports whether the service runs in a development environment.
func (c Config) IsDevelopment() bool {
	return c.AppEnv == "" || c.AppEnv == "development"
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("ALO")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	return FromViper(v)
}

// FromViper builds the configuration from an already prepared viper instance.
func FromViper(v *viper.Viper) (Config, error) {
	v.SetDefault("app.name", "Alo API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "4000")
	v.SetDefault("log.level", "info")
	v.SetDefault("realtime.channel_base", "alo")
	v.SetDefault("livekit.token_ttl", "1h")
	v.SetDefault("messages.history_window", HistoryWindowOldest)
	v.SetDefault("ratelimit.messages", 20)
	v.SetDefault("ratelimit.window", "10s")

	ttl, err := parseDuration(v, "livekit.token_ttl", time.Hour)
	if err != nil {
		return Config{}, fmt.Errorf("invalid livekit token ttl: %w", err)
	}

	window, err := parseDuration(v, "ratelimit.window", 10*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("invalid rate limit window: %w", err)
	}

	cfg := Config{
		AppName:              v.GetString("app.name"),
		AppEnv:               v.GetString("app.env"),
		AppPort:              v.GetString("app.port"),
		LogLevel:             strings.ToLower(v.GetString("log.level")),
		DatabaseURL:          v.GetString("database.url"),
		RedisURL:             v.GetString("redis.url"),
		NATSURL:              v.GetString("nats.url"),
		RealtimeChannelBase:  v.GetString("realtime.channel_base"),
		JWTSecret:            v.GetString("jwt.secret"),
		LiveKitURL:           strings.TrimSpace(v.GetString("livekit.url")),
		LiveKitAPIKey:        strings.TrimSpace(v.GetString("livekit.api_key")),
		LiveKitAPISecret:     strings.TrimSpace(v.GetString("livekit.api_secret")),
		LiveKitTokenTTL:      ttl,
		MessageHistoryWindow: strings.ToLower(strings.TrimSpace(v.GetString("messages.history_window"))),
		MessageRateLimit:     v.GetInt("ratelimit.messages"),
		RateLimitWindow:      window,
		CORSAllowOrigins:     splitList(v.GetString("cors.allow_origins")),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("database url must be provided")
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	switch cfg.MessageHistoryWindow {
	case HistoryWindowOldest, HistoryWindowLatest:
	default:
		return Config{}, fmt.Errorf("unsupported message history window %q", cfg.MessageHistoryWindow)
	}

	if cfg.MessageRateLimit <= 0 {
		cfg.MessageRateLimit = 20
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return fallback, nil
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if parsed <= 0 {
		return fallback, nil
	}

	return parsed, nil
}

func splitList(raw string) []string {
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
