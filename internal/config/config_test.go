package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestFromViperAppliesDefaults(t *testing.T) {
	v := viper.New()
	v.Set("database.url", "postgres://localhost/alo")
	v.Set("jwt.secret", "secret")

	cfg, err := FromViper(v)
	require.NoError(t, err)
	require.Equal(t, "Alo API", cfg.AppName)
	require.Equal(t, ":4000", cfg.HTTPAddress())
	require.Equal(t, time.Hour, cfg.LiveKitTokenTTL)
	require.Equal(t, HistoryWindowOldest, cfg.MessageHistoryWindow)
	require.Equal(t, 20, cfg.MessageRateLimit)
	require.Equal(t, 10*time.Second, cfg.RateLimitWindow)
	require.Equal(t, "alo", cfg.RealtimeChannelBase)
	require.True(t, cfg.IsDevelopment())
}

func TestFromViperRequiresSecrets(t *testing.T) {
	v := viper.New()
	v.Set("database.url", "postgres://localhost/alo")

	_, err := FromViper(v)
	require.Error(t, err)

	v = viper.New()
	v.Set("jwt.secret", "secret")
	_, err = FromViper(v)
	require.Error(t, err)
}

func TestFromViperRejectsInvalidValues(t *testing.T) {
	v := viper.New()
	v.Set("database.url", "postgres://localhost/alo")
	v.Set("jwt.secret", "secret")
	v.Set("livekit.token_ttl", "soon")

	_, err := FromViper(v)
	require.Error(t, err)

	v = viper.New()
	v.Set("database.url", "postgres://localhost/alo")
	v.Set("jwt.secret", "secret")
	v.Set("messages.history_window", "newest")

	_, err = FromViper(v)
	require.Error(t, err)
}

func TestHTTPAddressKeepsColonPrefix(t *testing.T) {
	cfg := Config{AppPort: ":9000"}
	require.Equal(t, ":9000", cfg.HTTPAddress())
}

func TestFromViperSplitsAllowedOrigins(t *testing.T) {
	v := viper.New()
	v.Set("database.url", "postgres://localhost/alo")
	v.Set("jwt.secret", "secret")
	v.Set("cors.allow_origins", "https://alo.chat, ,http://localhost:3000")

	cfg, err := FromViper(v)
	require.NoError(t, err)
	require.Equal(t, []string{"https://alo.chat", "http://localhost:3000"}, cfg.CORSAllowOrigins)
}
