package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	BallchasingAPIKey      string
	BallchasingBaseURL     string
	BallchasingMinInterval time.Duration
	SteamAPIKey            string
	SteamBaseURL           string
	RefereeUploaderID      string
	HistoryLimit           int
	DBPath                 string
	ServerPort             string
	LogLevel               string

	DiscordToken   string
	DiscordAppID   string
	DiscordGuildID string
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		BallchasingAPIKey:      getEnv("BALLCHASING_API_KEY", ""),
		BallchasingBaseURL:     getEnv("BALLCHASING_BASE_URL", "https://ballchasing.com/api"),
		BallchasingMinInterval: getEnvDuration("BALLCHASING_MIN_INTERVAL", 500*time.Millisecond),
		SteamAPIKey:            getEnv("STEAM_API_KEY", ""),
		SteamBaseURL:           getEnv("STEAM_BASE_URL", "https://api.steampowered.com"),
		RefereeUploaderID:      getEnv("REFEREE_UPLOADER_ID", "76561199225615730"),
		HistoryLimit:           getEnvInt("HISTORY_LIMIT", 50000),
		DBPath:                 getEnv("DB_PATH", "gizmo.db"),
		ServerPort:             getEnv("SERVER_PORT", "8080"),
		LogLevel:               getEnv("LOG_LEVEL", "debug"),
		DiscordToken:           getEnv("DISCORD_BOT_TOKEN", ""),
		DiscordAppID:           getEnv("DISCORD_APP_ID", ""),
		DiscordGuildID:         getEnv("DISCORD_GUILD_ID", ""),
	}

	if cfg.BallchasingAPIKey == "" {
		return nil, fmt.Errorf("BALLCHASING_API_KEY is required")
	}
	if cfg.HistoryLimit <= 0 {
		return nil, fmt.Errorf("HISTORY_LIMIT must be positive, got %d", cfg.HistoryLimit)
	}
	if cfg.SteamAPIKey == "" {
		logger.Warn().Msg("STEAM_API_KEY not set, steam vanity lookups are disabled")
	}

	logger.Info().
		Str("ballchasing_base_url", cfg.BallchasingBaseURL).
		Dur("ballchasing_min_interval", cfg.BallchasingMinInterval).
		Str("referee_uploader_id", cfg.RefereeUploaderID).
		Int("history_limit", cfg.HistoryLimit).
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Msg("configuration loaded")

	return cfg, nil
}

// RequireDiscord validates the settings only the chat front-end needs.
func (c *Config) RequireDiscord() error {
	if c.DiscordToken == "" {
		return fmt.Errorf("DISCORD_BOT_TOKEN is required")
	}
	if c.DiscordAppID == "" {
		return fmt.Errorf("DISCORD_APP_ID is required")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

var Module = fx.Provide(Load)
