package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

var DefaultMapPool = []string{
	"datacenter",
	"sand",
	"bridge",
	"containeryard",
	"prodigy",
	"rooftops",
	"stalingrad",
}

type Config struct {
	DiscordToken          string
	GuildID               string
	MatchChannelID        string
	GeneralVoiceChannelID string
	VoiceCategoryID       string
	ResultsWebhookURL     string

	DBPath      string
	AdminPort   string
	LogLevel    string
	LogFile     string
	ServersFile string

	AcceptPeriod time.Duration
	BanPeriod    time.Duration
	PickPeriod   time.Duration
	PollInterval time.Duration

	// reminder offsets are scaled to AcceptPeriod when it is shorter than the defaults
	ReminderOffsets []time.Duration

	RconAttempts int
	RconBackoff  time.Duration
	RconTimeout  time.Duration

	MapPool    []string
	TeamSize   int
	DefaultMMR int
}

// RosterSize is the number of players needed to pop a match.
func (c *Config) RosterSize() int {
	return c.TeamSize * 2
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		DiscordToken:          getEnv("DISCORD_TOKEN", ""),
		GuildID:               getEnv("GUILD_ID", ""),
		MatchChannelID:        getEnv("MATCH_CHANNEL_ID", ""),
		GeneralVoiceChannelID: getEnv("GENERAL_VOICE_CHANNEL_ID", ""),
		VoiceCategoryID:       getEnv("VOICE_CATEGORY_ID", ""),
		ResultsWebhookURL:     getEnv("RESULTS_WEBHOOK_URL", ""),
		DBPath:                getEnv("DB_PATH", "matchbot.db"),
		AdminPort:             getEnv("ADMIN_PORT", "8080"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFile:               getEnv("LOG_FILE", ""),
		ServersFile:           getEnv("SERVERS_FILE", "servers.yaml"),
		AcceptPeriod:          getDuration("ACCEPT_PERIOD", 3*time.Minute),
		BanPeriod:             getDuration("BAN_PERIOD", 30*time.Second),
		PickPeriod:            getDuration("PICK_PERIOD", 30*time.Second),
		PollInterval:          getDuration("POLL_INTERVAL", 2*time.Second),
		RconAttempts:          getInt("RCON_ATTEMPTS", 10),
		RconBackoff:           getDuration("RCON_BACKOFF", 1*time.Second),
		RconTimeout:           getDuration("RCON_TIMEOUT", 5*time.Second),
		MapPool:               getList("MAP_POOL", DefaultMapPool),
		TeamSize:              getInt("TEAM_SIZE", 5),
		DefaultMMR:            getInt("DEFAULT_MMR", 1000),
	}
	cfg.ReminderOffsets = reminderOffsets(cfg.AcceptPeriod)

	if cfg.DiscordToken == "" {
		return nil, fmt.Errorf("DISCORD_TOKEN is required")
	}
	if cfg.GuildID == "" {
		return nil, fmt.Errorf("GUILD_ID is required")
	}
	if cfg.MatchChannelID == "" {
		return nil, fmt.Errorf("MATCH_CHANNEL_ID is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("admin_port", cfg.AdminPort).
		Str("log_level", cfg.LogLevel).
		Dur("accept_period", cfg.AcceptPeriod).
		Dur("poll_interval", cfg.PollInterval).
		Int("team_size", cfg.TeamSize).
		Strs("map_pool", cfg.MapPool).
		Msg("configuration loaded")

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.TeamSize < 1 {
		return fmt.Errorf("TEAM_SIZE must be positive, got %d", c.TeamSize)
	}
	// two bans per side plus the picked map
	if len(c.MapPool) < 2*2+1 {
		return fmt.Errorf("MAP_POOL needs at least 5 maps, got %d", len(c.MapPool))
	}
	if c.RconAttempts < 1 {
		return fmt.Errorf("RCON_ATTEMPTS must be positive, got %d", c.RconAttempts)
	}
	return nil
}

func reminderOffsets(period time.Duration) []time.Duration {
	if period > 3*time.Minute-time.Second {
		return []time.Duration{1 * time.Minute, 2 * time.Minute}
	}
	return []time.Duration{period / 3, 2 * period / 3}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
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

func getDuration(key string, fallback time.Duration) time.Duration {
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

func getList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

var Module = fx.Provide(Load)
