package constants

import "time"

const (
	DatabaseTimeout = 5 * time.Second
	RequestTimeout  = 30 * time.Second
	DiscordTimeout  = 10 * time.Second
	WebhookTimeout  = 10 * time.Second
)

const (
	DBMaxOpenConns    = 4
	DBMaxIdleConns    = 2
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

// match rules
const (
	WinScore         = 10
	AbandonThreshold = 5
	TotalBans        = 2
	BaseMMRChange    = 32
)

const (
	// general server name shown while idle
	IdleServerName = "Pug Server - Idle"
	IdleMaxPlayers = 10
)
