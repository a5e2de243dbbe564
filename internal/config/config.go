// Package config provides configuration management for the Stable Stakes application.
package config

import (
	"fmt"
)

// Setting names exposed through the RoomConfig lookup contract.
const (
	SettingMaxOdds         = "maxodds"
	SettingEntryFee        = "entryfee"
	SettingMaxWager        = "maxwager"
	SettingPreStartSeconds = "prestartseconds"
	SettingRoundSeconds    = "roundseconds"
	SettingSettleDelay     = "settledelayseconds"
	SettingRaceInterval    = "raceintervalseconds"
	SettingTrackDistance   = "trackdistance"
)

// Config represents the complete application configuration
type Config struct {
	App         AppConfig         `mapstructure:"app" validate:"required"`
	Database    DatabaseConfig    `mapstructure:"database" validate:"required"`
	Telegram    TelegramConfig    `mapstructure:"telegram" validate:"required"`
	Room        RoomConfig        `mapstructure:"room" validate:"required"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance" validate:"required"`
	Webhook     WebhookConfig     `mapstructure:"webhook"`
	Feed        FeedConfig        `mapstructure:"feed"`
	Metrics     MetricsConfig     `mapstructure:"metrics" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	Host               string `mapstructure:"host" validate:"required_if=Enabled true"`
	Port               int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required_if=Enabled true"`
	User               string `mapstructure:"user" validate:"required_if=Enabled true"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"omitempty,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"omitempty,gt=0"`
}

// TelegramConfig represents the chat transport configuration
type TelegramConfig struct {
	Token           string `mapstructure:"token" validate:"required"`
	PollTimeoutSecs int    `mapstructure:"poll_timeout_seconds" validate:"required,gt=0"`
	CommandsPerMin  int    `mapstructure:"commands_per_minute" validate:"required,gt=0"`
}

// RoomConfig represents the per-room race and wagering settings
type RoomConfig struct {
	MaxOdds            float64 `mapstructure:"max_odds" validate:"required,gte=1.1"`
	EntryFee           int64   `mapstructure:"entry_fee" validate:"required,gt=0"`
	MaxWager           int64   `mapstructure:"max_wager" validate:"required,gt=0"`
	PreStartSeconds    int     `mapstructure:"pre_start_seconds" validate:"required,gt=0"`
	RoundSeconds       int     `mapstructure:"round_seconds" validate:"required,gt=0"`
	SettleDelaySeconds int     `mapstructure:"settle_delay_seconds" validate:"gte=0"`
	RaceIntervalSecs   int     `mapstructure:"race_interval_seconds" validate:"gte=0"`
	TrackDistance      float64 `mapstructure:"track_distance" validate:"required,gt=0"`
}

// MaintenanceConfig represents the periodic background job cadence
type MaintenanceConfig struct {
	OddsRefreshSeconds int    `mapstructure:"odds_refresh_seconds" validate:"required,gt=0"`
	StatsFlushSchedule string `mapstructure:"stats_flush_schedule" validate:"required"`
}

// WebhookConfig represents the optional race-result webhook notifier
type WebhookConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url" validate:"required_if=Enabled true,omitempty,url"`
}

// FeedConfig represents the live leaderboard websocket feed
type FeedConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// Setting exposes room settings through a name lookup, the contract the
// race engine's external collaborators are written against. Unknown
// names return 0.
func (rc *RoomConfig) Setting(name string) float64 {
	switch name {
	case SettingMaxOdds:
		return rc.MaxOdds
	case SettingEntryFee:
		return float64(rc.EntryFee)
	case SettingMaxWager:
		return float64(rc.MaxWager)
	case SettingPreStartSeconds:
		return float64(rc.PreStartSeconds)
	case SettingRoundSeconds:
		return float64(rc.RoundSeconds)
	case SettingSettleDelay:
		return float64(rc.SettleDelaySeconds)
	case SettingRaceInterval:
		return float64(rc.RaceIntervalSecs)
	case SettingTrackDistance:
		return rc.TrackDistance
	default:
		return 0
	}
}
