package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	validConfigPath       = "testdata/valid_config.yaml"
	expansionConfigPath   = "testdata/expansion_config.yaml"
	nonexistentConfigPath = "testdata/nonexistent_config.yaml"
)

// TestLoadConfigSuccess tests loading a valid configuration file
func TestLoadConfigSuccess(t *testing.T) {
	cfg, err := Load(validConfigPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "stable-stakes", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, int64(10), cfg.Room.EntryFee)
	assert.Equal(t, 5.0, cfg.Room.MaxOdds)
}

// TestLoadConfigFileNotFound tests handling of missing configuration file
func TestLoadConfigFileNotFound(t *testing.T) {
	_, err := Load(nonexistentConfigPath)
	assert.Error(t, err)
}

// TestLoadConfigEnvExpansion tests ${VAR} expansion in the YAML file
func TestLoadConfigEnvExpansion(t *testing.T) {
	os.Setenv("TEST_DB_PASSWORD", "expanded_secret_value")
	defer os.Unsetenv("TEST_DB_PASSWORD")

	cfg, err := Load(expansionConfigPath)
	require.NoError(t, err)
	assert.Equal(t, "expanded_secret_value", cfg.Database.Password)
}

// TestValidateValidConfig tests validation on a complete configuration
func TestValidateValidConfig(t *testing.T) {
	cfg, err := Load(validConfigPath)
	require.NoError(t, err)
	assert.NoError(t, Validate(cfg))
}

// TestValidateRejectsBadEnvironment tests the custom environment rule
func TestValidateRejectsBadEnvironment(t *testing.T) {
	cfg, err := Load(validConfigPath)
	require.NoError(t, err)

	cfg.App.Environment = "invalid"
	assert.Error(t, Validate(cfg))
}

// TestValidateRejectsRoundLongerThanPreStart tests the timer cross-field rule
func TestValidateRejectsRoundLongerThanPreStart(t *testing.T) {
	cfg, err := Load(validConfigPath)
	require.NoError(t, err)

	cfg.Room.RoundSeconds = cfg.Room.PreStartSeconds + 1
	assert.Error(t, Validate(cfg))
}

// TestValidateRejectsBadCronSchedule tests the maintenance schedule rule
func TestValidateRejectsBadCronSchedule(t *testing.T) {
	cfg, err := Load(validConfigPath)
	require.NoError(t, err)

	cfg.Maintenance.StatsFlushSchedule = "not-a-schedule"
	assert.Error(t, Validate(cfg))
}

// TestRoomSettingLookup tests the name-based settings contract
func TestRoomSettingLookup(t *testing.T) {
	rc := &RoomConfig{
		MaxOdds:          5,
		EntryFee:         10,
		MaxWager:         500,
		PreStartSeconds:  120,
		RoundSeconds:     15,
		RaceIntervalSecs: 600,
		TrackDistance:    1800,
	}

	assert.Equal(t, 5.0, rc.Setting(SettingMaxOdds))
	assert.Equal(t, 10.0, rc.Setting(SettingEntryFee))
	assert.Equal(t, 1800.0, rc.Setting(SettingTrackDistance))
	assert.Equal(t, 0.0, rc.Setting("unknown"))
}

// TestLoadWithDefaults tests defaults when no file is present
func TestLoadWithDefaults(t *testing.T) {
	cfg, err := LoadWithDefaults(nonexistentConfigPath)
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, int64(10), cfg.Room.EntryFee)
}

// TestGetDatabaseDSN tests DSN string construction
func TestGetDatabaseDSN(t *testing.T) {
	cfg, err := Load(validConfigPath)
	require.NoError(t, err)

	dsn := cfg.GetDatabaseDSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "localhost")
	assert.Contains(t, dsn, "sslmode=disable")
}
