package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, 2*time.Minute, cfg.Ingest.ClockSkew)
	assert.Equal(t, 10*time.Second, cfg.Ingest.DuplicateWindow)
	assert.Equal(t, 16, cfg.Notify.QueueSize)
	assert.Equal(t, 366, cfg.Report.MaxRangeDays)
	assert.Equal(t, time.Friday, cfg.Schedule.ExtendedAltCloseDay)
	assert.Equal(t, "08:00", cfg.Schedule.NormalEntry)
	assert.Empty(t, cfg.Telemetry.Endpoint)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "MongoDB")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("SCHEDULE_EXTENDED_ALT_CLOSE_DAY", "Thursday")
	t.Setenv("APP_TIMEZONE", "America/Mexico_City")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "mongodb", cfg.Storage.Driver)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.App.CORSOrigins)
	assert.Equal(t, time.Thursday, cfg.Schedule.ExtendedAltCloseDay)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/Mexico_City", loc.String())
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown driver":     {"STORAGE_DRIVER": "sqlite"},
		"postgres password":  {"STORAGE_DRIVER": "postgres", "DB_PASSWORD": ""},
		"bad skew":           {"STORAGE_DRIVER": "memory", "INGEST_CLOCK_SKEW": "soon"},
		"zero queue":         {"STORAGE_DRIVER": "memory", "NOTIFY_QUEUE_SIZE": "0"},
		"bad weekday":        {"STORAGE_DRIVER": "memory", "SCHEDULE_EXTENDED_ALT_CLOSE_DAY": "someday"},
		"device no password": {"STORAGE_DRIVER": "memory", "DEVICE_HOST": "10.0.0.5", "DEVICE_PASSWORD": ""},
		"bad timezone":       {"STORAGE_DRIVER": "memory", "APP_TIMEZONE": "Mars/Olympus"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestDatabaseURL(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		Host: "db", Port: 5432, User: "u", Password: "p", Name: "attendance", SSLMode: "disable",
	}}
	assert.Equal(t, "postgres://u:p@db:5432/attendance?sslmode=disable", cfg.DatabaseURL())
}
