package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Storage   StorageConfig
	Database  DatabaseConfig
	Mongo     MongoConfig
	Ingest    IngestConfig
	Notify    NotifyConfig
	Report    ReportConfig
	Directory DirectoryConfig
	Schedule  ScheduleConfig
	Device    DeviceConfig
	AWS       AWSConfig
	Telemetry TelemetryConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	Timezone    string
	CORSOrigins []string
}

// StorageConfig selects the persistence backend: postgres, mongodb or memory.
type StorageConfig struct {
	Driver string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type MongoConfig struct {
	URI      string
	Database string
}

// IngestConfig holds event normalization settings
type IngestConfig struct {
	ClockSkew       time.Duration
	DuplicateWindow time.Duration
}

type NotifyConfig struct {
	QueueSize   int
	SQSQueueURL string
}

type ReportConfig struct {
	MaxRangeDays int
}

type DirectoryConfig struct {
	RefreshInterval time.Duration
}

// ScheduleConfig holds the checkpoint times of the built-in patterns.
type ScheduleConfig struct {
	NormalEntry         string
	NormalExit          string
	ToleranceMinutes    int
	ExtendedAltClose    string
	ExtendedAltCloseDay time.Weekday
}

// DeviceConfig holds the access-control terminal connection.
type DeviceConfig struct {
	Host      string
	Username  string
	Password  string
	AutoStart bool
}

type AWSConfig struct {
	Region   string
	Endpoint string
}

// TelemetryConfig selects the OTLP trace collector. Tracing is off when Endpoint is empty.
type TelemetryConfig struct {
	Endpoint string
	Insecure bool
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Could not load .env file", "error", err)
	}

	config := &Config{}

	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Timezone:    getEnv("APP_TIMEZONE", "Local"),
		CORSOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
	}

	config.Storage = StorageConfig{
		Driver: strings.ToLower(getEnv("STORAGE_DRIVER", "postgres")),
	}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "attendance"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	config.Mongo = MongoConfig{
		URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		Database: getEnv("MONGODB_DATABASE", "attendance_db"),
	}

	clockSkew, err := time.ParseDuration(getEnv("INGEST_CLOCK_SKEW", "2m"))
	if err != nil {
		return nil, fmt.Errorf("invalid INGEST_CLOCK_SKEW: %w", err)
	}
	duplicateWindow, err := time.ParseDuration(getEnv("INGEST_DUPLICATE_WINDOW", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid INGEST_DUPLICATE_WINDOW: %w", err)
	}
	config.Ingest = IngestConfig{
		ClockSkew:       clockSkew,
		DuplicateWindow: duplicateWindow,
	}

	queueSize, err := strconv.Atoi(getEnv("NOTIFY_QUEUE_SIZE", "16"))
	if err != nil {
		return nil, fmt.Errorf("invalid NOTIFY_QUEUE_SIZE: %w", err)
	}
	config.Notify = NotifyConfig{
		QueueSize:   queueSize,
		SQSQueueURL: getEnv("NOTIFY_SQS_QUEUE_URL", ""),
	}

	maxRangeDays, err := strconv.Atoi(getEnv("REPORT_MAX_RANGE_DAYS", "366"))
	if err != nil {
		return nil, fmt.Errorf("invalid REPORT_MAX_RANGE_DAYS: %w", err)
	}
	config.Report = ReportConfig{MaxRangeDays: maxRangeDays}

	refreshInterval, err := time.ParseDuration(getEnv("DIRECTORY_REFRESH_INTERVAL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid DIRECTORY_REFRESH_INTERVAL: %w", err)
	}
	config.Directory = DirectoryConfig{RefreshInterval: refreshInterval}

	tolerance, err := strconv.Atoi(getEnv("SCHEDULE_TOLERANCE_MINUTES", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULE_TOLERANCE_MINUTES: %w", err)
	}
	altCloseDay, err := parseWeekday(getEnv("SCHEDULE_EXTENDED_ALT_CLOSE_DAY", "friday"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULE_EXTENDED_ALT_CLOSE_DAY: %w", err)
	}
	config.Schedule = ScheduleConfig{
		NormalEntry:         getEnv("SCHEDULE_NORMAL_ENTRY", "08:00"),
		NormalExit:          getEnv("SCHEDULE_NORMAL_EXIT", "17:00"),
		ToleranceMinutes:    tolerance,
		ExtendedAltClose:    getEnv("SCHEDULE_EXTENDED_ALT_CLOSE", "16:00"),
		ExtendedAltCloseDay: altCloseDay,
	}

	config.Device = DeviceConfig{
		Host:      getEnv("DEVICE_HOST", ""),
		Username:  getEnv("DEVICE_USERNAME", "admin"),
		Password:  getEnv("DEVICE_PASSWORD", ""),
		AutoStart: getEnv("DEVICE_AUTOSTART", "true") == "true",
	}

	config.AWS = AWSConfig{
		Region:   getEnv("AWS_REGION", "us-east-1"),
		Endpoint: getEnv("AWS_ENDPOINT", ""),
	}

	config.Telemetry = TelemetryConfig{
		Endpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		Insecure: getEnv("OTEL_EXPORTER_OTLP_INSECURE", "true") == "true",
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "postgres":
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	case "mongodb":
		if c.Mongo.URI == "" {
			return fmt.Errorf("MONGODB_URI is required")
		}
	case "memory":
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.Storage.Driver)
	}

	if c.Ingest.ClockSkew < 0 {
		return fmt.Errorf("INGEST_CLOCK_SKEW must not be negative")
	}
	if c.Notify.QueueSize < 1 {
		return fmt.Errorf("NOTIFY_QUEUE_SIZE must be at least 1")
	}
	if c.Report.MaxRangeDays < 1 {
		return fmt.Errorf("REPORT_MAX_RANGE_DAYS must be at least 1")
	}
	if c.Device.Host != "" && c.Device.Password == "" {
		return fmt.Errorf("DEVICE_PASSWORD is required when DEVICE_HOST is set")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}
	return nil
}

// Location returns the calendar location used to bucket events into days.
func (c *Config) Location() (*time.Location, error) {
	if c.App.Timezone == "" || c.App.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.App.Timezone)
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string, fallback string) []string {
	value := getEnv(env, fallback)
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}

func parseWeekday(s string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), s) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}
