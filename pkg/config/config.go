package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env         string
	Port        int
	APIPrefix   string
	AutoMigrate bool

	Database DatabaseConfig
	Redis    RedisConfig
	Session  SessionConfig
	CORS     CORSConfig
	Log      LogConfig
	Cache    CacheConfig
	Schedule ScheduleConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// SessionConfig governs the login session tokens handed to clients.
// PruneInterval of zero disables the background cleanup of expired sessions.
type SessionConfig struct {
	Secret        string
	TTL           time.Duration
	Issuer        string
	PruneInterval time.Duration
	PruneGrace    time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
	MaxAge         time.Duration
}

// LogConfig selects encoder and level; File enables a rotating file sink.
type LogConfig struct {
	Level         string
	Format        string
	File          string
	FileMaxSizeMB int
	FileBackups   int
	FileMaxAge    int
}

// CacheConfig toggles Redis backed collection caching.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// ScheduleConfig controls how lesson times are interpreted for agendas and recurrence.
type ScheduleConfig struct {
	Timezone           string
	AgendaLookbackDays int
	MaxOccurrences     int
}

// Location resolves the configured schedule timezone, falling back to UTC.
func (c ScheduleConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")
	cfg.AutoMigrate = v.GetBool("AUTO_MIGRATE")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Session = SessionConfig{
		Secret:        v.GetString("SESSION_SECRET"),
		TTL:           parseDuration(v.GetString("SESSION_TTL"), 7*24*time.Hour),
		Issuer:        v.GetString("SESSION_ISSUER"),
		PruneInterval: parseDuration(v.GetString("SESSION_PRUNE_INTERVAL"), time.Hour),
		PruneGrace:    parseDuration(v.GetString("SESSION_PRUNE_GRACE"), 24*time.Hour),
	}

	cfg.CORS = CORSConfig{
		AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS")),
		MaxAge:         parseDuration(v.GetString("CORS_MAX_AGE"), 10*time.Minute),
	}

	cfg.Log = LogConfig{
		Level:         v.GetString("LOG_LEVEL"),
		Format:        v.GetString("LOG_FORMAT"),
		File:          v.GetString("LOG_FILE"),
		FileMaxSizeMB: v.GetInt("LOG_FILE_MAX_SIZE_MB"),
		FileBackups:   v.GetInt("LOG_FILE_MAX_BACKUPS"),
		FileMaxAge:    v.GetInt("LOG_FILE_MAX_AGE_DAYS"),
	}

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("ENABLE_CACHE"),
		TTL:     parseDuration(v.GetString("CACHE_TTL"), 2*time.Minute),
	}

	lookback := v.GetInt("AGENDA_LOOKBACK_DAYS")
	if lookback < 0 {
		lookback = 7
	}
	maxOccurrences := v.GetInt("SCHEDULE_MAX_OCCURRENCES")
	if maxOccurrences <= 0 {
		maxOccurrences = 260
	}
	cfg.Schedule = ScheduleConfig{
		Timezone:           v.GetString("SCHEDULE_TIMEZONE"),
		AgendaLookbackDays: lookback,
		MaxOccurrences:     maxOccurrences,
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api")
	v.SetDefault("AUTO_MIGRATE", false)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "tutor_desk")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("SESSION_SECRET", "dev_session_secret")
	v.SetDefault("SESSION_TTL", "168h")
	v.SetDefault("SESSION_ISSUER", "tutor-desk")
	v.SetDefault("SESSION_PRUNE_INTERVAL", "1h")
	v.SetDefault("SESSION_PRUNE_GRACE", "24h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("CORS_MAX_AGE", "10m")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("LOG_FILE_MAX_SIZE_MB", 100)
	v.SetDefault("LOG_FILE_MAX_BACKUPS", 3)
	v.SetDefault("LOG_FILE_MAX_AGE_DAYS", 28)

	v.SetDefault("ENABLE_CACHE", false)
	v.SetDefault("CACHE_TTL", "2m")

	v.SetDefault("SCHEDULE_TIMEZONE", "UTC")
	v.SetDefault("AGENDA_LOOKBACK_DAYS", 7)
	v.SetDefault("SCHEDULE_MAX_OCCURRENCES", 260)
}

// isMissingFile covers viper reporting an explicit SetConfigFile path that does not exist.
func isMissingFile(err error) bool {
	return strings.Contains(err.Error(), "no such file or directory")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
