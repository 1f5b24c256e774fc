package config

import (
	"errors"
	"io/fs"
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
	Env  string
	Port int

	CORS          CORSConfig
	Log           LogConfig
	ReportAPI     ReportAPIConfig
	Proof         ProofConfig
	Export        ExportConfig
	Sessions      SessionConfig
	Notifications NotificationConfig
	Redis         RedisConfig
	Database      DatabaseConfig
}

type DatabaseConfig struct {
	Host          string
	Port          int
	User          string
	Password      string
	Name          string
	SSLMode       string
	MaxOpenConns  int
	MaxIdleConns  int
	MigrationsDir string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// ReportAPIConfig points at the upstream report backend.
type ReportAPIConfig struct {
	BaseURL string
	Path    string
	// Timeout of zero leaves upstream calls unbounded.
	Timeout time.Duration
}

// ProofConfig constrains proof document selection before upload.
type ProofConfig struct {
	MaxFileSizeBytes  int64
	AllowedExtensions []string
}

// ExportConfig controls local export output and the export audit log.
type ExportConfig struct {
	OutputDir     string
	LogEnabled    bool
	LogWorkers    int
	LogMaxRetries int
	LogBufferSize int
}

// SessionConfig tunes per-session table retention for the HTTP console.
type SessionConfig struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

// NotificationConfig toggles the redis-backed transient notification store.
type NotificationConfig struct {
	Enabled bool
	TTL     time.Duration
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
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.ReportAPI = ReportAPIConfig{
		BaseURL: strings.TrimRight(v.GetString("REPORT_API_BASE_URL"), "/"),
		Path:    v.GetString("REPORT_API_PATH"),
		Timeout: parseDuration(v.GetString("REPORT_API_TIMEOUT"), 0),
	}

	maxProof := v.GetInt64("PROOF_MAX_FILE_SIZE")
	if maxProof <= 0 {
		maxProof = 10 * 1024 * 1024
	}
	cfg.Proof = ProofConfig{
		MaxFileSizeBytes:  maxProof,
		AllowedExtensions: splitAndTrim(strings.ToLower(v.GetString("PROOF_ALLOWED_EXTENSIONS"))),
	}

	cfg.Export = ExportConfig{
		OutputDir:     v.GetString("EXPORT_OUTPUT_DIR"),
		LogEnabled:    v.GetBool("ENABLE_EXPORT_LOG"),
		LogWorkers:    v.GetInt("EXPORT_LOG_WORKERS"),
		LogMaxRetries: v.GetInt("EXPORT_LOG_RETRIES"),
		LogBufferSize: v.GetInt("EXPORT_LOG_BUFFER"),
	}

	cfg.Sessions = SessionConfig{
		TTL:             parseDuration(v.GetString("SESSION_TTL"), 30*time.Minute),
		CleanupInterval: parseDuration(v.GetString("SESSION_CLEANUP_INTERVAL"), 5*time.Minute),
	}

	cfg.Notifications = NotificationConfig{
		Enabled: v.GetBool("ENABLE_NOTIFICATIONS"),
		TTL:     parseDuration(v.GetString("NOTIFICATION_TTL"), time.Minute),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Database = DatabaseConfig{
		Host:          v.GetString("DB_HOST"),
		Port:          v.GetInt("DB_PORT"),
		User:          v.GetString("DB_USER"),
		Password:      v.GetString("DB_PASSWORD"),
		Name:          v.GetString("DB_NAME"),
		SSLMode:       v.GetString("DB_SSL_MODE"),
		MaxOpenConns:  v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns:  v.GetInt("DB_MAX_IDLE_CONNS"),
		MigrationsDir: v.GetString("DB_MIGRATIONS_DIR"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("REPORT_API_BASE_URL", "http://localhost:3000")
	v.SetDefault("REPORT_API_PATH", "/api/reports")
	v.SetDefault("REPORT_API_TIMEOUT", "0s")

	v.SetDefault("PROOF_MAX_FILE_SIZE", 10*1024*1024)
	v.SetDefault("PROOF_ALLOWED_EXTENSIONS", ".jpg,.png,.pdf")

	v.SetDefault("EXPORT_OUTPUT_DIR", ".")
	v.SetDefault("ENABLE_EXPORT_LOG", false)
	v.SetDefault("EXPORT_LOG_WORKERS", 1)
	v.SetDefault("EXPORT_LOG_RETRIES", 3)
	v.SetDefault("EXPORT_LOG_BUFFER", 64)

	v.SetDefault("SESSION_TTL", "30m")
	v.SetDefault("SESSION_CLEANUP_INTERVAL", "5m")

	v.SetDefault("ENABLE_NOTIFICATIONS", false)
	v.SetDefault("NOTIFICATION_TTL", "1m")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "pengelola_bansos")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 5)
	v.SetDefault("DB_MAX_IDLE_CONNS", 2)
	v.SetDefault("DB_MIGRATIONS_DIR", "migrations")
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
