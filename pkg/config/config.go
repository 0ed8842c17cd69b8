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
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Scheduler SchedulerConfig
	Training  TrainingConfig
	Export    ExportConfig
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

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SchedulerConfig tunes the schedule optimization engine.
type SchedulerConfig struct {
	MinSessionHours float64
	MaxSessionHours float64
	MaxItems        int
	MaxSlots        int
	PolicyPath      string
	CacheTTL        time.Duration
}

// TrainingConfig governs asynchronous policy training runs.
type TrainingConfig struct {
	Enabled       bool
	Workers       int
	DefaultBudget int
	ScenarioCount int
}

// ExportConfig controls study-plan export rendering.
type ExportConfig struct {
	Enabled bool
	Title   string
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
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

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

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Scheduler = SchedulerConfig{
		MinSessionHours: v.GetFloat64("SCHEDULER_MIN_SESSION_HOURS"),
		MaxSessionHours: v.GetFloat64("SCHEDULER_MAX_SESSION_HOURS"),
		MaxItems:        v.GetInt("SCHEDULER_MAX_ITEMS"),
		MaxSlots:        v.GetInt("SCHEDULER_MAX_SLOTS"),
		PolicyPath:      v.GetString("SCHEDULER_POLICY_PATH"),
		CacheTTL:        parseDuration(v.GetString("SCHEDULER_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Training = TrainingConfig{
		Enabled:       v.GetBool("ENABLE_TRAINING"),
		Workers:       v.GetInt("TRAINING_WORKERS"),
		DefaultBudget: v.GetInt("TRAINING_DEFAULT_BUDGET"),
		ScenarioCount: v.GetInt("TRAINING_SCENARIO_COUNT"),
	}

	cfg.Export = ExportConfig{
		Enabled: v.GetBool("ENABLE_EXPORT"),
		Title:   v.GetString("EXPORT_TITLE"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "aptora")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SCHEDULER_MIN_SESSION_HOURS", 0.5)
	v.SetDefault("SCHEDULER_MAX_SESSION_HOURS", 3.0)
	v.SetDefault("SCHEDULER_MAX_ITEMS", 20)
	v.SetDefault("SCHEDULER_MAX_SLOTS", 50)
	v.SetDefault("SCHEDULER_POLICY_PATH", "./models/policy.json")
	v.SetDefault("SCHEDULER_CACHE_TTL", "5m")

	v.SetDefault("ENABLE_TRAINING", true)
	v.SetDefault("TRAINING_WORKERS", 1)
	v.SetDefault("TRAINING_DEFAULT_BUDGET", 50000)
	v.SetDefault("TRAINING_SCENARIO_COUNT", 20)

	v.SetDefault("ENABLE_EXPORT", true)
	v.SetDefault("EXPORT_TITLE", "Aptora Study Plan")
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
