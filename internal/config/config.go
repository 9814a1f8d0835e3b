package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	DB       DBConfig
	S3       S3Config
	Log      LogConfig
	AI       AIConfig
	Pipeline PipelineConfig
	CORS     CORSConfig
}

// PipelineConfig holds analysis pipeline settings.
type PipelineConfig struct {
	BatchConcurrency   int  `mapstructure:"batch_concurrency"`
	ScoringConcurrency int  `mapstructure:"scoring_concurrency"`
	RunTimeoutSecs     int  `mapstructure:"run_timeout_secs"`
	UseAI              bool `mapstructure:"use_ai"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// AIProviderConfig holds settings for a single completion provider.
type AIProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// AIConfig holds language model gateway settings with multi-provider support.
type AIConfig struct {
	Primary   AIProviderConfig `mapstructure:"primary"`
	Secondary AIProviderConfig `mapstructure:"secondary"`
}

// PrimaryConfig returns the primary provider config, or nil if not configured.
func (a *AIConfig) PrimaryConfig() *AIProviderConfig {
	if a.Primary.Provider != "" {
		return &a.Primary
	}
	return nil
}

// SecondaryConfig returns the secondary provider config, or nil if not configured.
func (a *AIConfig) SecondaryConfig() *AIProviderConfig {
	if a.Secondary.Provider != "" {
		return &a.Secondary
	}
	return nil
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the EVIDOS_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("EVIDOS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "evidos")
	v.SetDefault("db.password", "evidos_secret")
	v.SetDefault("db.name", "evidos_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "evidos-artifacts")
	v.SetDefault("s3.endpoint", "")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// AI provider defaults
	v.SetDefault("ai.primary.provider", "openai")
	v.SetDefault("ai.primary.api_key", "")
	v.SetDefault("ai.primary.default_model", "gpt-4o-mini")
	v.SetDefault("ai.primary.timeout_secs", 60)
	v.SetDefault("ai.secondary.provider", "")
	v.SetDefault("ai.secondary.api_key", "")
	v.SetDefault("ai.secondary.default_model", "")
	v.SetDefault("ai.secondary.timeout_secs", 60)

	// Pipeline defaults
	v.SetDefault("pipeline.batch_concurrency", 3)
	v.SetDefault("pipeline.scoring_concurrency", 4)
	v.SetDefault("pipeline.run_timeout_secs", 300)
	v.SetDefault("pipeline.use_ai", true)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                  "EVIDOS_SERVER_PORT",
		"server.read_timeout":          "EVIDOS_SERVER_READ_TIMEOUT",
		"server.write_timeout":         "EVIDOS_SERVER_WRITE_TIMEOUT",
		"server.environment":           "EVIDOS_SERVER_ENVIRONMENT",
		"db.host":                      "EVIDOS_DB_HOST",
		"db.port":                      "EVIDOS_DB_PORT",
		"db.user":                      "EVIDOS_DB_USER",
		"db.password":                  "EVIDOS_DB_PASSWORD",
		"db.name":                      "EVIDOS_DB_NAME",
		"db.sslmode":                   "EVIDOS_DB_SSLMODE",
		"db.max_open":                  "EVIDOS_DB_MAX_OPEN",
		"db.max_idle":                  "EVIDOS_DB_MAX_IDLE",
		"s3.region":                    "EVIDOS_S3_REGION",
		"s3.bucket":                    "EVIDOS_S3_BUCKET",
		"s3.endpoint":                  "EVIDOS_S3_ENDPOINT",
		"s3.access_key":                "EVIDOS_S3_ACCESS_KEY",
		"s3.secret_key":                "EVIDOS_S3_SECRET_KEY",
		"log.level":                    "EVIDOS_LOG_LEVEL",
		"log.format":                   "EVIDOS_LOG_FORMAT",
		"cors.allowed_origins":         "EVIDOS_CORS_ALLOWED_ORIGINS",
		"ai.primary.provider":          "EVIDOS_AI_PRIMARY_PROVIDER",
		"ai.primary.api_key":           "EVIDOS_AI_PRIMARY_API_KEY",
		"ai.primary.default_model":     "EVIDOS_AI_PRIMARY_DEFAULT_MODEL",
		"ai.primary.timeout_secs":      "EVIDOS_AI_PRIMARY_TIMEOUT_SECS",
		"ai.secondary.provider":        "EVIDOS_AI_SECONDARY_PROVIDER",
		"ai.secondary.api_key":         "EVIDOS_AI_SECONDARY_API_KEY",
		"ai.secondary.default_model":   "EVIDOS_AI_SECONDARY_DEFAULT_MODEL",
		"ai.secondary.timeout_secs":    "EVIDOS_AI_SECONDARY_TIMEOUT_SECS",
		"pipeline.batch_concurrency":   "EVIDOS_PIPELINE_BATCH_CONCURRENCY",
		"pipeline.scoring_concurrency": "EVIDOS_PIPELINE_SCORING_CONCURRENCY",
		"pipeline.run_timeout_secs":    "EVIDOS_PIPELINE_RUN_TIMEOUT_SECS",
		"pipeline.use_ai":              "EVIDOS_PIPELINE_USE_AI",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if EVIDOS_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("EVIDOS_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	cfg.AI = AIConfig{
		Primary: AIProviderConfig{
			Provider:     v.GetString("ai.primary.provider"),
			APIKey:       v.GetString("ai.primary.api_key"),
			DefaultModel: v.GetString("ai.primary.default_model"),
			TimeoutSecs:  v.GetInt("ai.primary.timeout_secs"),
		},
		Secondary: AIProviderConfig{
			Provider:     v.GetString("ai.secondary.provider"),
			APIKey:       v.GetString("ai.secondary.api_key"),
			DefaultModel: v.GetString("ai.secondary.default_model"),
			TimeoutSecs:  v.GetInt("ai.secondary.timeout_secs"),
		},
	}

	cfg.Pipeline = PipelineConfig{
		BatchConcurrency:   v.GetInt("pipeline.batch_concurrency"),
		ScoringConcurrency: v.GetInt("pipeline.scoring_concurrency"),
		RunTimeoutSecs:     v.GetInt("pipeline.run_timeout_secs"),
		UseAI:              v.GetBool("pipeline.use_ai"),
	}

	return cfg, nil
}
