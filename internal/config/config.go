package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	DB       DBConfig
	JWT      JWTConfig
	S3       S3Config
	Log      LogConfig
	Email    EmailConfig
	Queue    QueueConfig
	Pipeline PipelineConfig
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

// JWTConfig holds the bearer-token settings for approver identity.
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
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

// EmailConfig holds approval digest delivery settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	ApproverTo  string `mapstructure:"approver_to"`
}

// QueueConfig holds run dispatcher settings.
type QueueConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// PipelineConfig holds the run coordinator options.
type PipelineConfig struct {
	BucketPrefix     string         `mapstructure:"bucket_prefix"`
	StrictMapping    bool           `mapstructure:"strict_mapping"`
	Overwrite        bool           `mapstructure:"overwrite"`
	DefaultGSTRate   string         `mapstructure:"default_gst_rate"`
	Rounding         string         `mapstructure:"rounding"`
	TemplateDir      string         `mapstructure:"template_dir"`
	WorkDir          string         `mapstructure:"work_dir"`
	StageTimeoutSecs map[string]int `mapstructure:"stage_timeout_secs"`
}

// Load reads configuration from environment variables with the TALLYFLOW_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TALLYFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "tallyflow")
	v.SetDefault("db.password", "tallyflow_secret")
	v.SetDefault("db.name", "tallyflow_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.issuer", "tallyflow")

	// S3 defaults
	v.SetDefault("s3.region", "ap-south-1")
	v.SetDefault("s3.bucket", "tallyflow-artifacts")
	v.SetDefault("s3.endpoint", "")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "ap-south-1")
	v.SetDefault("email.from_address", "noreply@tallyflow.local")
	v.SetDefault("email.from_name", "TallyFlow")
	v.SetDefault("email.approver_to", "")

	// Queue defaults
	v.SetDefault("queue.concurrency", 4)

	// Pipeline defaults
	v.SetDefault("pipeline.bucket_prefix", "runs")
	v.SetDefault("pipeline.strict_mapping", false)
	v.SetDefault("pipeline.overwrite", false)
	v.SetDefault("pipeline.default_gst_rate", "0.18")
	v.SetDefault("pipeline.rounding", "half_up")
	v.SetDefault("pipeline.template_dir", "./templates")
	v.SetDefault("pipeline.work_dir", os.TempDir())

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":               "TALLYFLOW_SERVER_PORT",
		"server.read_timeout":       "TALLYFLOW_SERVER_READ_TIMEOUT",
		"server.write_timeout":      "TALLYFLOW_SERVER_WRITE_TIMEOUT",
		"server.environment":        "TALLYFLOW_SERVER_ENVIRONMENT",
		"db.host":                   "TALLYFLOW_DB_HOST",
		"db.port":                   "TALLYFLOW_DB_PORT",
		"db.user":                   "TALLYFLOW_DB_USER",
		"db.password":               "TALLYFLOW_DB_PASSWORD",
		"db.name":                   "TALLYFLOW_DB_NAME",
		"db.sslmode":                "TALLYFLOW_DB_SSLMODE",
		"db.max_open":               "TALLYFLOW_DB_MAX_OPEN",
		"db.max_idle":               "TALLYFLOW_DB_MAX_IDLE",
		"jwt.secret":                "TALLYFLOW_JWT_SECRET",
		"jwt.issuer":                "TALLYFLOW_JWT_ISSUER",
		"s3.region":                 "TALLYFLOW_S3_REGION",
		"s3.bucket":                 "TALLYFLOW_S3_BUCKET",
		"s3.endpoint":               "TALLYFLOW_S3_ENDPOINT",
		"s3.access_key":             "TALLYFLOW_S3_ACCESS_KEY",
		"s3.secret_key":             "TALLYFLOW_S3_SECRET_KEY",
		"log.level":                 "TALLYFLOW_LOG_LEVEL",
		"log.format":                "TALLYFLOW_LOG_FORMAT",
		"email.provider":            "TALLYFLOW_EMAIL_PROVIDER",
		"email.region":              "TALLYFLOW_EMAIL_REGION",
		"email.from_address":        "TALLYFLOW_EMAIL_FROM_ADDRESS",
		"email.from_name":           "TALLYFLOW_EMAIL_FROM_NAME",
		"email.approver_to":         "TALLYFLOW_EMAIL_APPROVER_TO",
		"queue.concurrency":         "TALLYFLOW_QUEUE_CONCURRENCY",
		"pipeline.bucket_prefix":    "TALLYFLOW_PIPELINE_BUCKET_PREFIX",
		"pipeline.strict_mapping":   "TALLYFLOW_PIPELINE_STRICT_MAPPING",
		"pipeline.overwrite":        "TALLYFLOW_PIPELINE_OVERWRITE",
		"pipeline.default_gst_rate": "TALLYFLOW_PIPELINE_DEFAULT_GST_RATE",
		"pipeline.rounding":         "TALLYFLOW_PIPELINE_ROUNDING",
		"pipeline.template_dir":     "TALLYFLOW_PIPELINE_TEMPLATE_DIR",
		"pipeline.work_dir":         "TALLYFLOW_PIPELINE_WORK_DIR",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if
	// TALLYFLOW_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("TALLYFLOW_SERVER_PORT") == "" {
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
	cfg.JWT = JWTConfig{
		Secret: v.GetString("jwt.secret"),
		Issuer: v.GetString("jwt.issuer"),
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
	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
		ApproverTo:  v.GetString("email.approver_to"),
	}
	cfg.Queue = QueueConfig{
		Concurrency: v.GetInt("queue.concurrency"),
	}
	cfg.Pipeline = PipelineConfig{
		BucketPrefix:     v.GetString("pipeline.bucket_prefix"),
		StrictMapping:    v.GetBool("pipeline.strict_mapping"),
		Overwrite:        v.GetBool("pipeline.overwrite"),
		DefaultGSTRate:   v.GetString("pipeline.default_gst_rate"),
		Rounding:         v.GetString("pipeline.rounding"),
		TemplateDir:      v.GetString("pipeline.template_dir"),
		WorkDir:          v.GetString("pipeline.work_dir"),
		StageTimeoutSecs: stageTimeouts(v.GetStringMapString("pipeline.stage_timeout_secs")),
	}

	return cfg, nil
}

func stageTimeouts(raw map[string]string) map[string]int {
	out := make(map[string]int, len(raw))
	for stage, secs := range raw {
		n, err := strconv.Atoi(strings.TrimSpace(secs))
		if err != nil || n <= 0 {
			continue
		}
		out[stage] = n
	}
	return out
}
