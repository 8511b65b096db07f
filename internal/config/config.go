package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	DB        DBConfig
	JWT       JWTConfig
	S3        S3Config
	Detection DetectionConfig
	Ingest    IngestConfig
	Queue     QueueConfig
	Email     EmailConfig
	CORS      CORSConfig
	Log       LogConfig
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

// JWTConfig holds JWT signing and expiry settings for the review surface.
type JWTConfig struct {
	Secret             string        `mapstructure:"secret"`
	AccessTokenExpiry  time.Duration `mapstructure:"access_expiry"`
	RefreshTokenExpiry time.Duration `mapstructure:"refresh_expiry"`
	Issuer             string        `mapstructure:"issuer"`
}

// S3Config holds object storage settings for stored documents.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// DetectionConfig holds scoring and routing settings for the detection engine.
//
// RawWeight and MatchWeight blend the detector's raw confidence with the
// catalog match percentage. The 0.5/0.5 default is deliberate but
// configurable; the weights are normalized when they do not sum to 1.
type DetectionConfig struct {
	RawWeight         float64 `mapstructure:"raw_weight"`
	MatchWeight       float64 `mapstructure:"match_weight"`
	ApprovalThreshold float64 `mapstructure:"approval_threshold"`
	// FallbackCase, when set, receives detections whose candidate parse case
	// is not in the catalog instead of failing them.
	FallbackCase string `mapstructure:"fallback_case"`
	CacheSize    int    `mapstructure:"cache_size"`
}

// IngestConfig holds downstream ingestion settings.
type IngestConfig struct {
	// Provider selects the ingestor implementation: "http" posts approved
	// documents to Endpoint, "noop" logs them (development).
	Provider string        `mapstructure:"provider"`
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// QueueConfig holds approval queue settings.
type QueueConfig struct {
	DefaultListLimit int `mapstructure:"default_list_limit"`
	MaxListLimit     int `mapstructure:"max_list_limit"`
}

// EmailConfig holds reviewer notification settings.
type EmailConfig struct {
	Provider     string `mapstructure:"provider"`
	Region       string `mapstructure:"region"`
	FromAddress  string `mapstructure:"from_address"`
	FromName     string `mapstructure:"from_name"`
	ReviewerList string `mapstructure:"reviewer_list"`
	ConsoleURL   string `mapstructure:"console_url"`
}

// Recipients splits the comma-separated reviewer notification list.
func (e *EmailConfig) Recipients() []string {
	var out []string
	for _, a := range strings.Split(e.ReviewerList, ",") {
		a = strings.TrimSpace(a)
		if a != "" {
			out = append(out, a)
		}
	}
	return out
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the PARSEGATE_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PARSEGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "parsegate")
	v.SetDefault("db.password", "parsegate_secret")
	v.SetDefault("db.name", "parsegate_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.access_expiry", "15m")
	v.SetDefault("jwt.refresh_expiry", "168h")
	v.SetDefault("jwt.issuer", "parsegate")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "parsegate-documents")
	v.SetDefault("s3.endpoint", "")

	// Detection defaults
	v.SetDefault("detection.raw_weight", 0.5)
	v.SetDefault("detection.match_weight", 0.5)
	v.SetDefault("detection.approval_threshold", 0.75)
	v.SetDefault("detection.fallback_case", "")
	v.SetDefault("detection.cache_size", 512)

	// Ingest defaults
	v.SetDefault("ingest.provider", "noop")
	v.SetDefault("ingest.endpoint", "")
	v.SetDefault("ingest.timeout", "30s")

	// Queue defaults
	v.SetDefault("queue.default_list_limit", 100)
	v.SetDefault("queue.max_list_limit", 1000)

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "us-east-1")
	v.SetDefault("email.from_address", "noreply@parsegate.local")
	v.SetDefault("email.from_name", "Parsegate")
	v.SetDefault("email.reviewer_list", "")
	v.SetDefault("email.console_url", "http://localhost:3000")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://localhost:5173")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	cfg := &Config{}
	cfg.Server = ServerConfig{
		Port:         v.GetString("server.port"),
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
		Secret:             v.GetString("jwt.secret"),
		AccessTokenExpiry:  v.GetDuration("jwt.access_expiry"),
		RefreshTokenExpiry: v.GetDuration("jwt.refresh_expiry"),
		Issuer:             v.GetString("jwt.issuer"),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
	}
	cfg.Detection = DetectionConfig{
		RawWeight:         v.GetFloat64("detection.raw_weight"),
		MatchWeight:       v.GetFloat64("detection.match_weight"),
		ApprovalThreshold: v.GetFloat64("detection.approval_threshold"),
		FallbackCase:      v.GetString("detection.fallback_case"),
		CacheSize:         v.GetInt("detection.cache_size"),
	}
	cfg.Ingest = IngestConfig{
		Provider: v.GetString("ingest.provider"),
		Endpoint: v.GetString("ingest.endpoint"),
		Timeout:  v.GetDuration("ingest.timeout"),
	}
	cfg.Queue = QueueConfig{
		DefaultListLimit: v.GetInt("queue.default_list_limit"),
		MaxListLimit:     v.GetInt("queue.max_list_limit"),
	}
	cfg.Email = EmailConfig{
		Provider:     v.GetString("email.provider"),
		Region:       v.GetString("email.region"),
		FromAddress:  v.GetString("email.from_address"),
		FromName:     v.GetString("email.from_name"),
		ReviewerList: v.GetString("email.reviewer_list"),
		ConsoleURL:   v.GetString("email.console_url"),
	}
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{AllowedOrigins: corsOrigins}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	return cfg, nil
}
