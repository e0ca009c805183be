package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Submission policies for the ledger.
const (
	SubmissionPolicyPermissive = "permissive"
	SubmissionPolicyStrict     = "strict"
)

// Config holds application configuration
type Config struct {
	Server   ServerConfig   `envconfig:"SERVER"`
	Database DatabaseConfig `envconfig:"DB"`
	Redis    RedisConfig    `envconfig:"REDIS"`
	JWT      JWTConfig      `envconfig:"JWT"`
	Storage  StorageConfig  `envconfig:"STORAGE"`
	Meeting  MeetingConfig  `envconfig:"MEETING"`
	Realtime RealtimeConfig `envconfig:"REALTIME"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	Host            string        `envconfig:"HOST" default:"0.0.0.0"`
	Environment     string        `envconfig:"ENVIRONMENT" default:"development"`
	AllowedOrigins  []string      `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:3000"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host        string `envconfig:"HOST" default:"localhost"`
	Port        string `envconfig:"PORT" default:"5432"`
	User        string `envconfig:"USER" default:"postgres"`
	Password    string `envconfig:"PASSWORD" default:"postgres"`
	Name        string `envconfig:"NAME" default:"meeting_quality"`
	SSLMode     string `envconfig:"SSLMODE" default:"disable"`
	MaxConns    int    `envconfig:"MAX_CONNS" default:"25"`
	MinConns    int    `envconfig:"MIN_CONNS" default:"5"`
	AutoMigrate bool   `envconfig:"AUTO_MIGRATE" default:"true"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled       bool   `envconfig:"ENABLED" default:"true"`
	Host          string `envconfig:"HOST" default:"localhost"`
	Port          string `envconfig:"PORT" default:"6379"`
	Password      string `envconfig:"PASSWORD"`
	DB            int    `envconfig:"DB" default:"0"`
	EventsChannel string `envconfig:"EVENTS_CHANNEL" default:"meeting-quality:events"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	AccessSecret string        `envconfig:"ACCESS_SECRET"`
	AccessExpiry time.Duration `envconfig:"ACCESS_EXPIRY" default:"24h"`
	Issuer       string        `envconfig:"ISSUER" default:"meeting-quality"`
}

// StorageConfig holds report archive configuration
type StorageConfig struct {
	Enabled         bool          `envconfig:"ENABLED" default:"false"`
	Endpoint        string        `envconfig:"ENDPOINT" default:"localhost:9000"`
	AccessKeyID     string        `envconfig:"ACCESS_KEY" default:"minioadmin"`
	SecretAccessKey string        `envconfig:"SECRET_KEY" default:"minioadmin"`
	BucketName      string        `envconfig:"BUCKET" default:"meeting-quality"`
	UseSSL          bool          `envconfig:"USE_SSL" default:"false"`
	PublicURL       string        `envconfig:"PUBLIC_URL"`
	PresignExpiry   time.Duration `envconfig:"PRESIGN_EXPIRY" default:"1h"`
}

// MeetingConfig holds meeting workflow settings
type MeetingConfig struct {
	SubmissionPolicy   string        `envconfig:"SUBMISSION_POLICY" default:"permissive"`
	ActivationInterval time.Duration `envconfig:"ACTIVATION_INTERVAL" default:"1m"`
	ActivationLockTTL  time.Duration `envconfig:"ACTIVATION_LOCK_TTL" default:"50s"`
}

// RealtimeConfig holds websocket settings
type RealtimeConfig struct {
	MessagesPerSecond float64 `envconfig:"MESSAGES_PER_SECOND" default:"20"`
	Burst             int     `envconfig:"BURST" default:"40"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWT.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	switch c.Meeting.SubmissionPolicy {
	case SubmissionPolicyPermissive, SubmissionPolicyStrict:
	default:
		return fmt.Errorf("MEETING_SUBMISSION_POLICY must be %q or %q, got %q",
			SubmissionPolicyPermissive, SubmissionPolicyStrict, c.Meeting.SubmissionPolicy)
	}
	if c.Meeting.ActivationInterval <= 0 {
		return fmt.Errorf("MEETING_ACTIVATION_INTERVAL must be positive")
	}
	return nil
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}
