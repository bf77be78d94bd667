package config

import (
	"log"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server   Server   `yaml:"server"`
	Backend  Backend  `yaml:"backend"`
	Poll     Poll     `yaml:"poll"`
	Database Database `yaml:"database"`
	S3       S3       `yaml:"s3"`
}

// Server holds HTTP server configuration
type Server struct {
	Host         string        `yaml:"host" env:"SERVER_HOST" env-default:"0.0.0.0"`
	Port         string        `yaml:"port" env:"SERVER_PORT" env-default:"8080"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" env-default:"15s"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" env-default:"60s"`
}

// Address returns the full server address
func (s Server) Address() string {
	return s.Host + ":" + s.Port
}

// Backend holds marketplace backend API configuration
type Backend struct {
	BaseURL  string        `yaml:"base_url" env:"BACKEND_BASE_URL" env-default:"http://localhost:8000"`
	APIToken string        `yaml:"api_token" env:"BACKEND_API_TOKEN"`
	Timeout  time.Duration `yaml:"timeout" env:"BACKEND_TIMEOUT" env-default:"30s"`
}

// Poll holds viewer polling configuration
type Poll struct {
	InboxInterval      time.Duration `yaml:"inbox_interval" env:"POLL_INBOX_INTERVAL" env-default:"15s"`
	TranscriptInterval time.Duration `yaml:"transcript_interval" env:"POLL_TRANSCRIPT_INTERVAL" env-default:"5s"`
	ViewerTTL          time.Duration `yaml:"viewer_ttl" env:"VIEWER_TTL" env-default:"10m"`
	JanitorInterval    time.Duration `yaml:"janitor_interval" env:"VIEWER_JANITOR_INTERVAL" env-default:"1m"`
}

// Database holds the optional event-archive database configuration.
// Archiving and statistics are disabled when no DSN is set.
type Database struct {
	PostgresDSN string `yaml:"postgres_dsn" env:"DATABASE_URL"`
	MaxConns    int32  `yaml:"max_conns" env:"DB_MAX_CONNS" env-default:"10"`
	MinConns    int32  `yaml:"min_conns" env:"DB_MIN_CONNS" env-default:"2"`
}

// S3 holds the optional avatar-mirror storage configuration.
// Mirroring is disabled unless Enabled is set.
type S3 struct {
	Enabled         bool   `yaml:"enabled" env:"S3_ENABLED" env-default:"false"`
	Endpoint        string `yaml:"endpoint" env:"S3_ENDPOINT" env-default:"http://localhost:9000"`
	AccessKeyID     string `yaml:"access_key_id" env:"S3_ACCESS_KEY_ID" env-default:"minioadmin"`
	SecretAccessKey string `yaml:"secret_access_key" env:"S3_SECRET_ACCESS_KEY" env-default:"minioadmin"`
	Bucket          string `yaml:"bucket" env:"S3_BUCKET" env-default:"avatars"`
	Region          string `yaml:"region" env:"S3_REGION" env-default:"us-east-1"`
	PublicURL       string `yaml:"public_url" env:"S3_PUBLIC_URL" env-default:"http://localhost:9000/avatars"`
}

// MustLoad loads configuration from environment and panics on error
func MustLoad() Config {
	// Load .env file if exists (for development)
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	return cfg
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
