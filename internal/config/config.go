package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	StoreBackendREST     = "rest"
	StoreBackendPostgres = "postgres"

	IdentityBackendCookie = "cookie"
	IdentityBackendRedis  = "redis"
)

// Config holds all application configuration
type Config struct {
	Server   Server   `yaml:"server"`
	Store    Store    `yaml:"store"`
	Webhooks Webhooks `yaml:"webhooks"`
	Identity Identity `yaml:"identity"`
	Meta     Meta     `yaml:"meta"`
	S3       S3       `yaml:"s3"`
	CORS     CORS     `yaml:"cors"`
	Review   Review   `yaml:"review"`
}

// Server holds HTTP server configuration
type Server struct {
	Host         string        `yaml:"host" env:"SERVER_HOST" env-default:"0.0.0.0"`
	Port         string        `yaml:"port" env:"SERVER_PORT" env-default:"8080"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" env-default:"3m"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" env-default:"60s"`
	// RequestTimeout bounds a whole request, outbound webhook calls included
	RequestTimeout time.Duration `yaml:"request_timeout" env:"SERVER_REQUEST_TIMEOUT" env-default:"150s"`
}

// Address returns the full server address
func (s Server) Address() string {
	return s.Host + ":" + s.Port
}

// Store holds configuration of the external data store
type Store struct {
	// Backend is "rest" (PostgREST over HTTP) or "postgres" (direct pool)
	Backend string `yaml:"backend" env:"STORE_BACKEND" env-default:"rest"`

	SupabaseURL     string        `yaml:"supabase_url" env:"SUPABASE_URL"`
	SupabaseAnonKey string        `yaml:"supabase_anon_key" env:"SUPABASE_ANON_KEY"`
	RESTTimeout     time.Duration `yaml:"rest_timeout" env:"STORE_REST_TIMEOUT" env-default:"30s"`

	PostgresDSN  string        `yaml:"postgres_dsn" env:"DATABASE_URL"`
	MaxConns     int32         `yaml:"max_conns" env:"DB_MAX_CONNS" env-default:"10"`
	MinConns     int32         `yaml:"min_conns" env:"DB_MIN_CONNS" env-default:"1"`
	ConnLifetime time.Duration `yaml:"conn_lifetime" env:"DB_CONN_LIFETIME" env-default:"5m"`
}

// Webhooks holds the automation-service endpoints
type Webhooks struct {
	GenerateURL string `yaml:"generate_url" env:"WEBHOOK_GENERATE_URL"`
	ConnectURL  string `yaml:"connect_url" env:"WEBHOOK_CONNECT_URL"`
	PublishURL  string `yaml:"publish_url" env:"WEBHOOK_PUBLISH_URL"`
	// Timeout applies to every webhook call; zero disables it
	Timeout time.Duration `yaml:"timeout" env:"WEBHOOK_TIMEOUT" env-default:"2m"`
}

// Identity holds configuration of browser identity persistence
type Identity struct {
	DefaultUserID string        `yaml:"default_user_id" env:"IDENTITY_DEFAULT_USER_ID" env-default:"demo-user-123"`
	Backend       string        `yaml:"backend" env:"IDENTITY_BACKEND" env-default:"cookie"`
	CookieMaxAge  time.Duration `yaml:"cookie_max_age" env:"IDENTITY_COOKIE_MAX_AGE" env-default:"8760h"`
	CookieSecure  bool          `yaml:"cookie_secure" env:"IDENTITY_COOKIE_SECURE" env-default:"false"`
	RedisAddr     string        `yaml:"redis_addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisPassword string        `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int           `yaml:"redis_db" env:"REDIS_DB" env-default:"0"`
	SessionTTL    time.Duration `yaml:"session_ttl" env:"IDENTITY_SESSION_TTL" env-default:"720h"`
}

// Meta holds Facebook OAuth configuration
type Meta struct {
	AppID        string `yaml:"app_id" env:"META_APP_ID" env-default:"1962199107730228"`
	GraphVersion string `yaml:"graph_version" env:"META_GRAPH_VERSION" env-default:"v18.0"`
	// RedirectBaseURL is the public origin of this service; the callback path is appended
	RedirectBaseURL string `yaml:"redirect_base_url" env:"META_REDIRECT_BASE_URL" env-default:"http://localhost:8080"`
}

// RedirectURI returns the OAuth callback URL
func (m Meta) RedirectURI() string {
	return strings.TrimRight(m.RedirectBaseURL, "/") + "/connect/callback"
}

// S3 holds S3-compatible image storage configuration
type S3 struct {
	Enabled         bool   `yaml:"enabled" env:"S3_ENABLED" env-default:"false"`
	Endpoint        string `yaml:"endpoint" env:"S3_ENDPOINT" env-default:"http://localhost:9000"`
	AccessKeyID     string `yaml:"access_key_id" env:"S3_ACCESS_KEY_ID" env-default:"minioadmin"`
	SecretAccessKey string `yaml:"secret_access_key" env:"S3_SECRET_ACCESS_KEY" env-default:"minioadmin"`
	Bucket          string `yaml:"bucket" env:"S3_BUCKET" env-default:"post-images"`
	Region          string `yaml:"region" env:"S3_REGION" env-default:"us-east-1"`
	PublicURL       string `yaml:"public_url" env:"S3_PUBLIC_URL" env-default:"http://localhost:9000/post-images"`
	MaxUploadSize   int64  `yaml:"max_upload_size" env:"S3_MAX_UPLOAD_SIZE" env-default:"10485760"`
}

// Review holds limits of the in-memory review boards
type Review struct {
	MaxBoards int           `yaml:"max_boards" env:"REVIEW_MAX_BOARDS" env-default:"1000"`
	BoardTTL  time.Duration `yaml:"board_ttl" env:"REVIEW_BOARD_TTL" env-default:"30m"`
}

// CORS holds cross-origin settings of the JSON API
type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-default:"http://localhost:5173" env-separator:","`
}

// Validate checks that the selected backends have what they need
func (c Config) Validate() error {
	var errs []error

	switch c.Store.Backend {
	case StoreBackendREST:
		if c.Store.SupabaseURL == "" || c.Store.SupabaseAnonKey == "" {
			errs = append(errs, errors.New("SUPABASE_URL and SUPABASE_ANON_KEY are required for the rest store"))
		}
	case StoreBackendPostgres:
		if c.Store.PostgresDSN == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store backend %q", c.Store.Backend))
	}

	switch c.Identity.Backend {
	case IdentityBackendCookie, IdentityBackendRedis:
	default:
		errs = append(errs, fmt.Errorf("unknown identity backend %q", c.Identity.Backend))
	}

	return errors.Join(errs...)
}

// MustLoad loads configuration from environment and panics on error
func MustLoad() Config {
	// Load .env file if exists (for development)
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	return cfg
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
