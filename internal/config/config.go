package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Email     EmailConfig
	Kafka     KafkaConfig
	Storage   StorageConfig
	Uploads   UploadsConfig
	RateLimit RateLimitConfig
	Movies    MoviesConfig
}

type ServerConfig struct {
	Port            string
	Env             string // dev or prod
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	TrustedOrigins  []string
}

type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	ChannelBinding string // "require" for Neon DB, empty for local
	AutoMigrate    bool
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

const (
	TokenTypePaseto = "paseto"
	TokenTypeJWT    = "jwt"
)

type AuthConfig struct {
	TokenType string
	// PASETO symmetric key (must be 32 bytes for v4.local)
	PasetoKey      []byte
	JWTSecret      []byte
	SessionTTL     time.Duration
	GoogleClientID string // empty disables POST /auth/google
}

const (
	EmailTransportSMTP  = "smtp"
	EmailTransportKafka = "kafka"
)

type EmailConfig struct {
	Transport    string
	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	From         string
	FrontendURL  string // base of the reset-password link
}

type KafkaConfig struct {
	Brokers      []string
	Topic        string
	GroupID      string
	SASLUser     string
	SASLPassword string
}

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

type StorageConfig struct {
	Driver string
}

const (
	UploadsDriverLocal  = "local"
	UploadsDriverS3     = "s3"
	UploadsDriverMemory = "memory"
)

type UploadsConfig struct {
	Driver         string
	Dir            string
	MaxSize        int64
	S3Bucket       string
	S3Region       string
	S3Endpoint     string // non-empty for MinIO and other S3-compatible stores
	S3AccessKey    string
	S3SecretKey    string
	S3UsePathStyle bool
}

const (
	RateLimitDriverRedis  = "redis"
	RateLimitDriverMemory = "memory"
)

type RateLimitConfig struct {
	Driver        string
	AuthPerMinute int
	EmailCooldown time.Duration
}

type MoviesConfig struct {
	RequireAuthForReads bool
}

// Load reads configuration from environment variables.
// A .env file in the working directory is applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			Env:             getEnv("APP_ENV", "dev"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
			TrustedOrigins:  getSliceEnv("TRUSTED_ORIGINS", []string{"http://localhost:5173"}),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			DBName:         getEnv("DB_NAME", "favorite_movies"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			ChannelBinding: getEnv("DB_CHANNEL_BINDING", ""),
			AutoMigrate:    getBoolEnv("DB_AUTO_MIGRATE", true),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			TokenType:      strings.ToLower(getEnv("AUTH_TOKEN_TYPE", TokenTypePaseto)),
			PasetoKey:      []byte(getEnv("PASETO_KEY", "")),
			JWTSecret:      []byte(getEnv("JWT_SECRET", "")),
			SessionTTL:     getDurationEnv("SESSION_TTL", 24*time.Hour),
			GoogleClientID: getEnv("GOOGLE_CLIENT_ID", ""),
		},
		Email: EmailConfig{
			Transport:    strings.ToLower(getEnv("EMAIL_TRANSPORT", EmailTransportSMTP)),
			SMTPHost:     getEnv("SMTP_HOST", ""),
			SMTPPort:     getEnv("SMTP_PORT", "587"),
			SMTPUser:     getEnv("SMTP_USER", ""),
			SMTPPassword: getEnv("SMTP_PASS", ""),
			From:         getEnv("EMAIL_FROM", "Favorite Movies <noreply@favorite-movies.local>"),
			FrontendURL:  strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:5173"), "/"),
		},
		Kafka: KafkaConfig{
			Brokers:      getSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
			Topic:        getEnv("KAFKA_TOPIC", "password-reset-emails"),
			GroupID:      getEnv("KAFKA_GROUP_ID", "favorite-movies-mailer"),
			SASLUser:     getEnv("KAFKA_SASL_USER", ""),
			SASLPassword: getEnv("KAFKA_SASL_PASSWORD", ""),
		},
		Storage: StorageConfig{
			Driver: strings.ToLower(getEnv("STORAGE_DRIVER", StorageDriverPostgres)),
		},
		Uploads: UploadsConfig{
			Driver:         strings.ToLower(getEnv("UPLOADS_DRIVER", UploadsDriverLocal)),
			Dir:            getEnv("UPLOADS_DIR", "./uploads"),
			MaxSize:        int64(getIntEnv("UPLOADS_MAX_BYTES", 5*1024*1024)),
			S3Bucket:       getEnv("S3_BUCKET", ""),
			S3Region:       getEnv("S3_REGION", "us-east-1"),
			S3Endpoint:     getEnv("S3_ENDPOINT", ""),
			S3AccessKey:    getEnv("S3_ACCESS_KEY", ""),
			S3SecretKey:    getEnv("S3_SECRET_KEY", ""),
			S3UsePathStyle: getBoolEnv("S3_USE_PATH_STYLE", false),
		},
		RateLimit: RateLimitConfig{
			Driver:        strings.ToLower(getEnv("RATE_LIMIT_DRIVER", RateLimitDriverRedis)),
			AuthPerMinute: getIntEnv("RATE_LIMIT_AUTH_PER_MINUTE", 10),
			EmailCooldown: getDurationEnv("RATE_LIMIT_EMAIL_COOLDOWN", time.Minute),
		},
		Movies: MoviesConfig{
			RequireAuthForReads: getBoolEnv("MOVIES_REQUIRE_AUTH_FOR_READS", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks enum values and key lengths.
func (c *Config) Validate() error {
	switch c.Auth.TokenType {
	case TokenTypePaseto:
		if len(c.Auth.PasetoKey) != 32 {
			return fmt.Errorf("PASETO_KEY must be exactly 32 bytes, got %d", len(c.Auth.PasetoKey))
		}
	case TokenTypeJWT:
		if len(c.Auth.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 bytes, got %d", len(c.Auth.JWTSecret))
		}
	default:
		return fmt.Errorf("AUTH_TOKEN_TYPE must be %q or %q, got %q", TokenTypePaseto, TokenTypeJWT, c.Auth.TokenType)
	}

	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}

	if err := oneOf("EMAIL_TRANSPORT", c.Email.Transport, EmailTransportSMTP, EmailTransportKafka); err != nil {
		return err
	}
	if err := oneOf("STORAGE_DRIVER", c.Storage.Driver, StorageDriverPostgres, StorageDriverMemory); err != nil {
		return err
	}
	if err := oneOf("UPLOADS_DRIVER", c.Uploads.Driver, UploadsDriverLocal, UploadsDriverS3, UploadsDriverMemory); err != nil {
		return err
	}
	if err := oneOf("RATE_LIMIT_DRIVER", c.RateLimit.Driver, RateLimitDriverRedis, RateLimitDriverMemory); err != nil {
		return err
	}

	if c.Uploads.Driver == UploadsDriverS3 && c.Uploads.S3Bucket == "" {
		return fmt.Errorf("S3_BUCKET is required when UPLOADS_DRIVER=s3")
	}
	if c.Email.Transport == EmailTransportKafka && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when EMAIL_TRANSPORT=kafka")
	}
	if c.Uploads.MaxSize <= 0 {
		return fmt.Errorf("UPLOADS_MAX_BYTES must be positive")
	}

	return nil
}

func (c *DatabaseConfig) ConnectionString() string {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)

	if c.ChannelBinding != "" {
		connStr += fmt.Sprintf(" channel_binding=%s", c.ChannelBinding)
	}

	return connStr
}

// Address returns Redis connection address (host:port)
func (c *RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// Address is the listen address of the HTTP server.
func (c *ServerConfig) Address() string {
	return ":" + c.Port
}

// IsDevelopment returns true if the environment is set to dev
func (c *ServerConfig) IsDevelopment() bool {
	return c.Env == "dev"
}

// ResetPasswordURL builds the link mailed to users who forgot their password.
func (c *EmailConfig) ResetPasswordURL(token string) string {
	return c.FrontendURL + "/reset-password?token=" + token
}

func oneOf(key, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of %s, got %q", key, strings.Join(allowed, ", "), value)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return b
}

// getDurationEnv accepts Go duration strings ("24h") or plain seconds ("900").
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if d, err := time.ParseDuration(value); err == nil {
		return d
	}

	seconds, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return time.Duration(seconds) * time.Second
}

func getSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	if len(result) == 0 {
		return defaultValue
	}

	return result
}
