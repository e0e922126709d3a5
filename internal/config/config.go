package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Server   ServerConfig   `env:",prefix=SERVER_"`
	MySQL    MySQLConfig    `env:",prefix=MYSQL_"`
	Redis    RedisConfig    `env:",prefix=REDIS_"`
	Auth     AuthConfig     `env:",prefix=AUTH_"`
	Security SecurityConfig `env:",prefix="`
	SMTP     SMTPConfig     `env:",prefix=SMTP_"`
	CORS     CORSConfig     `env:",prefix=CORS_"`
	Upload   UploadConfig   `env:",prefix=UPLOAD_"`
	Log      LogConfig      `env:",prefix=LOG_"`
	Env      string         `env:"ENV,default=development"`
}

type ServerConfig struct {
	Port         string   `env:"PORT,default=8080"`
	Host         string   `env:"HOST,default=0.0.0.0"`
	ReadTimeout  Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout Duration `env:"WRITE_TIMEOUT,default=15s"`
}

type MySQLConfig struct {
	Host          string `env:"HOST,default=localhost"`
	Port          string `env:"PORT,default=3306"`
	User          string `env:"USER,default=api_template"`
	Password      string `env:"PASSWORD,default=api_template_password"`
	DBName        string `env:"DB,default=api_template_db"`
	MigrationsDir string `env:"MIGRATIONS_DIR,default=migrations"`
}

type RedisConfig struct {
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=6379"`
	Password string `env:"PASSWORD,default="`
	DB       int    `env:"DB,default=0"`
}

// AuthConfig holds the signing key locations and session token policy.
// Token lifetime depends on the client source: web sessions are short,
// mobile sessions last a working day.
type AuthConfig struct {
	PrivateKeyPath    string   `env:"PRIVATE_KEY_PATH,default=keys/auth/private.pem"`
	PublicKeyPath     string   `env:"PUBLIC_KEY_PATH,default=keys/auth/public.pem"`
	Issuer            string   `env:"ISSUER,default=go-api-template"`
	Audience          string   `env:"AUDIENCE,default=go-api-template-clients"`
	WebTokenExpiry    Duration `env:"WEB_TOKEN_EXPIRY,default=10m"`
	MobileTokenExpiry Duration `env:"MOBILE_TOKEN_EXPIRY,default=480m"`
	APIKey            string   `env:"API_KEY,default="`
	APIKeyAuthEnabled bool     `env:"API_KEY_ENABLED,default=false"`
}

type SecurityConfig struct {
	BCryptCost int `env:"BCRYPT_COST,default=12"`

	// Global API limiter, applied to every request by client IP.
	APIRateLimitPoints int      `env:"API_RATE_LIMIT_POINTS,default=500"`
	APIRateLimitWindow Duration `env:"API_RATE_LIMIT_WINDOW,default=10s"`
	APIRateLimitBlock  Duration `env:"API_RATE_LIMIT_BLOCK,default=5m"`

	// Login limiter, per client IP.
	LoginIPPoints int      `env:"LOGIN_IP_POINTS,default=100"`
	LoginIPWindow Duration `env:"LOGIN_IP_WINDOW,default=1d"`
	LoginIPBlock  Duration `env:"LOGIN_IP_BLOCK,default=1d"`

	// Login limiter, per username+IP pair.
	LoginUserIPPoints int      `env:"LOGIN_USER_IP_POINTS,default=10"`
	LoginUserIPWindow Duration `env:"LOGIN_USER_IP_WINDOW,default=90d"`
	LoginUserIPBlock  Duration `env:"LOGIN_USER_IP_BLOCK,default=1h"`
}

type SMTPConfig struct {
	Host     string `env:"HOST,default="`
	Port     int    `env:"PORT,default=25"`
	User     string `env:"USER,default="`
	Password string `env:"PASSWORD,default="`
	From     string `env:"FROM,default=no-reply@localhost"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGINS,default=http://localhost:3000"`
	AllowedMethods []string `env:"ALLOWED_METHODS,default=GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders []string `env:"ALLOWED_HEADERS,default=Content-Type,Authorization,X-API-Key"`
	ExposedHeaders []string `env:"EXPOSED_HEADERS,default=X-Auth-Token,X-Refresh-Token"`
}

type UploadConfig struct {
	Dir       string `env:"DIR,default=uploads"`
	MaxSizeMB int64  `env:"MAX_SIZE_MB,default=5"`
}

type LogConfig struct {
	File       string `env:"FILE,default=logs/app.log"`
	MaxSizeMB  int    `env:"MAX_SIZE_MB,default=50"`
	MaxBackups int    `env:"MAX_BACKUPS,default=10"`
	MaxAgeDays int    `env:"MAX_AGE_DAYS,default=30"`
}

// DSN returns the MySQL connection string in go-sql-driver format.
func (m MySQLConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		m.User, m.Password, m.Host, m.Port, m.DBName)
}

// Address returns Redis connection address
func (r RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	var config Config

	if err := envconfig.Process(ctx, &config); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if config.Auth.PrivateKeyPath == "" || config.Auth.PublicKeyPath == "" {
		return nil, fmt.Errorf("AUTH_PRIVATE_KEY_PATH and AUTH_PUBLIC_KEY_PATH must be set")
	}

	return &config, nil
}

// LoadWithDefaults loads configuration with default context
func LoadWithDefaults() (*Config, error) {
	return Load(context.Background())
}
