package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Env             string
	ShutdownTimeout time.Duration
}

// DBConfig holds database configuration
type DBConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogLevel        string
}

// GetDSN returns the PostgreSQL connection string
func (c *DBConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Prefix string
}

// AdminConfig holds the shared admin credential and session settings
type AdminConfig struct {
	Password      string
	SessionSecret string
	SessionTTL    time.Duration
	CookieName    string
	CookieSecure  bool
}

// MediaConfig holds the image host credentials
type MediaConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// MailConfig selects and configures the transactional mail provider
type MailConfig struct {
	Provider       string
	ResendAPIKey   string
	From           string
	SupportAddress string
	SMTPHost       string
	SMTPPort       string
	SendTimeout    time.Duration
}

// CacheConfig holds storefront listing cache settings
type CacheConfig struct {
	Backend       string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	ListingTTL    time.Duration
}

// StoreConfig holds shop-wide presentation settings
type StoreConfig struct {
	Name     string
	Currency string
	ShopURL  string
}

// Config holds all configuration
type Config struct {
	Server  ServerConfig
	DB      DBConfig
	Log     LogConfig
	Metrics MetricsConfig
	Admin   AdminConfig
	Media   MediaConfig
	Mail    MailConfig
	Cache   CacheConfig
	Store   StoreConfig
}

// Load loads the configuration from environment variables, reading .env first if present
func Load() (*Config, error) {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			Env:             getEnv("APP_ENV", "development"),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		DB: DBConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			Name:            getEnv("DB_NAME", "pink_basket"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 50),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", time.Hour),
			LogLevel:        getEnv("DB_LOG_LEVEL", ""),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Metrics: MetricsConfig{
			Prefix: getEnv("METRICS_PREFIX", "pink_basket"),
		},
		Admin: AdminConfig{
			Password:      getEnv("ADMIN_PASSWORD", ""),
			SessionSecret: getEnv("ADMIN_SESSION_SECRET", ""),
			SessionTTL:    getEnvAsDuration("ADMIN_SESSION_TTL", 12*time.Hour),
			CookieName:    getEnv("ADMIN_COOKIE_NAME", "admin_session"),
			CookieSecure:  getEnvAsBool("ADMIN_COOKIE_SECURE", true),
		},
		Media: MediaConfig{
			CloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:    getEnv("CLOUDINARY_API_KEY", ""),
			APISecret: getEnv("CLOUDINARY_API_SECRET", ""),
			Folder:    getEnv("CLOUDINARY_FOLDER", "pink_basket"),
		},
		Mail: MailConfig{
			Provider:       getEnv("MAIL_PROVIDER", "log"),
			ResendAPIKey:   getEnv("RESEND_API_KEY", ""),
			From:           getEnv("MAIL_FROM", "orders@pinkbasket.store"),
			SupportAddress: getEnv("MAIL_SUPPORT_ADDRESS", "support@pinkbasket.store"),
			SMTPHost:       getEnv("SMTP_HOST", "localhost"),
			SMTPPort:       getEnv("SMTP_PORT", "1025"),
			SendTimeout:    getEnvAsDuration("MAIL_SEND_TIMEOUT", 20*time.Second),
		},
		Cache: CacheConfig{
			Backend:       getEnv("CACHE_BACKEND", "memory"),
			RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvAsInt("REDIS_DB", 0),
			ListingTTL:    getEnvAsDuration("CACHE_LISTING_TTL", 2*time.Minute),
		},
		Store: StoreConfig{
			Name:     getEnv("STORE_NAME", "Pink Basket"),
			Currency: getEnv("STORE_CURRENCY", "LSL"),
			ShopURL:  getEnv("STORE_SHOP_URL", "https://pinkbasket.store/shop"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Admin.Password == "" {
		return fmt.Errorf("ADMIN_PASSWORD must be set")
	}
	if len(c.Admin.SessionSecret) < 32 {
		return fmt.Errorf("ADMIN_SESSION_SECRET must be at least 32 characters")
	}
	switch c.Mail.Provider {
	case "log", "smtp":
	case "resend":
		if c.Mail.ResendAPIKey == "" {
			return fmt.Errorf("RESEND_API_KEY must be set when MAIL_PROVIDER=resend")
		}
	default:
		return fmt.Errorf("unknown MAIL_PROVIDER %q", c.Mail.Provider)
	}
	switch c.Cache.Backend {
	case "memory", "redis", "none":
	default:
		return fmt.Errorf("unknown CACHE_BACKEND %q", c.Cache.Backend)
	}
	return nil
}

// IsProduction reports whether the service runs with APP_ENV=production
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// LogFields returns the non-secret configuration as zap fields
func (c *Config) LogFields() []zap.Field {
	return []zap.Field{
		zap.String("environment", c.Server.Env),
		zap.String("server_port", c.Server.Port),
		zap.String("db_host", c.DB.Host),
		zap.String("db_port", c.DB.Port),
		zap.String("db_name", c.DB.Name),
		zap.String("mail_provider", c.Mail.Provider),
		zap.String("cache_backend", c.Cache.Backend),
		zap.Bool("media_configured", c.Media.CloudName != ""),
	}
}

// Helper function to get environment variables with defaults
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
