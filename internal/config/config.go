package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	MailProviderLog    = "log"
	MailProviderSMTP   = "smtp"
	MailProviderResend = "resend"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	App       AppConfig
	Reset     ResetConfig
	Mail      MailConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	MQTT      MQTTConfig
	Seed      SeedConfig
}

type ServerConfig struct {
	Port        string
	Host        string
	Environment string
	// TrustedProxies lists the proxy IPs or CIDRs whose X-Forwarded-For is honoured.
	// Empty means the client IP is always the connection's remote address.
	TrustedProxies []string
}

type DatabaseConfig struct {
	Host        string
	Port        string
	User        string
	Password    string
	DBName      string
	SSLMode     string
	AutoMigrate bool
}

type JWTConfig struct {
	Secret          string
	Issuer          string
	SessionTTLHours int
}

type AppConfig struct {
	BaseURL string
}

type ResetConfig struct {
	RevealUnknownEmail bool
	MaxRequestsPerHour int
}

type MailConfig struct {
	Provider       string
	From           string
	TimeoutSeconds int
	SMTP           SMTPConfig
	Resend         ResendConfig
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
}

type ResendConfig struct {
	APIKey string
	APIURL string
}

type RateLimitConfig struct {
	GeneralRPS   float64 // Requests per second for general endpoints
	GeneralBurst int     // Burst size for general endpoints
	AuthRPS      float64 // Requests per second for public auth endpoints
	AuthBurst    int
}

type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

type MQTTConfig struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	EventsTopic string
	QoS         int
}

type SeedConfig struct {
	AdminEmail    string
	AdminPassword string
	AdminName     string
}

// Load reads .env from the working directory, if present, and the environment.
func Load() (*Config, error) {
	return LoadFrom(".env")
}

// LoadFrom reads configuration from the given dotenv file and the environment.
// Environment variables take precedence; a missing file is not an error.
func LoadFrom(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	environment := v.GetString("ENVIRONMENT")
	revealUnknown := environment == "development"
	if v.IsSet("RESET_REVEAL_UNKNOWN_EMAIL") {
		revealUnknown = v.GetBool("RESET_REVEAL_UNKNOWN_EMAIL")
	}

	config := &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Host:           v.GetString("SERVER_HOST"),
			Environment:    environment,
			TrustedProxies: splitList(v.GetString("SERVER_TRUSTED_PROXIES")),
		},
		Database: DatabaseConfig{
			Host:        v.GetString("DB_HOST"),
			Port:        v.GetString("DB_PORT"),
			User:        v.GetString("DB_USER"),
			Password:    v.GetString("DB_PASSWORD"),
			DBName:      v.GetString("DB_NAME"),
			SSLMode:     v.GetString("DB_SSLMODE"),
			AutoMigrate: v.GetBool("DB_AUTO_MIGRATE"),
		},
		JWT: JWTConfig{
			Secret:          v.GetString("JWT_SECRET"),
			Issuer:          v.GetString("JWT_ISSUER"),
			SessionTTLHours: v.GetInt("JWT_SESSION_TTL_HOURS"),
		},
		App: AppConfig{
			BaseURL: strings.TrimRight(v.GetString("APP_BASE_URL"), "/"),
		},
		Reset: ResetConfig{
			RevealUnknownEmail: revealUnknown,
			MaxRequestsPerHour: v.GetInt("RESET_MAX_REQUESTS_PER_HOUR"),
		},
		Mail: MailConfig{
			Provider:       strings.ToLower(v.GetString("MAIL_PROVIDER")),
			From:           v.GetString("MAIL_FROM"),
			TimeoutSeconds: v.GetInt("MAIL_TIMEOUT_SECONDS"),
			SMTP: SMTPConfig{
				Host:     v.GetString("SMTP_HOST"),
				Port:     v.GetInt("SMTP_PORT"),
				User:     v.GetString("SMTP_USER"),
				Password: v.GetString("SMTP_PASSWORD"),
			},
			Resend: ResendConfig{
				APIKey: v.GetString("RESEND_API_KEY"),
				APIURL: v.GetString("RESEND_API_URL"),
			},
		},
		RateLimit: RateLimitConfig{
			GeneralRPS:   v.GetFloat64("RATE_LIMIT_GENERAL_RPS"),
			GeneralBurst: v.GetInt("RATE_LIMIT_GENERAL_BURST"),
			AuthRPS:      v.GetFloat64("RATE_LIMIT_AUTH_RPS"),
			AuthBurst:    v.GetInt("RATE_LIMIT_AUTH_BURST"),
		},
		CORS: CORSConfig{
			AllowedOrigins:   splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
			AllowedMethods:   splitList(v.GetString("CORS_ALLOWED_METHODS")),
			AllowedHeaders:   splitList(v.GetString("CORS_ALLOWED_HEADERS")),
			ExposedHeaders:   splitList(v.GetString("CORS_EXPOSED_HEADERS")),
			AllowCredentials: v.GetBool("CORS_ALLOW_CREDENTIALS"),
			MaxAge:           v.GetInt("CORS_MAX_AGE"),
		},
		MQTT: MQTTConfig{
			Broker:      v.GetString("MQTT_BROKER"),
			ClientID:    v.GetString("MQTT_CLIENT_ID"),
			Username:    v.GetString("MQTT_USERNAME"),
			Password:    v.GetString("MQTT_PASSWORD"),
			EventsTopic: v.GetString("MQTT_EVENTS_TOPIC"),
			QoS:         v.GetInt("MQTT_QOS"),
		},
		Seed: SeedConfig{
			AdminEmail:    v.GetString("SEED_ADMIN_EMAIL"),
			AdminPassword: v.GetString("SEED_ADMIN_PASSWORD"),
			AdminName:     v.GetString("SEED_ADMIN_NAME"),
		},
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("ENVIRONMENT", "development")

	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("JWT_ISSUER", "portfolio-cms")
	v.SetDefault("JWT_SESSION_TTL_HOURS", 720)

	v.SetDefault("APP_BASE_URL", "http://localhost:3000")
	v.SetDefault("RESET_MAX_REQUESTS_PER_HOUR", 5)

	v.SetDefault("MAIL_PROVIDER", MailProviderLog)
	v.SetDefault("MAIL_TIMEOUT_SECONDS", 10)
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("RESEND_API_URL", "https://api.resend.com/emails")

	v.SetDefault("RATE_LIMIT_GENERAL_RPS", 10)
	v.SetDefault("RATE_LIMIT_GENERAL_BURST", 20)
	v.SetDefault("RATE_LIMIT_AUTH_RPS", 0.2)
	v.SetDefault("RATE_LIMIT_AUTH_BURST", 5)

	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("CORS_ALLOWED_METHODS", "GET,POST,PUT,DELETE,OPTIONS")
	v.SetDefault("CORS_ALLOWED_HEADERS", "Origin,Content-Type,Accept,Authorization,X-Request-ID")
	v.SetDefault("CORS_EXPOSED_HEADERS", "X-Request-ID")
	v.SetDefault("CORS_MAX_AGE", 43200)

	v.SetDefault("MQTT_CLIENT_ID", "portfolio-cms")
	v.SetDefault("MQTT_EVENTS_TOPIC", "portfolio-cms/auth/events")
	v.SetDefault("MQTT_QOS", 1)

	v.SetDefault("SEED_ADMIN_NAME", "Administrator")
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if c.Database.Host == "" {
		errs = append(errs, errors.New("DB_HOST is required"))
	}
	if c.Database.DBName == "" {
		errs = append(errs, errors.New("DB_NAME is required"))
	}
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	switch c.Mail.Provider {
	case MailProviderLog:
	case MailProviderSMTP:
		if c.Mail.SMTP.Host == "" {
			errs = append(errs, errors.New("SMTP_HOST is required for the smtp mail provider"))
		}
	case MailProviderResend:
		if c.Mail.Resend.APIKey == "" {
			errs = append(errs, errors.New("RESEND_API_KEY is required for the resend mail provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown MAIL_PROVIDER %q", c.Mail.Provider))
	}
	if c.Mail.Provider != MailProviderLog && c.Mail.From == "" {
		errs = append(errs, errors.New("MAIL_FROM is required"))
	}
	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.JWT.SessionTTLHours) * time.Hour
}

func (c *Config) MailTimeout() time.Duration {
	return time.Duration(c.Mail.TimeoutSeconds) * time.Second
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
