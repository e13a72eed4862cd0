package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

const EnvDevelopment = "development"

type Config struct {
	Environment  string             `mapstructure:"environment" envconfig:"ENVIRONMENT"`
	Server       ServerConfig       `mapstructure:"server" envconfig:"SERVER"`
	Database     DatabaseConfig     `mapstructure:"database" envconfig:"DATABASE"`
	Redis        RedisConfig        `mapstructure:"redis" envconfig:"REDIS"`
	JWT          JWTConfig          `mapstructure:"jwt" envconfig:"JWT"`
	Auth         AuthConfig         `mapstructure:"auth" envconfig:"AUTH"`
	Log          LogConfig          `mapstructure:"log" envconfig:"LOG"`
	Notification NotificationConfig `mapstructure:"notification" envconfig:"NOTIFICATION"`
	RateLimit    RateLimitConfig    `mapstructure:"rate_limit" envconfig:"RATE_LIMIT"`
	CORS         CORSConfig         `mapstructure:"cors" envconfig:"CORS"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes" envconfig:"MAX_BODY_BYTES"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host" envconfig:"HOST"`
	Port            int           `mapstructure:"port" envconfig:"PORT"`
	User            string        `mapstructure:"user" envconfig:"USER"`
	Password        string        `mapstructure:"password" envconfig:"PASSWORD"`
	Name            string        `mapstructure:"name" envconfig:"NAME"`
	SSLMode         string        `mapstructure:"sslmode" envconfig:"SSLMODE"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" envconfig:"MAX_OPEN_CONNS"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" envconfig:"MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" envconfig:"CONN_MAX_LIFETIME"`
}

// DSN returns a lib/pq connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// RedisConfig is optional; an empty Addr keeps revoked tokens in memory.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" envconfig:"ADDR"`
	Password string `mapstructure:"password" envconfig:"PASSWORD"`
	DB       int    `mapstructure:"db" envconfig:"DB"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret" envconfig:"SECRET"`
	Issuer string        `mapstructure:"issuer" envconfig:"ISSUER"`
	Expiry time.Duration `mapstructure:"expiry" envconfig:"EXPIRY"`
}

type AuthConfig struct {
	CookieName   string `mapstructure:"cookie_name" envconfig:"COOKIE_NAME"`
	CookieSecure bool   `mapstructure:"cookie_secure" envconfig:"COOKIE_SECURE"`
	BcryptCost   int    `mapstructure:"bcrypt_cost" envconfig:"BCRYPT_COST"`

	// AllowRoleSignup lets public registration pick a privileged role.
	// Development always allows it.
	AllowRoleSignup bool `mapstructure:"allow_role_signup" envconfig:"ALLOW_ROLE_SIGNUP"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" envconfig:"LEVEL"`
	Format string `mapstructure:"format" envconfig:"FORMAT"`
}

type NotificationConfig struct {
	Timeout time.Duration `mapstructure:"timeout" envconfig:"TIMEOUT"`
	SMTP    SMTPConfig    `mapstructure:"smtp" envconfig:"SMTP"`
	SMS     SMSConfig     `mapstructure:"sms" envconfig:"SMS"`
}

// SMTPConfig is optional; an empty Host logs emails instead of sending them.
type SMTPConfig struct {
	Host     string `mapstructure:"host" envconfig:"HOST"`
	Port     int    `mapstructure:"port" envconfig:"PORT"`
	Username string `mapstructure:"username" envconfig:"USERNAME"`
	Password string `mapstructure:"password" envconfig:"PASSWORD"`
	From     string `mapstructure:"from" envconfig:"FROM"`
}

// SMSConfig targets a Twilio-compatible REST API; an empty AccountSID logs
// messages instead of sending them.
type SMSConfig struct {
	BaseURL    string `mapstructure:"base_url" envconfig:"BASE_URL"`
	AccountSID string `mapstructure:"account_sid" envconfig:"ACCOUNT_SID"`
	AuthToken  string `mapstructure:"auth_token" envconfig:"AUTH_TOKEN"`
	From       string `mapstructure:"from" envconfig:"FROM"`
}

type RateLimitConfig struct {
	Enabled           bool          `mapstructure:"enabled" envconfig:"ENABLED"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" envconfig:"REQUESTS_PER_SECOND"`
	Burst             int           `mapstructure:"burst" envconfig:"BURST"`
	IdleExpiry        time.Duration `mapstructure:"idle_expiry" envconfig:"IDLE_EXPIRY"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", EnvDevelopment)

	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.max_body_bytes", 1<<20)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "hpms")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("jwt.issuer", "hpms-api")
	v.SetDefault("jwt.expiry", 7*24*time.Hour)

	v.SetDefault("auth.cookie_name", "access_token")
	v.SetDefault("auth.cookie_secure", false)
	v.SetDefault("auth.bcrypt_cost", 12)
	v.SetDefault("auth.allow_role_signup", false)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("notification.timeout", 10*time.Second)
	v.SetDefault("notification.smtp.port", 587)
	v.SetDefault("notification.sms.base_url", "https://api.twilio.com/2010-04-01")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 10.0)
	v.SetDefault("rate_limit.burst", 20)
	v.SetDefault("rate_limit.idle_expiry", 10*time.Minute)

	v.SetDefault("cors.allowed_origins", []string{"*"})
}

// LoadConfig reads config.yaml (if present) over the defaults and then
// applies HPMS_* environment variables.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/app/config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process("HPMS", &config); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, EnvDevelopment)
}

func (c *Config) RoleSignupAllowed() bool {
	return c.Auth.AllowRoleSignup || c.IsDevelopment()
}

// Validate checks the settings the process cannot start without.
func (c *Config) Validate() error {
	if c.Database.Host == "" || c.Database.Name == "" {
		return errors.New("database.host and database.name are required")
	}
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret is required")
	}
	if !c.IsDevelopment() && len(c.JWT.Secret) < 32 {
		return errors.New("jwt.secret must be at least 32 bytes outside development")
	}
	if c.JWT.Expiry <= 0 {
		return errors.New("jwt.expiry must be positive")
	}
	return nil
}
