package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"scenario-admin/internal/logger"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const devSessionSecret = "dev-only-session-secret"

// Config holds the admin web service settings.
type Config struct {
	Env        string `env:"APP_ENV" env-default:"development"`
	ServerPort string `env:"ADMIN_SERVER_PORT" env-default:"8080"`
	Logger     logger.Config

	// APIBaseURL is the REST backend root, e.g. http://localhost:5000/api.
	APIBaseURL    string        `env:"API_BASE_URL" env-default:"http://localhost:5000/api"`
	ClientTimeout time.Duration `env:"HTTP_CLIENT_TIMEOUT" env-default:"10s"`

	SessionSecret string        `env:"SESSION_SECRET"`
	SessionTTL    time.Duration `env:"SESSION_TTL" env-default:"24h"`
	CookieSecure  bool          `env:"COOKIE_SECURE" env-default:"false"`

	ScenarioRefreshInterval time.Duration `env:"SCENARIO_REFRESH_INTERVAL" env-default:"5s"`
	LoginRateLimit          uint          `env:"LOGIN_RATE_LIMIT" env-default:"10"`
	CORSAllowedOrigins      []string      `env:"CORS_ALLOWED_ORIGINS" env-separator:","`

	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
}

// RedisConfig points at the session store. An empty address selects the
// in-process store.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" env-default:"0"`
}

// RabbitMQConfig points at the audit queue. An empty URL disables publishing.
type RabbitMQConfig struct {
	URL            string `env:"RABBITMQ_URL"`
	AuditQueueName string `env:"AUDIT_QUEUE_NAME" env-default:"scenario_admin_audit"`
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Validate checks cross-field rules and fills development defaults.
func (c *Config) Validate() error {
	u, err := url.ParseRequestURI(c.APIBaseURL)
	if err != nil || u.Host == "" {
		return fmt.Errorf("invalid API_BASE_URL %q", c.APIBaseURL)
	}
	c.APIBaseURL = strings.TrimRight(c.APIBaseURL, "/")
	c.Logger.Development = c.IsDevelopment()

	if c.SessionSecret == "" {
		if !c.IsDevelopment() {
			return errors.New("SESSION_SECRET is required outside development")
		}
		c.SessionSecret = devSessionSecret
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.ScenarioRefreshInterval < time.Second {
		c.ScenarioRefreshInterval = time.Second
	}
	if c.LoginRateLimit == 0 {
		c.LoginRateLimit = 10
	}
	return nil
}
