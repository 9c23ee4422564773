package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"golang.org/x/crypto/bcrypt"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`
	DBMaxConns  int32  `env:"DB_MAX_CONNS" envDefault:"10"`
	// RunMigrations aplica las migraciones embebidas al arrancar.
	RunMigrations bool `env:"RUN_MIGRATIONS" envDefault:"true"`

	SessionSecret       string        `env:"SESSION_SECRET,required"`
	SessionCookieName   string        `env:"SESSION_COOKIE_NAME" envDefault:"session"`
	SessionTTL          time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	SessionCookieSecure bool          `env:"SESSION_COOKIE_SECURE" envDefault:"false"`
	BcryptCost          int           `env:"BCRYPT_COST" envDefault:"10"`

	LoginRateLimit  int           `env:"LOGIN_RATE_LIMIT" envDefault:"10"`
	LoginRateWindow time.Duration `env:"LOGIN_RATE_WINDOW" envDefault:"10m"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	// ForceHTTPS redirige a https y envía HSTS.
	ForceHTTPS bool `env:"FORCE_HTTPS" envDefault:"false"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPass     string `env:"SMTP_PASS"`
	SMTPFrom     string `env:"SMTP_FROM"`
	SMTPFromName string `env:"SMTP_FROM_NAME"`
	SMTPUseTLS   bool   `env:"SMTP_USE_TLS" envDefault:"false"`

	AppBaseURL    string        `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`
	ResetTokenTTL time.Duration `env:"RESET_TOKEN_TTL" envDefault:"1h"`

	SpotsFile        string        `env:"SPOTS_FILE" envDefault:"data/spots.json"`
	OverpassURL      string        `env:"OVERPASS_URL" envDefault:"https://overpass-api.de/api/interpreter"`
	OverpassTimeout  time.Duration `env:"OVERPASS_TIMEOUT" envDefault:"60s"`
	OverpassCacheTTL time.Duration `env:"OVERPASS_CACHE_TTL" envDefault:"10m"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDatabaseConfig carga solo lo necesario para conectar a Postgres.
// Lo usan las herramientas que no levantan el servidor HTTP.
func LoadDatabaseConfig() (*Config, error) {
	var dc struct {
		DatabaseURL string `env:"DATABASE_URL,required"`
		DBMaxConns  int32  `env:"DB_MAX_CONNS" envDefault:"10"`
	}
	if err := env.Parse(&dc); err != nil {
		return nil, err
	}
	if dc.DBMaxConns <= 0 {
		return nil, errors.New("DB_MAX_CONNS must be positive")
	}
	return &Config{DatabaseURL: dc.DatabaseURL, DBMaxConns: dc.DBMaxConns}, nil
}

// Validate rechaza combinaciones que no permiten arrancar el servicio.
func (c *Config) Validate() error {
	var errs []error
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if strings.TrimSpace(c.SessionCookieName) == "" {
		errs = append(errs, errors.New("SESSION_COOKIE_NAME must not be empty"))
	}
	if c.ResetTokenTTL <= 0 {
		errs = append(errs, errors.New("RESET_TOKEN_TTL must be positive"))
	}
	if c.LoginRateLimit <= 0 || c.LoginRateWindow <= 0 {
		errs = append(errs, errors.New("LOGIN_RATE_LIMIT and LOGIN_RATE_WINDOW must be positive"))
	}
	if c.DBMaxConns <= 0 {
		errs = append(errs, errors.New("DB_MAX_CONNS must be positive"))
	}
	return errors.Join(errs...)
}
