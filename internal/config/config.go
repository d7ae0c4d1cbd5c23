package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port            string        `mapstructure:"PORT"`
	Env             string        `mapstructure:"ENV"`
	DatabaseURL     string        `mapstructure:"DATABASE_URL"`
	DBMaxConns      int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns      int32         `mapstructure:"DB_MIN_CONNS"`
	JWTSecret       string        `mapstructure:"JWT_SECRET"`
	TokenTTL        time.Duration `mapstructure:"TOKEN_TTL"`
	SMTPHost        string        `mapstructure:"SMTP_HOST"`
	SMTPPort        string        `mapstructure:"SMTP_PORT"`
	MailerEmail     string        `mapstructure:"MAILER_EMAIL"`
	MailerPassword  string        `mapstructure:"MAILER_PASSWORD"`
	ConfirmationURL string        `mapstructure:"CONFIRMATION_URL"`
	CORSOrigins     []string      `mapstructure:"CORS_ORIGINS"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("TOKEN_TTL", "72h")
	v.SetDefault("SMTP_HOST", "smtp.gmail.com")
	v.SetDefault("SMTP_PORT", "587")
	v.SetDefault("CONFIRMATION_URL", "http://localhost:8000/api")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("JWT_SECRET")
	v.BindEnv("TOKEN_TTL")
	v.BindEnv("SMTP_HOST")
	v.BindEnv("SMTP_PORT")
	v.BindEnv("MAILER_EMAIL")
	v.BindEnv("MAILER_PASSWORD")
	v.BindEnv("CONFIRMATION_URL")
	v.BindEnv("CORS_ORIGINS")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run. Outside development
// a real JWT secret must be configured, and mail credentials must be present
// so confirmation emails can actually be sent.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		if c.IsDev() {
			return nil
		}
		return fmt.Errorf("JWT_SECRET is required when ENV=%q", c.Env)
	}
	if len(c.JWTSecret) < 32 && c.IsProduction() {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters in production, got %d", len(c.JWTSecret))
	}
	if c.IsProduction() && (c.MailerEmail == "" || c.MailerPassword == "") {
		return fmt.Errorf("MAILER_EMAIL and MAILER_PASSWORD are required in production")
	}
	if c.TokenTTL < 24*time.Hour || c.TokenTTL > 7*24*time.Hour {
		return fmt.Errorf("TOKEN_TTL must be between 24h and 168h, got %s", c.TokenTTL)
	}
	return nil
}
