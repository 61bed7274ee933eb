package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Auth        AuthConfig
	Bootstrap   BootstrapConfig
	Email       EmailConfig
	Calendar    CalendarConfig
	Slack       SlackConfig
	CORS        CORSConfig
	RateLimit   RateLimitConfig
	Logging     LoggingConfig
	Environment string
}

type ServerConfig struct {
	Host    string
	Port    int
	BaseURL string
	Routes  string // optional path to a routes.yml overriding the embedded table
}

type DatabaseConfig struct {
	URL     string
	Name    string
	Timeout time.Duration
}

type AuthConfig struct {
	JWTSecret   string
	JWTExpiry   time.Duration
	MagicExpiry time.Duration
}

// BootstrapConfig seeds a first director account on startup so a fresh
// deployment has someone who can create events.
type BootstrapConfig struct {
	DirectorEmail    string
	DirectorPassword string
}

type EmailConfig struct {
	Enabled      bool
	From         string
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	TemplatesDir string
}

type CalendarConfig struct {
	BaseURL         string
	CalendarID      string
	CredentialsFile string
}

type SlackConfig struct {
	BaseURL string
	Token   string
	Channel string
}

type CORSConfig struct {
	AllowAllOrigins bool
	AllowedOrigins  []string
}

type RateLimitConfig struct {
	PerMinute int
	Burst     int
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (Config, error) {
	env := getEnv("ENVIRONMENT", "development")
	cfg := Config{
		Server: ServerConfig{
			Host:    getEnv("SERVER_HOST", "0.0.0.0"),
			Port:    getEnvInt("SERVER_PORT", 8080),
			BaseURL: getEnv("SERVER_BASE_URL", "http://localhost:8080"),
			Routes:  getEnv("SERVER_ROUTES_FILE", ""),
		},
		Database: DatabaseConfig{
			URL:     getEnv("DATABASE_URL", ""),
			Name:    getEnv("DATABASE_NAME", "gatherhub"),
			Timeout: time.Duration(getEnvInt("DATABASE_TIMEOUT_SECONDS", 10)) * time.Second,
		},
		Auth: AuthConfig{
			JWTSecret:   getEnv("JWT_SECRET", ""),
			JWTExpiry:   time.Duration(getEnvInt("JWT_EXPIRY_HOURS", 24)) * time.Hour,
			MagicExpiry: time.Duration(getEnvInt("MAGIC_LINK_EXPIRY_MINUTES", 30)) * time.Minute,
		},
		Bootstrap: BootstrapConfig{
			DirectorEmail:    getEnv("DIRECTOR_EMAIL", ""),
			DirectorPassword: getEnv("DIRECTOR_PASSWORD", ""),
		},
		Email: EmailConfig{
			Enabled:      getEnvBool("EMAIL_ENABLED", false),
			From:         getEnv("EMAIL_FROM", ""),
			SMTPHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
			SMTPPort:     getEnvInt("SMTP_PORT", 587),
			SMTPUser:     getEnv("SMTP_USER", ""),
			SMTPPassword: getEnv("SMTP_PASSWORD", ""),
			TemplatesDir: getEnv("EMAIL_TEMPLATES_DIR", "templates"),
		},
		Calendar: CalendarConfig{
			BaseURL:         getEnv("CALENDAR_BASE_URL", "https://www.googleapis.com/calendar/v3"),
			CalendarID:      getEnv("CALENDAR_ID", ""),
			CredentialsFile: getEnv("CALENDAR_CREDENTIALS_FILE", "calendar-credentials.json"),
		},
		Slack: SlackConfig{
			BaseURL: getEnv("SLACK_BASE_URL", "https://slack.com/api"),
			Token:   getEnv("SLACK_TOKEN", ""),
			Channel: getEnv("SLACK_CHANNEL", ""),
		},
		CORS: CORSConfig{
			AllowAllOrigins: env != "production",
			AllowedOrigins:  splitList(getEnv("CORS_ALLOWED_ORIGINS", "")),
		},
		RateLimit: RateLimitConfig{
			PerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
			Burst:     getEnvInt("RATE_LIMIT_BURST", 30),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Environment: env,
	}

	if cfg.Database.URL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.Auth.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
