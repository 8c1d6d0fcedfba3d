package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	identitydomain "github.com/ManuelDev-we/CRM-condominio-sub002/internal/identity/domain"
	ratelimitdomain "github.com/ManuelDev-we/CRM-condominio-sub002/internal/ratelimit/domain"
)

// Config holds application configuration loaded from environment and optional .env file.
type Config struct {
	HTTPAddr    string `mapstructure:"HTTP_ADDR"`
	GRPCAddr    string `mapstructure:"GRPC_ADDR"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	RedisURL    string `mapstructure:"REDIS_URL"`

	// SessionSecret signs the session cookie and bearer handles.
	SessionSecret       string `mapstructure:"SESSION_SECRET"`
	SessionCookieSecure bool   `mapstructure:"SESSION_COOKIE_SECURE"`
	CORSAllowedOrigins  string `mapstructure:"CORS_ALLOWED_ORIGINS"`
	TrustedProxies      string `mapstructure:"TRUSTED_PROXIES"`
	HandleIssuer        string `mapstructure:"HANDLE_ISSUER"`
	HandleAudience      string `mapstructure:"HANDLE_AUDIENCE"`
	HandleMaxAgeRaw     string `mapstructure:"HANDLE_MAX_AGE"`

	BcryptCost int `mapstructure:"BCRYPT_COST"`

	AdminSessionTimeoutRaw    string `mapstructure:"ADMIN_SESSION_TIMEOUT"`
	ResidentSessionTimeoutRaw string `mapstructure:"RESIDENT_SESSION_TIMEOUT"`

	LoginRateLimit        int    `mapstructure:"LOGIN_RATE_LIMIT"`
	LoginRateWindowRaw    string `mapstructure:"LOGIN_RATE_WINDOW"`
	RegisterRateLimit     int    `mapstructure:"REGISTER_RATE_LIMIT"`
	RegisterRateWindowRaw string `mapstructure:"REGISTER_RATE_WINDOW"`
	SweepIntervalRaw      string `mapstructure:"SWEEP_INTERVAL"`

	// RoutePolicyFile optionally replaces the built-in Rego route policy.
	RoutePolicyFile string `mapstructure:"ROUTE_POLICY_FILE"`

	// KafkaBrokers is a comma-separated list; empty disables the Kafka audit sink.
	KafkaBrokers    string `mapstructure:"KAFKA_BROKERS"`
	AuditKafkaTopic string `mapstructure:"AUDIT_KAFKA_TOPIC"`
	KafkaGroupID    string `mapstructure:"KAFKA_GROUP_ID"`
	LokiURL         string `mapstructure:"LOKI_URL"`

	OTelEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTelInsecure bool   `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`

	AppEnv string `mapstructure:"APP_ENV"`
}

// minSecretLenProduction is the shortest SESSION_SECRET accepted in production.
const minSecretLenProduction = 32

// Load reads configuration from .env (if present) and environment variables.
// Environment variables override values from .env.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig()

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("GRPC_ADDR", ":9090")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("SESSION_SECRET", "")
	v.SetDefault("SESSION_COOKIE_SECURE", true)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("TRUSTED_PROXIES", "")
	v.SetDefault("HANDLE_ISSUER", "condominio-auth")
	v.SetDefault("HANDLE_AUDIENCE", "condominio-api")
	v.SetDefault("HANDLE_MAX_AGE", "24h")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("ADMIN_SESSION_TIMEOUT", "4h")
	v.SetDefault("RESIDENT_SESSION_TIMEOUT", "2h")
	v.SetDefault("LOGIN_RATE_LIMIT", 5)
	v.SetDefault("LOGIN_RATE_WINDOW", "15m")
	v.SetDefault("REGISTER_RATE_LIMIT", 3)
	v.SetDefault("REGISTER_RATE_WINDOW", "1h")
	v.SetDefault("SWEEP_INTERVAL", "5m")
	v.SetDefault("ROUTE_POLICY_FILE", "")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("AUDIT_KAFKA_TOPIC", "condominio.security-events")
	v.SetDefault("KAFKA_GROUP_ID", "condominio-audit-worker")
	v.SetDefault("LOKI_URL", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("APP_ENV", "development")

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}

	if c.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR is required")
	}
	if c.SessionSecret == "" {
		return nil, errors.New("config: SESSION_SECRET is required")
	}
	if c.IsProduction() && len(c.SessionSecret) < minSecretLenProduction {
		return nil, fmt.Errorf("config: SESSION_SECRET must be at least %d bytes when APP_ENV=production", minSecretLenProduction)
	}
	if c.IsProduction() && !c.SessionCookieSecure {
		return nil, errors.New("config: SESSION_COOKIE_SECURE must not be false when APP_ENV=production")
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = 12
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return nil, errors.New("config: BCRYPT_COST must be between 4 and 31")
	}
	if c.LoginRateLimit <= 0 || c.RegisterRateLimit <= 0 {
		return nil, errors.New("config: LOGIN_RATE_LIMIT and REGISTER_RATE_LIMIT must be positive")
	}
	for key, raw := range map[string]string{
		"HANDLE_MAX_AGE":           c.HandleMaxAgeRaw,
		"ADMIN_SESSION_TIMEOUT":    c.AdminSessionTimeoutRaw,
		"RESIDENT_SESSION_TIMEOUT": c.ResidentSessionTimeoutRaw,
		"LOGIN_RATE_WINDOW":        c.LoginRateWindowRaw,
		"REGISTER_RATE_WINDOW":     c.RegisterRateWindowRaw,
		"SWEEP_INTERVAL":           c.SweepIntervalRaw,
	} {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("config: %s: %w", key, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("config: %s must be positive", key)
		}
	}
	return &c, nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.AppEnv), "production")
}

// duration parses raw, falling back to def. Load has already validated raw.
func duration(raw string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// HandleMaxAge returns the lifetime of a signed bearer handle.
func (c *Config) HandleMaxAge() time.Duration {
	return duration(c.HandleMaxAgeRaw, 24*time.Hour)
}

// SweepInterval returns how often expired in-memory sessions and counters are dropped.
func (c *Config) SweepInterval() time.Duration {
	return duration(c.SweepIntervalRaw, 5*time.Minute)
}

// SessionTimeouts returns the per-role idle timeouts.
func (c *Config) SessionTimeouts() map[identitydomain.Role]time.Duration {
	return map[identitydomain.Role]time.Duration{
		identitydomain.RoleAdmin:    duration(c.AdminSessionTimeoutRaw, 4*time.Hour),
		identitydomain.RoleResident: duration(c.ResidentSessionTimeoutRaw, 2*time.Hour),
	}
}

// LoginPolicy returns the login attempt limit.
func (c *Config) LoginPolicy() ratelimitdomain.Policy {
	return ratelimitdomain.Policy{Limit: c.LoginRateLimit, Window: duration(c.LoginRateWindowRaw, 15*time.Minute)}
}

// RegisterPolicy returns the registration attempt limit.
func (c *Config) RegisterPolicy() ratelimitdomain.Policy {
	return ratelimitdomain.Policy{Limit: c.RegisterRateLimit, Window: duration(c.RegisterRateWindowRaw, time.Hour)}
}

// KafkaBrokersList returns KafkaBrokers split by comma with empty entries removed.
func (c *Config) KafkaBrokersList() []string {
	return splitList(c.KafkaBrokers)
}

// CORSOrigins returns the allowed CORS origins.
func (c *Config) CORSOrigins() []string {
	return splitList(c.CORSAllowedOrigins)
}

// TrustedProxyList returns the proxies whose forwarding headers are honored.
func (c *Config) TrustedProxyList() []string {
	return splitList(c.TrustedProxies)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
