package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env      string
	HTTPPort string

	DatabaseURL string

	JWTIssuer           string
	JWTAudience         string
	JWTSecret           string
	JWTAccessTTL        time.Duration
	CORSAllowedOrigins  []string
	BootstrapAdminEmail string

	MinResponseTime              time.Duration
	UpstreamTimeout              time.Duration
	AccountDeletionRateLimit     int
	AccountDeletionWindow        time.Duration
	AccountDeletionProtectAdmins bool
	WelcomeEmailRateLimit        int
	WelcomeEmailWindow           time.Duration

	ReviewQueueCacheTTL time.Duration

	RateLimitRedisEnabled bool
	RateLimitRedisPrefix  string
	RedisAddr             string
	RedisPassword         string
	RedisDB               int

	ResendAPIKey        string
	ResendBaseURL       string
	EmailFromWelcome    string
	EmailFromStatus     string
	EmailFromAuth       string
	SendEmailHookSecret string

	ReadinessProbeTimeout        time.Duration
	ServerStartGracePeriod       time.Duration
	ShutdownTimeout              time.Duration
	ShutdownHTTPDrainTimeout     time.Duration
	ShutdownObservabilityTimeout time.Duration

	OTELServiceName           string
	OTELEnvironment           string
	OTELExporterOTLPEndpoint  string
	OTELExporterOTLPInsecure  bool
	OTELMetricsExportInterval time.Duration
	OTELTraceSamplingRatio    float64
	OTELMetricsEnabled        bool
	OTELTracingEnabled        bool
	OTELLogsEnabled           bool
	OTELLogLevel              string
}

func Load() (*Config, error) {
	env := getEnv("APP_ENV", "development")

	cfg := &Config{
		Env:                          env,
		HTTPPort:                     getEnv("HTTP_PORT", "8080"),
		DatabaseURL:                  os.Getenv("DATABASE_URL"),
		JWTIssuer:                    getEnv("JWT_ISSUER", "hashebooks-auth"),
		JWTAudience:                  getEnv("JWT_AUDIENCE", "authenticated"),
		JWTSecret:                    os.Getenv("JWT_SECRET"),
		CORSAllowedOrigins:           splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		BootstrapAdminEmail:          strings.TrimSpace(strings.ToLower(os.Getenv("BOOTSTRAP_ADMIN_EMAIL"))),
		AccountDeletionRateLimit:     getEnvInt("ACCOUNT_DELETION_RATE_LIMIT", 3),
		AccountDeletionProtectAdmins: getEnvBool("ACCOUNT_DELETION_PROTECT_ADMINS", true),
		WelcomeEmailRateLimit:        getEnvInt("WELCOME_EMAIL_RATE_LIMIT", 3),

		RateLimitRedisEnabled: getEnvBool("RATE_LIMIT_REDIS_ENABLED", false),
		RateLimitRedisPrefix:  getEnv("RATE_LIMIT_REDIS_PREFIX", "hashebooks:rl"),
		RedisAddr:             getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:         os.Getenv("REDIS_PASSWORD"),
		RedisDB:               getEnvInt("REDIS_DB", 0),

		ResendAPIKey:        os.Getenv("RESEND_API_KEY"),
		ResendBaseURL:       getEnv("RESEND_BASE_URL", "https://api.resend.com"),
		EmailFromWelcome:    getEnv("EMAIL_FROM_WELCOME", "HashEBooks <onboarding@resend.dev>"),
		EmailFromStatus:     getEnv("EMAIL_FROM_STATUS", "HasheBooks <onboarding@resend.dev>"),
		EmailFromAuth:       getEnv("EMAIL_FROM_AUTH", "HashEBooks Support <onboarding@resend.dev>"),
		SendEmailHookSecret: os.Getenv("SEND_EMAIL_HOOK_SECRET"),

		OTELServiceName:          getEnv("OTEL_SERVICE_NAME", "hashebooks-backend"),
		OTELEnvironment:          getEnv("OTEL_ENVIRONMENT", env),
		OTELExporterOTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTELExporterOTLPInsecure: getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		OTELTraceSamplingRatio:   getEnvFloat("OTEL_TRACE_SAMPLING_RATIO", 1.0),
		OTELMetricsEnabled:       getEnvBool("OTEL_METRICS_ENABLED", true),
		OTELTracingEnabled:       getEnvBool("OTEL_TRACING_ENABLED", true),
		OTELLogsEnabled:          getEnvBool("OTEL_LOGS_ENABLED", true),
		OTELLogLevel:             strings.ToLower(getEnv("OTEL_LOG_LEVEL", "info")),
	}

	durations := []struct {
		key string
		def string
		dst *time.Duration
	}{
		{"JWT_ACCESS_TTL", "1h", &cfg.JWTAccessTTL},
		{"MIN_RESPONSE_TIME", "200ms", &cfg.MinResponseTime},
		{"UPSTREAM_TIMEOUT", "5s", &cfg.UpstreamTimeout},
		{"ACCOUNT_DELETION_RATE_LIMIT_WINDOW", "15m", &cfg.AccountDeletionWindow},
		{"WELCOME_EMAIL_RATE_LIMIT_WINDOW", "1h", &cfg.WelcomeEmailWindow},
		{"REVIEW_QUEUE_CACHE_TTL", "30s", &cfg.ReviewQueueCacheTTL},
		{"READINESS_PROBE_TIMEOUT", "1s", &cfg.ReadinessProbeTimeout},
		{"SERVER_START_GRACE_PERIOD", "2s", &cfg.ServerStartGracePeriod},
		{"SHUTDOWN_TIMEOUT", "20s", &cfg.ShutdownTimeout},
		{"SHUTDOWN_HTTP_DRAIN_TIMEOUT", "10s", &cfg.ShutdownHTTPDrainTimeout},
		{"SHUTDOWN_OBSERVABILITY_TIMEOUT", "8s", &cfg.ShutdownObservabilityTimeout},
		{"OTEL_METRICS_EXPORT_INTERVAL", "10s", &cfg.OTELMetricsExportInterval},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(getEnv(d.key, d.def))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", d.key, err)
		}
		*d.dst = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string
	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}
	if len(c.JWTSecret) < 32 {
		errs = append(errs, "JWT_SECRET must be at least 32 chars")
	}
	if c.JWTAccessTTL <= 0 || c.JWTAccessTTL > 24*time.Hour {
		errs = append(errs, "JWT_ACCESS_TTL must be between 1s and 24h")
	}
	if len(c.CORSAllowedOrigins) == 0 {
		errs = append(errs, "CORS_ALLOWED_ORIGINS must not be empty")
	}
	if c.MinResponseTime < 0 {
		errs = append(errs, "MIN_RESPONSE_TIME must be >= 0")
	}
	if c.UpstreamTimeout <= 0 {
		errs = append(errs, "UPSTREAM_TIMEOUT must be > 0")
	}
	if c.AccountDeletionRateLimit <= 0 {
		errs = append(errs, "ACCOUNT_DELETION_RATE_LIMIT must be > 0")
	}
	if c.AccountDeletionWindow <= 0 {
		errs = append(errs, "ACCOUNT_DELETION_RATE_LIMIT_WINDOW must be > 0")
	}
	if c.WelcomeEmailRateLimit <= 0 {
		errs = append(errs, "WELCOME_EMAIL_RATE_LIMIT must be > 0")
	}
	if c.WelcomeEmailWindow <= 0 {
		errs = append(errs, "WELCOME_EMAIL_RATE_LIMIT_WINDOW must be > 0")
	}
	if c.ReviewQueueCacheTTL < 0 {
		errs = append(errs, "REVIEW_QUEUE_CACHE_TTL must be >= 0")
	}
	if c.RateLimitRedisEnabled && c.RedisAddr == "" {
		errs = append(errs, "REDIS_ADDR is required when RATE_LIMIT_REDIS_ENABLED=true")
	}
	if c.ResendAPIKey == "" && !isLocalLikeEnv(c.Env) {
		errs = append(errs, "RESEND_API_KEY is required outside local environments")
	}
	if c.SendEmailHookSecret != "" && !strings.HasPrefix(c.SendEmailHookSecret, "v1,whsec_") {
		errs = append(errs, "SEND_EMAIL_HOOK_SECRET must have the form v1,whsec_<base64>")
	}
	if (c.OTELMetricsEnabled || c.OTELTracingEnabled || c.OTELLogsEnabled) && c.OTELExporterOTLPEndpoint == "" {
		errs = append(errs, "OTEL_EXPORTER_OTLP_ENDPOINT is required when OTel is enabled")
	}
	if c.OTELTraceSamplingRatio < 0 || c.OTELTraceSamplingRatio > 1 {
		errs = append(errs, "OTEL_TRACE_SAMPLING_RATIO must be between 0 and 1")
	}
	if c.OTELMetricsExportInterval <= 0 {
		errs = append(errs, "OTEL_METRICS_EXPORT_INTERVAL must be > 0")
	}
	if !isValidLogLevel(c.OTELLogLevel) {
		errs = append(errs, "OTEL_LOG_LEVEL must be one of debug, info, warn, error")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// IsLocal reports whether the service runs in a developer or test environment.
func (c *Config) IsLocal() bool { return isLocalLikeEnv(c.Env) }

func isLocalLikeEnv(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "development", "dev", "local", "test":
		return true
	default:
		return false
	}
}

func isValidLogLevel(v string) bool {
	switch strings.ToLower(v) {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trim := strings.TrimSpace(p)
		if trim != "" {
			out = append(out, trim)
		}
	}
	return out
}
