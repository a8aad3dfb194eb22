package di

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/hashebooks/hashebooks-backend/internal/app"
	"github.com/hashebooks/hashebooks-backend/internal/config"
	"github.com/hashebooks/hashebooks-backend/internal/database"
	"github.com/hashebooks/hashebooks-backend/internal/health"
	"github.com/hashebooks/hashebooks-backend/internal/http/handler"
	"github.com/hashebooks/hashebooks-backend/internal/http/middleware"
	"github.com/hashebooks/hashebooks-backend/internal/http/router"
	"github.com/hashebooks/hashebooks-backend/internal/observability"
	"github.com/hashebooks/hashebooks-backend/internal/ratelimit"
	"github.com/hashebooks/hashebooks-backend/internal/repository"
	"github.com/hashebooks/hashebooks-backend/internal/security"
	"github.com/hashebooks/hashebooks-backend/internal/service"
)

var ConfigSet = wire.NewSet(config.Load)

var ObservabilitySet = wire.NewSet(
	provideObservabilityRuntime,
	provideAppLogger,
)

var RuntimeInfraSet = wire.NewSet(
	provideRuntimeDB,
	provideRedisClient,
	provideReadinessProbeRunner,
)

var RepositorySet = wire.NewSet(
	repository.NewUserRepository,
	repository.NewProfileRepository,
	repository.NewRoleRepository,
	repository.NewLocalCredentialRepository,
	repository.NewBookRepository,
)

var SecuritySet = wire.NewSet(provideJWTManager)

var RateLimitSet = wire.NewSet(
	provideRateLimitBackend,
	provideDeleteUserLimiter,
	provideWelcomeEmailLimiter,
)

var ServiceSet = wire.NewSet(
	provideIdentityProvider,
	provideRoleAuthority,
	provideMailer,
	provideNotificationService,
	provideAccountService,
	provideBookReviewService,
	wire.Bind(new(service.IdentityProvider), new(*service.LocalIdentityProvider)),
	wire.Bind(new(middleware.TokenVerifier), new(*service.LocalIdentityProvider)),
	wire.Bind(new(service.RoleChecker), new(*service.RoleAuthority)),
	wire.Bind(new(service.BookStatusNotifier), new(*service.NotificationService)),
	wire.Bind(new(service.NotificationServiceInterface), new(*service.NotificationService)),
	wire.Bind(new(service.AccountServiceInterface), new(*service.AccountService)),
	wire.Bind(new(service.BookReviewServiceInterface), new(*service.BookReviewService)),
)

var HTTPSet = wire.NewSet(
	handler.NewAccountHandler,
	handler.NewNotificationHandler,
	handler.NewBookReviewHandler,
	provideAuthEmailHookHandler,
	provideRouterDependencies,
	router.NewRouter,
	provideHTTPServer,
)

var AppSet = wire.NewSet(provideApp)

// DeleteUserLimiter and WelcomeEmailLimiter give the two per-operation
// policies distinct types so each service receives its own.
type DeleteUserLimiter struct{ *ratelimit.PolicyLimiter }

type WelcomeEmailLimiter struct{ *ratelimit.PolicyLimiter }

// RateLimitBackend is the shared counter store behind every policy.
type RateLimitBackend struct {
	Limiter ratelimit.Limiter
	Name    string
}

type MigrationRunner struct {
	cfg    *config.Config
	db     *gorm.DB
	logger *slog.Logger
}

func NewMigrationRunner(cfg *config.Config, db *gorm.DB) *MigrationRunner {
	return &MigrationRunner{cfg: cfg, db: db, logger: observability.NewBootstrapLogger(cfg)}
}

func (m *MigrationRunner) Run() (*database.SeedReport, error) {
	if err := database.Migrate(m.db); err != nil {
		return nil, err
	}
	report, err := database.SeedSync(m.db, m.cfg.BootstrapAdminEmail)
	if err != nil {
		return nil, err
	}
	m.logger.Info("migration complete",
		"bootstrap_email", report.BootstrapEmail,
		"granted_roles", report.GrantedRoles,
	)
	return report, nil
}

func provideObservabilityRuntime(cfg *config.Config) (*observability.Runtime, error) {
	bootstrapLogger := observability.NewBootstrapLogger(cfg)
	return observability.InitRuntime(context.Background(), cfg, bootstrapLogger)
}

func provideAppLogger(cfg *config.Config, runtime *observability.Runtime) *slog.Logger {
	return observability.InitLogger(cfg, runtime.LoggerProvider)
}

func provideOpenDB(cfg *config.Config) (*gorm.DB, error) {
	return database.Open(cfg)
}

func provideRuntimeDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	if err := database.Seed(db, cfg.BootstrapAdminEmail); err != nil {
		return nil, err
	}
	return db, nil
}

const reviewQueueCachePrefix = "hashebooks:queue_cache"

func provideRedisClient(cfg *config.Config, logger *slog.Logger) redis.UniversalClient {
	if !cfg.RateLimitRedisEnabled {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	observability.InstrumentRedisClient(client, logger, map[string]string{
		cfg.RateLimitRedisPrefix: "rate_limit",
		reviewQueueCachePrefix:   "review_queue_cache",
	})
	return client
}

func provideJWTManager(cfg *config.Config) *security.JWTManager {
	return security.NewJWTManager(cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTSecret, cfg.JWTAccessTTL)
}

func provideRateLimitBackend(cfg *config.Config, redisClient redis.UniversalClient) RateLimitBackend {
	if cfg.RateLimitRedisEnabled && redisClient != nil {
		return RateLimitBackend{
			Limiter: ratelimit.NewRedisFixedWindowLimiter(redisClient, cfg.RateLimitRedisPrefix),
			Name:    "redis",
		}
	}
	return RateLimitBackend{Limiter: ratelimit.NewFixedWindowLimiter(), Name: "local"}
}

func provideDeleteUserLimiter(cfg *config.Config, backend RateLimitBackend) *DeleteUserLimiter {
	return &DeleteUserLimiter{ratelimit.NewPolicyLimiter(backend.Limiter, backend.Name, ratelimit.Policy{
		Operation: ratelimit.OperationDeleteUser,
		Limit:     cfg.AccountDeletionRateLimit,
		Window:    cfg.AccountDeletionWindow,
		Mode:      ratelimit.FailClosed,
	})}
}

func provideWelcomeEmailLimiter(cfg *config.Config, backend RateLimitBackend) *WelcomeEmailLimiter {
	return &WelcomeEmailLimiter{ratelimit.NewPolicyLimiter(backend.Limiter, backend.Name, ratelimit.Policy{
		Operation: ratelimit.OperationWelcomeEmail,
		Limit:     cfg.WelcomeEmailRateLimit,
		Window:    cfg.WelcomeEmailWindow,
		Mode:      ratelimit.FailClosed,
	})}
}

func provideIdentityProvider(
	cfg *config.Config,
	jwt *security.JWTManager,
	users repository.UserRepository,
	creds repository.LocalCredentialRepository,
) *service.LocalIdentityProvider {
	return service.NewLocalIdentityProvider(jwt, users, creds, cfg.UpstreamTimeout)
}

func provideRoleAuthority(cfg *config.Config, roles repository.RoleRepository) *service.RoleAuthority {
	return service.NewRoleAuthority(roles, cfg.UpstreamTimeout)
}

// provideMailer falls back to logging rendered mail when no Resend key is
// configured. Config validation only allows that in local environments.
func provideMailer(cfg *config.Config, logger *slog.Logger) service.Mailer {
	if cfg.ResendAPIKey == "" {
		return service.NewLogMailer(logger)
	}
	return service.NewResendMailer(cfg.ResendBaseURL, cfg.ResendAPIKey, cfg.UpstreamTimeout)
}

func provideNotificationService(
	cfg *config.Config,
	mailer service.Mailer,
	profiles repository.ProfileRepository,
	limiter *WelcomeEmailLimiter,
) *service.NotificationService {
	return service.NewNotificationService(mailer, profiles, limiter, service.EmailSenders{
		Welcome: cfg.EmailFromWelcome,
		Status:  cfg.EmailFromStatus,
		Auth:    cfg.EmailFromAuth,
	}, cfg.UpstreamTimeout)
}

func provideAccountService(
	cfg *config.Config,
	identity service.IdentityProvider,
	roles service.RoleChecker,
	limiter *DeleteUserLimiter,
) *service.AccountService {
	return service.NewAccountService(identity, roles, limiter, cfg.AccountDeletionProtectAdmins)
}

func provideBookReviewService(
	cfg *config.Config,
	books repository.BookRepository,
	notifier service.BookStatusNotifier,
	redisClient redis.UniversalClient,
) *service.BookReviewService {
	svc := service.NewBookReviewService(books, notifier, cfg.UpstreamTimeout)
	if cfg.ReviewQueueCacheTTL <= 0 {
		return svc
	}
	if cfg.RateLimitRedisEnabled && redisClient != nil {
		return svc.WithQueueCache(service.NewRedisQueueCacheStore(redisClient, reviewQueueCachePrefix), cfg.ReviewQueueCacheTTL)
	}
	return svc.WithQueueCache(service.NewInMemoryQueueCacheStore(), cfg.ReviewQueueCacheTTL)
}

// provideAuthEmailHookHandler leaves the verifier nil when no secret is set,
// which makes the hook reject every delivery.
func provideAuthEmailHookHandler(cfg *config.Config, notifications service.NotificationServiceInterface) (*handler.AuthEmailHookHandler, error) {
	if cfg.SendEmailHookSecret == "" {
		return handler.NewAuthEmailHookHandler(nil, notifications), nil
	}
	verifier, err := security.NewWebhookVerifier(cfg.SendEmailHookSecret)
	if err != nil {
		return nil, err
	}
	return handler.NewAuthEmailHookHandler(verifier, notifications), nil
}

func provideRouterDependencies(
	accountHandler *handler.AccountHandler,
	notificationHandler *handler.NotificationHandler,
	authEmailHook *handler.AuthEmailHookHandler,
	bookReviewHandler *handler.BookReviewHandler,
	tokens middleware.TokenVerifier,
	roles service.RoleChecker,
	readiness *health.ProbeRunner,
	cfg *config.Config,
) router.Dependencies {
	return router.Dependencies{
		AccountHandler:      accountHandler,
		NotificationHandler: notificationHandler,
		AuthEmailHook:       authEmailHook,
		BookReviewHandler:   bookReviewHandler,
		TokenVerifier:       tokens,
		RoleChecker:         roles,
		CORSOrigins:         cfg.CORSAllowedOrigins,
		CORSAllowHeaders:    middleware.DefaultCORSAllowHeaders,
		MinResponseTime:     cfg.MinResponseTime,
		Readiness:           readiness,
		EnableOTelHTTP:      cfg.OTELMetricsEnabled || cfg.OTELTracingEnabled,
	}
}

// deleteChainUpstreamCalls counts the sequential upstream calls on the
// longest route, POST /api/v1/delete-user: token verify, caller role check,
// rate limit, password step-up, target role check and the delete itself.
const deleteChainUpstreamCalls = 6

func provideHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           h,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.UpstreamTimeout*deleteChainUpstreamCalls + cfg.MinResponseTime,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func provideReadinessProbeRunner(cfg *config.Config, db *gorm.DB, redisClient redis.UniversalClient) *health.ProbeRunner {
	checkers := make([]health.Checker, 0, 2)
	if c := health.NewDBChecker(db, "users", "user_roles"); c != nil {
		checkers = append(checkers, c)
	}
	if cfg.RateLimitRedisEnabled {
		if c := health.NewRedisChecker(redisClient); c != nil {
			checkers = append(checkers, c)
		}
	}
	return health.NewProbeRunner(cfg.ReadinessProbeTimeout, cfg.ServerStartGracePeriod, checkers...)
}

func provideApp(
	cfg *config.Config,
	logger *slog.Logger,
	server *http.Server,
	runtime *observability.Runtime,
	db *gorm.DB,
	redisClient redis.UniversalClient,
	readiness *health.ProbeRunner,
) *app.App {
	return app.New(cfg, logger, server, runtime, db, redisClient, readiness)
}
