// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"fmt"
	"net/http"

	adminfeature "github.com/dalemusser/sangathan/internal/app/features/admin"
	assistfeature "github.com/dalemusser/sangathan/internal/app/features/assist"
	auditlogfeature "github.com/dalemusser/sangathan/internal/app/features/auditlog"
	errorsfeature "github.com/dalemusser/sangathan/internal/app/features/errors"
	feedfeature "github.com/dalemusser/sangathan/internal/app/features/feed"
	healthfeature "github.com/dalemusser/sangathan/internal/app/features/health"
	loginfeature "github.com/dalemusser/sangathan/internal/app/features/login"
	logoutfeature "github.com/dalemusser/sangathan/internal/app/features/logout"
	meetingsfeature "github.com/dalemusser/sangathan/internal/app/features/meetings"
	membersfeature "github.com/dalemusser/sangathan/internal/app/features/members"
	noticesfeature "github.com/dalemusser/sangathan/internal/app/features/notices"
	profilefeature "github.com/dalemusser/sangathan/internal/app/features/profile"
	"github.com/dalemusser/sangathan/internal/app/services/bulletin"
	"github.com/dalemusser/sangathan/internal/app/services/membership"
	userstore "github.com/dalemusser/sangathan/internal/app/store/users"
	"github.com/dalemusser/sangathan/internal/app/system/assist"
	"github.com/dalemusser/sangathan/internal/app/system/auditlog"
	"github.com/dalemusser/sangathan/internal/app/system/auth"
	"github.com/dalemusser/sangathan/internal/app/system/media"
	"github.com/dalemusser/sangathan/internal/app/system/metrics"
	"github.com/dalemusser/sangathan/internal/app/system/ratelimit"
	"github.com/dalemusser/sangathan/internal/app/system/tasks"
	"github.com/dalemusser/sangathan/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// loginIPLimit is the per-IP attempts allowed per minute.
const loginIPLimit = 20

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. It builds the services over the
// configured stores, starts the retention schedule, and mounts the feature
// routers: login, profile, directory, admin review, feed, notices, meetings
// and assistance.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	m := metrics.New()

	// Secure cookies are enabled in production mode.
	secure := coreCfg != nil && coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}
	// LoadSessionUser re-reads the user on each request, so suspension,
	// deletion and role changes take effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.Stores.Users))

	mediaSvc, err := newMediaService(appCfg, m, logger)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Medium())
	defer cancel()
	assistClient, err := assist.New(ctx, assist.Config{
		APIKey:     appCfg.GeminiAPIKey,
		TextModel:  appCfg.GeminiTextModel,
		ImageModel: appCfg.GeminiImageModel,
	}, logger, m)
	if err != nil {
		logger.Error("gemini client init failed", zap.Error(err))
		return nil, err
	}

	auditLogger := auditlog.New(deps.Stores.Audit, logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})

	members := membership.New(deps.Stores.Users, mediaSvc, auditLogger, m, logger, membership.Config{
		MaxUsers:       appCfg.MaxUsers,
		LimitContact:   appCfg.LimitContact,
		StorageLimitGB: appCfg.StorageLimitGB,
	})
	bulletinSvc := bulletin.New(deps.Stores.Posts, deps.Stores.Meetings, mediaSvc, assistClient, auditLogger, m, logger, bulletin.Config{
		RetentionDays:  appCfg.RetentionDays,
		StorageLimitGB: appCfg.StorageLimitGB,
	})

	var limiter *ratelimit.LoginLimiter
	if deps.Redis != nil {
		limiter = ratelimit.NewRedisLoginLimiter(deps.Redis, loginIPLimit, appCfg.LoginRateLimit, logger)
	} else {
		limiter = ratelimit.NewLoginLimiter(loginIPLimit, appCfg.LoginRateLimit, logger)
	}

	sched := tasks.NewScheduler(logger)
	if err := sched.Add(tasks.RetentionSweepJob(bulletinSvc, appCfg.RetentionSchedule, timeouts.Long(), logger)); err != nil {
		return nil, err
	}
	sched.Start()
	if deps.Background != nil {
		deps.Background.Scheduler = sched
		deps.Background.Assist = assistClient
	}

	// Create error logger for handlers.
	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()
	r.Use(m.Middleware)

	// Global auth middleware: loads SessionUser into context if logged in.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check and metrics for load balancers and scrapers
	backend, check := BackendMemory, healthfeature.Check(nil)
	if deps.MongoClient != nil {
		backend, check = BackendMongo, healthfeature.MongoCheck(deps.MongoClient)
	}
	r.Mount("/health", healthfeature.Routes(healthfeature.NewHandler(backend, check, logger)))
	r.Handle("/metrics", m.Handler())

	// Error pages
	errorsHandler := errorsfeature.NewHandler()
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)

	// Authentication
	loginHandler := loginfeature.NewHandler(members, sessionMgr, errLog, auditLogger, limiter, m, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, auditLogger, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	// Own profile and ID card
	profileHandler := profilefeature.NewHandler(members, bulletinSvc, sessionMgr, errLog, logger)
	r.Mount("/me", profilefeature.Routes(profileHandler, sessionMgr))

	// Member directory
	membersHandler := membersfeature.NewHandler(members, sessionMgr, errLog, logger)
	r.Mount("/directory", membersfeature.Routes(membersHandler, sessionMgr))

	// Review queue and user administration
	adminHandler := adminfeature.NewHandler(members, errLog, logger)
	r.Mount("/admin", adminfeature.Routes(adminHandler, sessionMgr))

	auditHandler := auditlogfeature.NewHandler(deps.Stores.Audit, members, errLog, logger)
	r.Mount("/audit", auditlogfeature.Routes(auditHandler, sessionMgr))

	// Feed, notices and meetings
	feedHandler := feedfeature.NewHandler(bulletinSvc, sessionMgr, errLog, logger)
	r.Mount("/feed", feedfeature.Routes(feedHandler, sessionMgr))

	noticesHandler := noticesfeature.NewHandler(bulletinSvc, sessionMgr, errLog, logger)
	r.Mount("/notices", noticesfeature.Routes(noticesHandler, sessionMgr))

	meetingsHandler := meetingsfeature.NewHandler(bulletinSvc, sessionMgr, errLog, logger)
	r.Mount("/meetings", meetingsfeature.Routes(meetingsHandler, sessionMgr))

	// Generative assistance for admins
	assistHandler := assistfeature.NewHandler(assistClient, mediaSvc, errLog, logger)
	r.Mount("/assist", assistfeature.Routes(assistHandler, sessionMgr))

	return r, nil
}

// newMediaService picks the object store when an endpoint is configured and
// inline data URLs otherwise.
func newMediaService(appCfg AppConfig, m *metrics.Metrics, logger *zap.Logger) (*media.Service, error) {
	if appCfg.MinioEndpoint == "" {
		logger.Info("no object store configured; media is stored inline as data URLs")
		return media.NewService(&media.DataURLStore{}, m, logger), nil
	}

	store, err := media.NewObjectStore(media.ObjectStoreConfig{
		Endpoint:      appCfg.MinioEndpoint,
		AccessKey:     appCfg.MinioAccessKey,
		SecretKey:     appCfg.MinioSecretKey,
		Bucket:        appCfg.MinioBucket,
		Region:        appCfg.MinioRegion,
		UseSSL:        appCfg.MinioUseSSL,
		PublicBaseURL: appCfg.MediaPublicURL,
	})
	if err != nil {
		return nil, fmt.Errorf("object store: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Medium())
	defer cancel()
	if err := store.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("object store bucket: %w", err)
	}
	logger.Info("media object store ready",
		zap.String("endpoint", appCfg.MinioEndpoint),
		zap.String("bucket", appCfg.MinioBucket))
	return media.NewService(store, m, logger), nil
}
