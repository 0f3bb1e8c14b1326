// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dalemusser/sangathan/internal/app/services/bulletin"
	"github.com/dalemusser/sangathan/internal/app/services/membership"
	"github.com/dalemusser/sangathan/internal/app/system/assist"
	"github.com/dalemusser/sangathan/internal/app/system/inputval"
	"github.com/dalemusser/sangathan/internal/app/system/normalize"
	"github.com/dalemusser/sangathan/internal/app/system/tasks"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

const (
	BackendMongo  = "mongo"
	BackendMemory = "memory"

	minSessionKeyLen = 32
)

// appConfigKeys defines the configuration keys for Sangathan.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: SANGATHAN_MONGO_URI, SANGATHAN_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "store_backend", Default: BackendMongo, Desc: "Store backend: 'mongo' or 'memory'"},
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "sangathan", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "sangathan-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "720h", Desc: "Session cookie lifetime"},

	// Media storage
	{Name: "minio_endpoint", Default: "", Desc: "MinIO/S3 endpoint (blank stores images inline as data URLs)"},
	{Name: "minio_access_key", Default: "", Desc: "MinIO/S3 access key"},
	{Name: "minio_secret_key", Default: "", Desc: "MinIO/S3 secret key"},
	{Name: "minio_bucket", Default: "sangathan-media", Desc: "Bucket for uploaded images and letters"},
	{Name: "minio_use_ssl", Default: true, Desc: "Use TLS to reach the object store"},
	{Name: "minio_region", Default: "", Desc: "Object store region"},
	{Name: "media_public_url", Default: "", Desc: "Public base URL for media (CDN); blank uses the endpoint"},

	// Generative assistance
	{Name: "gemini_api_key", Default: "", Desc: "Gemini API key (blank disables notice enhancement and image tools)"},
	{Name: "gemini_text_model", Default: assist.DefaultTextModel, Desc: "Gemini model for notice enhancement"},
	{Name: "gemini_image_model", Default: assist.DefaultImageModel, Desc: "Gemini model for image generation"},

	// Login rate limiting
	{Name: "redis_addr", Default: "", Desc: "Redis address for shared login rate limits (blank keeps counters in process)"},
	{Name: "login_rate_limit", Default: 5, Desc: "Login attempts per mobile per 5 minutes"},

	// Retention
	{Name: "retention_days", Default: bulletin.DefaultRetentionDays, Desc: "Days regular posts are kept"},
	{Name: "retention_schedule", Default: tasks.DefaultSchedule, Desc: "Cron schedule for the retention sweep"},
	{Name: "storage_limit_gb", Default: strconv.FormatFloat(bulletin.DefaultStorageLimitGB, 'f', -1, 64), Desc: "Media storage quota in GB"},

	// Membership
	{Name: "max_users", Default: membership.DefaultMaxUsers, Desc: "Maximum number of registered members"},
	{Name: "limit_contact", Default: membership.DefaultLimitContact, Desc: "Contact shown when the members limit is reached"},
	{Name: "superadmin_mobile", Default: "", Desc: "Mobile of the super admin (promotes/creates on startup)"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	{Name: "seed_sample_data", Default: false, Desc: "Insert sample members, a meeting and a notice on startup"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges .env files, config files,
// SANGATHAN_* environment variables and flags, with precedence
// flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "SANGATHAN", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	storageLimit, err := strconv.ParseFloat(appValues.String("storage_limit_gb"), 64)
	if err != nil {
		return nil, AppConfig{}, fmt.Errorf("storage_limit_gb: %w", err)
	}

	appCfg := AppConfig{
		StoreBackend:     appValues.String("store_backend"),
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		SessionKey:       appValues.String("session_key"),
		SessionName:      appValues.String("session_name"),
		SessionDomain:    appValues.String("session_domain"),
		SessionMaxAge:    appValues.Duration("session_max_age", 30*24*time.Hour),

		// Media
		MinioEndpoint:  appValues.String("minio_endpoint"),
		MinioAccessKey: appValues.String("minio_access_key"),
		MinioSecretKey: appValues.String("minio_secret_key"),
		MinioBucket:    appValues.String("minio_bucket"),
		MinioUseSSL:    appValues.Bool("minio_use_ssl"),
		MinioRegion:    appValues.String("minio_region"),
		MediaPublicURL: appValues.String("media_public_url"),

		// Gemini
		GeminiAPIKey:     appValues.String("gemini_api_key"),
		GeminiTextModel:  appValues.String("gemini_text_model"),
		GeminiImageModel: appValues.String("gemini_image_model"),

		// Rate limiting
		RedisAddr:      appValues.String("redis_addr"),
		LoginRateLimit: appValues.Int("login_rate_limit"),

		// Retention
		RetentionDays:     appValues.Int("retention_days"),
		RetentionSchedule: appValues.String("retention_schedule"),
		StorageLimitGB:    storageLimit,

		// Membership
		MaxUsers:         appValues.Int("max_users"),
		LimitContact:     appValues.String("limit_contact"),
		SuperAdminMobile: normalize.Mobile(appValues.String("superadmin_mobile")),

		// Audit logging
		AuditLogAuth:  appValues.String("audit_log_auth"),
		AuditLogAdmin: appValues.String("audit_log_admin"),

		SeedSampleData: appValues.Bool("seed_sample_data"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// Sangathan validates the MongoDB URI format to catch configuration errors
// before attempting to connect, and refuses a short session key in prod.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	switch appCfg.StoreBackend {
	case BackendMongo:
		if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
			logger.Error("invalid MongoDB URI", zap.Error(err))
			return fmt.Errorf("invalid MongoDB URI: %w", err)
		}
	case BackendMemory:
		logger.Warn("using the in-memory store; data is lost on restart")
	default:
		return fmt.Errorf("store_backend must be %q or %q, got %q", BackendMongo, BackendMemory, appCfg.StoreBackend)
	}

	if coreCfg != nil && coreCfg.Env == "prod" && len(appCfg.SessionKey) < minSessionKeyLen {
		return fmt.Errorf("session_key must be at least %d characters in prod", minSessionKeyLen)
	}
	if err := tasks.ValidateSchedule(appCfg.RetentionSchedule); err != nil {
		return fmt.Errorf("retention_schedule: %w", err)
	}
	if appCfg.RetentionDays < 1 {
		return fmt.Errorf("retention_days must be at least 1")
	}
	if appCfg.SuperAdminMobile != "" && !inputval.IsValidMobile(appCfg.SuperAdminMobile) {
		return fmt.Errorf("superadmin_mobile must be a 10-digit mobile number")
	}
	return nil
}
