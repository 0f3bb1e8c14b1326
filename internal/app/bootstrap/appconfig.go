// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS, logging,
// CORS, body limits). AppConfig carries everything specific to Sangathan:
// the store backend, session cookie, media storage, the Gemini key and the
// membership and retention limits.
type AppConfig struct {
	// Store backend: "mongo" or "memory" (demo and tests; data is lost on exit)
	StoreBackend string

	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string        // Secret key for signing session cookies (must be strong in production)
	SessionName   string        // Cookie name for sessions (default: sangathan-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Cookie lifetime

	// Media object storage (MinIO or S3). Blank endpoint stores images as data URLs.
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	MinioRegion    string
	MediaPublicURL string // optional CDN in front of the bucket

	// Generative assistance. Blank key disables it.
	GeminiAPIKey     string
	GeminiTextModel  string
	GeminiImageModel string

	// Login rate limiting. Blank redis address keeps counters in process.
	RedisAddr      string
	LoginRateLimit int // attempts per mobile per 5 minutes

	// Feed retention and storage quota
	RetentionDays     int
	RetentionSchedule string
	StorageLimitGB    float64

	// Membership
	MaxUsers         int
	LimitContact     string // shown when the members limit is reached
	SuperAdminMobile string // promoted or created on startup

	// Audit logging: "all", "db", "log" or "off" per category
	AuditLogAuth  string
	AuditLogAdmin string

	// Insert the sample members, meeting and notice on startup
	SeedSampleData bool
}

// UseMemory reports whether the in-memory store is selected.
func (c AppConfig) UseMemory() bool { return c.StoreBackend == BackendMemory }
