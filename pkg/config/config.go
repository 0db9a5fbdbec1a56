package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix namespaces every environment variable the service reads.
	EnvPrefix = "SUNGJIDROP"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "SUNGJIDROP_DB_DSN"
	EnvDBHost = "SUNGJIDROP_DB_HOST"
	EnvDBUser = "SUNGJIDROP_DB_USER"
	EnvDBName = "SUNGJIDROP_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	OTP           OTPConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Quotes        QuotesConfig
	Notifications NotificationsConfig
	Cron          CronConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	BigQuery      BigQueryConfig
	Outbox        OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SUNGJIDROP_APP_ENV" required:"true"`
	Port         string `envconfig:"SUNGJIDROP_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SUNGJIDROP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SUNGJIDROP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SUNGJIDROP_DB_DSN"`
	Driver string `envconfig:"SUNGJIDROP_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SUNGJIDROP_DB_HOST"`
	LegacyPort     int    `envconfig:"SUNGJIDROP_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SUNGJIDROP_DB_USER"`
	LegacyPassword string `envconfig:"SUNGJIDROP_DB_PASSWORD"`
	LegacyName     string `envconfig:"SUNGJIDROP_DB_NAME"`
	LegacySSLMode  string `envconfig:"SUNGJIDROP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SUNGJIDROP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SUNGJIDROP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SUNGJIDROP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SUNGJIDROP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SUNGJIDROP_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SUNGJIDROP_REDIS_ADDR"`
	Password     string        `envconfig:"SUNGJIDROP_REDIS_PASSWORD"`
	DB           int           `envconfig:"SUNGJIDROP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SUNGJIDROP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SUNGJIDROP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SUNGJIDROP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SUNGJIDROP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SUNGJIDROP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"SUNGJIDROP_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"SUNGJIDROP_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"SUNGJIDROP_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"SUNGJIDROP_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SUNGJIDROP_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SUNGJIDROP_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SUNGJIDROP_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SUNGJIDROP_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SUNGJIDROP_ARGON_KEY_LEN" default:"32"`
}

// OTPConfig tunes the phone sign-in code flow.
type OTPConfig struct {
	CodeLength  int           `envconfig:"SUNGJIDROP_OTP_CODE_LENGTH" default:"6"`
	TTL         time.Duration `envconfig:"SUNGJIDROP_OTP_TTL" default:"3m"`
	MaxAttempts int           `envconfig:"SUNGJIDROP_OTP_MAX_ATTEMPTS" default:"5"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"SUNGJIDROP_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"SUNGJIDROP_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"SUNGJIDROP_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"SUNGJIDROP_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"SUNGJIDROP_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"SUNGJIDROP_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
	OTPWindow          time.Duration `envconfig:"SUNGJIDROP_AUTH_RATE_LIMIT_OTP_WINDOW" default:"1m"`
	OTPPhoneLimit      int           `envconfig:"SUNGJIDROP_AUTH_RATE_LIMIT_OTP_PHONE_LIMIT" default:"3"`
	OTPIPLimit         int           `envconfig:"SUNGJIDROP_AUTH_RATE_LIMIT_OTP_IP_LIMIT" default:"10"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SUNGJIDROP_AUTO_MIGRATE" default:"false"`
	SeedQuotes  bool `envconfig:"SUNGJIDROP_SEED_QUOTES" default:"true"`
}

// QuotesConfig tunes the reverse-auction lifecycle.
type QuotesConfig struct {
	RequestTTL   time.Duration `envconfig:"SUNGJIDROP_QUOTE_REQUEST_TTL" default:"72h"`
	ContractTerm int           `envconfig:"SUNGJIDROP_QUOTE_CONTRACT_TERM_MONTHS" default:"24"`
}

type NotificationsConfig struct {
	ListLimit     int           `envconfig:"SUNGJIDROP_NOTIFICATIONS_LIST_LIMIT" default:"50"`
	ReadRetention time.Duration `envconfig:"SUNGJIDROP_NOTIFICATIONS_READ_RETENTION" default:"720h"`
}

type CronConfig struct {
	Interval    time.Duration `envconfig:"SUNGJIDROP_CRON_INTERVAL" default:"10m"`
	LockTTL     time.Duration `envconfig:"SUNGJIDROP_CRON_LOCK_TTL" default:"5m"`
	MetricsPort string        `envconfig:"SUNGJIDROP_CRON_METRICS_PORT" default:"9091"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"SUNGJIDROP_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"SUNGJIDROP_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"SUNGJIDROP_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	DomainTopic              string `envconfig:"SUNGJIDROP_PUBSUB_DOMAIN_TOPIC" default:"sjd-domain-events"`
	NotificationSubscription string `envconfig:"SUNGJIDROP_PUBSUB_NOTIFICATION_SUBSCRIPTION" required:"true"`
	AnalyticsSubscription    string `envconfig:"SUNGJIDROP_PUBSUB_ANALYTICS_SUBSCRIPTION" required:"true"`
}

type BigQueryConfig struct {
	Dataset                string `envconfig:"SUNGJIDROP_BIGQUERY_DATASET" default:"sungjidrop"`
	MarketplaceEventsTable string `envconfig:"SUNGJIDROP_BIGQUERY_MARKETPLACE_TABLE" default:"marketplace_events"`
}

type OutboxConfig struct {
	BatchSize      int           `envconfig:"SUNGJIDROP_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int           `envconfig:"SUNGJIDROP_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int           `envconfig:"SUNGJIDROP_OUTBOX_MAX_ATTEMPTS" default:"10"`
	IdempotencyTTL time.Duration `envconfig:"SUNGJIDROP_OUTBOX_IDEMPOTENCY_TTL" default:"72h"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
