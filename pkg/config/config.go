package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix is passed to envconfig; individual tags spell the full name.
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	OTP          OTPConfig
	Admin        AdminConfig
	OTPRateLimit OTPRateLimitConfig
	Zoning       ZoningConfig
	Payments     PaymentsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Cron         CronConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"GROUPBUY_APP_ENV" required:"true"`
	Port         string `envconfig:"GROUPBUY_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"GROUPBUY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GROUPBUY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"GROUPBUY_DB_DSN"`

	Host     string `envconfig:"GROUPBUY_DB_HOST"`
	Port     int    `envconfig:"GROUPBUY_DB_PORT" default:"5432"`
	User     string `envconfig:"GROUPBUY_DB_USER"`
	Password string `envconfig:"GROUPBUY_DB_PASSWORD"`
	Name     string `envconfig:"GROUPBUY_DB_NAME"`
	SSLMode  string `envconfig:"GROUPBUY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GROUPBUY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GROUPBUY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GROUPBUY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GROUPBUY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("either GROUPBUY_DB_DSN or host/user/name parts are required")
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.Name,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	d.DSN = u.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"GROUPBUY_REDIS_URL"`
	Address      string        `envconfig:"GROUPBUY_REDIS_ADDR"`
	Password     string        `envconfig:"GROUPBUY_REDIS_PASSWORD"`
	DB           int           `envconfig:"GROUPBUY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GROUPBUY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GROUPBUY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GROUPBUY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GROUPBUY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GROUPBUY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret          string `envconfig:"GROUPBUY_JWT_SECRET" required:"true"`
	Issuer          string `envconfig:"GROUPBUY_JWT_ISSUER" default:"groupbuy"`
	ExpirationHours int    `envconfig:"GROUPBUY_JWT_EXPIRATION_HOURS" default:"168"`
}

// Expiration returns the access token lifetime.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationHours <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationHours) * time.Hour
}

type OTPConfig struct {
	TTL         time.Duration `envconfig:"GROUPBUY_OTP_TTL" default:"10m"`
	MaxAttempts int           `envconfig:"GROUPBUY_OTP_MAX_ATTEMPTS" default:"5"`
	// EchoInResponse returns the generated code in the API response instead of
	// sending an SMS. Dev-mode only; the SMS gateway is out of scope.
	EchoInResponse bool `envconfig:"GROUPBUY_OTP_ECHO" default:"false"`
}

type AdminConfig struct {
	// Phones is the comma-separated admin allow-list. Injected here rather than
	// hard-coded so the admin predicate stays configuration.
	Phones []string `envconfig:"GROUPBUY_ADMIN_PHONES"`
}

type OTPRateLimitConfig struct {
	SendWindow     time.Duration `envconfig:"GROUPBUY_OTP_SEND_WINDOW" default:"15m"`
	SendIPLimit    int           `envconfig:"GROUPBUY_OTP_SEND_IP_LIMIT" default:"30"`
	SendPhoneLimit int           `envconfig:"GROUPBUY_OTP_SEND_PHONE_LIMIT" default:"5"`
}

type ZoningConfig struct {
	DefaultRadiusKm float64 `envconfig:"GROUPBUY_ZONE_DEFAULT_RADIUS_KM" default:"5"`
}

type PaymentsConfig struct {
	LockWindow time.Duration `envconfig:"GROUPBUY_PAYMENT_LOCK_WINDOW" default:"48h"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"GROUPBUY_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"GROUPBUY_PUBSUB_DOMAIN_TOPIC" default:"groupbuy-domain-events"`
	DomainSubscription string `envconfig:"GROUPBUY_PUBSUB_DOMAIN_SUBSCRIPTION" default:"groupbuy-domain-events-notifications"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"GROUPBUY_OUTBOX_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"GROUPBUY_OUTBOX_POLL_INTERVAL_MS" default:"500"`
	MaxAttempts    int `envconfig:"GROUPBUY_OUTBOX_MAX_ATTEMPTS" default:"10"`
	RetentionDays  int `envconfig:"GROUPBUY_OUTBOX_RETENTION_DAYS" default:"14"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"GROUPBUY_CRON_INTERVAL" default:"15m"`
	LockTTL  time.Duration `envconfig:"GROUPBUY_CRON_LOCK_TTL" default:"14m"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"GROUPBUY_AUTO_MIGRATE" default:"false"`
}
