package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Admin        AdminConfig
	RateLimit    RateLimitConfig
	Orders       OrdersConfig
	Mail         MailConfig
	Shop         ShopConfig
	FeatureFlags FeatureFlagsConfig
	Outbox       OutboxConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Kafka        KafkaConfig
	Telemetry    TelemetryConfig
	Cron         CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if err := cfg.Mail.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CIL_APP_ENV" required:"true"`
	Port         string `envconfig:"CIL_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"CIL_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CIL_LOG_WARN_STACK" default:"false"`
	// BaseURL is used to build links in outbound messages.
	BaseURL string `envconfig:"CIL_APP_BASE_URL" default:"http://localhost:8080"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

type ServiceConfig struct {
	Kind string `envconfig:"CIL_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"CIL_DB_DSN"`
	Driver string `envconfig:"CIL_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"CIL_DB_HOST"`
	Port     int    `envconfig:"CIL_DB_PORT" default:"5432"`
	User     string `envconfig:"CIL_DB_USER"`
	Password string `envconfig:"CIL_DB_PASSWORD"`
	Name     string `envconfig:"CIL_DB_NAME"`
	SSLMode  string `envconfig:"CIL_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CIL_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CIL_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CIL_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CIL_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	// TraceSQL opens the pool through otelsql so queries show up as spans.
	TraceSQL   bool   `envconfig:"CIL_DB_TRACE_SQL" default:"false"`
	SQLitePath string `envconfig:"CIL_DB_SQLITE_PATH" default:"cil-storefront.db"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CIL_REDIS_URL"`
	Address      string        `envconfig:"CIL_REDIS_ADDR" default:"localhost:6379"`
	Password     string        `envconfig:"CIL_REDIS_PASSWORD"`
	DB           int           `envconfig:"CIL_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CIL_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CIL_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CIL_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CIL_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CIL_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"CIL_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"CIL_JWT_ISSUER" default:"cil-storefront"`
	ExpirationMinutes int    `envconfig:"CIL_JWT_EXPIRATION_MINUTES" default:"1440"`
}

// TTL returns the access token lifetime.
func (j JWTConfig) TTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"CIL_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"CIL_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"CIL_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"CIL_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"CIL_ARGON_KEY_LEN" default:"32"`
}

type AdminConfig struct {
	Username     string `envconfig:"CIL_ADMIN_USERNAME" default:"admin"`
	PasswordHash string `envconfig:"CIL_ADMIN_PASSWORD_HASH"`
	// SessionStore selects "redis" or "memory".
	SessionStore       string        `envconfig:"CIL_ADMIN_SESSION_STORE" default:"redis"`
	SessionIdleTimeout time.Duration `envconfig:"CIL_ADMIN_SESSION_IDLE_TIMEOUT" default:"24h"`
	SessionSweepEvery  time.Duration `envconfig:"CIL_ADMIN_SESSION_SWEEP_INTERVAL" default:"1h"`
	ActivityLogLimit   int           `envconfig:"CIL_ADMIN_ACTIVITY_LOG_LIMIT" default:"1000"`
}

type RateLimitConfig struct {
	LoginWindow       time.Duration `envconfig:"CIL_RATE_LIMIT_LOGIN_WINDOW" default:"15m"`
	LoginIPLimit      int           `envconfig:"CIL_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	LoginUserLimit    int           `envconfig:"CIL_RATE_LIMIT_LOGIN_USER_LIMIT" default:"5"`
	OrderCreateWindow time.Duration `envconfig:"CIL_RATE_LIMIT_ORDER_WINDOW" default:"1m"`
	OrderCreateLimit  int           `envconfig:"CIL_RATE_LIMIT_ORDER_LIMIT" default:"10"`
}

type OrdersConfig struct {
	NumberMaxAttempts int           `envconfig:"CIL_ORDER_NUMBER_MAX_ATTEMPTS" default:"5"`
	IdempotencyTTL    time.Duration `envconfig:"CIL_ORDER_IDEMPOTENCY_TTL" default:"24h"`
	Source            string        `envconfig:"CIL_ORDER_SOURCE" default:"website_cart"`
}

type MailConfig struct {
	// Transport selects "log" or "resend".
	Transport string        `envconfig:"CIL_MAIL_TRANSPORT" default:"log"`
	APIKey    string        `envconfig:"CIL_RESEND_API_KEY"`
	Endpoint  string        `envconfig:"CIL_RESEND_ENDPOINT" default:"https://api.resend.com/emails"`
	From      string        `envconfig:"CIL_MAIL_FROM" default:"Collaborative Investment Ltd <orders@collabinvest.ng>"`
	AdminTo   string        `envconfig:"CIL_MAIL_ADMIN_TO" default:"admin@collabinvest.ng"`
	Timeout   time.Duration `envconfig:"CIL_MAIL_TIMEOUT" default:"5s"`
}

func (m MailConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(m.Transport)) {
	case "", "log":
		return nil
	case "resend":
		if strings.TrimSpace(m.APIKey) == "" {
			return fmt.Errorf("%s is required when %s=resend", EnvResendAPIKey, EnvMailTransport)
		}
		return nil
	default:
		return fmt.Errorf("unsupported mail transport %q", m.Transport)
	}
}

type ShopConfig struct {
	Name          string `envconfig:"CIL_SHOP_NAME" default:"Collaborative Investment Ltd"`
	WhatsAppPhone string `envconfig:"CIL_SHOP_WHATSAPP_PHONE" default:"2348129978419"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"CIL_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"CIL_AUTO_MIGRATE" default:"false"`
}

type OutboxConfig struct {
	// Backend selects "pubsub" or "kafka".
	Backend        string `envconfig:"CIL_OUTBOX_BACKEND" default:"kafka"`
	BatchSize      int    `envconfig:"CIL_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int    `envconfig:"CIL_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int    `envconfig:"CIL_OUTBOX_MAX_ATTEMPTS" default:"10"`
	RetentionDays  int    `envconfig:"CIL_OUTBOX_RETENTION_DAYS" default:"14"`
}

type GCPConfig struct {
	ProjectID       string `envconfig:"CIL_GCP_PROJECT_ID"`
	CredentialsJSON string `envconfig:"CIL_GCP_CREDENTIALS_JSON"`
}

type PubSubConfig struct {
	OrdersTopic string `envconfig:"CIL_PUBSUB_ORDERS_TOPIC" default:"cil-order-events"`
}

type KafkaConfig struct {
	Brokers     []string `envconfig:"CIL_KAFKA_BROKERS" default:"localhost:9092"`
	OrdersTopic string   `envconfig:"CIL_KAFKA_ORDERS_TOPIC" default:"cil.order-events"`
}

type TelemetryConfig struct {
	Enabled      bool   `envconfig:"CIL_OTEL_ENABLED" default:"false"`
	OTLPEndpoint string `envconfig:"CIL_OTEL_EXPORTER_OTLP_ENDPOINT" default:"localhost:4317"`
	ServiceVer   string `envconfig:"CIL_SERVICE_VERSION" default:"dev"`
}

type CronConfig struct {
	Interval           time.Duration `envconfig:"CIL_CRON_INTERVAL" default:"1h"`
	EmailRetentionDays int           `envconfig:"CIL_CRON_EMAIL_RETENTION_DAYS" default:"180"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if db.DSN != "" || useSQLite {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range legacyDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
