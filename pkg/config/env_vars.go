package config

// EnvPrefix is handed to envconfig; every field also carries its fully
// qualified name so lookups resolve with or without the nested prefix.
const EnvPrefix = "CIL"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "CIL_APP_ENV"
	EnvPort     = "CIL_APP_PORT"
	EnvLogLevel = "CIL_LOG_LEVEL"

	EnvDBDSN  = "CIL_DB_DSN"
	EnvDBHost = "CIL_DB_HOST"
	EnvDBUser = "CIL_DB_USER"
	EnvDBName = "CIL_DB_NAME"

	EnvRedisURL = "CIL_REDIS_URL"

	EnvJWTSecret  = "CIL_JWT_SECRET"
	EnvJWTIssuer  = "CIL_JWT_ISSUER"
	EnvJWTExpMins = "CIL_JWT_EXPIRATION_MINUTES"

	EnvAdminUsername     = "CIL_ADMIN_USERNAME"
	EnvAdminPasswordHash = "CIL_ADMIN_PASSWORD_HASH"

	EnvMailTransport = "CIL_MAIL_TRANSPORT"
	EnvResendAPIKey  = "CIL_RESEND_API_KEY"
	EnvMailAdminTo   = "CIL_MAIL_ADMIN_TO"

	EnvOutboxBackend = "CIL_OUTBOX_BACKEND"
	EnvKafkaBrokers  = "CIL_KAFKA_BROKERS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
