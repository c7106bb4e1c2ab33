package config

const (
	// EnvPrefix namespaces every Heartlink environment variable.
	EnvPrefix = "heartlink"

	AppEnvDev  = "development"
	AppEnvProd = "production"
)

// Environment variable names referenced outside struct tags (tests, error text).
const (
	EnvAppEnv                 = "HEARTLINK_APP_ENV"
	EnvPort                   = "HEARTLINK_APP_PORT"
	EnvDBDSN                  = "HEARTLINK_DB_DSN"
	EnvDBHost                 = "HEARTLINK_DB_HOST"
	EnvDBUser                 = "HEARTLINK_DB_USER"
	EnvDBName                 = "HEARTLINK_DB_NAME"
	EnvRedisURL               = "HEARTLINK_REDIS_URL"
	EnvJWTSecret              = "HEARTLINK_JWT_SECRET"
	EnvJWTIssuer              = "HEARTLINK_JWT_ISSUER"
	EnvJWTExpMins             = "HEARTLINK_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "HEARTLINK_REFRESH_TOKEN_TTL_MINUTES"
	EnvGCPProjectID           = "HEARTLINK_GCP_PROJECT_ID"
	EnvPubSubCircleTopic      = "HEARTLINK_PUBSUB_CIRCLE_TOPIC"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
