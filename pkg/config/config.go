package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	Retention     RetentionConfig
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
	Env          string `envconfig:"HEARTLINK_APP_ENV" required:"true"`
	Port         string `envconfig:"HEARTLINK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"HEARTLINK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"HEARTLINK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"HEARTLINK_DB_DSN"`
	Driver string `envconfig:"HEARTLINK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"HEARTLINK_DB_HOST"`
	LegacyPort     int    `envconfig:"HEARTLINK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"HEARTLINK_DB_USER"`
	LegacyPassword string `envconfig:"HEARTLINK_DB_PASSWORD"`
	LegacyName     string `envconfig:"HEARTLINK_DB_NAME"`
	LegacySSLMode  string `envconfig:"HEARTLINK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"HEARTLINK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"HEARTLINK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"HEARTLINK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"HEARTLINK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"HEARTLINK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"HEARTLINK_REDIS_ADDR"`
	Password     string        `envconfig:"HEARTLINK_REDIS_PASSWORD"`
	DB           int           `envconfig:"HEARTLINK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"HEARTLINK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"HEARTLINK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"HEARTLINK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"HEARTLINK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"HEARTLINK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"HEARTLINK_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"HEARTLINK_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"HEARTLINK_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"HEARTLINK_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"HEARTLINK_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"HEARTLINK_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"HEARTLINK_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"HEARTLINK_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"HEARTLINK_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"HEARTLINK_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"HEARTLINK_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"HEARTLINK_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"HEARTLINK_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"HEARTLINK_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"HEARTLINK_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"HEARTLINK_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"HEARTLINK_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"HEARTLINK_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"HEARTLINK_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	CircleTopic        string `envconfig:"HEARTLINK_PUBSUB_CIRCLE_TOPIC" default:"hl-circle-events"`
	CircleSubscription string `envconfig:"HEARTLINK_PUBSUB_CIRCLE_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"HEARTLINK_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"HEARTLINK_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"HEARTLINK_OUTBOX_PUBLISH_MAX_ATTEMPTS" default:"10"`
}

type RetentionConfig struct {
	NotificationDays int `envconfig:"HEARTLINK_NOTIFICATION_RETENTION_DAYS" default:"30"`
	OutboxDays       int `envconfig:"HEARTLINK_OUTBOX_RETENTION_DAYS" default:"14"`
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
