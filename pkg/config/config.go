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
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Idempotency  IdempotencyConfig
	RateLimit    RateLimitConfig
	CORS         CORSConfig
	Outbox       OutboxConfig
	Maintenance  MaintenanceConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Kafka        KafkaConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		if cfg.App.IsProd() {
			return nil, fmt.Errorf("%s is not allowed when %s=%s", EnvUseSQLite, EnvAppEnv, AppEnvProd)
		}
		cfg.DB.Driver = "sqlite"
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Outbox.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MOBILEDOOR_APP_ENV" required:"true"`
	Port         string `envconfig:"MOBILEDOOR_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"MOBILEDOOR_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MOBILEDOOR_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"MOBILEDOOR_DB_DSN"`
	Driver string `envconfig:"MOBILEDOOR_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"MOBILEDOOR_DB_HOST"`
	LegacyPort     int    `envconfig:"MOBILEDOOR_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MOBILEDOOR_DB_USER"`
	LegacyPassword string `envconfig:"MOBILEDOOR_DB_PASSWORD"`
	LegacyName     string `envconfig:"MOBILEDOOR_DB_NAME"`
	LegacySSLMode  string `envconfig:"MOBILEDOOR_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MOBILEDOOR_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MOBILEDOOR_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MOBILEDOOR_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MOBILEDOOR_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"MOBILEDOOR_REDIS_URL"`
	Address      string        `envconfig:"MOBILEDOOR_REDIS_ADDR" default:"localhost:6379"`
	Password     string        `envconfig:"MOBILEDOOR_REDIS_PASSWORD"`
	DB           int           `envconfig:"MOBILEDOOR_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MOBILEDOOR_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MOBILEDOOR_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MOBILEDOOR_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MOBILEDOOR_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MOBILEDOOR_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"MOBILEDOOR_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"MOBILEDOOR_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"MOBILEDOOR_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"MOBILEDOOR_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"MOBILEDOOR_AUTO_MIGRATE" default:"false"`
}

type IdempotencyConfig struct {
	Enabled    bool          `envconfig:"MOBILEDOOR_IDEMPOTENCY_ENABLED" default:"true"`
	DefaultTTL time.Duration `envconfig:"MOBILEDOOR_IDEMPOTENCY_DEFAULT_TTL" default:"24h"`
	OrderTTL   time.Duration `envconfig:"MOBILEDOOR_IDEMPOTENCY_ORDER_TTL" default:"168h"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"MOBILEDOOR_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type RateLimitConfig struct {
	CheckoutLimit  int           `envconfig:"MOBILEDOOR_RATE_LIMIT_CHECKOUT" default:"10"`
	CheckoutWindow time.Duration `envconfig:"MOBILEDOOR_RATE_LIMIT_CHECKOUT_WINDOW" default:"1m"`
}

type OutboxConfig struct {
	Transport      string `envconfig:"MOBILEDOOR_OUTBOX_TRANSPORT" default:"pubsub"`
	BatchSize      int    `envconfig:"MOBILEDOOR_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int    `envconfig:"MOBILEDOOR_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int    `envconfig:"MOBILEDOOR_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

func (o OutboxConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(o.Transport)) {
	case OutboxTransportPubSub, OutboxTransportKafka:
		return nil
	default:
		return fmt.Errorf("%s must be one of %q or %q", EnvOutboxTransport, OutboxTransportPubSub, OutboxTransportKafka)
	}
}

type MaintenanceConfig struct {
	Interval        time.Duration `envconfig:"MOBILEDOOR_MAINTENANCE_INTERVAL" default:"1h"`
	OutboxRetention time.Duration `envconfig:"MOBILEDOOR_MAINTENANCE_OUTBOX_RETENTION" default:"720h"`
}

type GCPConfig struct {
	ProjectID       string `envconfig:"MOBILEDOOR_GCP_PROJECT_ID"`
	CredentialsJSON string `envconfig:"MOBILEDOOR_GCP_CREDENTIALS_JSON"`
}

type PubSubConfig struct {
	OrdersTopic string `envconfig:"MOBILEDOOR_PUBSUB_ORDERS_TOPIC" default:"mobiledoor-order-events"`
}

type KafkaConfig struct {
	Brokers []string `envconfig:"MOBILEDOOR_KAFKA_BROKERS" default:"localhost:9092"`
	Topic   string   `envconfig:"MOBILEDOOR_KAFKA_ORDERS_TOPIC" default:"order-events"`
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
