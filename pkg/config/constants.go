package config

const (
	EnvPrefix = "MOBILEDOOR"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	OutboxTransportPubSub = "pubsub"
	OutboxTransportKafka  = "kafka"
)

const (
	EnvAppEnv   = "MOBILEDOOR_APP_ENV"
	EnvPort     = "MOBILEDOOR_APP_PORT"
	EnvLogLevel = "MOBILEDOOR_LOG_LEVEL"

	EnvDBDSN  = "MOBILEDOOR_DB_DSN"
	EnvDBHost = "MOBILEDOOR_DB_HOST"
	EnvDBUser = "MOBILEDOOR_DB_USER"
	EnvDBName = "MOBILEDOOR_DB_NAME"

	EnvRedisURL = "MOBILEDOOR_REDIS_URL"

	EnvJWTSecret  = "MOBILEDOOR_JWT_SECRET"
	EnvJWTIssuer  = "MOBILEDOOR_JWT_ISSUER"
	EnvJWTExpMins = "MOBILEDOOR_JWT_EXPIRATION_MINUTES"

	EnvUseSQLite   = "MOBILEDOOR_USE_SQLITE"
	EnvAutoMigrate = "MOBILEDOOR_AUTO_MIGRATE"

	EnvOutboxTransport = "MOBILEDOOR_OUTBOX_TRANSPORT"
	EnvGCPProjectID    = "MOBILEDOOR_GCP_PROJECT_ID"
	EnvKafkaBrokers    = "MOBILEDOOR_KAFKA_BROKERS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
