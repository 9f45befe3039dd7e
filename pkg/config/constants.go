package config

// EnvPrefix namespaces every environment variable read by Load.
const EnvPrefix = "ORDERSTREAM"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

// Environment variable names referenced outside the struct tags (tests, error
// messages).
const (
	EnvAppEnv                = "ORDERSTREAM_APP_ENV"
	EnvPort                  = "ORDERSTREAM_APP_PORT"
	EnvDBDSN                 = "ORDERSTREAM_DB_DSN"
	EnvDBHost                = "ORDERSTREAM_DB_HOST"
	EnvDBUser                = "ORDERSTREAM_DB_USER"
	EnvDBName                = "ORDERSTREAM_DB_NAME"
	EnvRedisURL              = "ORDERSTREAM_REDIS_URL"
	EnvGCPProjectID          = "ORDERSTREAM_GCP_PROJECT_ID"
	EnvCompletedSubscription = "ORDERSTREAM_PUBSUB_COMPLETED_SUBSCRIPTION"
	EnvMongoURI              = "ORDERSTREAM_MONGO_URI"
)

var partDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
