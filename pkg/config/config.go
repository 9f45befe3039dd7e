package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App       AppConfig
	Service   ServiceConfig
	DB        DBConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	GCP       GCPConfig
	PubSub    PubSubConfig
	Payments  PaymentsConfig
	Consumer  ConsumerConfig
	RateLimit RateLimitConfig
	Flags     FeatureFlagsConfig
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
	Env          string `envconfig:"ORDERSTREAM_APP_ENV" required:"true"`
	Port         string `envconfig:"ORDERSTREAM_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ORDERSTREAM_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ORDERSTREAM_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"ORDERSTREAM_SERVICE_KIND" default:"orders-api"`
}

type DBConfig struct {
	DSN    string `envconfig:"ORDERSTREAM_DB_DSN"`
	Driver string `envconfig:"ORDERSTREAM_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"ORDERSTREAM_DB_HOST"`
	Port     int    `envconfig:"ORDERSTREAM_DB_PORT" default:"5432"`
	User     string `envconfig:"ORDERSTREAM_DB_USER"`
	Password string `envconfig:"ORDERSTREAM_DB_PASSWORD"`
	Name     string `envconfig:"ORDERSTREAM_DB_NAME"`
	SSLMode  string `envconfig:"ORDERSTREAM_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ORDERSTREAM_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ORDERSTREAM_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ORDERSTREAM_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ORDERSTREAM_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type MongoConfig struct {
	URI            string        `envconfig:"ORDERSTREAM_MONGO_URI" default:"mongodb://localhost:27017"`
	Database       string        `envconfig:"ORDERSTREAM_MONGO_DATABASE" default:"orderstream"`
	Collection     string        `envconfig:"ORDERSTREAM_MONGO_COLLECTION" default:"query_records"`
	ConnectTimeout time.Duration `envconfig:"ORDERSTREAM_MONGO_CONNECT_TIMEOUT" default:"10s"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ORDERSTREAM_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ORDERSTREAM_REDIS_ADDR"`
	Password     string        `envconfig:"ORDERSTREAM_REDIS_PASSWORD"`
	DB           int           `envconfig:"ORDERSTREAM_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ORDERSTREAM_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ORDERSTREAM_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ORDERSTREAM_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ORDERSTREAM_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ORDERSTREAM_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"ORDERSTREAM_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"ORDERSTREAM_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"ORDERSTREAM_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	CompletedTopic        string        `envconfig:"ORDERSTREAM_PUBSUB_COMPLETED_TOPIC" default:"order-completed"`
	CompletedSubscription string        `envconfig:"ORDERSTREAM_PUBSUB_COMPLETED_SUBSCRIPTION" required:"true"`
	PublishTimeout        time.Duration `envconfig:"ORDERSTREAM_PUBSUB_PUBLISH_TIMEOUT" default:"30s"`
}

type PaymentsConfig struct {
	BaseURL string        `envconfig:"ORDERSTREAM_PAYMENTS_BASE_URL" default:"http://localhost:8082"`
	Timeout time.Duration `envconfig:"ORDERSTREAM_PAYMENTS_TIMEOUT" default:"30s"`
}

type ConsumerConfig struct {
	StoreBackoff      time.Duration `envconfig:"ORDERSTREAM_CONSUMER_STORE_BACKOFF" default:"1s"`
	UnexpectedBackoff time.Duration `envconfig:"ORDERSTREAM_CONSUMER_UNEXPECTED_BACKOFF" default:"5s"`
	RaceRetryDelay    time.Duration `envconfig:"ORDERSTREAM_CONSUMER_RACE_RETRY_DELAY" default:"100ms"`
	MetricsPort       string        `envconfig:"ORDERSTREAM_CONSUMER_METRICS_PORT" default:"9090"`
}

type RateLimitConfig struct {
	Window time.Duration `envconfig:"ORDERSTREAM_RATE_LIMIT_WINDOW" default:"1m"`
	Limit  int64         `envconfig:"ORDERSTREAM_RATE_LIMIT_LIMIT" default:"120"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ORDERSTREAM_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	parts := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range partDBEnvVars {
		if parts[env] == "" {
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
