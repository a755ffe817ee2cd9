package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const envPrefix = "SHOP"

type Config struct {
	HTTPAddress string `envconfig:"HTTP_ADDRESS" default:":8080"`
	GRPCAddress string `envconfig:"GRPC_ADDRESS" default:":50051"`

	MySQLDSN          string        `envconfig:"MYSQL_DSN" default:"root:root@tcp(localhost:3306)/shop?parseTime=true&multiStatements=true"`
	MySQLMaxOpenConns int           `envconfig:"MYSQL_MAX_OPEN_CONNS" default:"50"`
	MySQLMaxIdleConns int           `envconfig:"MYSQL_MAX_IDLE_CONNS" default:"25"`
	MySQLConnLifetime time.Duration `envconfig:"MYSQL_CONN_LIFETIME" default:"5m"`
	MigrateOnStart    bool          `envconfig:"MIGRATE_ON_START" default:"false"`

	RedisAddress  string `envconfig:"REDIS_ADDRESS" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	RedisPoolSize int    `envconfig:"REDIS_POOL_SIZE" default:"100"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	SessionCookie   string        `envconfig:"SESSION_COOKIE" default:"session_id"`
	TagsCacheTTL    time.Duration `envconfig:"TAGS_CACHE_TTL" default:"10m"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`

	PriceLocale   string `envconfig:"PRICE_LOCALE" default:"es-MX"`
	PriceCurrency string `envconfig:"PRICE_CURRENCY" default:"MXN"`

	MercadoPago MercadoPago `envconfig:"MP"`
}

type MercadoPago struct {
	ClientID     string        `envconfig:"CLIENT_ID"`
	ClientSecret string        `envconfig:"CLIENT_SECRET"`
	RedirectURL  string        `envconfig:"REDIRECT_URL" default:"http://localhost:8080/mercadopago/webhook"`
	AuthURL      string        `envconfig:"AUTH_URL" default:"https://auth.mercadopago.com/authorization"`
	APIBaseURL   string        `envconfig:"API_BASE_URL" default:"https://api.mercadopago.com"`
	Timeout      time.Duration `envconfig:"TIMEOUT" default:"10s"`
	StateTTL     time.Duration `envconfig:"STATE_TTL" default:"10m"`
	CodeClaimTTL time.Duration `envconfig:"CODE_CLAIM_TTL" default:"24h"`
}

// Load reads an optional .env file and then the SHOP_* environment.
// Variables already set in the environment win over the file.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "load %s", f)
		}
	}

	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, errors.Wrap(err, "process env")
	}
	return &cfg, nil
}

// NewLogger builds the process logger from the log settings.
func (c *Config) NewLogger() (*logrus.Logger, error) {
	logger := logrus.New()

	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, errors.Wrap(err, "parse log level")
	}
	logger.SetLevel(level)

	switch c.LogFormat {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, errors.Errorf("unknown log format %q", c.LogFormat)
	}
	return logger, nil
}
