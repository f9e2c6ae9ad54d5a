package config

import (
	"fmt"
	"time"
)

type Config struct {
	Env              string                  `env:"ENV,default=local"`
	Language         string                  `env:"LANGUAGE,default=ru"`
	AppURL           string                  `env:"APP_URL,default=http://localhost:3000"`
	Logger           LoggerConfig            `env:",prefix=LOGGER_"`
	HTTP             HTTPServerConfig        `env:",prefix=HTTP_"`
	Observability    ObservabilityHTTPConfig `env:",prefix=OBSERVABILITY_"`
	ShutdownDuration time.Duration           `env:"SHUTDOWN_DURATION,default=30s"`
	Storage          StorageConfig           `env:",prefix=STORAGE_"`
	KV               KVConfig
	Redis            RedisConfig
	YooKassa         YooKassaConfig          `env:",prefix=YOOKASSA_"`
	Journal          JournalConfig           `env:",prefix=JOURNAL_"`
	PaymentAutocheck PaymentAutocheckConfig  `env:",prefix=PAYMENT_AUTOCHECK_"`
}

type LoggerConfig struct {
	Level string `env:"LEVEL,default=debug"`
}

type HTTPServerConfig struct {
	Host         string        `env:"HOST,default=0.0.0.0"`
	Port         uint16        `env:"PORT,default=8080"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT,default=30s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT,default=30s"`
	IdleTimeout  time.Duration `env:"IDLE_TIMEOUT,default=1m"`
}

func (c HTTPServerConfig) ADDR() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type ObservabilityHTTPConfig struct {
	Host         string        `env:"HOST,default=127.0.0.1"`
	Port         uint16        `env:"PORT,default=8383"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT,default=30s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT,default=30s"`
	IdleTimeout  time.Duration `env:"IDLE_TIMEOUT,default=1m"`
}

func (a ObservabilityHTTPConfig) ADDR() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

// StorageConfig describes the always-available last tier.
// Local is either "file" or "memory".
type StorageConfig struct {
	DataDir string `env:"DATA_DIR,default=./data"`
	Local   string `env:"LOCAL,default=file"`
}

// KVConfig accepts both the Vercel KV and the Upstash variable names.
type KVConfig struct {
	URL          string         `env:"KV_REST_API_URL"`
	Token        string         `env:"KV_REST_API_TOKEN"`
	UpstashURL   string         `env:"UPSTASH_REDIS_REST_URL"`
	UpstashToken string         `env:"UPSTASH_REDIS_REST_TOKEN"`
	Client       OutboundConfig `env:",prefix=KV_REST_"`
}

func (c KVConfig) BaseURL() string {
	if c.URL != "" {
		return c.URL
	}
	return c.UpstashURL
}

func (c KVConfig) AccessToken() string {
	if c.Token != "" {
		return c.Token
	}
	return c.UpstashToken
}

func (c KVConfig) Enabled() bool {
	return c.BaseURL() != "" && c.AccessToken() != ""
}

type RedisConfig struct {
	URL         string        `env:"REDIS_URL"`
	UpstashURL  string        `env:"UPSTASH_REDIS_URL"`
	ConnTimeout time.Duration `env:"REDIS_CONN_TIMEOUT,default=5s"`
}

func (c RedisConfig) ConnURL() string {
	if c.URL != "" {
		return c.URL
	}
	return c.UpstashURL
}

type YooKassaConfig struct {
	ShopID    string         `env:"SHOP_ID"`
	SecretKey string         `env:"SECRET_KEY"`
	APIURL    string         `env:"API_URL,default=https://api.yookassa.ru/v3"`
	Client    OutboundConfig `env:",prefix=CLIENT_"`
}

// OutboundConfig tunes an HTTP client that talks to a third party.
type OutboundConfig struct {
	Timeout   time.Duration `env:"TIMEOUT,default=30s"`
	RateLimit struct {
		Burst int     `env:"BURST,default=10"`
		RPS   float64 `env:"RPS,default=20.0"`
	} `env:",prefix=RATE_LIMIT_"`
}

type JournalConfig struct {
	DBPath       string        `env:"DB_PATH,default=./data/journal.db"`
	MaxOpenConns int           `env:"MAX_OPEN_CONNS,default=4"`
	MaxIdleConns int           `env:"MAX_IDLE_CONNS,default=2"`
	MaxLifetime  time.Duration `env:"MAX_LIFETIME,default=1h"`
}

type PaymentAutocheckConfig struct {
	Enabled  bool          `env:"ENABLED,default=true"`
	Interval time.Duration `env:"INTERVAL,default=1m"`
	MaxAge   time.Duration `env:"MAX_AGE,default=48h"`
}
