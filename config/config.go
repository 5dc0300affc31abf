package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// DevJWTSecret is the signing secret used when JWT_SECRET is unset. It is
// only accepted in development.
const DevJWTSecret = "devaccesssecret"

var ErrInsecureJWTSecret = errors.New("JWT_SECRET must be set outside development")

// Config holds application configuration loaded from environment variables
// Provide sane defaults for local development.
type Config struct {
	AppName string `env:"APP_NAME" envDefault:"inventory-sales-api"`
	Env     string `env:"APP_ENV" envDefault:"development"` // development, staging, production
	Port    string `env:"PORT" envDefault:"8080"`
	GinMode string `env:"GIN_MODE" envDefault:"release"`
	// APIPrefix mounts every route under a path such as "/api"; empty mounts at the root.
	APIPrefix string `env:"API_PREFIX"`

	// MongoDB
	MongoURI      string        `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDB       string        `env:"MONGO_DB" envDefault:"inventory"`
	MongoTimeout  time.Duration `env:"MONGO_TIMEOUT" envDefault:"10s"`
	MigrationsDir string        `env:"MIGRATIONS_DIR" envDefault:"db/migrations"`

	// Redis (rate limiting)
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// JWT
	JWTSecret string `env:"JWT_SECRET" envDefault:"devaccesssecret"`

	// Media storage: gcs or s3
	MediaDriver            string `env:"MEDIA_DRIVER" envDefault:"gcs"`
	GCSBucket              string `env:"GCS_BUCKET"`
	GCSCredentialsJSONPath string `env:"GCS_CREDENTIALS_JSON"` // optional; if empty, Application Default Credentials are used
	S3Bucket               string `env:"S3_BUCKET"`
	S3Region               string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Endpoint             string `env:"S3_ENDPOINT"`
	S3AccessKey            string `env:"S3_ACCESS_KEY"`
	S3SecretKey            string `env:"S3_SECRET_KEY"`
	S3PublicURL            string `env:"S3_PUBLIC_URL"`

	// Mail: smtp or mailgun
	MailDriver      string `env:"MAIL_DRIVER" envDefault:"smtp"`
	MailSendEnabled bool   `env:"MAIL_SEND_ENABLED" envDefault:"true"`
	SMTPHost        string `env:"SMTP_HOST" envDefault:"localhost"`
	SMTPPort        int    `env:"SMTP_PORT" envDefault:"1025"`
	SMTPUsername    string `env:"SMTP_USERNAME"`
	SMTPPassword    string `env:"SMTP_PASSWORD"`
	SMTPFrom        string `env:"SMTP_FROM" envDefault:"no-reply@localhost"`
	MailgunDomain   string `env:"MAILGUN_DOMAIN"`
	MailgunAPIKey   string `env:"MAILGUN_API_KEY"`
	MailgunSender   string `env:"MAILGUN_SENDER"`

	// Elasticsearch
	ElasticsearchAddrs string `env:"ELASTICSEARCH_ADDRS"` // comma-separated; empty disables search indexing
	ElasticsearchUser  string `env:"ELASTICSEARCH_USERNAME"`
	ElasticsearchPass  string `env:"ELASTICSEARCH_PASSWORD"`
	ESProductsIndex    string `env:"ES_PRODUCTS_INDEX" envDefault:"products"`

	// CORS
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS"` // comma-separated

	// Outbound calls (media, mail)
	OutboundTimeout time.Duration `env:"OUTBOUND_TIMEOUT" envDefault:"10s"`
	OutboundRetries uint64        `env:"OUTBOUND_RETRIES" envDefault:"3"`

	// Domain tuning
	ResetCodeTTL   time.Duration `env:"RESET_CODE_TTL" envDefault:"1h"`
	StaleAfterDays int           `env:"STALE_AFTER_DAYS" envDefault:"30"`

	// Debug metrics (<API_PREFIX>/debug/vars)
	DebugMetricsEnabled bool   `env:"DEBUG_METRICS_ENABLED" envDefault:"true"`
	DebugAllowCIDRs     string `env:"DEBUG_ALLOW_CIDRS"` // comma-separated; bypass the debug rate limit

	// HTTP access log toggle (Gin logger)
	HTTPLogEnabled bool `env:"HTTP_LOG_ENABLED" envDefault:"false"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	secret := strings.TrimSpace(c.JWTSecret)
	if secret == "" {
		return fmt.Errorf("config: %w", ErrInsecureJWTSecret)
	}
	if c.Env != "development" && secret == DevJWTSecret {
		return fmt.Errorf("config: APP_ENV=%s: %w", c.Env, ErrInsecureJWTSecret)
	}
	return nil
}

// CORSOrigins returns the allowed origins as slice
func (c *Config) CORSOrigins() []string {
	return splitCSV(c.CORSAllowedOrigins)
}

// DebugCIDRs returns the networks allowed to poll debug vars without limit.
func (c *Config) DebugCIDRs() []string {
	return splitCSV(c.DebugAllowCIDRs)
}

// ESAddrs returns Elasticsearch addresses as a slice
func (c *Config) ESAddrs() []string {
	return splitCSV(c.ElasticsearchAddrs)
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			res = append(res, p)
		}
	}
	return res
}
