package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultJWTSecret is only acceptable outside production.
const DefaultJWTSecret = "dev-only-secret-change-me"

// Store drivers.
const (
	StoreDynamo = "dynamo"
	StoreMemory = "memory"
)

// Mail drivers.
const (
	MailOutbox = "outbox"
	MailSMTP   = "smtp"
	MailSNS    = "sns"
)

// Config holds all runtime configuration loaded from environment variables.
// It is read once in main and handed to constructors; nothing else reads the
// process environment.
type Config struct {
	AppName  string
	AppPort  string
	AppEnv   string
	LogLevel string

	StoreDriver    string
	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	JWTSecret    string
	SessionTTL   time.Duration
	CookieSecure bool
	BcryptCost   int

	LoginRatePerMinute int
	// TrustedProxies lists peers (IPs or CIDRs) whose X-Forwarded-For is honoured.
	TrustedProxies []string

	MailDriver   string
	SMTPHost     string
	SMTPPort     int
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string
	SNSRegion    string
	SNSTopicARN  string

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Accounts          string
	VerificationCodes string
	Tasks             string
	OutboxEmails      string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppName:  getEnv("APP_NAME", "task-manager-api"),
		AppPort:  getEnv("APP_PORT", "3000"),
		AppEnv:   getEnv("APP_ENV", "production"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		StoreDriver:    getEnv("STORE_DRIVER", StoreDynamo),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Accounts:          getEnv("DYNAMO_TABLE_ACCOUNTS", "accounts"),
			VerificationCodes: getEnv("DYNAMO_TABLE_VERIFICATION_CODES", "verification_codes"),
			Tasks:             getEnv("DYNAMO_TABLE_TASKS", "tasks"),
			OutboxEmails:      getEnv("DYNAMO_TABLE_OUTBOX_EMAILS", "outbox_emails"),
		},

		JWTSecret:    getEnv("JWT_SECRET", DefaultJWTSecret),
		SessionTTL:   getEnvDuration("SESSION_TTL", 2*time.Hour),
		CookieSecure: getEnvBool("COOKIE_SECURE", false),
		BcryptCost:   getEnvInt("BCRYPT_COST", 10),

		LoginRatePerMinute: getEnvInt("LOGIN_RATE_PER_MINUTE", 10),
		TrustedProxies:     strings.Split(getEnv("TRUSTED_PROXIES", "127.0.0.0/8,::1/128"), ","),

		MailDriver:   getEnv("MAIL_DRIVER", MailOutbox),
		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnvInt("SMTP_PORT", 1025),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SNSRegion:    getEnv("SNS_REGION", "us-east-1"),
		SNSTopicARN:  getEnv("SNS_TOPIC_ARN", ""),

		AllowedOrigins: strings.Split(getEnv("CORS_ORIGIN", "http://localhost:5173"), ","),
	}
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool { return c.AppEnv == "production" }

// IsDevelopment reports whether the service runs with development settings.
func (c *Config) IsDevelopment() bool { return c.AppEnv == "development" }

// DevRoutesEnabled reports whether the dev mailbox should be mounted. It only
// has mail to show when verification codes go to the outbox.
func (c *Config) DevRoutesEnabled() bool {
	return c.IsDevelopment() && c.MailDriver == MailOutbox
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
