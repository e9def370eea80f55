package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName string
	ServerPort  int
	LogLevel    string

	DatabaseURL string

	AppSecret    []byte
	FrontendURL  string
	CookieSecure bool

	Mail   MailConfig
	Stripe StripeConfig

	KafkaBrokers []string

	ES    ESConfig
	Minio MinioConfig

	PerPage int
}

type MailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type StripeConfig struct {
	SecretKey string
	Currency  string
}

type ESConfig struct {
	URL      string
	User     string
	Password string
	Index    string
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string
}

func Load() Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "storefront"),
		ServerPort:  EnvIntDefault("SERVER_PORT", 4444),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		AppSecret:    []byte(os.Getenv("APP_SECRET")),
		FrontendURL:  EnvDefault("FRONTEND_URL", "http://localhost:7777"),
		CookieSecure: EnvBoolDefault("COOKIE_SECURE", false),

		Mail: MailConfig{
			Host:     os.Getenv("MAIL_HOST"),
			Port:     EnvIntDefault("MAIL_PORT", 587),
			User:     os.Getenv("MAIL_USER"),
			Password: os.Getenv("MAIL_PASS"),
			From:     EnvDefault("MAIL_FROM", "no-reply@storefront.local"),
		},
		Stripe: StripeConfig{
			SecretKey: os.Getenv("STRIPE_SECRET"),
			Currency:  strings.ToLower(EnvDefault("CURRENCY", "usd")),
		},

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),

		ES: ESConfig{
			URL:      os.Getenv("ES_URL"),
			User:     os.Getenv("ES_USER"),
			Password: os.Getenv("ES_PASSWORD"),
			Index:    EnvDefault("ES_INDEX", "items"),
		},
		Minio: MinioConfig{
			Endpoint:  os.Getenv("MINIO_ENDPOINT"),
			AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			Bucket:    EnvDefault("MINIO_BUCKET", "items"),
			UseSSL:    EnvBoolDefault("MINIO_USE_SSL", false),
			PublicURL: os.Getenv("MINIO_PUBLIC_URL"),
		},

		PerPage: EnvIntDefault("PER_PAGE", 4),
	}
}

// Validate reports the first missing setting the HTTP server cannot run
// without.
func (c Config) Validate() error {
	if len(c.AppSecret) == 0 {
		return fmt.Errorf("missing required env %s", "APP_SECRET")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("missing required env %s", "DATABASE_URL")
	}
	if c.FrontendURL == "" {
		return fmt.Errorf("missing required env %s", "FRONTEND_URL")
	}
	return nil
}

func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.ServerPort)
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
