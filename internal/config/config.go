package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Restock policies.
const (
	RestockConsistent = "consistent"
	RestockLegacy     = "legacy"
)

type Config struct {
	ServiceName     string        `mapstructure:"SERVICE_NAME"`
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
	HTTPPort        string        `mapstructure:"HTTP_PORT"`
	RequestTimeout  time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`

	StoreDriver    string `mapstructure:"STORE_DRIVER"`
	DBHost         string `mapstructure:"DB_HOST"`
	DBPort         int    `mapstructure:"DB_PORT"`
	DBUser         string `mapstructure:"DB_USER"`
	DBPassword     string `mapstructure:"DB_PASSWORD"`
	DBName         string `mapstructure:"DB_NAME"`
	MigrationsPath string `mapstructure:"MIGRATIONS_PATH"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	KafkaBrokers  []string `mapstructure:"KAFKA_BROKERS"`
	EventsTopic   string   `mapstructure:"EVENTS_TOPIC"`
	ConsumerGroup string   `mapstructure:"CONSUMER_GROUP"`

	RestockPolicy          string        `mapstructure:"RESTOCK_POLICY"`
	PromotionSweepInterval time.Duration `mapstructure:"PROMOTION_SWEEP_INTERVAL"`

	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     int    `mapstructure:"SMTP_PORT"`
	SMTPUser     string `mapstructure:"SMTP_USER"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	MailFrom     string `mapstructure:"MAIL_FROM"`
	ContactInbox string `mapstructure:"CONTACT_INBOX"`
}

var defaults = map[string]any{
	"SERVICE_NAME":             "shop-api",
	"LOG_LEVEL":                "info",
	"HTTP_PORT":                "8080",
	"REQUEST_TIMEOUT":          "30s",
	"SHUTDOWN_TIMEOUT":         "10s",
	"STORE_DRIVER":             "postgres",
	"DB_HOST":                  "localhost",
	"DB_PORT":                  5432,
	"DB_USER":                  "postgres",
	"DB_PASSWORD":              "postgres",
	"DB_NAME":                  "shop",
	"MIGRATIONS_PATH":          "internal/repository/migrations",
	"REDIS_ADDR":               "",
	"REDIS_PASSWORD":           "",
	"KAFKA_BROKERS":            "",
	"EVENTS_TOPIC":             "shop-events",
	"CONSUMER_GROUP":           "shop-notifier",
	"RESTOCK_POLICY":           RestockConsistent,
	"PROMOTION_SWEEP_INTERVAL": "1m",
	"SMTP_HOST":                "localhost",
	"SMTP_PORT":                1025,
	"SMTP_USER":                "",
	"SMTP_PASSWORD":            "",
	"MAIL_FROM":                "Cosmetique Shop <no-reply@localhost>",
	"CONTACT_INBOX":            "contact@localhost",
}

// Load reads configuration from the environment, optionally layered over the
// file named by configFile.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.KafkaBrokers = splitList(v.GetString("KAFKA_BROKERS"))

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}
	switch c.RestockPolicy {
	case RestockConsistent, RestockLegacy:
	default:
		return fmt.Errorf("unsupported RESTOCK_POLICY %q", c.RestockPolicy)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
