package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type Config struct {
	Port    string `mapstructure:"PORT"`
	Env     string `mapstructure:"ENV"`
	AppName string `mapstructure:"APP_NAME"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// Vacío => storage en memoria.
	DatabaseDSN string `mapstructure:"DB_DSN"`

	// Vacío => sin publicación a Redis.
	RedisURL          string `mapstructure:"REDIS_URL"`
	RedisStream       string `mapstructure:"REDIS_STREAM"`
	RedisStreamMaxLen int64  `mapstructure:"REDIS_STREAM_MAXLEN"`

	// Lista separada por comas; vacío => sin Kafka.
	KafkaBrokers []string `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic   string   `mapstructure:"KAFKA_TOPIC"`

	// Vacío => las notificaciones solo se loguean.
	NotifyWebhookURL    string `mapstructure:"NOTIFY_WEBHOOK_URL"`
	NotifyWebhookAPIKey string `mapstructure:"NOTIFY_WEBHOOK_API_KEY"`

	DefaultServiceTime time.Duration `mapstructure:"DEFAULT_SERVICE_TIME"`
	DispatchWorkers    int           `mapstructure:"DISPATCH_WORKERS"`
	DispatchBuffer     int           `mapstructure:"DISPATCH_BUFFER"`

	ReadTimeout     time.Duration `mapstructure:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `mapstructure:"WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
}

var keys = []string{
	"PORT", "ENV", "APP_NAME",
	"LOG_LEVEL", "LOG_FORMAT",
	"DB_DSN",
	"REDIS_URL", "REDIS_STREAM", "REDIS_STREAM_MAXLEN",
	"KAFKA_BROKERS", "KAFKA_TOPIC",
	"NOTIFY_WEBHOOK_URL", "NOTIFY_WEBHOOK_API_KEY",
	"DEFAULT_SERVICE_TIME", "DISPATCH_WORKERS", "DISPATCH_BUFFER",
	"READ_TIMEOUT", "WRITE_TIMEOUT", "SHUTDOWN_TIMEOUT",
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("APP_NAME", "hospital-queue")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("REDIS_STREAM", "queue.events")
	v.SetDefault("REDIS_STREAM_MAXLEN", 10000)
	v.SetDefault("KAFKA_TOPIC", "queue-events")
	v.SetDefault("DEFAULT_SERVICE_TIME", "15m")
	v.SetDefault("DISPATCH_WORKERS", 4)
	v.SetDefault("DISPATCH_BUFFER", 256)
	v.SetDefault("READ_TIMEOUT", "5s")
	v.SetDefault("WRITE_TIMEOUT", "10s")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")

	// Unmarshal solo ve env vars bindeadas explícitamente
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// .env es opcional
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}

	cfg.KafkaBrokers = splitList(v.GetString("KAFKA_BROKERS"))
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func (c *Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Port, ":")
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return errors.New("PORT is required")
	}
	if c.DefaultServiceTime <= 0 {
		return errors.Errorf("DEFAULT_SERVICE_TIME must be positive, got %s", c.DefaultServiceTime)
	}
	if c.DispatchWorkers < 1 {
		return errors.Errorf("DISPATCH_WORKERS must be >= 1, got %d", c.DispatchWorkers)
	}
	if c.DispatchBuffer < 1 {
		return errors.Errorf("DISPATCH_BUFFER must be >= 1, got %d", c.DispatchBuffer)
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		return errors.Errorf("LOG_FORMAT must be \"json\" or \"text\", got %q", c.LogFormat)
	}
	if len(c.KafkaBrokers) > 0 && strings.TrimSpace(c.KafkaTopic) == "" {
		return errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}
	if c.RedisURL != "" && strings.TrimSpace(c.RedisStream) == "" {
		return errors.New("REDIS_STREAM is required when REDIS_URL is set")
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
