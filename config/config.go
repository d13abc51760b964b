package config

import (
	"os"
	"strings"
	"time"

	"github.com/SundayYogurt/lending_portal/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type Config struct {
	Env           string        `mapstructure:"ENV"`
	LogLevel      string        `mapstructure:"LOG_LEVEL"`
	ServerPort    string        `mapstructure:"SERVER_PORT"`
	BaseURL       string        `mapstructure:"BASE_URL"`
	DatabaseDSN   string        `mapstructure:"DATABASE_DSN"`
	AccessSecret  string        `mapstructure:"ACCESS_SECRET"`
	TokenTTL      time.Duration `mapstructure:"TOKEN_TTL"`
	KafkaBroker   string        `mapstructure:"KAFKA_BROKER"`
	KafkaTopic    string        `mapstructure:"KAFKA_TOPIC"`
	KafkaUsername string        `mapstructure:"KAFKA_USERNAME"`
	KafkaPassword string        `mapstructure:"KAFKA_PASSWORD"`
	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
	CloudinaryURL string        `mapstructure:"CLOUDINARY_URL"`
	MaxFileBytes  int64         `mapstructure:"MAX_FILE_BYTES"`
	LoginPerMin   int           `mapstructure:"LOGIN_RATE_PER_MINUTE"`

	// bootstrap admin, created on start when both are set
	AdminEmail    string `mapstructure:"ADMIN_EMAIL"`
	AdminPassword string `mapstructure:"ADMIN_PASSWORD"`
}

var defaults = map[string]any{
	"ENV":                   "dev",
	"LOG_LEVEL":             "info",
	"SERVER_PORT":           ":3000",
	"BASE_URL":              "*",
	"DATABASE_DSN":          "",
	"ACCESS_SECRET":         "",
	"TOKEN_TTL":             "24h",
	"KAFKA_BROKER":          "",
	"KAFKA_TOPIC":           "portal-events",
	"KAFKA_USERNAME":        "",
	"KAFKA_PASSWORD":        "",
	"REDIS_ADDR":            "localhost:6379",
	"REDIS_PASSWORD":        "",
	"REDIS_DB":              0,
	"CLOUDINARY_URL":        "",
	"MAX_FILE_BYTES":        5 * 1024 * 1024,
	"LOGIN_RATE_PER_MINUTE": 10,
	"ADMIN_EMAIL":           "",
	"ADMIN_PASSWORD":        "",
}

// LoadConfig reads .env (outside prod) and the process environment.
func LoadConfig() (Config, error) {
	if os.Getenv("ENV") != "prod" {
		if err := godotenv.Overload(); err != nil {
			logger.Debug("env file not loaded", zap.Error(err))
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
