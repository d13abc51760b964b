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
	LogLevel      string `mapstructure:"LOG_LEVEL"`
	KafkaBroker   string `mapstructure:"KAFKA_BROKER"`
	KafkaTopic    string `mapstructure:"KAFKA_TOPIC"`
	KafkaGroupID  string `mapstructure:"KAFKA_GROUP_ID"`
	KafkaUsername string `mapstructure:"KAFKA_USERNAME"`
	KafkaPassword string `mapstructure:"KAFKA_PASSWORD"`

	SMTPHost     string        `mapstructure:"SMTP_HOST"`
	SMTPPort     int           `mapstructure:"SMTP_PORT"`
	SMTPUser     string        `mapstructure:"SMTP_USER"`
	SMTPPassword string        `mapstructure:"SMTP_PASSWORD"`
	SMTPTimeout  time.Duration `mapstructure:"SMTP_TIMEOUT"`
	MailFrom     string        `mapstructure:"MAIL_FROM"`
	MailFromName string        `mapstructure:"MAIL_FROM_NAME"`

	// links in emails point here
	PortalURL string `mapstructure:"PORTAL_URL"`
}

var defaults = map[string]any{
	"LOG_LEVEL":      "info",
	"KAFKA_BROKER":   "",
	"KAFKA_TOPIC":    "portal-events",
	"KAFKA_GROUP_ID": "mail-svc",
	"KAFKA_USERNAME": "",
	"KAFKA_PASSWORD": "",
	"SMTP_HOST":      "smtp.gmail.com",
	"SMTP_PORT":      587,
	"SMTP_USER":      "",
	"SMTP_PASSWORD":  "",
	"SMTP_TIMEOUT":   "15s",
	"MAIL_FROM":      "",
	"MAIL_FROM_NAME": "Lending Portal",
	"PORTAL_URL":     "http://localhost:5173",
}

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
	if cfg.MailFrom == "" {
		cfg.MailFrom = cfg.SMTPUser
	}
	return cfg, nil
}
