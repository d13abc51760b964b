package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/SundayYogurt/lending_portal/infra/queue"
	"github.com/SundayYogurt/lending_portal/mail-svc/config"
	"github.com/SundayYogurt/lending_portal/mail-svc/internal/api/rest/handlers"
	"github.com/SundayYogurt/lending_portal/mail-svc/internal/services"
	"github.com/SundayYogurt/lending_portal/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := logger.Init(cfg.LogLevel, "mail-svc"); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	if cfg.KafkaBroker == "" {
		logger.L().Fatal("KAFKA_BROKER is required")
	}

	mailer := services.NewSMTPMailer(services.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
		FromName: cfg.MailFromName,
		Timeout:  cfg.SMTPTimeout,
	})
	mailService, err := services.NewMailService(mailer, cfg.PortalURL)
	if err != nil {
		logger.L().Fatal("init mail service", zap.Error(err))
	}

	consumer := queue.NewKafkaConsumer(queue.ConsumerConfig{
		Broker:   cfg.KafkaBroker,
		Topic:    cfg.KafkaTopic,
		GroupID:  cfg.KafkaGroupID,
		Username: cfg.KafkaUsername,
		Password: cfg.KafkaPassword,
	}, "mail-svc", handlers.NewMailHandler(mailService))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("mail service listening",
		zap.String("broker", cfg.KafkaBroker),
		zap.String("topic", cfg.KafkaTopic),
		zap.String("group", cfg.KafkaGroupID),
	)
	if err := consumer.Listen(ctx); err != nil {
		logger.Error("consumer stopped", err)
	}
	logger.Info("mail service stopped")
}
