package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/config"
	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/consumer"
	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/notification"
	"github.com/ToslinRazafy/Cosm-tique-E-commerce/pkg/logger"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		boot := logger.New("notifier", "info")
		boot.Fatal().Err(err).Msg("failed to load config")
	}
	log := logger.New("notifier", cfg.LogLevel)

	if len(cfg.KafkaBrokers) == 0 {
		log.Fatal().Msg("KAFKA_BROKERS is required")
	}

	mailer := notification.NewSMTPMailer(notification.SMTPConfig{
		Host:         cfg.SMTPHost,
		Port:         cfg.SMTPPort,
		User:         cfg.SMTPUser,
		Password:     cfg.SMTPPassword,
		From:         cfg.MailFrom,
		ContactInbox: cfg.ContactInbox,
	}, log)

	var dedupe consumer.Deduper = consumer.NewMemoryDeduper(10000)
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer client.Close()
		dedupe = consumer.NewRedisDeduper(client, 7*24*time.Hour)
	}

	reader := consumer.NewKafkaReader(cfg.EventsTopic, cfg.ConsumerGroup, cfg.KafkaBrokers...)
	c := consumer.NewConsumer(reader, mailer, dedupe, log)
	defer c.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.EventsTopic).Str("group", cfg.ConsumerGroup).
		Msg("notifier started")
	c.Run(ctx)
	log.Info().Msg("notifier stopped")
}
