package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/domain"
	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/notification"
	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/publisher"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Consumer turns shop events into emails.
type Consumer struct {
	reader MessageReader
	mailer notification.Mailer
	dedupe Deduper
	log    zerolog.Logger
}

func NewKafkaReader(topic, groupID string, brokers ...string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MaxBytes: 10e6, // 10MB
	})
}

func NewConsumer(reader MessageReader, mailer notification.Mailer, dedupe Deduper, log zerolog.Logger) *Consumer {
	return &Consumer{reader: reader, mailer: mailer, dedupe: dedupe, log: log}
}

func (c *Consumer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		c.processMessage(ctx)
	}
}

func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		c.log.Error().Err(err).Msg("error closing kafka reader")
	}
}

func (c *Consumer) processMessage(ctx context.Context) {
	m, err := c.reader.ReadMessage(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		c.log.Error().Err(err).Msg("error reading message")
		return
	}

	if err := c.handle(ctx, m); err != nil {
		c.log.Error().Err(err).Str("key", string(m.Key)).Int64("offset", m.Offset).Msg("failed to handle event")
	}
}

func (c *Consumer) handle(ctx context.Context, m kafka.Message) error {
	eventType := headerValue(m, publisher.EventTypeHeader)

	var send func() error
	var eventID string
	switch eventType {
	case domain.EventOrderPlaced:
		var e domain.OrderPlacedEvent
		if err := json.Unmarshal(m.Value, &e); err != nil {
			return fmt.Errorf("parse %s: %w", eventType, err)
		}
		eventID = e.EventID
		send = func() error { return c.mailer.OrderPlaced(ctx, e) }
	case domain.EventOrderStatusChanged:
		var e domain.OrderStatusChangedEvent
		if err := json.Unmarshal(m.Value, &e); err != nil {
			return fmt.Errorf("parse %s: %w", eventType, err)
		}
		eventID = e.EventID
		send = func() error { return c.mailer.OrderStatusChanged(ctx, e) }
	case domain.EventContactSubmitted:
		var e domain.ContactSubmittedEvent
		if err := json.Unmarshal(m.Value, &e); err != nil {
			return fmt.Errorf("parse %s: %w", eventType, err)
		}
		eventID = e.EventID
		send = func() error { return c.mailer.ContactSubmitted(ctx, e) }
	default:
		c.log.Warn().Str("event_type", eventType).Msg("skipping unknown event type")
		return nil
	}

	if eventID != "" {
		first, err := c.dedupe.Claim(ctx, eventID)
		if err != nil {
			// delivered without dedupe
			c.log.Warn().Err(err).Str("event_id", eventID).Msg("dedupe unavailable")
		} else if !first {
			c.log.Info().Str("event_id", eventID).Msg("event already delivered, skipping")
			return nil
		}
	}

	if err := send(); err != nil {
		if eventID != "" {
			if relErr := c.dedupe.Release(context.Background(), eventID); relErr != nil {
				c.log.Warn().Err(relErr).Str("event_id", eventID).Msg("failed to release dedupe claim")
			}
		}
		return err
	}
	c.log.Info().Str("event_type", eventType).Str("event_id", eventID).Msg("notification delivered")
	return nil
}

func headerValue(m kafka.Message, key string) string {
	for _, h := range m.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}
