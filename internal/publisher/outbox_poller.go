package publisher

import (
	"context"
	"errors"
	"time"

	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/domain"
	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/repository"
	"github.com/ToslinRazafy/Cosm-tique-E-commerce/pkg/circuitbreaker"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// EventTypeHeader carries the outbox event type on every published message.
const EventTypeHeader = "event_type"

// MessageWriter is the part of *kafka.Writer the poller needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// NewKafkaWriter returns a writer for the shop event topic.
func NewKafkaWriter(topic string, brokers ...string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		WriteTimeout:           10 * time.Second,
	}
}

// OutboxPoller publishes unprocessed outbox events and marks them processed.
// Events are delivered at least once; a crash between publish and mark
// republishes the event, and consumers dedupe on event_id.
type OutboxPoller struct {
	eventTick time.Duration
	batchSize int
	store     repository.Store
	writer    MessageWriter
	breaker   *circuitbreaker.Breaker[struct{}]
	log       zerolog.Logger
}

func NewOutboxPoller(store repository.Store, writer MessageWriter, log zerolog.Logger) *OutboxPoller {
	return &OutboxPoller{
		eventTick: time.Second,
		batchSize: 100,
		store:     store,
		writer:    writer,
		breaker:   circuitbreaker.New[struct{}](circuitbreaker.DefaultSettings("kafka-publisher"), log),
		log:       log,
	}
}

func (p *OutboxPoller) Run(ctx context.Context) {
	eventTicker := time.NewTicker(p.eventTick)
	defer eventTicker.Stop()
	for {
		select {
		case <-eventTicker.C:
			p.processUnpublishedEvents(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// processUnpublishedEvents returns how many events were published and marked.
func (p *OutboxPoller) processUnpublishedEvents(ctx context.Context) int {
	var events []*domain.OutboxEvent
	err := p.store.View(ctx, func(q repository.Queries) error {
		var err error
		events, err = q.GetUnprocessedEvents(ctx, p.batchSize)
		return err
	})
	if err != nil {
		p.log.Error().Err(err).Msg("failed to fetch outbox events")
		return 0
	}

	published := 0
	for _, event := range events {
		if err := p.publish(ctx, event); err != nil {
			if errors.Is(err, circuitbreaker.ErrOpenState) {
				p.log.Warn().Msg("kafka breaker open, postponing outbox batch")
				return published
			}
			p.log.Error().Err(err).Int64("event_id", event.ID).Msg("failed to publish event")
			continue
		}

		err := p.store.WithTx(ctx, func(q repository.Queries) error {
			return q.MarkEventAsProcessed(ctx, event.ID)
		})
		if err != nil {
			p.log.Error().Err(err).Int64("event_id", event.ID).Msg("failed to mark event as processed")
			continue
		}
		published++
	}
	return published
}

func (p *OutboxPoller) publish(ctx context.Context, event *domain.OutboxEvent) error {
	msg := kafka.Message{
		Key:   []byte(event.AggregateID), // per-order ordering
		Value: event.Payload,
		Headers: []kafka.Header{
			{Key: EventTypeHeader, Value: []byte(event.EventType)},
		},
	}
	_, err := p.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, p.writer.WriteMessages(ctx, msg)
	})
	return err
}
