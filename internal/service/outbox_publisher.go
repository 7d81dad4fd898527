package service

import (
	"context"
	"time"

	"repairdesk/internal/domain/repository"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// MessageWriter is the part of *kafka.Writer the publisher needs
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type OutboxPublisherConfig struct {
	PollEvery time.Duration
	BatchSize int
}

// OutboxPublisher relays queued activity events to Kafka.
// Topic = event type, key = aggregate id (keeps per-appointment ordering within a partition).
type OutboxPublisher struct {
	transactor repository.Transactor
	outboxRepo repository.OutboxRepository
	writer     MessageWriter
	log        *logrus.Logger
	pollEvery  time.Duration
	batchSize  int
}

func NewOutboxPublisher(
	transactor repository.Transactor,
	outboxRepo repository.OutboxRepository,
	writer MessageWriter,
	log *logrus.Logger,
	cfg OutboxPublisherConfig,
) *OutboxPublisher {
	if cfg.PollEvery <= 0 {
		cfg.PollEvery = 2 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	return &OutboxPublisher{
		transactor: transactor,
		outboxRepo: outboxRepo,
		writer:     writer,
		log:        log,
		pollEvery:  cfg.PollEvery,
		batchSize:  cfg.BatchSize,
	}
}

// Run polls until ctx is cancelled. A nil writer disables publishing.
func (p *OutboxPublisher) Run(ctx context.Context) {
	if p.writer == nil {
		p.log.Warn("Outbox publisher disabled (no kafka brokers configured)")
		return
	}

	ticker := time.NewTicker(p.pollEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := p.PublishBatch(ctx); err != nil {
				p.log.Errorf("Outbox publish failed: %+v", err)
			}
		}
	}
}

// PublishBatch claims up to batchSize events, writes them and marks them published.
// A failed write rolls the claim back so the events are retried on the next tick.
func (p *OutboxPublisher) PublishBatch(ctx context.Context) (int, error) {
	published := 0

	err := p.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		events, err := p.outboxRepo.FetchUnpublished(ctx, p.batchSize)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			return nil
		}

		messages := make([]kafka.Message, 0, len(events))
		ids := make([]int64, 0, len(events))
		for _, evt := range events {
			messages = append(messages, kafka.Message{
				Topic: evt.EventType,
				Key:   []byte(evt.AggregateID),
				Value: evt.Payload,
				Headers: []kafka.Header{
					{Key: "aggregate_type", Value: []byte(evt.AggregateType)},
					{Key: "event_type", Value: []byte(evt.EventType)},
				},
			})
			ids = append(ids, evt.ID)
		}

		if err := p.writer.WriteMessages(ctx, messages...); err != nil {
			return err
		}
		if err := p.outboxRepo.MarkPublished(ctx, ids); err != nil {
			return err
		}

		published = len(ids)
		return nil
	})
	if err != nil {
		return 0, err
	}

	if published > 0 {
		p.log.Infof("Outbox events published: count=%d", published)
	}
	return published, nil
}
