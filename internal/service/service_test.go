package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"repairdesk/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type passthroughTransactor struct{}

func (passthroughTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memoryAuditRepo struct {
	logs []entity.AuditLog
	err  error
}

func (r *memoryAuditRepo) Create(ctx context.Context, log *entity.AuditLog) error {
	if r.err != nil {
		return r.err
	}
	log.ID = int64(len(r.logs) + 1)
	r.logs = append(r.logs, *log)
	return nil
}

func (r *memoryAuditRepo) FindAll(ctx context.Context, filter entity.AuditFilter) ([]entity.AuditLog, int64, error) {
	return r.logs, int64(len(r.logs)), nil
}

func (r *memoryAuditRepo) FindByID(ctx context.Context, id int64) (*entity.AuditLog, error) {
	return nil, nil
}

type memoryOutboxRepo struct {
	mu     sync.Mutex
	events []entity.OutboxEvent
}

func (r *memoryOutboxRepo) Insert(ctx context.Context, event *entity.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	event.ID = int64(len(r.events) + 1)
	r.events = append(r.events, *event)
	return nil
}

func (r *memoryOutboxRepo) FetchUnpublished(ctx context.Context, limit int) ([]entity.OutboxEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.OutboxEvent
	for _, evt := range r.events {
		if evt.PublishedAt == nil && len(out) < limit {
			out = append(out, evt)
		}
	}
	return out, nil
}

func (r *memoryOutboxRepo) MarkPublished(ctx context.Context, ids []int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, id := range ids {
		r.events[id-1].PublishedAt = &now
	}
	return nil
}

func (r *memoryOutboxRepo) unpublished() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, evt := range r.events {
		if evt.PublishedAt == nil {
			n++
		}
	}
	return n
}

type recordingWriter struct {
	messages []kafka.Message
	err      error
}

func (w *recordingWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func TestAuditServiceQueuesActivityEvent(t *testing.T) {
	audits := &memoryAuditRepo{}
	outbox := &memoryOutboxRepo{}
	svc := NewAuditService(quietLogger(), audits, outbox)

	actorID := uuid.New()
	appointmentID := uuid.New()
	err := svc.LogAppointment(context.Background(), &actorID, appointmentID, entity.AuditActionAppointmentConfirm, entity.JSON{"to": "Confirmed"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(audits.logs) != 1 || len(outbox.events) != 1 {
		t.Fatalf("expected one audit and one event, got %d/%d", len(audits.logs), len(outbox.events))
	}

	evt := outbox.events[0]
	if evt.EventType != entity.AuditActionAppointmentConfirm || evt.AggregateType != "appointment" || evt.AggregateID != appointmentID.String() {
		t.Fatalf("unexpected event envelope: %+v", evt)
	}

	var payload ActivityEvent
	if err := json.Unmarshal(evt.Payload, &payload); err != nil {
		t.Fatalf("expected JSON payload, got %v", err)
	}
	if payload.ActorID == nil || *payload.ActorID != actorID || payload.Metadata["to"] != "Confirmed" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestAuditServiceStopsWhenAuditFails(t *testing.T) {
	outbox := &memoryOutboxRepo{}
	svc := NewAuditService(quietLogger(), &memoryAuditRepo{err: errors.New("insert failed")}, outbox)

	if err := svc.LogCreate(context.Background(), nil, entity.AuditActionServiceCreate, "service", "7", nil); err == nil {
		t.Fatal("expected error")
	}
	if len(outbox.events) != 0 {
		t.Fatalf("expected no queued event, got %d", len(outbox.events))
	}
}

func TestOutboxPublisherPublishBatch(t *testing.T) {
	outbox := &memoryOutboxRepo{}
	appointmentID := uuid.NewString()
	for i := 0; i < 3; i++ {
		_ = outbox.Insert(context.Background(), &entity.OutboxEvent{
			AggregateType: "appointment",
			AggregateID:   appointmentID,
			EventType:     entity.AuditActionAppointmentStart,
			Payload:       []byte(`{}`),
		})
	}

	writer := &recordingWriter{}
	publisher := NewOutboxPublisher(passthroughTransactor{}, outbox, writer, quietLogger(), OutboxPublisherConfig{BatchSize: 2})

	n, err := publisher.PublishBatch(context.Background())
	if err != nil || n != 2 {
		t.Fatalf("expected 2 published, got %d (%v)", n, err)
	}
	n, err = publisher.PublishBatch(context.Background())
	if err != nil || n != 1 {
		t.Fatalf("expected 1 published, got %d (%v)", n, err)
	}
	if outbox.unpublished() != 0 {
		t.Fatalf("expected all events published, %d left", outbox.unpublished())
	}

	msg := writer.messages[0]
	if msg.Topic != entity.AuditActionAppointmentStart || string(msg.Key) != appointmentID {
		t.Fatalf("unexpected message routing: topic=%s key=%s", msg.Topic, msg.Key)
	}
}

func TestOutboxPublisherKeepsEventsOnWriteFailure(t *testing.T) {
	outbox := &memoryOutboxRepo{}
	_ = outbox.Insert(context.Background(), &entity.OutboxEvent{AggregateID: "x", EventType: "appointment.create", Payload: []byte(`{}`)})

	publisher := NewOutboxPublisher(passthroughTransactor{}, outbox, &recordingWriter{err: errors.New("broker down")}, quietLogger(), OutboxPublisherConfig{})

	if _, err := publisher.PublishBatch(context.Background()); err == nil {
		t.Fatal("expected write error")
	}
	if outbox.unpublished() != 1 {
		t.Fatalf("expected event to stay queued, %d unpublished", outbox.unpublished())
	}
}

func TestOutboxPublisherDisabledWithoutWriter(t *testing.T) {
	publisher := NewOutboxPublisher(passthroughTransactor{}, &memoryOutboxRepo{}, nil, quietLogger(), OutboxPublisherConfig{})

	done := make(chan struct{})
	go func() {
		publisher.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected Run to return immediately without a writer")
	}
}
