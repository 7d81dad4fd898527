package repository

import (
	"context"
	"time"

	"repairdesk/internal/domain/entity"
	domainRepo "repairdesk/internal/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type outboxRepository struct {
	db *gorm.DB
}

func NewOutboxRepository(db *gorm.DB) domainRepo.OutboxRepository {
	return &outboxRepository{db: db}
}

func (r *outboxRepository) Insert(ctx context.Context, event *entity.OutboxEvent) error {
	return conn(ctx, r.db).Create(event).Error
}

// FetchUnpublished claims a batch with FOR UPDATE SKIP LOCKED so concurrent publishers never share rows
func (r *outboxRepository) FetchUnpublished(ctx context.Context, limit int) ([]entity.OutboxEvent, error) {
	var events []entity.OutboxEvent
	err := conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("published_at IS NULL").
		Order("id").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *outboxRepository) MarkPublished(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return conn(ctx, r.db).Model(&entity.OutboxEvent{}).
		Where("id IN ?", ids).
		Update("published_at", time.Now().UTC()).Error
}
