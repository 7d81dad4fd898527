package repository

import (
	"context"

	"repairdesk/internal/domain/entity"
)

// OutboxRepository stores activity events until they are relayed to the broker.
// FetchUnpublished locks the returned rows and must run inside a transaction.
type OutboxRepository interface {
	Insert(ctx context.Context, event *entity.OutboxEvent) error
	FetchUnpublished(ctx context.Context, limit int) ([]entity.OutboxEvent, error)
	MarkPublished(ctx context.Context, ids []int64) error
}
