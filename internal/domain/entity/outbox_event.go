package entity

import "time"

// OutboxEvent is an activity event waiting to be relayed to the message broker.
// The topic name equals EventType.
type OutboxEvent struct {
	ID            int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	AggregateType string     `gorm:"type:varchar(50);not null" json:"aggregate_type"`
	AggregateID   string     `gorm:"type:varchar(64);not null;index" json:"aggregate_id"`
	EventType     string     `gorm:"type:varchar(100);not null" json:"event_type"`
	Payload       []byte     `gorm:"type:jsonb;not null" json:"payload"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	PublishedAt   *time.Time `gorm:"index" json:"published_at,omitempty"`
}

func (OutboxEvent) TableName() string {
	return "outbox_events"
}
