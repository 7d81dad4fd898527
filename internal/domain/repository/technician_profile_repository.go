package repository

import (
	"context"

	"repairdesk/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TechnicianProfileRepository interface {
	Create(ctx context.Context, profile *entity.TechnicianProfile) error
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.TechnicianProfile, error)
	FindAll(ctx context.Context) ([]entity.TechnicianProfile, error)
	UpdateRating(ctx context.Context, userID uuid.UUID, average decimal.Decimal, count int) error
}
