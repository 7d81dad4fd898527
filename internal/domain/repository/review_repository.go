package repository

import (
	"context"

	"repairdesk/internal/domain/entity"

	"github.com/google/uuid"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	FindByAppointmentID(ctx context.Context, appointmentID uuid.UUID) (*entity.Review, error)
	FindRatingsByTechnician(ctx context.Context, technicianID uuid.UUID) ([]int, error)
}
