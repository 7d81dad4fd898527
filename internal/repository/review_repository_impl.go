package repository

import (
	"context"
	"errors"

	"repairdesk/internal/domain/entity"
	domainRepo "repairdesk/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) domainRepo.ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	return conn(ctx, r.db).Create(review).Error
}

func (r *reviewRepository) FindByAppointmentID(ctx context.Context, appointmentID uuid.UUID) (*entity.Review, error) {
	var review entity.Review
	err := conn(ctx, r.db).Where("appointment_id = ?", appointmentID).First(&review).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &review, nil
}

// FindRatingsByTechnician returns every rating referencing the technician
func (r *reviewRepository) FindRatingsByTechnician(ctx context.Context, technicianID uuid.UUID) ([]int, error) {
	var ratings []int
	err := conn(ctx, r.db).Model(&entity.Review{}).
		Where("technician_id = ?", technicianID).
		Pluck("rating", &ratings).Error
	if err != nil {
		return nil, err
	}
	return ratings, nil
}
