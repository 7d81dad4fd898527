package repository

import (
	"context"
	"errors"

	"repairdesk/internal/domain/entity"
	domainRepo "repairdesk/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type technicianProfileRepository struct {
	db *gorm.DB
}

func NewTechnicianProfileRepository(db *gorm.DB) domainRepo.TechnicianProfileRepository {
	return &technicianProfileRepository{db: db}
}

func (r *technicianProfileRepository) Create(ctx context.Context, profile *entity.TechnicianProfile) error {
	return conn(ctx, r.db).Create(profile).Error
}

func (r *technicianProfileRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.TechnicianProfile, error) {
	var profile entity.TechnicianProfile
	err := conn(ctx, r.db).Preload("User").Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (r *technicianProfileRepository) FindAll(ctx context.Context) ([]entity.TechnicianProfile, error) {
	var profiles []entity.TechnicianProfile
	err := conn(ctx, r.db).Preload("User").Order("average_rating DESC").Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *technicianProfileRepository) UpdateRating(ctx context.Context, userID uuid.UUID, average decimal.Decimal, count int) error {
	return conn(ctx, r.db).Model(&entity.TechnicianProfile{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"average_rating": average,
			"review_count":   count,
		}).Error
}
