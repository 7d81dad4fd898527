package repository

import (
	"context"
	"errors"

	"repairdesk/internal/domain/entity"
	domainRepo "repairdesk/internal/domain/repository"

	"gorm.io/gorm"
)

type serviceRepository struct {
	db *gorm.DB
}

func NewServiceRepository(db *gorm.DB) domainRepo.ServiceRepository {
	return &serviceRepository{db: db}
}

func (r *serviceRepository) Create(ctx context.Context, service *entity.Service) error {
	return conn(ctx, r.db).Create(service).Error
}

func (r *serviceRepository) FindAll(ctx context.Context, activeOnly bool, limit, offset int) ([]entity.Service, int64, error) {
	var services []entity.Service
	var total int64

	query := conn(ctx, r.db).Model(&entity.Service{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Limit(limit).Offset(offset).Order("name").Find(&services).Error; err != nil {
		return nil, 0, err
	}

	return services, total, nil
}

func (r *serviceRepository) FindByID(ctx context.Context, id int) (*entity.Service, error) {
	var service entity.Service
	err := conn(ctx, r.db).Where("id = ?", id).First(&service).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &service, nil
}

func (r *serviceRepository) Update(ctx context.Context, service *entity.Service) error {
	return conn(ctx, r.db).Save(service).Error
}

func (r *serviceRepository) Delete(ctx context.Context, id int) error {
	return conn(ctx, r.db).Where("id = ?", id).Delete(&entity.Service{}).Error
}
