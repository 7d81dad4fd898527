package usecase

import (
	"context"
	"errors"
	"strconv"

	"repairdesk/internal/converter"
	"repairdesk/internal/delivery/dto"
	"repairdesk/internal/domain/entity"
	"repairdesk/internal/domain/repository"
	"repairdesk/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrServiceNotFound      = errors.New("service not found")
	ErrServiceNameExists    = errors.New("service name already exists")
	ErrServiceInUse         = errors.New("service is referenced by appointments")
	ErrServicePriceNegative = errors.New("price must not be negative")
)

type ServiceCatalogUsecase interface {
	Create(ctx context.Context, actorID uuid.UUID, req *dto.CreateServiceRequest) (*dto.ServiceResponse, error)
	GetAll(ctx context.Context, activeOnly bool, page, limit int) (*dto.ServiceListResponse, error)
	GetByID(ctx context.Context, id int) (*dto.ServiceResponse, error)
	Update(ctx context.Context, actorID uuid.UUID, id int, req *dto.UpdateServiceRequest) (*dto.ServiceResponse, error)
	Delete(ctx context.Context, actorID uuid.UUID, id int) error
}

type serviceCatalogUsecase struct {
	log          *logrus.Logger
	transactor   repository.Transactor
	serviceRepo  repository.ServiceRepository
	auditService service.AuditService
}

func NewServiceCatalogUsecase(
	log *logrus.Logger,
	transactor repository.Transactor,
	serviceRepo repository.ServiceRepository,
	auditService service.AuditService,
) ServiceCatalogUsecase {
	return &serviceCatalogUsecase{
		log:          log,
		transactor:   transactor,
		serviceRepo:  serviceRepo,
		auditService: auditService,
	}
}

func (u *serviceCatalogUsecase) Create(ctx context.Context, actorID uuid.UUID, req *dto.CreateServiceRequest) (*dto.ServiceResponse, error) {
	if req.Price.IsNegative() {
		return nil, ErrServicePriceNegative
	}

	svc := &entity.Service{
		Name:            req.Name,
		Description:     req.Description,
		Price:           req.Price,
		DurationMinutes: req.DurationMinutes,
		IsActive:        true,
	}

	err := u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := u.serviceRepo.Create(ctx, svc); err != nil {
			if isDuplicateKeyError(err, "name") {
				return ErrServiceNameExists
			}
			u.log.Warnf("Failed to create service: %+v", err)
			return err
		}
		return u.auditService.LogCreate(ctx, &actorID, entity.AuditActionServiceCreate, "service", strconv.Itoa(svc.ID), converter.ServiceToResponse(svc))
	})
	if err != nil {
		return nil, err
	}

	return converter.ServiceToResponse(svc), nil
}

func (u *serviceCatalogUsecase) GetAll(ctx context.Context, activeOnly bool, page, limit int) (*dto.ServiceListResponse, error) {
	page, limit = normalizePage(page, limit)

	services, total, err := u.serviceRepo.FindAll(ctx, activeOnly, limit, (page-1)*limit)
	if err != nil {
		u.log.Warnf("Failed to find services: %+v", err)
		return nil, err
	}

	return &dto.ServiceListResponse{
		Services: converter.ServicesToResponses(services),
		Total:    total,
	}, nil
}

func (u *serviceCatalogUsecase) GetByID(ctx context.Context, id int) (*dto.ServiceResponse, error) {
	svc, err := u.serviceRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find service %d: %+v", id, err)
		return nil, err
	}
	if svc == nil {
		return nil, ErrServiceNotFound
	}

	return converter.ServiceToResponse(svc), nil
}

func (u *serviceCatalogUsecase) Update(ctx context.Context, actorID uuid.UUID, id int, req *dto.UpdateServiceRequest) (*dto.ServiceResponse, error) {
	if req.Price.IsNegative() {
		return nil, ErrServicePriceNegative
	}

	var updated *entity.Service
	err := u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		svc, err := u.serviceRepo.FindByID(ctx, id)
		if err != nil {
			u.log.Warnf("Failed to find service %d: %+v", id, err)
			return err
		}
		if svc == nil {
			return ErrServiceNotFound
		}

		oldValue := converter.ServiceToResponse(svc)

		svc.Name = req.Name
		svc.Description = req.Description
		svc.Price = req.Price
		svc.DurationMinutes = req.DurationMinutes
		if req.IsActive != nil {
			svc.IsActive = *req.IsActive
		}

		if err := u.serviceRepo.Update(ctx, svc); err != nil {
			if isDuplicateKeyError(err, "name") {
				return ErrServiceNameExists
			}
			u.log.Warnf("Failed to update service %d: %+v", id, err)
			return err
		}

		updated = svc
		return u.auditService.LogUpdate(ctx, &actorID, entity.AuditActionServiceUpdate, "service", strconv.Itoa(id), oldValue, converter.ServiceToResponse(svc))
	})
	if err != nil {
		return nil, err
	}

	return converter.ServiceToResponse(updated), nil
}

// Delete removes a service that no appointment references. Deactivate it otherwise.
func (u *serviceCatalogUsecase) Delete(ctx context.Context, actorID uuid.UUID, id int) error {
	return u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		svc, err := u.serviceRepo.FindByID(ctx, id)
		if err != nil {
			u.log.Warnf("Failed to find service %d: %+v", id, err)
			return err
		}
		if svc == nil {
			return ErrServiceNotFound
		}

		if err := u.serviceRepo.Delete(ctx, id); err != nil {
			if isForeignKeyError(err, "service") {
				return ErrServiceInUse
			}
			u.log.Warnf("Failed to delete service %d: %+v", id, err)
			return err
		}

		return u.auditService.LogDelete(ctx, &actorID, entity.AuditActionServiceDelete, "service", strconv.Itoa(id), converter.ServiceToResponse(svc))
	})
}
