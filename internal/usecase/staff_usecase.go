package usecase

import (
	"context"
	"errors"

	"repairdesk/internal/converter"
	"repairdesk/internal/delivery/dto"
	"repairdesk/internal/domain/entity"
	"repairdesk/internal/domain/repository"
	"repairdesk/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrStaffRoleInvalid = errors.New("staff role must be receptionist or technician")
)

type StaffUsecase interface {
	CreateStaff(ctx context.Context, actorID uuid.UUID, req *dto.CreateStaffRequest) (*dto.UserResponse, error)
	GetAllTechnicians(ctx context.Context) (*dto.TechnicianListResponse, error)
	GetTechnician(ctx context.Context, userID uuid.UUID) (*dto.TechnicianResponse, error)
}

type staffUsecase struct {
	log                   *logrus.Logger
	transactor            repository.Transactor
	userRepo              repository.UserRepository
	roleRepo              repository.RoleRepository
	technicianProfileRepo repository.TechnicianProfileRepository
	auditService          service.AuditService
}

func NewStaffUsecase(
	log *logrus.Logger,
	transactor repository.Transactor,
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	technicianProfileRepo repository.TechnicianProfileRepository,
	auditService service.AuditService,
) StaffUsecase {
	return &staffUsecase{
		log:                   log,
		transactor:            transactor,
		userRepo:              userRepo,
		roleRepo:              roleRepo,
		technicianProfileRepo: technicianProfileRepo,
		auditService:          auditService,
	}
}

// CreateStaff creates a receptionist or technician account. Technicians also get a profile row.
func (u *staffUsecase) CreateStaff(ctx context.Context, actorID uuid.UUID, req *dto.CreateStaffRequest) (*dto.UserResponse, error) {
	if req.Role != entity.RoleReceptionist && req.Role != entity.RoleTechnician {
		return nil, ErrStaffRoleInvalid
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	var user *entity.User
	err = u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		role, err := u.roleRepo.FindByName(ctx, req.Role)
		if err != nil {
			u.log.Warnf("Failed to find role %s: %+v", req.Role, err)
			return err
		}
		if role == nil {
			return ErrRoleNotFound
		}

		user = &entity.User{
			Email:    req.Email,
			Password: string(hashedPassword),
			FullName: req.FullName,
			Phone:    req.Phone,
			RoleID:   role.ID,
		}
		if err := u.userRepo.Create(ctx, user); err != nil {
			if isDuplicateKeyError(err, "email") {
				return ErrEmailAlreadyExists
			}
			u.log.Warnf("Failed to create staff user: %+v", err)
			return err
		}
		user.Role = *role

		if role.ID == entity.RoleIDTechnician {
			profile := &entity.TechnicianProfile{
				UserID:         user.ID,
				Specialization: req.Specialization,
			}
			if err := u.technicianProfileRepo.Create(ctx, profile); err != nil {
				u.log.Warnf("Failed to create technician profile: %+v", err)
				return err
			}
			user.TechnicianProfile = profile
		}

		return u.auditService.LogCreate(ctx, &actorID, entity.AuditActionStaffCreate, "user", user.ID.String(), converter.UserToResponse(user))
	})
	if err != nil {
		return nil, err
	}

	return converter.UserToResponse(user), nil
}

func (u *staffUsecase) GetAllTechnicians(ctx context.Context) (*dto.TechnicianListResponse, error) {
	profiles, err := u.technicianProfileRepo.FindAll(ctx)
	if err != nil {
		u.log.Warnf("Failed to find all technician profiles: %+v", err)
		return nil, err
	}

	technicians := converter.TechnicianProfilesToResponses(profiles)

	return &dto.TechnicianListResponse{
		Technicians: technicians,
		Total:       len(technicians),
	}, nil
}

func (u *staffUsecase) GetTechnician(ctx context.Context, userID uuid.UUID) (*dto.TechnicianResponse, error) {
	profile, err := u.technicianProfileRepo.FindByUserID(ctx, userID)
	if err != nil {
		u.log.Warnf("Failed to find technician profile: %+v", err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrTechnicianNotFound
	}

	return converter.TechnicianProfileToResponse(profile), nil
}
