package repository

import (
	"context"

	"repairdesk/internal/domain/entity"
)

type RoleRepository interface {
	FindByID(ctx context.Context, id int) (*entity.Role, error)
	FindByName(ctx context.Context, name string) (*entity.Role, error)
}
