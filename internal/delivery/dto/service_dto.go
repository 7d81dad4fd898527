package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// Request DTOs

type CreateServiceRequest struct {
	Name            string          `json:"name" validate:"required,min=2,max=150"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price" validate:"required"`
	DurationMinutes int             `json:"duration_minutes" validate:"required,gte=15,lte=1440"`
}

type UpdateServiceRequest struct {
	Name            string          `json:"name" validate:"required,min=2,max=150"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price" validate:"required"`
	DurationMinutes int             `json:"duration_minutes" validate:"required,gte=15,lte=1440"`
	IsActive        *bool           `json:"is_active" validate:"omitempty"`
}

// Response DTOs

type ServiceResponse struct {
	ID              int             `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	Price           decimal.Decimal `json:"price"`
	DurationMinutes int             `json:"duration_minutes"`
	IsActive        bool            `json:"is_active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type ServiceListResponse struct {
	Services []ServiceResponse `json:"services"`
	Total    int64             `json:"total"`
}
