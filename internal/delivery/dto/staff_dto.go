package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

// CreateStaffRequest creates receptionist or technician accounts
type CreateStaffRequest struct {
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=6"`
	FullName       string `json:"full_name" validate:"required,min=2"`
	Phone          string `json:"phone" validate:"omitempty,min=7,max=30"`
	Role           string `json:"role" validate:"required,oneof=receptionist technician"`
	Specialization string `json:"specialization" validate:"required_if=Role technician"`
}

// Response DTOs

type TechnicianProfileResponse struct {
	Specialization string          `json:"specialization"`
	AverageRating  decimal.Decimal `json:"average_rating"`
	ReviewCount    int             `json:"review_count"`
}

type TechnicianResponse struct {
	UserID         uuid.UUID       `json:"user_id"`
	FullName       string          `json:"full_name"`
	Email          string          `json:"email"`
	Specialization string          `json:"specialization"`
	AverageRating  decimal.Decimal `json:"average_rating"`
	ReviewCount    int             `json:"review_count"`
}

type TechnicianListResponse struct {
	Technicians []TechnicianResponse `json:"technicians"`
	Total       int                  `json:"total"`
}

type TechnicianRatingResponse struct {
	TechnicianID  uuid.UUID       `json:"technician_id"`
	AverageRating decimal.Decimal `json:"average_rating"`
	ReviewCount   int             `json:"review_count"`
}
