package converter

import (
	"repairdesk/internal/delivery/dto"
	"repairdesk/internal/domain/entity"
)

// UserToResponse converts a User entity to UserResponse DTO
// Includes TechnicianProfile if it is loaded
func UserToResponse(user *entity.User) *dto.UserResponse {
	if user == nil {
		return nil
	}

	roleName := user.Role.RoleName
	if roleName == "" {
		roleName = entity.RoleNameByID(user.RoleID)
	}

	response := &dto.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		Phone:     user.Phone,
		Role:      roleName,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}

	if user.TechnicianProfile != nil {
		response.TechnicianProfile = &dto.TechnicianProfileResponse{
			Specialization: user.TechnicianProfile.Specialization,
			AverageRating:  user.TechnicianProfile.AverageRating,
			ReviewCount:    user.TechnicianProfile.ReviewCount,
		}
	}

	return response
}

// UserToSummary converts a User entity to the compact UserSummary DTO
func UserToSummary(user *entity.User) *dto.UserSummary {
	if user == nil {
		return nil
	}
	return &dto.UserSummary{
		ID:       user.ID,
		FullName: user.FullName,
		Email:    user.Email,
	}
}
