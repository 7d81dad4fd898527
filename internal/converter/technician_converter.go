package converter

import (
	"repairdesk/internal/delivery/dto"
	"repairdesk/internal/domain/entity"
)

// TechnicianProfileToResponse converts a TechnicianProfile entity to TechnicianResponse DTO
func TechnicianProfileToResponse(profile *entity.TechnicianProfile) *dto.TechnicianResponse {
	if profile == nil {
		return nil
	}

	return &dto.TechnicianResponse{
		UserID:         profile.UserID,
		FullName:       profile.User.FullName,
		Email:          profile.User.Email,
		Specialization: profile.Specialization,
		AverageRating:  profile.AverageRating,
		ReviewCount:    profile.ReviewCount,
	}
}

// TechnicianProfilesToResponses converts a slice of TechnicianProfile entities to slice of TechnicianResponse DTOs
func TechnicianProfilesToResponses(profiles []entity.TechnicianProfile) []dto.TechnicianResponse {
	responses := make([]dto.TechnicianResponse, len(profiles))
	for i := range profiles {
		responses[i] = *TechnicianProfileToResponse(&profiles[i])
	}
	return responses
}
