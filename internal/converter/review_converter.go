package converter

import (
	"repairdesk/internal/delivery/dto"
	"repairdesk/internal/domain/entity"
)

// ReviewToResponse converts a Review entity to ReviewResponse DTO
func ReviewToResponse(review *entity.Review) *dto.ReviewResponse {
	if review == nil {
		return nil
	}

	return &dto.ReviewResponse{
		ID:            review.ID,
		AppointmentID: review.AppointmentID,
		CustomerID:    review.CustomerID,
		TechnicianID:  review.TechnicianID,
		Rating:        review.Rating,
		Feedback:      review.Feedback,
		CreatedAt:     review.CreatedAt,
	}
}
