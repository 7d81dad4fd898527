package usecase

import (
	"context"
	"errors"
	"fmt"

	"repairdesk/internal/converter"
	"repairdesk/internal/delivery/dto"
	"repairdesk/internal/domain/entity"
	"repairdesk/internal/domain/repository"
	"repairdesk/internal/domain/workflow"
	"repairdesk/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
	ErrTechnicianNotFound = errors.New("technician not found")
)

type RatingUsecase interface {
	SubmitRating(ctx context.Context, actor workflow.Actor, appointmentID uuid.UUID, req *dto.SubmitReviewRequest) (*dto.ReviewResponse, error)
	GetTechnicianRating(ctx context.Context, technicianID uuid.UUID) (*dto.TechnicianRatingResponse, error)
}

type ratingUsecase struct {
	log                   *logrus.Logger
	transactor            repository.Transactor
	appointmentRepo       repository.AppointmentRepository
	reviewRepo            repository.ReviewRepository
	technicianProfileRepo repository.TechnicianProfileRepository
	auditService          service.AuditService
	ratingCache           service.RatingCache
	aggregate             *ratingAggregate
}

func NewRatingUsecase(
	log *logrus.Logger,
	transactor repository.Transactor,
	appointmentRepo repository.AppointmentRepository,
	reviewRepo repository.ReviewRepository,
	technicianProfileRepo repository.TechnicianProfileRepository,
	auditService service.AuditService,
	ratingCache service.RatingCache,
) RatingUsecase {
	return &ratingUsecase{
		log:                   log,
		transactor:            transactor,
		appointmentRepo:       appointmentRepo,
		reviewRepo:            reviewRepo,
		technicianProfileRepo: technicianProfileRepo,
		auditService:          auditService,
		ratingCache:           ratingCache,
		aggregate:             newRatingAggregate(log, reviewRepo, technicianProfileRepo, ratingCache),
	}
}

// SubmitRating records the customer's review of a completed appointment.
//
// Flow:
// 1. Owner-only, Completed-only, one review per appointment
// 2. Insert the review (the unique index settles concurrent submissions)
// 3. Recompute the technician average from every review row
// 4. Refresh the rating cache after commit
func (u *ratingUsecase) SubmitRating(ctx context.Context, actor workflow.Actor, appointmentID uuid.UUID, req *dto.SubmitReviewRequest) (*dto.ReviewResponse, error) {
	if req.Rating < entity.MinRating || req.Rating > entity.MaxRating {
		return nil, ErrInvalidRating
	}

	var review *entity.Review
	var summary *service.CachedRating

	err := u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		appointment, err := u.appointmentRepo.FindByID(ctx, appointmentID)
		if err != nil {
			u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
			return err
		}
		if appointment == nil {
			return workflow.ErrNotFound
		}
		if err := workflow.CheckRatingEligibility(actor, appointment); err != nil {
			return err
		}

		existing, err := u.reviewRepo.FindByAppointmentID(ctx, appointmentID)
		if err != nil {
			u.log.Warnf("Failed to find review for appointment %s: %+v", appointmentID, err)
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: appointment has already been rated", workflow.ErrConflict)
		}

		review = &entity.Review{
			AppointmentID: appointment.ID,
			CustomerID:    appointment.CustomerID,
			TechnicianID:  appointment.TechnicianID,
			Rating:        req.Rating,
			Feedback:      req.Feedback,
		}
		if err := u.reviewRepo.Create(ctx, review); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) || isDuplicateKeyError(err, "uq_reviews_appointment") {
				return fmt.Errorf("%w: appointment has already been rated", workflow.ErrConflict)
			}
			u.log.Warnf("Failed to create review: %+v", err)
			return err
		}

		if appointment.TechnicianID != nil {
			summary, err = u.aggregate.recompute(ctx, *appointment.TechnicianID)
			if err != nil {
				return err
			}
		}

		return u.auditService.LogAppointment(ctx, &actor.ID, appointment.ID, entity.AuditActionAppointmentReview, entity.JSON{
			"review_id": review.ID,
			"rating":    review.Rating,
		})
	})
	if err != nil {
		return nil, err
	}

	if summary != nil {
		u.aggregate.refreshCache(ctx, *review.TechnicianID, *summary)
	}

	return converter.ReviewToResponse(review), nil
}

// GetTechnicianRating reads the cached aggregate and falls back to the profile row
func (u *ratingUsecase) GetTechnicianRating(ctx context.Context, technicianID uuid.UUID) (*dto.TechnicianRatingResponse, error) {
	cached, err := u.ratingCache.Get(ctx, technicianID)
	if err != nil {
		u.log.Warnf("Failed to read rating cache for technician %s: %+v", technicianID, err)
	}
	if cached != nil {
		return &dto.TechnicianRatingResponse{
			TechnicianID:  technicianID,
			AverageRating: cached.Average,
			ReviewCount:   cached.Count,
		}, nil
	}

	profile, err := u.technicianProfileRepo.FindByUserID(ctx, technicianID)
	if err != nil {
		u.log.Warnf("Failed to find technician profile %s: %+v", technicianID, err)
		return nil, err
	}
	if profile == nil {
		return nil, ErrTechnicianNotFound
	}

	summary := service.CachedRating{Average: profile.AverageRating, Count: profile.ReviewCount}
	if err := u.ratingCache.Set(ctx, technicianID, summary); err != nil {
		u.log.Warnf("Failed to refresh rating cache for technician %s: %+v", technicianID, err)
	}

	return &dto.TechnicianRatingResponse{
		TechnicianID:  technicianID,
		AverageRating: profile.AverageRating,
		ReviewCount:   profile.ReviewCount,
	}, nil
}

// ratingAggregate keeps technician_profiles.average_rating in step with the review rows.
// Both rating submission and appointment deletion (which cascades to the review) go through it.
type ratingAggregate struct {
	log                   *logrus.Logger
	reviewRepo            repository.ReviewRepository
	technicianProfileRepo repository.TechnicianProfileRepository
	ratingCache           service.RatingCache
}

func newRatingAggregate(
	log *logrus.Logger,
	reviewRepo repository.ReviewRepository,
	technicianProfileRepo repository.TechnicianProfileRepository,
	ratingCache service.RatingCache,
) *ratingAggregate {
	return &ratingAggregate{
		log:                   log,
		reviewRepo:            reviewRepo,
		technicianProfileRepo: technicianProfileRepo,
		ratingCache:           ratingCache,
	}
}

// recompute rescans every review of the technician rather than adjusting incrementally.
// Runs inside the caller's transaction.
func (a *ratingAggregate) recompute(ctx context.Context, technicianID uuid.UUID) (*service.CachedRating, error) {
	ratings, err := a.reviewRepo.FindRatingsByTechnician(ctx, technicianID)
	if err != nil {
		a.log.Warnf("Failed to load ratings for technician %s: %+v", technicianID, err)
		return nil, err
	}

	average := AverageRating(ratings)
	if err := a.technicianProfileRepo.UpdateRating(ctx, technicianID, average, len(ratings)); err != nil {
		a.log.Warnf("Failed to update technician rating %s: %+v", technicianID, err)
		return nil, err
	}

	return &service.CachedRating{Average: average, Count: len(ratings)}, nil
}

// refreshCache is called after commit; a failure only leaves the cache to expire
func (a *ratingAggregate) refreshCache(ctx context.Context, technicianID uuid.UUID, summary service.CachedRating) {
	if err := a.ratingCache.Set(ctx, technicianID, summary); err != nil {
		a.log.Warnf("Failed to refresh rating cache for technician %s: %+v", technicianID, err)
	}
}

// AverageRating is the arithmetic mean rounded to two decimals. No ratings yields zero.
func AverageRating(ratings []int) decimal.Decimal {
	if len(ratings) == 0 {
		return decimal.Zero
	}
	var sum int64
	for _, r := range ratings {
		sum += int64(r)
	}
	return decimal.NewFromInt(sum).DivRound(decimal.NewFromInt(int64(len(ratings))), 2)
}
