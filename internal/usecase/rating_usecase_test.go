package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"repairdesk/internal/delivery/dto"
	"repairdesk/internal/domain/entity"
	"repairdesk/internal/domain/workflow"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestCompleteThenRateRecomputesAverage(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// An earlier review of the same technician
	earlier := f.seed(entity.AppointmentStatusCompleted, &f.technician)
	if _, err := f.ratings.SubmitRating(ctx, actorOf(f.customer), earlier.ID, &dto.SubmitReviewRequest{Rating: 4}); err != nil {
		t.Fatalf("earlier rating: %v", err)
	}

	job := f.seed(entity.AppointmentStatusInProgress, &f.technician)
	if _, err := f.appointments.RequestTransition(ctx, actorOf(f.technician), job.ID, &dto.TransitionRequest{Status: "Completed"}); err != nil {
		t.Fatalf("complete: %v", err)
	}

	review, err := f.ratings.SubmitRating(ctx, actorOf(f.customer), job.ID, &dto.SubmitReviewRequest{Rating: 5, Feedback: "quick and tidy"})
	if err != nil {
		t.Fatalf("rate: %v", err)
	}
	if review.Rating != 5 || review.TechnicianID == nil || *review.TechnicianID != f.technician.ID {
		t.Errorf("unexpected review: %+v", review)
	}

	profile := f.store.profiles[f.technician.ID]
	if !profile.AverageRating.Equal(decimal.RequireFromString("4.5")) || profile.ReviewCount != 2 {
		t.Errorf("profile rating = %s/%d, want 4.5/2", profile.AverageRating, profile.ReviewCount)
	}

	cached, _ := f.cache.Get(ctx, f.technician.ID)
	if cached == nil || !cached.Average.Equal(profile.AverageRating) {
		t.Errorf("cache = %+v, want %s", cached, profile.AverageRating)
	}
}

func TestRatingEligibility(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	stranger := f.store.addUser(entity.RoleIDCustomer)

	tests := []struct {
		name   string
		status entity.AppointmentStatus
		actor  workflow.Actor
		rating int
		want   error
	}{
		{"not completed", entity.AppointmentStatusInProgress, actorOf(f.customer), 5, workflow.ErrInvalidState},
		{"cancelled", entity.AppointmentStatusCancelled, actorOf(f.customer), 5, workflow.ErrInvalidState},
		{"not owner", entity.AppointmentStatusCompleted, actorOf(stranger), 5, workflow.ErrForbidden},
		{"staff cannot rate", entity.AppointmentStatusCompleted, actorOf(f.admin), 5, workflow.ErrForbidden},
		{"out of range", entity.AppointmentStatusCompleted, actorOf(f.customer), 6, ErrInvalidRating},
		{"zero", entity.AppointmentStatusCompleted, actorOf(f.customer), 0, ErrInvalidRating},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := f.seed(tt.status, &f.technician)
			_, err := f.ratings.SubmitRating(ctx, tt.actor, a.ID, &dto.SubmitReviewRequest{Rating: tt.rating})
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if n := f.store.reviewCount(a.ID); n != 0 {
				t.Errorf("%d reviews stored, want 0", n)
			}
		})
	}

	if _, err := f.ratings.SubmitRating(ctx, actorOf(f.customer), uuid.New(), &dto.SubmitReviewRequest{Rating: 3}); !errors.Is(err, workflow.ErrNotFound) {
		t.Errorf("missing: err = %v, want ErrNotFound", err)
	}
}

func TestDuplicateRatingConflicts(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.seed(entity.AppointmentStatusCompleted, &f.technician)

	if _, err := f.ratings.SubmitRating(ctx, actorOf(f.customer), a.ID, &dto.SubmitReviewRequest{Rating: 5}); err != nil {
		t.Fatalf("first: %v", err)
	}
	if _, err := f.ratings.SubmitRating(ctx, actorOf(f.customer), a.ID, &dto.SubmitReviewRequest{Rating: 1}); !errors.Is(err, workflow.ErrConflict) {
		t.Fatalf("second: err = %v, want ErrConflict", err)
	}
	if n := f.store.reviewCount(a.ID); n != 1 {
		t.Errorf("reviews = %d, want 1", n)
	}
}

func TestConcurrentRatingsStoreOneReview(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.seed(entity.AppointmentStatusCompleted, &f.technician)

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.ratings.SubmitRating(ctx, actorOf(f.customer), a.ID, &dto.SubmitReviewRequest{Rating: 1 + i%5})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
		} else if !errors.Is(err, workflow.ErrConflict) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 {
		t.Errorf("%d submissions succeeded, want 1", ok)
	}
	if n := f.store.reviewCount(a.ID); n != 1 {
		t.Errorf("reviews = %d, want 1", n)
	}
}

func TestGetTechnicianRatingFallsBackToProfile(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.store.mu.Lock()
	profile := f.store.profiles[f.technician.ID]
	profile.AverageRating = decimal.RequireFromString("3.67")
	profile.ReviewCount = 3
	f.store.profiles[f.technician.ID] = profile
	f.store.mu.Unlock()

	resp, err := f.ratings.GetTechnicianRating(ctx, f.technician.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !resp.AverageRating.Equal(profile.AverageRating) || resp.ReviewCount != 3 {
		t.Errorf("rating = %+v", resp)
	}
	if cached, _ := f.cache.Get(ctx, f.technician.ID); cached == nil || cached.Count != 3 {
		t.Errorf("cache not populated: %+v", cached)
	}

	if _, err := f.ratings.GetTechnicianRating(ctx, uuid.New()); !errors.Is(err, ErrTechnicianNotFound) {
		t.Errorf("unknown technician: err = %v, want ErrTechnicianNotFound", err)
	}
}

func TestAverageRating(t *testing.T) {
	tests := []struct {
		ratings []int
		want    string
	}{
		{nil, "0"},
		{[]int{5}, "5"},
		{[]int{5, 4}, "4.5"},
		{[]int{5, 4, 4}, "4.33"},
		{[]int{1, 2, 2}, "1.67"},
	}
	for _, tt := range tests {
		if got := AverageRating(tt.ratings); !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("AverageRating(%v) = %s, want %s", tt.ratings, got, tt.want)
		}
	}
}
