package usecase

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"repairdesk/internal/domain/entity"
	"repairdesk/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// fakeTransactor runs fn inline; the store mutex provides row-level atomicity
type fakeTransactor struct{}

func (fakeTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// store is an in-memory database shared by the fake repositories
type store struct {
	mu           sync.Mutex
	appointments map[uuid.UUID]entity.Appointment
	users        map[uuid.UUID]entity.User
	services     map[int]entity.Service
	profiles     map[uuid.UUID]entity.TechnicianProfile
	reviews      []entity.Review
	audits       []entity.AuditLog
	nextID       int64
}

func newStore() *store {
	return &store{
		appointments: map[uuid.UUID]entity.Appointment{},
		users:        map[uuid.UUID]entity.User{},
		services:     map[int]entity.Service{},
		profiles:     map[uuid.UUID]entity.TechnicianProfile{},
	}
}

func (s *store) addUser(roleID int) entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := entity.User{ID: uuid.New(), RoleID: roleID, Email: uuid.NewString() + "@example.com", FullName: "Test User"}
	s.users[user.ID] = user
	if roleID == entity.RoleIDTechnician {
		s.profiles[user.ID] = entity.TechnicianProfile{UserID: user.ID, Specialization: "laptops", User: user}
	}
	return user
}

func (s *store) addService(active bool) entity.Service {
	s.mu.Lock()
	defer s.mu.Unlock()
	svc := entity.Service{ID: len(s.services) + 1, Name: "Screen repair", Price: decimal.NewFromInt(50), DurationMinutes: 60, IsActive: active}
	s.services[svc.ID] = svc
	return svc
}

func (s *store) addAppointment(a entity.Appointment) entity.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	s.appointments[a.ID] = a
	return a
}

func (s *store) appointment(id uuid.UUID) (entity.Appointment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.appointments[id]
	return a, ok
}

func (s *store) auditActions(appointmentID uuid.UUID) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var actions []string
	for _, log := range s.audits {
		if log.AppointmentID != nil && *log.AppointmentID == appointmentID {
			actions = append(actions, log.Action)
		}
	}
	return actions
}

func (s *store) reviewCount(appointmentID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.reviews {
		if r.AppointmentID == appointmentID {
			n++
		}
	}
	return n
}

// deleteAppointment removes the row and cascades to its review like fk_reviews_appointment.
// Callers hold s.mu.
func (s *store) deleteAppointment(id uuid.UUID) {
	delete(s.appointments, id)
	kept := s.reviews[:0]
	for _, r := range s.reviews {
		if r.AppointmentID != id {
			kept = append(kept, r)
		}
	}
	s.reviews = kept
}

// withRelations mimics the repository preloads
func (s *store) withRelations(a entity.Appointment) *entity.Appointment {
	a.Customer = s.users[a.CustomerID]
	a.Service = s.services[a.ServiceID]
	if a.TechnicianID != nil {
		if tech, ok := s.users[*a.TechnicianID]; ok {
			a.Technician = &tech
		}
	}
	for i := range s.reviews {
		if s.reviews[i].AppointmentID == a.ID {
			review := s.reviews[i]
			a.Review = &review
		}
	}
	return &a
}

// fakeAppointmentRepo

type fakeAppointmentRepo struct{ s *store }

func (r fakeAppointmentRepo) Create(_ context.Context, a *entity.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	r.s.appointments[a.ID] = *a
	return nil
}

func (r fakeAppointmentRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.appointments[id]
	if !ok || a.MarkedForDeletion {
		return nil, nil
	}
	return r.s.withRelations(a), nil
}

func (r fakeAppointmentRepo) FindByIDIncludingDeleted(_ context.Context, id uuid.UUID) (*entity.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.appointments[id]
	if !ok {
		return nil, nil
	}
	return r.s.withRelations(a), nil
}

func (r fakeAppointmentRepo) FindAll(_ context.Context, f entity.AppointmentFilter) ([]entity.Appointment, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.Appointment
	for _, a := range r.s.appointments {
		if a.MarkedForDeletion {
			continue
		}
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if f.CustomerID != nil && a.CustomerID != *f.CustomerID {
			continue
		}
		if f.TechnicianID != nil && !a.IsAssignedTo(*f.TechnicianID) {
			continue
		}
		if f.ServiceID != 0 && a.ServiceID != f.ServiceID {
			continue
		}
		if f.From != nil && a.ScheduledAt.Before(*f.From) {
			continue
		}
		if f.To != nil && a.ScheduledAt.After(*f.To) {
			continue
		}
		out = append(out, *r.s.withRelations(a))
	}
	return out, int64(len(out)), nil
}

func (r fakeAppointmentRepo) FindMarked(_ context.Context, limit, offset int) ([]entity.Appointment, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.Appointment
	for _, a := range r.s.appointments {
		if a.MarkedForDeletion {
			out = append(out, a)
		}
	}
	return out, int64(len(out)), nil
}

func (r fakeAppointmentRepo) FindMarkedIDs(_ context.Context, before *time.Time) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []uuid.UUID
	for id, a := range r.s.appointments {
		if !a.MarkedForDeletion {
			continue
		}
		if before != nil && !a.MarkedForDeletionAt.Before(*before) {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids, nil
}

func (r fakeAppointmentRepo) UpdateStatus(_ context.Context, a *entity.Appointment, expected entity.AppointmentState) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.appointments[a.ID]
	if !ok || current.MarkedForDeletion || !matchesState(current, expected) {
		return 0, nil
	}
	current.Status = a.Status
	current.TechnicianID = a.TechnicianID
	current.CancellationReason = a.CancellationReason
	current.CancellationCategory = a.CancellationCategory
	current.RejectionReason = a.RejectionReason
	current.CancelledBy = a.CancelledBy
	r.s.appointments[a.ID] = current
	return 1, nil
}

func (r fakeAppointmentRepo) UpdateSchedule(_ context.Context, id uuid.UUID, update entity.ScheduleUpdate, expected entity.AppointmentStatus) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.appointments[id]
	if !ok || current.Status != expected || current.MarkedForDeletion {
		return 0, nil
	}
	current.ScheduledAt = update.ScheduledAt
	if update.ServiceAddress != nil {
		current.ServiceAddress = *update.ServiceAddress
	}
	if update.CustomerNotes != nil {
		current.CustomerNotes = *update.CustomerNotes
	}
	r.s.appointments[id] = current
	return 1, nil
}

func (r fakeAppointmentRepo) UpdateTechnician(_ context.Context, id uuid.UUID, technicianID uuid.UUID, expected entity.AppointmentState) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.appointments[id]
	if !ok || current.MarkedForDeletion || !matchesState(current, expected) {
		return 0, nil
	}
	current.TechnicianID = &technicianID
	r.s.appointments[id] = current
	return 1, nil
}

func matchesState(a entity.Appointment, expected entity.AppointmentState) bool {
	if a.Status != expected.Status {
		return false
	}
	if a.TechnicianID == nil || expected.TechnicianID == nil {
		return a.TechnicianID == nil && expected.TechnicianID == nil
	}
	return *a.TechnicianID == *expected.TechnicianID
}

func (r fakeAppointmentRepo) MarkForDeletion(_ context.Context, id uuid.UUID, actorID uuid.UUID, at time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.appointments[id]
	if !ok || current.MarkedForDeletion {
		return 0, nil
	}
	current.MarkForDeletion(actorID, at)
	r.s.appointments[id] = current
	return 1, nil
}

func (r fakeAppointmentRepo) Restore(_ context.Context, id uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.appointments[id]
	if !ok || !current.MarkedForDeletion {
		return 0, nil
	}
	current.Restore()
	r.s.appointments[id] = current
	return 1, nil
}

func (r fakeAppointmentRepo) Delete(_ context.Context, id uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.appointments[id]; !ok {
		return 0, nil
	}
	r.s.deleteAppointment(id)
	return 1, nil
}

func (r fakeAppointmentRepo) DeleteMarked(_ context.Context, id uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.appointments[id]
	if !ok || !current.MarkedForDeletion {
		return 0, nil
	}
	r.s.deleteAppointment(id)
	return 1, nil
}

// fakeUserRepo

type fakeUserRepo struct{ s *store }

func (r fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user.ID = uuid.New()
	r.s.users[user.ID] = *user
	return nil
}

func (r fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (r fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// fakeServiceRepo

type fakeServiceRepo struct{ s *store }

func (r fakeServiceRepo) Create(_ context.Context, svc *entity.Service) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	svc.ID = len(r.s.services) + 1
	r.s.services[svc.ID] = *svc
	return nil
}

func (r fakeServiceRepo) FindAll(_ context.Context, activeOnly bool, limit, offset int) ([]entity.Service, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.Service
	for _, svc := range r.s.services {
		if activeOnly && !svc.IsActive {
			continue
		}
		out = append(out, svc)
	}
	return out, int64(len(out)), nil
}

func (r fakeServiceRepo) FindByID(_ context.Context, id int) (*entity.Service, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	svc, ok := r.s.services[id]
	if !ok {
		return nil, nil
	}
	return &svc, nil
}

func (r fakeServiceRepo) Update(_ context.Context, svc *entity.Service) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.services[svc.ID] = *svc
	return nil
}

func (r fakeServiceRepo) Delete(_ context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.services, id)
	return nil
}

// fakeReviewRepo enforces the one-review-per-appointment unique index

type fakeReviewRepo struct{ s *store }

func (r fakeReviewRepo) Create(_ context.Context, review *entity.Review) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.reviews {
		if existing.AppointmentID == review.AppointmentID {
			return gorm.ErrDuplicatedKey
		}
	}
	r.s.nextID++
	review.ID = r.s.nextID
	review.CreatedAt = time.Now()
	r.s.reviews = append(r.s.reviews, *review)
	return nil
}

func (r fakeReviewRepo) FindByAppointmentID(_ context.Context, appointmentID uuid.UUID) (*entity.Review, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, review := range r.s.reviews {
		if review.AppointmentID == appointmentID {
			return &review, nil
		}
	}
	return nil, nil
}

func (r fakeReviewRepo) FindRatingsByTechnician(_ context.Context, technicianID uuid.UUID) ([]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ratings []int
	for _, review := range r.s.reviews {
		if review.TechnicianID != nil && *review.TechnicianID == technicianID {
			ratings = append(ratings, review.Rating)
		}
	}
	return ratings, nil
}

// fakeTechnicianProfileRepo

type fakeTechnicianProfileRepo struct{ s *store }

func (r fakeTechnicianProfileRepo) Create(_ context.Context, profile *entity.TechnicianProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.profiles[profile.UserID] = *profile
	return nil
}

func (r fakeTechnicianProfileRepo) FindByUserID(_ context.Context, userID uuid.UUID) (*entity.TechnicianProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	profile, ok := r.s.profiles[userID]
	if !ok {
		return nil, nil
	}
	return &profile, nil
}

func (r fakeTechnicianProfileRepo) FindAll(_ context.Context) ([]entity.TechnicianProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []entity.TechnicianProfile
	for _, profile := range r.s.profiles {
		out = append(out, profile)
	}
	return out, nil
}

func (r fakeTechnicianProfileRepo) UpdateRating(_ context.Context, userID uuid.UUID, average decimal.Decimal, count int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	profile := r.s.profiles[userID]
	profile.AverageRating = average
	profile.ReviewCount = count
	r.s.profiles[userID] = profile
	return nil
}

// fakeAuditService records entries in the store

type fakeAuditService struct{ s *store }

func (a fakeAuditService) LogAppointment(_ context.Context, actorID *uuid.UUID, appointmentID uuid.UUID, action string, metadata entity.JSON) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	a.s.audits = append(a.s.audits, entity.AuditLog{UserID: actorID, AppointmentID: &appointmentID, Action: action, Metadata: metadata})
	return nil
}

func (a fakeAuditService) LogCreate(_ context.Context, actorID *uuid.UUID, action string, _ string, _ string, _ interface{}) error {
	return a.append(actorID, action)
}

func (a fakeAuditService) LogUpdate(_ context.Context, actorID *uuid.UUID, action string, _ string, _ string, _, _ interface{}) error {
	return a.append(actorID, action)
}

func (a fakeAuditService) LogDelete(_ context.Context, actorID *uuid.UUID, action string, _ string, _ string, _ interface{}) error {
	return a.append(actorID, action)
}

func (a fakeAuditService) append(actorID *uuid.UUID, action string) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	a.s.audits = append(a.s.audits, entity.AuditLog{UserID: actorID, Action: action})
	return nil
}

// fakeRatingCache

type fakeRatingCache struct {
	mu      sync.Mutex
	entries map[uuid.UUID]service.CachedRating
}

func newFakeRatingCache() *fakeRatingCache {
	return &fakeRatingCache{entries: map[uuid.UUID]service.CachedRating{}}
}

func (c *fakeRatingCache) Get(_ context.Context, technicianID uuid.UUID) (*service.CachedRating, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rating, ok := c.entries[technicianID]
	if !ok {
		return nil, nil
	}
	return &rating, nil
}

func (c *fakeRatingCache) Set(_ context.Context, technicianID uuid.UUID, rating service.CachedRating) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[technicianID] = rating
	return nil
}

// fakeLocker grants one holder at a time and refuses contenders

type fakeLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: map[string]bool{}}
}

func (l *fakeLocker) WithLock(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	if l.held[name] {
		l.mu.Unlock()
		return service.ErrLockNotAcquired
	}
	l.held[name] = true
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		delete(l.held, name)
		l.mu.Unlock()
	}()
	return fn(ctx)
}
