package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"repairdesk/config"
	"repairdesk/internal/domain/entity"
	"repairdesk/internal/infrastructure/database"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const seedPassword = "password123"

var specializations = []string{
	"Laptops",
	"Desktops",
	"Networking",
	"Data Recovery",
	"Printers",
	"Smartphones",
}

var catalog = []entity.Service{
	{Name: "Diagnostics", Description: "Full hardware and software check", Price: decimal.RequireFromString("25.00"), DurationMinutes: 30},
	{Name: "Virus Removal", Description: "Malware scan and cleanup", Price: decimal.RequireFromString("60.00"), DurationMinutes: 90},
	{Name: "Screen Replacement", Description: "Laptop or monitor panel swap", Price: decimal.RequireFromString("120.00"), DurationMinutes: 120},
	{Name: "Data Recovery", Description: "Recover files from failing drives", Price: decimal.RequireFromString("150.00"), DurationMinutes: 240},
	{Name: "Network Setup", Description: "Router and Wi-Fi configuration on site", Price: decimal.RequireFromString("80.00"), DurationMinutes: 120},
}

var issues = []string{
	"Laptop will not power on",
	"Very slow startup and pop-ups",
	"Cracked screen after a fall",
	"External drive clicking",
	"Wi-Fi drops every few minutes",
	"Printer shows offline",
}

func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{})

	customers := flag.Int("customers", 25, "number of customers to create")
	technicians := flag.Int("technicians", 5, "number of technicians to create")
	appointments := flag.Int("appointments", 60, "number of appointments to create")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewPostgresConnection(cfg.DB, "production")
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}

	gofakeit.Seed(time.Now().UnixNano())

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
	if err != nil {
		logrus.Fatalf("Failed to hash password: %v", err)
	}

	ctx := context.Background()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		s := &seeder{tx: tx, password: string(hash)}

		admin, err := s.user(entity.RoleIDAdmin, "admin@repairdesk.local", "Desk Admin")
		if err != nil {
			return err
		}
		if _, err := s.user(entity.RoleIDReceptionist, "frontdesk@repairdesk.local", "Front Desk"); err != nil {
			return err
		}

		services, err := s.services()
		if err != nil {
			return err
		}

		techs := make([]entity.User, 0, *technicians)
		for i := 0; i < *technicians; i++ {
			tech, err := s.technician()
			if err != nil {
				return err
			}
			techs = append(techs, *tech)
		}

		custs := make([]entity.User, 0, *customers)
		for i := 0; i < *customers; i++ {
			cust, err := s.user(entity.RoleIDCustomer, gofakeit.Email(), gofakeit.Name())
			if err != nil {
				return err
			}
			custs = append(custs, *cust)
		}

		if len(techs) == 0 || len(custs) == 0 {
			return nil
		}
		for i := 0; i < *appointments; i++ {
			if err := s.appointment(admin.ID, custs, techs, services); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logrus.Fatalf("Seed failed: %v", err)
	}

	logrus.Infof("Seed complete (all accounts use password %q)", seedPassword)
}

type seeder struct {
	tx       *gorm.DB
	password string
}

// user creates the account unless the email is already taken
func (s *seeder) user(roleID int, email, name string) (*entity.User, error) {
	user := entity.User{
		RoleID:   roleID,
		Email:    email,
		Password: s.password,
		FullName: name,
		Phone:    gofakeit.Phone(),
	}
	if err := s.tx.Where(entity.User{Email: email}).FirstOrCreate(&user).Error; err != nil {
		return nil, fmt.Errorf("seed user %s: %w", email, err)
	}
	return &user, nil
}

func (s *seeder) technician() (*entity.User, error) {
	user, err := s.user(entity.RoleIDTechnician, gofakeit.Email(), gofakeit.Name())
	if err != nil {
		return nil, err
	}
	profile := entity.TechnicianProfile{
		UserID:         user.ID,
		Specialization: gofakeit.RandomString(specializations),
	}
	if err := s.tx.Where(entity.TechnicianProfile{UserID: user.ID}).FirstOrCreate(&profile).Error; err != nil {
		return nil, fmt.Errorf("seed technician profile: %w", err)
	}
	return user, nil
}

func (s *seeder) services() ([]entity.Service, error) {
	out := make([]entity.Service, 0, len(catalog))
	for _, svc := range catalog {
		svc.IsActive = true
		if err := s.tx.Where(entity.Service{Name: svc.Name}).FirstOrCreate(&svc).Error; err != nil {
			return nil, fmt.Errorf("seed service %s: %w", svc.Name, err)
		}
		out = append(out, svc)
	}
	return out, nil
}

// appointment inserts one appointment in a random but consistent lifecycle state
func (s *seeder) appointment(adminID uuid.UUID, customers, technicians []entity.User, services []entity.Service) error {
	customer := customers[gofakeit.Number(0, len(customers)-1)]
	technician := technicians[gofakeit.Number(0, len(technicians)-1)]
	service := services[gofakeit.Number(0, len(services)-1)]
	statuses := entity.AppointmentStatuses()
	status := statuses[gofakeit.Number(0, len(statuses)-1)]

	scheduled := time.Now().UTC().Add(time.Duration(gofakeit.Number(-30*24, 30*24)) * time.Hour).Truncate(time.Hour)

	appointment := entity.Appointment{
		CustomerID:     customer.ID,
		ServiceID:      service.ID,
		ScheduledAt:    scheduled,
		ServiceAddress: gofakeit.Address().Address,
		CustomerNotes:  gofakeit.RandomString(issues),
		Status:         status,
		CreatedBy:      customer.ID,
	}

	switch status {
	case entity.AppointmentStatusConfirmed, entity.AppointmentStatusInProgress, entity.AppointmentStatusCompleted:
		appointment.TechnicianID = &technician.ID
	case entity.AppointmentStatusCancelled:
		appointment.CancellationReason = "Customer no longer needs the repair"
		appointment.CancellationCategory = "customer_request"
		appointment.CancelledBy = &customer.ID
	case entity.AppointmentStatusRejected:
		appointment.RejectionReason = "Outside service area"
		appointment.CancellationReason = appointment.RejectionReason
		appointment.CancellationCategory = "rejected"
		appointment.CancelledBy = &adminID
	}

	if err := s.tx.Omit("Customer", "Technician", "Service", "Review").Create(&appointment).Error; err != nil {
		return fmt.Errorf("seed appointment: %w", err)
	}
	return nil
}
