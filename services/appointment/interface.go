package appointment

import (
	"context"
	"sync"
	"time"

	appointmentRepo "winqroo/database/repository/appointment"
	serviceRepo "winqroo/database/repository/service"
	"winqroo/models"
)

// BookRequest carries everything needed to schedule an appointment.
type BookRequest struct {
	ShopID          string               `json:"shop_id"`
	ServiceIDs      []string             `json:"service_ids"`
	CustomerID      string               `json:"customer_id"`
	CustomerName    string               `json:"customer_name"`
	ScheduledAt     time.Time            `json:"scheduled_at"`
	CustomerType    models.CustomerType  `json:"customer_type"`
	IsEmergency     bool                 `json:"is_emergency"`
	EmergencyReason string               `json:"emergency_reason,omitempty"`
	PaymentOption   models.PaymentOption `json:"payment_option"`
	Notes           string               `json:"notes,omitempty"`
}

// ReminderScheduler enqueues a reminder to be delivered shortly before the
// appointment. Implemented by the asynq-backed worker in cron/.
type ReminderScheduler interface {
	ScheduleReminder(appt models.Appointment) error
}

// AppointmentService manages scheduled (non-walk-in) bookings.
type AppointmentService interface {
	Book(ctx context.Context, req BookRequest) (*models.Appointment, error)
	UpdateStatus(ctx context.Context, apptID string, status models.AppointmentStatus) (*models.Appointment, error)
	ListByShop(ctx context.Context, shopID string, from, to time.Time) ([]models.Appointment, error)
	ListByCustomer(ctx context.Context, customerID string) ([]models.Appointment, error)
	GetByID(ctx context.Context, apptID string) (*models.Appointment, error)
}

// DefaultAppointmentService implements AppointmentService.
type DefaultAppointmentService struct {
	Repo      appointmentRepo.AppointmentRepository
	Services  serviceRepo.ServiceRepository
	Reminders ReminderScheduler

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// lockShop returns the mutex serializing bookings for one shop's calendar,
// creating it on first use. Holding it across the overlap check and the
// insert keeps two racing bookings from taking the same slot.
func (s *DefaultAppointmentService) lockShop(shopID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.locks == nil {
		s.locks = make(map[string]*sync.Mutex)
	}
	lock, ok := s.locks[shopID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[shopID] = lock
	}
	return lock
}
