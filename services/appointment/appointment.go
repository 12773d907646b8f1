package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	appointmentRepo "winqroo/database/repository/appointment"
	serviceRepo "winqroo/database/repository/service"
	"winqroo/models"
	"winqroo/services/queue"
	"winqroo/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// allowedTransitions maps each appointment status to the statuses reachable
// from it. Terminal states have no outgoing transitions.
var allowedTransitions = map[models.AppointmentStatus][]models.AppointmentStatus{
	models.AppointmentScheduled:  {models.AppointmentConfirmed, models.AppointmentCancelled},
	models.AppointmentConfirmed:  {models.AppointmentInProgress, models.AppointmentCancelled, models.AppointmentNoShow},
	models.AppointmentInProgress: {models.AppointmentCompleted, models.AppointmentCancelled},
}

func validTransition(from, to models.AppointmentStatus) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Book schedules an appointment. Priority bookings reuse the queue engine's
// policy: the fast-track tier must pay online and VIP/emergency bookings pay
// the same 2.5x surcharge.
func (s *DefaultAppointmentService) Book(ctx context.Context, req BookRequest) (*models.Appointment, error) {
	if len(req.ServiceIDs) == 0 {
		return nil, newError(CodeInvalidSchedule, "at least one service is required")
	}
	if req.ScheduledAt.Before(time.Now()) {
		return nil, newError(CodeInvalidSchedule, "scheduled time %s is in the past", req.ScheduledAt.Format(time.RFC3339))
	}

	services, err := s.Services.GetByIDs(ctx, req.ServiceIDs)
	if err != nil {
		if errors.Is(err, serviceRepo.ErrNotFound) {
			return nil, newError(CodeNotFound, "one or more requested services do not exist")
		}
		return nil, fmt.Errorf("failed to resolve services: %w", err)
	}

	totalDuration := 0
	basePrice := 0.0
	for _, svc := range services {
		totalDuration += svc.Duration
		basePrice += svc.Price
	}

	if queue.PriorityScore(req.CustomerType, req.IsEmergency) > 0 && req.PaymentOption != models.PayNow {
		return nil, newError(CodePaymentRequired, "priority booking requires online payment (pay_now)")
	}

	lock := s.lockShop(req.ShopID)
	lock.Lock()
	defer lock.Unlock()

	end := req.ScheduledAt.Add(time.Duration(totalDuration) * time.Minute)
	overlapping, err := s.Repo.CountOverlapping(ctx, req.ShopID, req.ScheduledAt, end)
	if err != nil {
		return nil, fmt.Errorf("failed to check slot availability: %w", err)
	}
	if overlapping > 0 {
		return nil, newError(CodeSlotConflict, "the requested time slot is already booked")
	}

	appt := models.Appointment{
		ID:              uuid.New().String(),
		ShopID:          req.ShopID,
		ServiceIDs:      req.ServiceIDs,
		CustomerID:      req.CustomerID,
		CustomerName:    req.CustomerName,
		ScheduledAt:     req.ScheduledAt,
		Duration:        totalDuration,
		Price:           queue.QuotePrice(basePrice, req.CustomerType, req.IsEmergency),
		Status:          models.AppointmentScheduled,
		CustomerType:    req.CustomerType,
		IsEmergency:     req.IsEmergency,
		EmergencyReason: req.EmergencyReason,
		PaymentOption:   req.PaymentOption,
		Notes:           req.Notes,
	}

	if _, err := s.Repo.Create(ctx, appt); err != nil {
		return nil, fmt.Errorf("failed to persist appointment: %w", err)
	}

	if s.Reminders != nil {
		if err := s.Reminders.ScheduleReminder(appt); err != nil {
			// Reminders are best-effort; the booking itself already committed.
			utils.GetLogger().Warn("failed to schedule appointment reminder",
				zap.String("appointment", appt.ID), zap.Error(err))
		}
	}

	return &appt, nil
}

// UpdateStatus transitions an appointment through its state machine.
func (s *DefaultAppointmentService) UpdateStatus(ctx context.Context, apptID string, status models.AppointmentStatus) (*models.Appointment, error) {
	appt, err := s.GetByID(ctx, apptID)
	if err != nil {
		return nil, err
	}

	if !validTransition(appt.Status, status) {
		return nil, newError(CodeInvalidTransition, "cannot transition from %s to %s", appt.Status, status)
	}

	if err := s.Repo.UpdateStatus(ctx, apptID, status); err != nil {
		if errors.Is(err, appointmentRepo.ErrNotFound) {
			return nil, newError(CodeNotFound, "appointment %s does not exist", apptID)
		}
		return nil, fmt.Errorf("failed to persist status transition: %w", err)
	}

	appt.Status = status
	return appt, nil
}

func (s *DefaultAppointmentService) ListByShop(ctx context.Context, shopID string, from, to time.Time) ([]models.Appointment, error) {
	return s.Repo.ListByShop(ctx, shopID, from, to)
}

func (s *DefaultAppointmentService) ListByCustomer(ctx context.Context, customerID string) ([]models.Appointment, error) {
	return s.Repo.ListByCustomer(ctx, customerID)
}

func (s *DefaultAppointmentService) GetByID(ctx context.Context, apptID string) (*models.Appointment, error) {
	appt, err := s.Repo.GetByID(ctx, apptID)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrNotFound) {
			return nil, newError(CodeNotFound, "appointment %s does not exist", apptID)
		}
		return nil, fmt.Errorf("failed to load appointment: %w", err)
	}
	return appt, nil
}
