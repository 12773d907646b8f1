package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"winqroo/config"
	appointmentRepo "winqroo/database/repository/appointment"
	"winqroo/models"

	"github.com/hibiken/asynq"
)

const TypeReminderSend = "reminder:send"

// ReminderPayload is the asynq task payload.
type ReminderPayload struct {
	AppointmentID string `json:"appointment_id"`
}

// AsynqReminderScheduler enqueues reminder tasks to run shortly before the
// appointment's scheduled time.
type AsynqReminderScheduler struct {
	client *asynq.Client
	lead   time.Duration
}

// NewReminderScheduler creates a scheduler backed by the reminder queue Redis DB.
func NewReminderScheduler() *AsynqReminderScheduler {
	client := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	})
	lead := time.Duration(config.AppConfig.ReminderLeadMinutes) * time.Minute
	if lead <= 0 {
		lead = 30 * time.Minute
	}
	return &AsynqReminderScheduler{client: client, lead: lead}
}

// ScheduleReminder enqueues a reminder for the appointment. Appointments
// closer than the lead time get the reminder immediately.
func (s *AsynqReminderScheduler) ScheduleReminder(appt models.Appointment) error {
	payload, err := json.Marshal(ReminderPayload{AppointmentID: appt.ID})
	if err != nil {
		return fmt.Errorf("failed to marshal reminder payload: %w", err)
	}

	task := asynq.NewTask(TypeReminderSend, payload)
	at := appt.ScheduledAt.Add(-s.lead)
	if at.Before(time.Now()) {
		at = time.Now()
	}
	if _, err := s.client.Enqueue(task, asynq.ProcessAt(at)); err != nil {
		return fmt.Errorf("failed to enqueue reminder task: %w", err)
	}
	return nil
}

// InitReminderWorker runs the async worker in background.
func InitReminderWorker(repo appointmentRepo.AppointmentRepository) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeReminderSend, handleReminderTask(repo))

	// Start async worker with retry logic
	go func() {
		log.Println("[ReminderWorker] Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[ReminderWorker] Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[ReminderWorker] Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

func handleReminderTask(repo appointmentRepo.AppointmentRepository) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload ReminderPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("failed to unmarshal reminder payload: %w", err)
		}

		appt, err := repo.GetByID(ctx, payload.AppointmentID)
		if err != nil {
			return fmt.Errorf("failed to load appointment %s: %w", payload.AppointmentID, err)
		}
		if appt.ReminderSent || appt.Status.Terminal() {
			return nil
		}

		// Delivery channels (SMS/push) live outside this backend; the reminder
		// is surfaced through the customer's polling reads once marked.
		log.Printf("[ReminderWorker] Reminder due: appointment %s for %s at %s",
			appt.ID, appt.CustomerName, appt.ScheduledAt.Format(time.RFC3339))

		if err := repo.MarkReminderSent(ctx, appt.ID); err != nil {
			return fmt.Errorf("failed to mark reminder sent for %s: %w", appt.ID, err)
		}
		return nil
	}
}
