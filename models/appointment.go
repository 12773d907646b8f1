package models

import "time"

// AppointmentStatus enumerates the lifecycle states of a scheduled appointment.
type AppointmentStatus string

const (
	AppointmentScheduled  AppointmentStatus = "scheduled"
	AppointmentConfirmed  AppointmentStatus = "confirmed"
	AppointmentInProgress AppointmentStatus = "in_progress"
	AppointmentCompleted  AppointmentStatus = "completed"
	AppointmentCancelled  AppointmentStatus = "cancelled"
	AppointmentNoShow     AppointmentStatus = "no_show"
)

// Terminal reports whether the status is final.
func (s AppointmentStatus) Terminal() bool {
	return s == AppointmentCompleted || s == AppointmentCancelled || s == AppointmentNoShow
}

// Appointment is a scheduled (as opposed to walk-in) booking.
type Appointment struct {
	ID           string   `bson:"id" json:"id"`
	ShopID       string   `bson:"shop_id" json:"shop_id"`
	ServiceIDs   []string `bson:"service_ids" json:"service_ids"`
	CustomerID   string   `bson:"customer_id" json:"customer_id"`
	CustomerName string   `bson:"customer_name" json:"customer_name"`

	ScheduledAt time.Time         `bson:"scheduled_at" json:"scheduled_at"`
	Duration    int               `bson:"duration" json:"duration"` // minutes
	Price       float64           `bson:"price" json:"price"`
	Status      AppointmentStatus `bson:"status" json:"status"`

	CustomerType    CustomerType  `bson:"customer_type" json:"customer_type"`
	IsEmergency     bool          `bson:"is_emergency" json:"is_emergency"`
	EmergencyReason string        `bson:"emergency_reason,omitempty" json:"emergency_reason,omitempty"`
	PaymentOption   PaymentOption `bson:"payment_option" json:"payment_option"`

	Notes        string    `bson:"notes,omitempty" json:"notes,omitempty"`
	ReminderSent bool      `bson:"reminder_sent" json:"reminder_sent"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}
