package models

import "time"

// QueueStatus enumerates the lifecycle states of a queue entry.
type QueueStatus string

const (
	QueueStatusWaiting    QueueStatus = "waiting"
	QueueStatusInProgress QueueStatus = "in_progress"
	QueueStatusCompleted  QueueStatus = "completed"
	QueueStatusCancelled  QueueStatus = "cancelled"
	QueueStatusNoShow     QueueStatus = "no_show"
)

// Active reports whether the status still occupies a position in the line.
func (s QueueStatus) Active() bool {
	return s == QueueStatusWaiting || s == QueueStatusInProgress
}

// Terminal reports whether the status is final. Terminal entries keep the
// position they held when they left the line, as a historical record.
func (s QueueStatus) Terminal() bool {
	return s == QueueStatusCompleted || s == QueueStatusCancelled || s == QueueStatusNoShow
}

// PaymentOption is how the customer chose to pay for the booking.
type PaymentOption string

const (
	PayNow    PaymentOption = "pay_now"
	PayAtShop PaymentOption = "pay_at_shop"
)

// CustomerType is the customer tier used by the fast-track policy.
type CustomerType string

const (
	CustomerStandard CustomerType = "standard"
	CustomerRegular  CustomerType = "regular"
	CustomerVIP      CustomerType = "vip"
)

// QueueEntry represents one customer's place in one shop's walk-in queue.
// All services of a shop share a single line; Position is unique and dense
// (1..N) among the shop's active entries.
type QueueEntry struct {
	ID           string   `bson:"id" json:"id"`
	ShopID       string   `bson:"shop_id" json:"shop_id"`
	ServiceIDs   []string `bson:"service_ids" json:"service_ids"` // multi-service booking
	CustomerID   string   `bson:"customer_id" json:"customer_id"`
	CustomerName string   `bson:"customer_name" json:"customer_name"`

	Position int         `bson:"position" json:"position"`
	Status   QueueStatus `bson:"status" json:"status"`

	// EstimatedWait is derived: the sum of the combined service durations of
	// every active entry ahead of this one. Recomputed on every mutation.
	EstimatedWait int `bson:"estimated_wait" json:"estimated_wait"` // minutes

	CustomerType    CustomerType  `bson:"customer_type" json:"customer_type"`
	IsEmergency     bool          `bson:"is_emergency" json:"is_emergency"`
	EmergencyReason string        `bson:"emergency_reason,omitempty" json:"emergency_reason,omitempty"`
	PaymentOption   PaymentOption `bson:"payment_option" json:"payment_option"`
	PriorityScore   int           `bson:"priority_score" json:"priority_score"`

	// ServiceDuration is the combined duration (minutes) of all booked
	// services, captured from the catalog at join time.
	ServiceDuration int `bson:"service_duration" json:"service_duration"`
	// QuotedPrice is the total charge quoted at admission, including the
	// fast-track surcharge where it applies.
	QuotedPrice float64 `bson:"quoted_price" json:"quoted_price"`

	Notes string `bson:"notes,omitempty" json:"notes,omitempty"`

	JoinedAt    time.Time  `bson:"joined_at" json:"joined_at"`
	StartedAt   *time.Time `bson:"started_at,omitempty" json:"started_at,omitempty"`
	CompletedAt *time.Time `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
}
