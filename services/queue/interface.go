package queue

import (
	"context"
	"sync"

	queueRepo "winqroo/database/repository/queue"
	serviceRepo "winqroo/database/repository/service"
	"winqroo/models"
)

// JoinRequest carries everything the admission policy needs to place a new
// customer in a shop's line.
type JoinRequest struct {
	ShopID          string               `json:"shop_id"`
	ServiceIDs      []string             `json:"service_ids"`
	CustomerID      string               `json:"customer_id"`
	CustomerName    string               `json:"customer_name"`
	CustomerType    models.CustomerType  `json:"customer_type"`
	IsEmergency     bool                 `json:"is_emergency"`
	EmergencyReason string               `json:"emergency_reason,omitempty"`
	PaymentOption   models.PaymentOption `json:"payment_option"`
	Notes           string               `json:"notes,omitempty"`
}

// QueueService is the queue ordering and wait-estimation engine. All mutating
// operations on one shop's line are serialized; reads run unlocked and may be
// a few seconds stale for polling clients.
type QueueService interface {
	// Join admits a customer: the ranking policy picks the position, entries
	// behind it shift up, and every shifted entry gets a fresh estimate.
	Join(ctx context.Context, req JoinRequest) (*models.QueueEntry, error)

	// UpdateStatus transitions an entry. A transition out of the active states
	// compacts the positions behind it so they stay dense, atomically with the
	// status change.
	UpdateStatus(ctx context.Context, entryID string, status models.QueueStatus) (*models.QueueEntry, error)

	// Swap exchanges the positions of two active entries in the same shop
	// (owner-driven manual reorder).
	Swap(ctx context.Context, entryAID, entryBID string) error

	ListActive(ctx context.Context, shopID string) ([]models.QueueEntry, error)
	ListShopQueues(ctx context.Context, shopID string) ([]models.QueueEntry, error)
	ListCustomerQueues(ctx context.Context, customerID string) ([]models.QueueEntry, error)
	GetEntry(ctx context.Context, entryID string) (*models.QueueEntry, error)
}

// DefaultQueueService implements QueueService on top of a QueueRepository and
// the service catalog.
type DefaultQueueService struct {
	Repo     queueRepo.QueueRepository
	Services serviceRepo.ServiceRepository

	mu            sync.Mutex
	locks         map[string]*sync.Mutex
	customerLocks map[string]*sync.Mutex
}

// lockShop returns the mutex serializing mutations for one shop's line,
// creating it on first use. Callers hold it for the whole read-modify-write.
func (s *DefaultQueueService) lockShop(shopID string) *sync.Mutex {
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

// lockCustomer returns the mutex serializing admissions for one customer, so
// the duplicate-entry check and the insert it guards cannot interleave across
// two shops. Always acquired before the shop lock.
func (s *DefaultQueueService) lockCustomer(customerID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.customerLocks == nil {
		s.customerLocks = make(map[string]*sync.Mutex)
	}
	lock, ok := s.customerLocks[customerID]
	if !ok {
		lock = &sync.Mutex{}
		s.customerLocks[customerID] = lock
	}
	return lock
}
