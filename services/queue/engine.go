package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	queueRepo "winqroo/database/repository/queue"
	serviceRepo "winqroo/database/repository/service"
	"winqroo/models"

	"github.com/google/uuid"
)

// Join admits a customer to the shop's line. The insertion position, quoted
// price and wait estimates all come out of the same pure policy functions, so
// every entry point shares one ranking algorithm.
func (s *DefaultQueueService) Join(ctx context.Context, req JoinRequest) (*models.QueueEntry, error) {
	if len(req.ServiceIDs) == 0 {
		return nil, newError(CodeConflict, "at least one service is required")
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

	score := PriorityScore(req.CustomerType, req.IsEmergency)
	if score > 0 && req.PaymentOption != models.PayNow {
		return nil, newError(CodePaymentRequired, "fast-track admission requires online payment (pay_now)")
	}

	customerLock := s.lockCustomer(req.CustomerID)
	customerLock.Lock()
	defer customerLock.Unlock()

	lock := s.lockShop(req.ShopID)
	lock.Lock()
	defer lock.Unlock()

	existing, err := s.Repo.FindActiveByCustomer(ctx, req.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check active entries: %w", err)
	}
	if existing != nil {
		return nil, newError(CodeDuplicateActiveEntry,
			"customer %s already holds an active queue entry at shop %s", req.CustomerID, existing.ShopID)
	}

	active, err := s.Repo.ListActive(ctx, req.ShopID)
	if err != nil {
		return nil, fmt.Errorf("failed to read active queue: %w", err)
	}

	position := InsertionPosition(active, score)
	if position < 1 || position > len(active)+1 {
		return nil, newError(CodeConflict, "computed position %d is outside [1, %d]", position, len(active)+1)
	}

	entry := models.QueueEntry{
		ID:              uuid.New().String(),
		ShopID:          req.ShopID,
		ServiceIDs:      req.ServiceIDs,
		CustomerID:      req.CustomerID,
		CustomerName:    req.CustomerName,
		Position:        position,
		Status:          models.QueueStatusWaiting,
		CustomerType:    req.CustomerType,
		IsEmergency:     req.IsEmergency,
		EmergencyReason: req.EmergencyReason,
		PaymentOption:   req.PaymentOption,
		PriorityScore:   score,
		ServiceDuration: totalDuration,
		QuotedPrice:     QuotePrice(basePrice, req.CustomerType, req.IsEmergency),
		Notes:           req.Notes,
		JoinedAt:        time.Now(),
	}

	// Simulate the post-insertion line to recompute every estimate in one
	// pass: entries at or behind the new position shift up by one.
	line := make([]models.QueueEntry, 0, len(active)+1)
	for _, e := range active {
		if e.Position >= position {
			e.Position++
		}
		line = append(line, e)
	}
	line = append(line, entry)
	estimates := RecomputeEstimates(line)
	entry.EstimatedWait = estimates[entry.ID]

	shifted := make([]queueRepo.PositionUpdate, 0, len(active))
	for _, e := range line {
		if e.ID == entry.ID {
			continue
		}
		shifted = append(shifted, queueRepo.PositionUpdate{
			EntryID:       e.ID,
			Position:      e.Position,
			EstimatedWait: estimates[e.ID],
		})
	}

	if err := s.Repo.Insert(ctx, entry, shifted); err != nil {
		return nil, fmt.Errorf("failed to persist queue entry: %w", err)
	}
	return &entry, nil
}

// UpdateStatus transitions an entry through the queue state machine. Leaving
// the active set renumbers everyone behind the vacated position, atomically
// with the status change; the departing entry keeps its position as history.
func (s *DefaultQueueService) UpdateStatus(ctx context.Context, entryID string, status models.QueueStatus) (*models.QueueEntry, error) {
	peek, err := s.getEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}

	lock := s.lockShop(peek.ShopID)
	lock.Lock()
	defer lock.Unlock()

	// Re-read under the lock; the peek may be stale.
	entry, err := s.getEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}

	if !ValidTransition(entry.Status, status) {
		return nil, newError(CodeInvalidTransition, "cannot transition from %s to %s", entry.Status, status)
	}

	now := time.Now()
	switch status {
	case models.QueueStatusInProgress:
		entry.StartedAt = &now
	case models.QueueStatusCompleted:
		entry.CompletedAt = &now
	}

	var renumbered []queueRepo.PositionUpdate
	if status.Terminal() {
		active, err := s.Repo.ListActive(ctx, entry.ShopID)
		if err != nil {
			return nil, fmt.Errorf("failed to read active queue: %w", err)
		}

		remaining := make([]models.QueueEntry, 0, len(active))
		for _, e := range active {
			if e.ID == entry.ID {
				continue
			}
			if e.Position > entry.Position {
				e.Position--
			}
			remaining = append(remaining, e)
		}

		estimates := RecomputeEstimates(remaining)
		for _, e := range remaining {
			renumbered = append(renumbered, queueRepo.PositionUpdate{
				EntryID:       e.ID,
				Position:      e.Position,
				EstimatedWait: estimates[e.ID],
			})
		}
	} else if status == models.QueueStatusInProgress {
		// The customer is being served; their own wait is over. Positions do
		// not change, so nobody behind them needs a rewrite.
		entry.EstimatedWait = 0
	}

	entry.Status = status
	if err := s.Repo.UpdateStatus(ctx, *entry, renumbered); err != nil {
		if errors.Is(err, queueRepo.ErrNotFound) {
			return nil, newError(CodeNotFound, "queue entry %s does not exist", entryID)
		}
		return nil, fmt.Errorf("failed to persist status transition: %w", err)
	}
	return entry, nil
}

// Swap exchanges the positions of two active entries in the same shop. This
// backs the owner's manual reorder arrows on the dashboard.
func (s *DefaultQueueService) Swap(ctx context.Context, entryAID, entryBID string) error {
	a, err := s.getEntry(ctx, entryAID)
	if err != nil {
		return err
	}
	b, err := s.getEntry(ctx, entryBID)
	if err != nil {
		return err
	}
	if a.ShopID != b.ShopID {
		return newError(CodeScopeMismatch, "entries %s and %s belong to different shops", entryAID, entryBID)
	}

	lock := s.lockShop(a.ShopID)
	lock.Lock()
	defer lock.Unlock()

	active, err := s.Repo.ListActive(ctx, a.ShopID)
	if err != nil {
		return fmt.Errorf("failed to read active queue: %w", err)
	}

	var posA, posB int
	foundA, foundB := false, false
	for _, e := range active {
		switch e.ID {
		case entryAID:
			posA, foundA = e.Position, true
		case entryBID:
			posB, foundB = e.Position, true
		}
	}
	if !foundA || !foundB {
		return newError(CodeConflict, "both entries must be active to swap positions")
	}

	line := make([]models.QueueEntry, 0, len(active))
	for _, e := range active {
		switch e.ID {
		case entryAID:
			e.Position = posB
		case entryBID:
			e.Position = posA
		}
		line = append(line, e)
	}

	estimates := RecomputeEstimates(line)
	updates := make([]queueRepo.PositionUpdate, 0, len(line))
	for _, e := range line {
		updates = append(updates, queueRepo.PositionUpdate{
			EntryID:       e.ID,
			Position:      e.Position,
			EstimatedWait: estimates[e.ID],
		})
	}

	if err := s.Repo.SwapPositions(ctx, updates); err != nil {
		return fmt.Errorf("failed to persist position swap: %w", err)
	}
	return nil
}

func (s *DefaultQueueService) ListActive(ctx context.Context, shopID string) ([]models.QueueEntry, error) {
	return s.Repo.ListActive(ctx, shopID)
}

func (s *DefaultQueueService) ListShopQueues(ctx context.Context, shopID string) ([]models.QueueEntry, error) {
	return s.Repo.ListByShop(ctx, shopID)
}

func (s *DefaultQueueService) ListCustomerQueues(ctx context.Context, customerID string) ([]models.QueueEntry, error) {
	return s.Repo.ListByCustomer(ctx, customerID)
}

func (s *DefaultQueueService) GetEntry(ctx context.Context, entryID string) (*models.QueueEntry, error) {
	return s.getEntry(ctx, entryID)
}

func (s *DefaultQueueService) getEntry(ctx context.Context, entryID string) (*models.QueueEntry, error) {
	entry, err := s.Repo.GetByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, queueRepo.ErrNotFound) {
			return nil, newError(CodeNotFound, "queue entry %s does not exist", entryID)
		}
		return nil, fmt.Errorf("failed to load queue entry: %w", err)
	}
	return entry, nil
}
