// File: database/repository/queue/memory.go
package queueRepo

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"winqroo/models"
)

// memoryQueueRepo is an in-memory QueueRepository used by tests and by demo
// deployments without a MongoDB instance. It runs the same engine against a
// map guarded by a mutex, so compound writes are trivially atomic.
type memoryQueueRepo struct {
	mu      sync.RWMutex
	entries map[string]models.QueueEntry
}

// NewMemoryQueueRepo constructs an empty in-memory QueueRepository.
func NewMemoryQueueRepo() QueueRepository {
	return &memoryQueueRepo{entries: make(map[string]models.QueueEntry)}
}

func (r *memoryQueueRepo) GetByID(_ context.Context, id string) (*models.QueueEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &entry, nil
}

func (r *memoryQueueRepo) ListActive(_ context.Context, shopID string) ([]models.QueueEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var entries []models.QueueEntry
	for _, e := range r.entries {
		if e.ShopID == shopID && e.Status.Active() {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Position < entries[j].Position })
	return entries, nil
}

func (r *memoryQueueRepo) ListByShop(_ context.Context, shopID string) ([]models.QueueEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var entries []models.QueueEntry
	for _, e := range r.entries {
		if e.ShopID == shopID {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Position != entries[j].Position {
			return entries[i].Position < entries[j].Position
		}
		return entries[i].JoinedAt.Before(entries[j].JoinedAt)
	})
	return entries, nil
}

func (r *memoryQueueRepo) ListByCustomer(_ context.Context, customerID string) ([]models.QueueEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var entries []models.QueueEntry
	for _, e := range r.entries {
		if e.CustomerID == customerID {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].JoinedAt.After(entries[j].JoinedAt) })
	return entries, nil
}

func (r *memoryQueueRepo) FindActiveByCustomer(_ context.Context, customerID string) (*models.QueueEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.entries {
		if e.CustomerID == customerID && e.Status.Active() {
			entry := e
			return &entry, nil
		}
	}
	return nil, nil
}

func (r *memoryQueueRepo) Insert(_ context.Context, entry models.QueueEntry, shifted []PositionUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[entry.ID]; exists {
		return fmt.Errorf("queue entry %s already exists", entry.ID)
	}
	if err := r.checkUpdates(shifted); err != nil {
		return err
	}
	r.entries[entry.ID] = entry
	r.applyUpdatesLocked(shifted)
	return nil
}

func (r *memoryQueueRepo) UpdateStatus(_ context.Context, entry models.QueueEntry, renumbered []PositionUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.entries[entry.ID]
	if !ok {
		return ErrNotFound
	}
	if err := r.checkUpdates(renumbered); err != nil {
		return err
	}
	stored.Status = entry.Status
	stored.EstimatedWait = entry.EstimatedWait
	if entry.StartedAt != nil {
		stored.StartedAt = entry.StartedAt
	}
	if entry.CompletedAt != nil {
		stored.CompletedAt = entry.CompletedAt
	}
	r.entries[entry.ID] = stored
	r.applyUpdatesLocked(renumbered)
	return nil
}

func (r *memoryQueueRepo) SwapPositions(_ context.Context, updates []PositionUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkUpdates(updates); err != nil {
		return err
	}
	r.applyUpdatesLocked(updates)
	return nil
}

// checkUpdates verifies every referenced entry exists before any write, so a
// compound operation is applied all-or-nothing.
func (r *memoryQueueRepo) checkUpdates(updates []PositionUpdate) error {
	for _, u := range updates {
		if _, ok := r.entries[u.EntryID]; !ok {
			return fmt.Errorf("position rewrite references unknown entry %s: %w", u.EntryID, ErrNotFound)
		}
	}
	return nil
}

func (r *memoryQueueRepo) applyUpdatesLocked(updates []PositionUpdate) {
	for _, u := range updates {
		e := r.entries[u.EntryID]
		e.Position = u.Position
		e.EstimatedWait = u.EstimatedWait
		r.entries[u.EntryID] = e
	}
}
