package alert

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepository is an in-memory implementation of Repository, used in
// tests and when no database is configured.
type MemoryRepository struct {
	mu     sync.RWMutex
	alerts map[string]*Alert
}

// NewMemoryRepository creates a new in-memory alert repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		alerts: make(map[string]*Alert),
	}
}

// Create stores a new alert.
func (r *MemoryRepository) Create(_ context.Context, alert *Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *alert
	r.alerts[alert.ID] = &stored
	return nil
}

// GetActiveByZone retrieves the unresolved alert for a zone, if any.
func (r *MemoryRepository) GetActiveByZone(_ context.Context, zoneID string) (*Alert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.alerts {
		if a.ZoneID == zoneID && a.Active() {
			copied := *a
			return &copied, nil
		}
	}
	return nil, ErrAlertNotFound
}

// List retrieves alerts, newest first.
func (r *MemoryRepository) List(_ context.Context, opts ListOptions) ([]*Alert, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	alerts := make([]*Alert, 0, len(r.alerts))
	for _, a := range r.alerts {
		if opts.ActiveOnly && !a.Active() {
			continue
		}
		copied := *a
		alerts = append(alerts, &copied)
	}

	sort.Slice(alerts, func(i, j int) bool {
		return alerts[i].CreatedAt.After(alerts[j].CreatedAt)
	})

	if len(alerts) > limit {
		alerts = alerts[:limit]
	}
	return alerts, nil
}

// Resolve marks an alert resolved.
func (r *MemoryRepository) Resolve(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	alert, ok := r.alerts[id]
	if !ok {
		return ErrAlertNotFound
	}

	now := time.Now().UTC()
	alert.ResolvedAt = &now
	return nil
}

// Ensure MemoryRepository implements Repository interface.
var _ Repository = (*MemoryRepository)(nil)
