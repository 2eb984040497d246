package alert

import "context"

// ListOptions controls history queries.
type ListOptions struct {
	// Limit caps the number of returned alerts (default 50).
	Limit int

	// ActiveOnly restricts the result to unresolved alerts.
	ActiveOnly bool
}

// Repository defines the interface for alert persistence.
type Repository interface {
	// Create stores a new alert.
	Create(ctx context.Context, alert *Alert) error

	// GetActiveByZone retrieves the unresolved alert for a zone, if any.
	GetActiveByZone(ctx context.Context, zoneID string) (*Alert, error)

	// List retrieves alerts, newest first.
	List(ctx context.Context, opts ListOptions) ([]*Alert, error)

	// Resolve marks an alert resolved.
	Resolve(ctx context.Context, id string) error
}
