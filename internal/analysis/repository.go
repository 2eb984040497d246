package analysis

import "context"

// Repository defines the interface for analysis persistence.
type Repository interface {
	// Create stores a completed analysis run.
	Create(ctx context.Context, analysis *Analysis) error

	// Get retrieves an analysis by ID.
	Get(ctx context.Context, id string) (*Analysis, error)

	// GetLatest retrieves the most recent analysis.
	GetLatest(ctx context.Context) (*Analysis, error)

	// ListRecent retrieves the most recent analyses, newest first.
	ListRecent(ctx context.Context, limit int) ([]*Analysis, error)

	// SetNarrative attaches a model-generated narrative to an analysis.
	SetNarrative(ctx context.Context, id, narrative string) error
}
