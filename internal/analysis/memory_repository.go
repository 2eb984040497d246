package analysis

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepository is an in-memory implementation of Repository, used in
// tests and when no database is configured.
type MemoryRepository struct {
	mu       sync.RWMutex
	analyses map[string]*Analysis
}

// NewMemoryRepository creates a new in-memory analysis repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		analyses: make(map[string]*Analysis),
	}
}

// Create stores a completed analysis run.
func (r *MemoryRepository) Create(_ context.Context, analysis *Analysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *analysis
	r.analyses[analysis.ID] = &stored
	return nil
}

// Get retrieves an analysis by ID.
func (r *MemoryRepository) Get(_ context.Context, id string) (*Analysis, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	analysis, ok := r.analyses[id]
	if !ok {
		return nil, ErrAnalysisNotFound
	}
	copied := *analysis
	return &copied, nil
}

// GetLatest retrieves the most recent analysis.
func (r *MemoryRepository) GetLatest(ctx context.Context) (*Analysis, error) {
	analyses, err := r.ListRecent(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(analyses) == 0 {
		return nil, ErrAnalysisNotFound
	}
	return analyses[0], nil
}

// ListRecent retrieves the most recent analyses, newest first.
func (r *MemoryRepository) ListRecent(_ context.Context, limit int) ([]*Analysis, error) {
	if limit <= 0 {
		limit = 20
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	analyses := make([]*Analysis, 0, len(r.analyses))
	for _, a := range r.analyses {
		copied := *a
		analyses = append(analyses, &copied)
	}

	sort.Slice(analyses, func(i, j int) bool {
		return analyses[i].GeneratedAt.After(analyses[j].GeneratedAt)
	})

	if len(analyses) > limit {
		analyses = analyses[:limit]
	}
	return analyses, nil
}

// SetNarrative attaches a model-generated narrative to an analysis.
func (r *MemoryRepository) SetNarrative(_ context.Context, id, narrative string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	analysis, ok := r.analyses[id]
	if !ok {
		return ErrAnalysisNotFound
	}

	now := time.Now().UTC()
	analysis.Narrative = narrative
	analysis.NarrativeAt = &now
	return nil
}

// Ensure MemoryRepository implements Repository interface.
var _ Repository = (*MemoryRepository)(nil)
