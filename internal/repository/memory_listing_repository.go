package repository

import (
	"context"
	"sync"
	"time"

	"listingopt/internal/model"
)

// MemoryListingRepository keeps listings in process memory. It backs the
// "memory" store setting for local runs and tests; data is lost on exit.
type MemoryListingRepository struct {
	mu        sync.RWMutex
	originals map[string]model.OriginalListing
	optimized map[string]model.OptimizedListing
	now       func() time.Time
}

func NewMemoryListingRepository() *MemoryListingRepository {
	return &MemoryListingRepository{
		originals: make(map[string]model.OriginalListing),
		optimized: make(map[string]model.OptimizedListing),
		now:       time.Now,
	}
}

func (r *MemoryListingRepository) Ping(ctx context.Context) error {
	return nil
}

func (r *MemoryListingRepository) GetOriginal(ctx context.Context, asin string) (*model.OriginalListing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.originals[asin]
	if !ok {
		return nil, nil
	}
	o.Bullets = cloneStrings(o.Bullets)
	return &o, nil
}

func (r *MemoryListingRepository) GetOptimized(ctx context.Context, asin string) (*model.OptimizedListing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.optimized[asin]
	if !ok {
		return nil, nil
	}
	o.OptBullets = cloneStrings(o.OptBullets)
	return &o, nil
}

func (r *MemoryListingRepository) UpsertOriginal(ctx context.Context, listing *model.OriginalListing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.putOriginal(listing)
	return nil
}

func (r *MemoryListingRepository) UpsertOptimized(ctx context.Context, listing *model.OptimizedListing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.putOptimized(listing)
	return nil
}

func (r *MemoryListingRepository) SaveOptimization(ctx context.Context, original *model.OriginalListing, optimized *model.OptimizedListing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.putOriginal(original)
	r.putOptimized(optimized)
	return nil
}

func (r *MemoryListingRepository) putOriginal(listing *model.OriginalListing) {
	stored := *listing
	stored.Bullets = cloneStrings(listing.Bullets)
	stored.CreatedAt = r.now()
	if prev, ok := r.originals[listing.ASIN]; ok {
		stored.CreatedAt = prev.CreatedAt
	}
	r.originals[listing.ASIN] = stored
}

func (r *MemoryListingRepository) putOptimized(listing *model.OptimizedListing) {
	stored := *listing
	stored.OptBullets = cloneStrings(listing.OptBullets)
	stored.CreatedAt = r.now()
	if prev, ok := r.optimized[listing.ASIN]; ok {
		stored.CreatedAt = prev.CreatedAt
	}
	r.optimized[listing.ASIN] = stored
}

// Counts reports how many originals and optimized listings are stored.
func (r *MemoryListingRepository) Counts() (originals, optimized int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.originals), len(r.optimized)
}

func cloneStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
