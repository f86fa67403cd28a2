package scheduling

import (
	"context"
	"errors"

	"hangout-service/internal/models"
	"hangout-service/internal/observability"
	"hangout-service/internal/repositories"
)

// ErrSameUser rejects overlap queries of a user against themselves.
var ErrSameUser = errors.New("overlap requires two distinct users")

// OverlapEngine computes pairwise intersections between two users' weekly
// availability windows.
type OverlapEngine struct {
	windows repositories.AvailabilityRepository
	cache   *OverlapCache
}

// NewOverlapEngine constructs an engine. cache may be nil.
func NewOverlapEngine(windows repositories.AvailabilityRepository, cache *OverlapCache) *OverlapEngine {
	return &OverlapEngine{windows: windows, cache: cache}
}

// FindOverlaps returns every non-empty intersection between userA's and
// userB's windows on matching weekdays. Results are transient: they are
// never persisted, carry userA as reference user, and come in no
// contractual order. A user with no windows yields an empty result.
//
// The scan is O(n*m) over the two window sets; per-user weekly window
// counts are tens at most, so no sweep-line is warranted.
func (e *OverlapEngine) FindOverlaps(ctx context.Context, userA, userB int) ([]models.AvailabilityWindow, error) {
	if userA == userB {
		return nil, ErrSameUser
	}

	if cached, ok := e.cache.Get(ctx, userA, userB); ok {
		observability.IncOverlapCacheHit()
		return cached, nil
	}

	windowsA, err := e.windows.ListWindows(ctx, userA)
	if err != nil {
		return nil, err
	}
	windowsB, err := e.windows.ListWindows(ctx, userB)
	if err != nil {
		return nil, err
	}

	overlaps := []models.AvailabilityWindow{}
	for _, wa := range windowsA {
		for _, wb := range windowsB {
			if overlap, ok := wa.Overlap(wb); ok {
				overlaps = append(overlaps, overlap)
			}
		}
	}

	observability.IncOverlapComputed()
	e.cache.Set(ctx, userA, userB, overlaps)
	return overlaps, nil
}
