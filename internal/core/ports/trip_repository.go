package ports

import (
	"context"

	"github.com/viatero/expense-system/internal/core/domain"
)

// ListTripsFilter carries query parameters for listing trips. UserID is
// enforced by the service layer: employees only see their own trips.
type ListTripsFilter struct {
	UserID int64 // 0 = no filter (manager); non-zero = scoped to owner
}

// TripRepository defines persistence operations for trips.
type TripRepository interface {
	Create(ctx context.Context, t *domain.Trip) error
	FindByID(ctx context.Context, tripID string) (*domain.Trip, error)
	List(ctx context.Context, filter ListTripsFilter) ([]*domain.Trip, error)
	// Update replaces the mutable trip fields. domain.ErrTripNotFound when
	// the id matches nothing.
	Update(ctx context.Context, t *domain.Trip) error
	Delete(ctx context.Context, tripID string) error
}
