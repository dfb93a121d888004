package ports

import (
	"context"
	"time"

	"github.com/viatero/expense-system/internal/core/domain"
)

// CreateTripInput carries all data needed to create a trip.
type CreateTripInput struct {
	UserID      int64
	Destination string
	Purpose     string
	StartDate   time.Time
	EndDate     time.Time
}

// UpdateTripInput carries the caller identity plus the replacement trip
// fields.
type UpdateTripInput struct {
	TripID string
	Role   string
	UserID int64

	Destination string
	Purpose     string
	StartDate   time.Time
	EndDate     time.Time
}

// GetTripInput identifies a trip and the caller, for the owner-or-manager
// access check.
type GetTripInput struct {
	TripID string
	Role   string
	UserID int64
}

// ListTripsInput carries the caller identity for scoping.
type ListTripsInput struct {
	Role   string
	UserID int64
}

// TripService defines use-case operations for trips.
type TripService interface {
	CreateTrip(ctx context.Context, input CreateTripInput) (*domain.Trip, error)
	GetTrip(ctx context.Context, input GetTripInput) (*domain.Trip, error)
	ListTrips(ctx context.Context, input ListTripsInput) ([]*domain.Trip, error)
	UpdateTrip(ctx context.Context, input UpdateTripInput) (*domain.Trip, error)
	// DeleteTrip removes the trip and its expenses. Owner-or-manager, same
	// rule as GetTrip.
	DeleteTrip(ctx context.Context, input GetTripInput) error
}
