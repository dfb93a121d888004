package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/viatero/expense-system/internal/core/domain"
	"github.com/viatero/expense-system/internal/core/ports"
)

// TripService implements trip creation, retrieval, and mutation.
type TripService struct {
	repo     ports.TripRepository
	expenses ports.ExpenseRepository
	logger   zerolog.Logger
}

func NewTripService(repo ports.TripRepository, expenses ports.ExpenseRepository, logger zerolog.Logger) *TripService {
	return &TripService{repo: repo, expenses: expenses, logger: logger}
}

// CreateTrip creates a trip owned by the caller.
func (s *TripService) CreateTrip(ctx context.Context, input ports.CreateTripInput) (*domain.Trip, error) {
	if err := validateTripDates(input.Destination, input.StartDate, input.EndDate); err != nil {
		return nil, err
	}

	trip := &domain.Trip{
		ID:          generateID("TRP"),
		UserID:      input.UserID,
		Destination: input.Destination,
		Purpose:     input.Purpose,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, trip); err != nil {
		s.logger.Error().Err(err).Msg("failed to create trip")
		return nil, err
	}

	s.logger.Info().Str("trip_id", trip.ID).Int64("user_id", trip.UserID).Msg("trip created")
	return trip, nil
}

// GetTrip returns the trip if the caller owns it or is a manager.
func (s *TripService) GetTrip(ctx context.Context, input ports.GetTripInput) (*domain.Trip, error) {
	trip, err := s.repo.FindByID(ctx, input.TripID)
	if err != nil {
		return nil, err
	}
	if trip.UserID != input.UserID && input.Role != domain.RoleManager {
		return nil, domain.ErrForbidden
	}
	return trip, nil
}

// ListTrips returns the caller's trips, or all trips for managers.
func (s *TripService) ListTrips(ctx context.Context, input ports.ListTripsInput) ([]*domain.Trip, error) {
	filter := ports.ListTripsFilter{UserID: input.UserID}
	if input.Role == domain.RoleManager {
		filter.UserID = 0
	}
	return s.repo.List(ctx, filter)
}

// UpdateTrip replaces the mutable fields of a trip the caller can access.
// Ownership never changes.
func (s *TripService) UpdateTrip(ctx context.Context, input ports.UpdateTripInput) (*domain.Trip, error) {
	if err := validateTripDates(input.Destination, input.StartDate, input.EndDate); err != nil {
		return nil, err
	}

	trip, err := s.GetTrip(ctx, ports.GetTripInput{TripID: input.TripID, Role: input.Role, UserID: input.UserID})
	if err != nil {
		return nil, err
	}

	trip.Destination = input.Destination
	trip.Purpose = input.Purpose
	trip.StartDate = input.StartDate
	trip.EndDate = input.EndDate

	if err := s.repo.Update(ctx, trip); err != nil {
		s.logger.Error().Err(err).Str("trip_id", trip.ID).Msg("failed to update trip")
		return nil, err
	}

	s.logger.Info().Str("trip_id", trip.ID).Int64("user_id", input.UserID).Msg("trip updated")
	return trip, nil
}

// DeleteTrip removes a trip the caller can access. The trip row is the
// critical write; sweeping its expenses afterwards is best effort, since a
// missing trip already makes them unreachable.
func (s *TripService) DeleteTrip(ctx context.Context, input ports.GetTripInput) error {
	if _, err := s.GetTrip(ctx, input); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, input.TripID); err != nil {
		s.logger.Error().Err(err).Str("trip_id", input.TripID).Msg("failed to delete trip")
		return err
	}

	removed, err := s.expenses.DeleteByTrip(ctx, input.TripID)
	if err != nil {
		s.logger.Warn().Err(err).Str("trip_id", input.TripID).Msg("failed to sweep trip expenses")
	}

	s.logger.Info().Str("trip_id", input.TripID).Int64("expenses_removed", removed).Msg("trip deleted")
	return nil
}

func validateTripDates(destination string, start, end time.Time) error {
	if destination == "" || start.IsZero() || end.IsZero() {
		return domain.ErrInvalidInput
	}
	if end.Before(start) {
		return domain.ErrInvalidInput
	}
	return nil
}

// generateID returns a unique id in the format PFX-XXXXXXXX.
func generateID(prefix string) string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		// fallback: use current nanoseconds
		return fmt.Sprintf("%s-%08X", prefix, time.Now().UnixNano()&0xFFFFFFFF)
	}
	return fmt.Sprintf("%s-%08X", prefix, b)
}
