package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/viatero/expense-system/internal/core/domain"
	"github.com/viatero/expense-system/internal/core/ports"
)

// ExpenseService implements expense capture, the approval workflow, and
// per-trip rollups.
type ExpenseService struct {
	expenses ports.ExpenseRepository
	trips    ports.TripRepository
	users    ports.UserRepository
	queue    ports.NotificationQueue
	logger   zerolog.Logger
}

func NewExpenseService(
	expenses ports.ExpenseRepository,
	trips ports.TripRepository,
	users ports.UserRepository,
	queue ports.NotificationQueue,
	logger zerolog.Logger,
) *ExpenseService {
	return &ExpenseService{expenses: expenses, trips: trips, users: users, queue: queue, logger: logger}
}

// AddExpense attaches a pending expense to a trip the caller can access.
func (s *ExpenseService) AddExpense(ctx context.Context, input ports.AddExpenseInput) (*domain.Expense, error) {
	if !domain.ValidCategory(input.Category) || input.Amount <= 0 {
		return nil, domain.ErrInvalidInput
	}

	trip, err := s.trips.FindByID(ctx, input.TripID)
	if err != nil {
		return nil, err
	}
	if trip.UserID != input.UserID && input.Role != domain.RoleManager {
		return nil, domain.ErrForbidden
	}

	now := time.Now().UTC()
	incurred := input.IncurredAt
	if incurred.IsZero() {
		incurred = now
	}

	expense := &domain.Expense{
		ID:          generateID("EXP"),
		TripID:      trip.ID,
		UserID:      input.UserID,
		Category:    input.Category,
		Amount:      input.Amount,
		Currency:    input.Currency,
		Description: input.Description,
		IncurredAt:  incurred,
		Status:      domain.ExpensePending,
		CreatedAt:   now,
		ReviewHistory: []domain.ReviewEntry{
			{Status: domain.ExpensePending, Timestamp: now},
		},
	}

	if err := s.expenses.Create(ctx, expense); err != nil {
		s.logger.Error().Err(err).Str("trip_id", trip.ID).Msg("failed to create expense")
		return nil, err
	}

	s.logger.Info().Str("expense_id", expense.ID).Str("trip_id", trip.ID).
		Str("category", expense.Category).Msg("expense created")
	return expense, nil
}

// ListExpenses returns a trip's expenses, optionally filtered by status.
func (s *ExpenseService) ListExpenses(ctx context.Context, input ports.ListExpensesInput) ([]*domain.Expense, error) {
	if input.Status != "" && !domain.ExpenseStatus(input.Status).Known() {
		return nil, domain.ErrInvalidInput
	}

	trip, err := s.trips.FindByID(ctx, input.TripID)
	if err != nil {
		return nil, err
	}
	if trip.UserID != input.UserID && input.Role != domain.RoleManager {
		return nil, domain.ErrForbidden
	}

	return s.expenses.List(ctx, ports.ListExpensesFilter{TripID: trip.ID, Status: input.Status})
}

// TripSummary returns amount totals by category and by approval status.
func (s *ExpenseService) TripSummary(ctx context.Context, input ports.GetTripInput) (*ports.TripTotals, error) {
	trip, err := s.trips.FindByID(ctx, input.TripID)
	if err != nil {
		return nil, err
	}
	if trip.UserID != input.UserID && input.Role != domain.RoleManager {
		return nil, domain.ErrForbidden
	}
	return s.expenses.Totals(ctx, trip.ID)
}

// Review approves or rejects a pending expense.
func (s *ExpenseService) Review(ctx context.Context, input ports.ReviewInput) (*domain.Expense, error) {
	next := domain.ExpenseRejected
	if input.Approve {
		next = domain.ExpenseApproved
	}

	expense, err := s.expenses.FindByID(ctx, input.ExpenseID)
	if err != nil {
		return nil, err
	}
	if !expense.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w (from %s to %s)", domain.ErrInvalidReview, expense.Status, next)
	}

	now := time.Now().UTC()
	if err := s.expenses.UpdateStatus(ctx, expense.ID, expense.Status, next, input.ReviewerID, now, input.Note); err != nil {
		return nil, err
	}

	s.notifyOwner(ctx, expense, next)

	s.logger.Info().Str("expense_id", expense.ID).Str("decision", string(next)).
		Int64("reviewer_id", input.ReviewerID).Msg("expense reviewed")

	return s.expenses.FindByID(ctx, expense.ID)
}

// notifyOwner queues a review-decision notification for the expense owner.
// Best effort: an unresolvable owner only costs the notification.
func (s *ExpenseService) notifyOwner(ctx context.Context, expense *domain.Expense, decision domain.ExpenseStatus) {
	owner, err := s.users.FindByID(ctx, expense.UserID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("user_id", expense.UserID).Msg("could not resolve expense owner for notification")
		return
	}
	s.queue.Enqueue(ports.Notification{
		Recipient: owner.Login,
		Kind:      ports.NotifyExpenseReviewed,
		Subject:   fmt.Sprintf("Expense %s %s", expense.ID, decision),
		Body:      fmt.Sprintf("Your %s expense of %.2f %s was %s.", expense.Category, expense.Amount, expense.Currency, decision),
	})
}

// Reimburse pays out an approved expense. The status update is the critical
// write; the reimbursement audit record is non-fatal.
func (s *ExpenseService) Reimburse(ctx context.Context, input ports.ReimburseInput) (*domain.Expense, error) {
	expense, err := s.expenses.FindByID(ctx, input.ExpenseID)
	if err != nil {
		return nil, err
	}
	if !expense.Status.CanTransitionTo(domain.ExpenseReimbursed) {
		return nil, fmt.Errorf("%w (from %s to %s)", domain.ErrInvalidReview, expense.Status, domain.ExpenseReimbursed)
	}

	amount := input.Amount
	if amount <= 0 {
		amount = expense.Amount
	}

	now := time.Now().UTC()
	if err := s.expenses.UpdateStatus(ctx, expense.ID, expense.Status, domain.ExpenseReimbursed, input.ApproverID, now, input.Note); err != nil {
		return nil, err
	}

	record := &domain.Reimbursement{
		ID:         generateID("RMB"),
		ExpenseID:  expense.ID,
		ApproverID: input.ApproverID,
		Amount:     amount,
		Note:       input.Note,
		CreatedAt:  now,
	}
	if err := s.expenses.InsertReimbursement(ctx, record); err != nil {
		s.logger.Warn().Err(err).Str("expense_id", expense.ID).Msg("failed to insert reimbursement record")
	}

	s.notifyOwner(ctx, expense, domain.ExpenseReimbursed)

	s.logger.Info().Str("expense_id", expense.ID).Float64("amount", amount).
		Int64("approver_id", input.ApproverID).Msg("expense reimbursed")

	return s.expenses.FindByID(ctx, expense.ID)
}
