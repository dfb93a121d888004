package ports

import (
	"context"
	"time"

	"github.com/viatero/expense-system/internal/core/domain"
)

// ListExpensesFilter carries query parameters for listing a trip's expenses.
type ListExpensesFilter struct {
	TripID string
	Status string // optional: filter by approval status
}

// TripTotals holds amount rollups for one trip.
type TripTotals struct {
	ByCategory map[string]float64
	ByStatus   map[string]float64
}

// ExpenseRepository defines persistence operations for expenses and their
// reimbursement audit records.
type ExpenseRepository interface {
	Create(ctx context.Context, e *domain.Expense) error
	FindByID(ctx context.Context, expenseID string) (*domain.Expense, error)
	List(ctx context.Context, filter ListExpensesFilter) ([]*domain.Expense, error)
	// UpdateStatus atomically moves the expense from to the new status and
	// appends a review entry. The filter on the current status makes
	// concurrent reviews lose cleanly: zero matched documents surfaces as
	// domain.ErrInvalidReview.
	UpdateStatus(ctx context.Context, expenseID string, from, to domain.ExpenseStatus, reviewerID int64, ts time.Time, note string) error
	// Totals aggregates amounts by category and by approval status.
	Totals(ctx context.Context, tripID string) (*TripTotals, error)
	InsertReimbursement(ctx context.Context, r *domain.Reimbursement) error
	// DeleteByTrip removes every expense attached to the trip and reports
	// how many documents went away.
	DeleteByTrip(ctx context.Context, tripID string) (int64, error)
}
