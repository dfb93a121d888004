package ports

import (
	"context"
	"time"

	"github.com/viatero/expense-system/internal/core/domain"
)

// AddExpenseInput carries all data needed to attach an expense to a trip.
type AddExpenseInput struct {
	TripID      string
	UserID      int64
	Role        string
	Category    string
	Amount      float64
	Currency    string
	Description string
	IncurredAt  time.Time
}

// ListExpensesInput carries the caller identity plus the optional status
// filter.
type ListExpensesInput struct {
	TripID string
	UserID int64
	Role   string
	Status string
}

// ReviewInput carries an approval decision on a pending expense.
type ReviewInput struct {
	ExpenseID  string
	ReviewerID int64
	Approve    bool
	Note       string
}

// ReimburseInput records a payout for an approved expense. Amount of zero
// means the full expense amount.
type ReimburseInput struct {
	ExpenseID  string
	ApproverID int64
	Amount     float64
	Note       string
}

// ExpenseService defines use-case operations for expenses.
type ExpenseService interface {
	AddExpense(ctx context.Context, input AddExpenseInput) (*domain.Expense, error)
	ListExpenses(ctx context.Context, input ListExpensesInput) ([]*domain.Expense, error)
	TripSummary(ctx context.Context, input GetTripInput) (*TripTotals, error)
	Review(ctx context.Context, input ReviewInput) (*domain.Expense, error)
	Reimburse(ctx context.Context, input ReimburseInput) (*domain.Expense, error)
}
