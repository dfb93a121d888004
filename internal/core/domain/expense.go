package domain

import (
	"errors"
	"time"
)

// ExpenseStatus represents the approval state of an expense.
type ExpenseStatus string

const (
	ExpensePending    ExpenseStatus = "pending"
	ExpenseApproved   ExpenseStatus = "approved"
	ExpenseRejected   ExpenseStatus = "rejected"
	ExpenseReimbursed ExpenseStatus = "reimbursed"
)

// Expense categories.
const (
	CategoryTransport = "transport"
	CategoryLodging   = "lodging"
	CategoryMeals     = "meals"
	CategoryOther     = "other"
)

// validReviews defines the allowed approval transitions. Rejected and
// reimbursed are terminal.
var validReviews = map[ExpenseStatus][]ExpenseStatus{
	ExpensePending:  {ExpenseApproved, ExpenseRejected},
	ExpenseApproved: {ExpenseReimbursed},
}

var ErrExpenseNotFound = errors.New("expense not found")
var ErrInvalidReview = errors.New("invalid review transition")

// CanTransitionTo reports whether a review can move an expense from its
// current status to next.
func (s ExpenseStatus) CanTransitionTo(next ExpenseStatus) bool {
	for _, allowed := range validReviews[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Known reports whether s is one of the defined approval states.
func (s ExpenseStatus) Known() bool {
	switch s {
	case ExpensePending, ExpenseApproved, ExpenseRejected, ExpenseReimbursed:
		return true
	}
	return false
}

// ValidCategory reports whether c is one of the known expense categories.
func ValidCategory(c string) bool {
	switch c {
	case CategoryTransport, CategoryLodging, CategoryMeals, CategoryOther:
		return true
	}
	return false
}

// ReviewEntry records a single status change on an expense.
type ReviewEntry struct {
	Status     ExpenseStatus `json:"status" bson:"status"`
	ReviewerID int64         `json:"reviewer_id" bson:"reviewer_id"`
	Timestamp  time.Time     `json:"timestamp" bson:"timestamp"`
	Note       string        `json:"note,omitempty" bson:"note,omitempty"`
}

// Expense is a single cost attached to a trip.
type Expense struct {
	ID            string        `json:"expense_id" bson:"_id"`
	TripID        string        `json:"trip_id" bson:"trip_id"`
	UserID        int64         `json:"user_id" bson:"user_id"`
	Category      string        `json:"category" bson:"category"`
	Amount        float64       `json:"amount" bson:"amount"`
	Currency      string        `json:"currency" bson:"currency"`
	Description   string        `json:"description,omitempty" bson:"description,omitempty"`
	IncurredAt    time.Time     `json:"incurred_at" bson:"incurred_at"`
	Status        ExpenseStatus `json:"status" bson:"status"`
	ReviewerID    int64         `json:"reviewer_id,omitempty" bson:"reviewer_id,omitempty"`
	ReviewedAt    time.Time     `json:"reviewed_at,omitempty" bson:"reviewed_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at" bson:"created_at"`
	ReviewHistory []ReviewEntry `json:"review_history" bson:"review_history"`
}

// Reimbursement is the audit record written when an approved expense is paid
// out.
type Reimbursement struct {
	ID         string    `json:"reimbursement_id" bson:"_id"`
	ExpenseID  string    `json:"expense_id" bson:"expense_id"`
	ApproverID int64     `json:"approver_id" bson:"approver_id"`
	Amount     float64   `json:"amount" bson:"amount"`
	Note       string    `json:"note,omitempty" bson:"note,omitempty"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}
