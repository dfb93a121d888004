package handler

import (
	"time"

	"github.com/viatero/expense-system/internal/core/domain"
)

// toExpenseResponse maps a domain expense to its transport representation.
func toExpenseResponse(e *domain.Expense) expenseResponse {
	history := make([]reviewEntryResponse, 0, len(e.ReviewHistory))
	for _, entry := range e.ReviewHistory {
		history = append(history, reviewEntryResponse{
			Status:     string(entry.Status),
			ReviewerID: entry.ReviewerID,
			Timestamp:  entry.Timestamp,
			Note:       entry.Note,
		})
	}

	var reviewedAt *time.Time
	if !e.ReviewedAt.IsZero() {
		t := e.ReviewedAt
		reviewedAt = &t
	}

	return expenseResponse{
		ExpenseID:     e.ID,
		TripID:        e.TripID,
		UserID:        e.UserID,
		Category:      e.Category,
		Amount:        e.Amount,
		Currency:      e.Currency,
		Description:   e.Description,
		IncurredAt:    e.IncurredAt,
		Status:        string(e.Status),
		ReviewerID:    e.ReviewerID,
		ReviewedAt:    reviewedAt,
		CreatedAt:     e.CreatedAt,
		ReviewHistory: history,
	}
}
