package handler

import "time"

type addExpenseRequest struct {
	Category    string    `json:"category"    validate:"required,oneof=transport lodging meals other"`
	Amount      float64   `json:"amount"      validate:"required,gt=0"`
	Currency    string    `json:"currency"    validate:"required,len=3"`
	Description string    `json:"description"`
	IncurredAt  time.Time `json:"incurred_at" validate:"required"`
}

type reviewExpenseRequest struct {
	Note string `json:"note"`
}

type reimburseExpenseRequest struct {
	// Amount of zero pays out the full expense amount.
	Amount float64 `json:"amount" validate:"gte=0"`
	Note   string  `json:"note"`
}

type reviewEntryResponse struct {
	Status     string    `json:"status"`
	ReviewerID int64     `json:"reviewer_id"`
	Timestamp  time.Time `json:"timestamp"`
	Note       string    `json:"note,omitempty"`
}

type expenseResponse struct {
	ExpenseID     string                `json:"expense_id"`
	TripID        string                `json:"trip_id"`
	UserID        int64                 `json:"user_id"`
	Category      string                `json:"category"`
	Amount        float64               `json:"amount"`
	Currency      string                `json:"currency"`
	Description   string                `json:"description,omitempty"`
	IncurredAt    time.Time             `json:"incurred_at"`
	Status        string                `json:"status"`
	ReviewerID    int64                 `json:"reviewer_id,omitempty"`
	ReviewedAt    *time.Time            `json:"reviewed_at,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	ReviewHistory []reviewEntryResponse `json:"review_history"`
}

type listExpensesResponse struct {
	Data []expenseResponse `json:"data"`
}

type tripSummaryResponse struct {
	TripID     string             `json:"trip_id"`
	ByCategory map[string]float64 `json:"by_category"`
	ByStatus   map[string]float64 `json:"by_status"`
}
