package ports

import "context"

// Notification kinds.
const (
	NotifyResetCode       = "reset_code"
	NotifyPasswordChanged = "password_changed"
	NotifyExpenseReviewed = "expense_reviewed"
)

// Notification is an outbound message queued for delivery.
type Notification struct {
	Recipient string // login of the addressee
	Kind      string
	Subject   string
	Body      string
}

// Notifier delivers a single notification.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

// NotificationQueue is the interface services use to enqueue outbound
// notifications without blocking on delivery.
type NotificationQueue interface {
	Enqueue(n Notification)
}
