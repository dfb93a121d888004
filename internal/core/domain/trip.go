package domain

import (
	"errors"
	"time"
)

var ErrTripNotFound = errors.New("trip not found")

// Trip is a business trip expenses are attached to.
type Trip struct {
	ID          string    `json:"trip_id" bson:"_id"`
	UserID      int64     `json:"user_id" bson:"user_id"`
	Destination string    `json:"destination" bson:"destination"`
	Purpose     string    `json:"purpose,omitempty" bson:"purpose,omitempty"`
	StartDate   time.Time `json:"start_date" bson:"start_date"`
	EndDate     time.Time `json:"end_date" bson:"end_date"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}
