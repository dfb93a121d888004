package handler

import "time"

type createTripRequest struct {
	Destination string    `json:"destination" validate:"required"`
	Purpose     string    `json:"purpose"`
	StartDate   time.Time `json:"start_date"  validate:"required"`
	EndDate     time.Time `json:"end_date"    validate:"required"`
}

type updateTripRequest struct {
	Destination string    `json:"destination" validate:"required"`
	Purpose     string    `json:"purpose"`
	StartDate   time.Time `json:"start_date"  validate:"required"`
	EndDate     time.Time `json:"end_date"    validate:"required"`
}

type tripLinks struct {
	Self     string `json:"self"`
	Expenses string `json:"expenses"`
}

// Response-only types owned by the transport layer, so the JSON contract is
// not coupled to internal service changes.

type tripResponse struct {
	TripID      string    `json:"trip_id"`
	UserID      int64     `json:"user_id"`
	Destination string    `json:"destination"`
	Purpose     string    `json:"purpose,omitempty"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	CreatedAt   time.Time `json:"created_at"`
	Links       tripLinks `json:"_links"`
}

type listTripsResponse struct {
	Data []tripResponse `json:"data"`
}
