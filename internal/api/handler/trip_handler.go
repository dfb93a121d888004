package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/viatero/expense-system/internal/core/domain"
	"github.com/viatero/expense-system/internal/core/ports"
)

// TripHandler handles HTTP requests for trip operations.
type TripHandler struct {
	service ports.TripService
}

func NewTripHandler(service ports.TripService) *TripHandler {
	return &TripHandler{service: service}
}

func toTripResponse(t *domain.Trip) tripResponse {
	return tripResponse{
		TripID:      t.ID,
		UserID:      t.UserID,
		Destination: t.Destination,
		Purpose:     t.Purpose,
		StartDate:   t.StartDate,
		EndDate:     t.EndDate,
		CreatedAt:   t.CreatedAt,
		Links: tripLinks{
			Self:     "/v1/trips/" + t.ID,
			Expenses: "/v1/trips/" + t.ID + "/expenses",
		},
	}
}

// Create handles POST /v1/trips.
//
// @Summary      Create a trip
// @Tags         trips
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTripRequest  true  "Trip details"
// @Success      201   {object}  tripResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/trips [post]
func (h *TripHandler) Create(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req createTripRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	trip, err := h.service.CreateTrip(c.Request().Context(), ports.CreateTripInput{
		UserID:      user.ID,
		Destination: req.Destination,
		Purpose:     req.Purpose,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toTripResponse(trip))
}

// Get handles GET /v1/trips/:id. Owners and managers only.
//
// @Summary      Get a trip
// @Tags         trips
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Trip ID (e.g. TRP-7A8B9C2D)"
// @Success      200 {object}  tripResponse
// @Failure      401 {object}  errorResponse
// @Failure      403 {object}  errorResponse
// @Failure      404 {object}  errorResponse
// @Router       /v1/trips/{id} [get]
func (h *TripHandler) Get(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	trip, err := h.service.GetTrip(c.Request().Context(), ports.GetTripInput{
		TripID: c.Param("id"),
		Role:   user.Role,
		UserID: user.ID,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toTripResponse(trip))
}

// Update handles PUT /v1/trips/:id. Owners and managers only.
//
// @Summary      Update a trip
// @Tags         trips
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Trip ID"
// @Param        body  body      updateTripRequest  true  "Replacement trip details"
// @Success      200   {object}  tripResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/trips/{id} [put]
func (h *TripHandler) Update(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req updateTripRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	trip, err := h.service.UpdateTrip(c.Request().Context(), ports.UpdateTripInput{
		TripID:      c.Param("id"),
		Role:        user.Role,
		UserID:      user.ID,
		Destination: req.Destination,
		Purpose:     req.Purpose,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toTripResponse(trip))
}

// Delete handles DELETE /v1/trips/:id. Owners and managers only. The trip's
// expenses go with it.
//
// @Summary      Delete a trip
// @Tags         trips
// @Security     BearerAuth
// @Param        id  path  string  true  "Trip ID"
// @Success      204
// @Failure      401 {object}  errorResponse
// @Failure      403 {object}  errorResponse
// @Failure      404 {object}  errorResponse
// @Router       /v1/trips/{id} [delete]
func (h *TripHandler) Delete(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	err = h.service.DeleteTrip(c.Request().Context(), ports.GetTripInput{
		TripID: c.Param("id"),
		Role:   user.Role,
		UserID: user.ID,
	})
	if err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// List handles GET /v1/trips. Employees see their own trips; managers see all.
//
// @Summary      List trips
// @Tags         trips
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object}  listTripsResponse
// @Failure      401 {object}  errorResponse
// @Router       /v1/trips [get]
func (h *TripHandler) List(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	trips, err := h.service.ListTrips(c.Request().Context(), ports.ListTripsInput{
		Role:   user.Role,
		UserID: user.ID,
	})
	if err != nil {
		return err
	}

	data := make([]tripResponse, 0, len(trips))
	for _, t := range trips {
		data = append(data, toTripResponse(t))
	}
	return c.JSON(http.StatusOK, listTripsResponse{Data: data})
}
