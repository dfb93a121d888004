package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/viatero/expense-system/internal/api/metrics"
	"github.com/viatero/expense-system/internal/core/ports"
)

// ExpenseHandler handles HTTP requests for expense operations.
type ExpenseHandler struct {
	service ports.ExpenseService
}

func NewExpenseHandler(service ports.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{service: service}
}

// Add handles POST /v1/trips/:id/expenses.
//
// @Summary      Attach an expense to a trip
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Trip ID"
// @Param        body  body      addExpenseRequest  true  "Expense details"
// @Success      201   {object}  expenseResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/trips/{id}/expenses [post]
func (h *ExpenseHandler) Add(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req addExpenseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	expense, err := h.service.AddExpense(c.Request().Context(), ports.AddExpenseInput{
		TripID:      c.Param("id"),
		UserID:      user.ID,
		Role:        user.Role,
		Category:    req.Category,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Description: req.Description,
		IncurredAt:  req.IncurredAt,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toExpenseResponse(expense))
}

// List handles GET /v1/trips/:id/expenses with an optional ?status= filter.
//
// @Summary      List a trip's expenses
// @Tags         expenses
// @Produce      json
// @Security     BearerAuth
// @Param        id      path      string  true   "Trip ID"
// @Param        status  query     string  false  "Filter by approval status"
// @Success      200     {object}  listExpensesResponse
// @Failure      400     {object}  errorResponse
// @Failure      401     {object}  errorResponse
// @Failure      403     {object}  errorResponse
// @Failure      404     {object}  errorResponse
// @Router       /v1/trips/{id}/expenses [get]
func (h *ExpenseHandler) List(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	expenses, err := h.service.ListExpenses(c.Request().Context(), ports.ListExpensesInput{
		TripID: c.Param("id"),
		UserID: user.ID,
		Role:   user.Role,
		Status: c.QueryParam("status"),
	})
	if err != nil {
		return err
	}

	data := make([]expenseResponse, 0, len(expenses))
	for _, e := range expenses {
		data = append(data, toExpenseResponse(e))
	}
	return c.JSON(http.StatusOK, listExpensesResponse{Data: data})
}

// Summary handles GET /v1/trips/:id/expenses/summary.
//
// @Summary      Trip expense totals by category and status
// @Tags         expenses
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Trip ID"
// @Success      200 {object}  tripSummaryResponse
// @Failure      401 {object}  errorResponse
// @Failure      403 {object}  errorResponse
// @Failure      404 {object}  errorResponse
// @Router       /v1/trips/{id}/expenses/summary [get]
func (h *ExpenseHandler) Summary(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	tripID := c.Param("id")
	totals, err := h.service.TripSummary(c.Request().Context(), ports.GetTripInput{
		TripID: tripID,
		Role:   user.Role,
		UserID: user.ID,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, tripSummaryResponse{
		TripID:     tripID,
		ByCategory: totals.ByCategory,
		ByStatus:   totals.ByStatus,
	})
}

// Approve handles POST /v1/expenses/:id/approve. Manager only.
//
// @Summary      Approve a pending expense
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true   "Expense ID"
// @Param        body  body      reviewExpenseRequest  false  "Optional note"
// @Success      200   {object}  expenseResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/expenses/{id}/approve [post]
func (h *ExpenseHandler) Approve(c echo.Context) error {
	return h.review(c, true)
}

// Reject handles POST /v1/expenses/:id/reject. Manager only.
//
// @Summary      Reject a pending expense
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true   "Expense ID"
// @Param        body  body      reviewExpenseRequest  false  "Optional note"
// @Success      200   {object}  expenseResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/expenses/{id}/reject [post]
func (h *ExpenseHandler) Reject(c echo.Context) error {
	return h.review(c, false)
}

func (h *ExpenseHandler) review(c echo.Context, approve bool) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req reviewExpenseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	expense, err := h.service.Review(c.Request().Context(), ports.ReviewInput{
		ExpenseID:  c.Param("id"),
		ReviewerID: user.ID,
		Approve:    approve,
		Note:       req.Note,
	})
	if err != nil {
		return err
	}

	metrics.ExpenseReviewsTotal.WithLabelValues(string(expense.Status)).Inc()
	return c.JSON(http.StatusOK, toExpenseResponse(expense))
}

// Reimburse handles POST /v1/expenses/:id/reimburse. Manager only.
//
// @Summary      Pay out an approved expense
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                   true   "Expense ID"
// @Param        body  body      reimburseExpenseRequest  false  "Payout details"
// @Success      200   {object}  expenseResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/expenses/{id}/reimburse [post]
func (h *ExpenseHandler) Reimburse(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req reimburseExpenseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	expense, err := h.service.Reimburse(c.Request().Context(), ports.ReimburseInput{
		ExpenseID:  c.Param("id"),
		ApproverID: user.ID,
		Amount:     req.Amount,
		Note:       req.Note,
	})
	if err != nil {
		return err
	}

	metrics.ExpenseReviewsTotal.WithLabelValues(string(expense.Status)).Inc()
	return c.JSON(http.StatusOK, toExpenseResponse(expense))
}
