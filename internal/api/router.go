package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/viatero/expense-system/internal/api/handler"
	"github.com/viatero/expense-system/internal/api/middleware"
	"github.com/viatero/expense-system/internal/core/ports"
)

// RouterConfig bundles everything NewRouter needs to assemble the HTTP layer.
type RouterConfig struct {
	AuthService    ports.AuthService
	ResetService   ports.ResetService
	TripService    ports.TripService
	ExpenseService ports.ExpenseService

	Mongo *mongo.Database
	Redis *redis.Client
	Log   zerolog.Logger

	SecureCookies   bool
	ExposeResetCode bool
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(cfg.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("expense"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(cfg.AuthService, cfg.ResetService, cfg.SecureCookies, cfg.ExposeResetCode)
	tripHandler := handler.NewTripHandler(cfg.TripService)
	expenseHandler := handler.NewExpenseHandler(cfg.ExpenseService)

	authRequired := middleware.Auth(cfg.AuthService)
	managerOnly := middleware.RequireManager()

	// --- Auth routes ---
	e.POST("/auth/signup", authHandler.SignUp)
	e.POST("/auth/signin", authHandler.SignIn)
	e.POST("/auth/signout", authHandler.SignOut)
	e.GET("/auth/me", authHandler.Me, authRequired)
	e.PUT("/auth/me", authHandler.UpdateProfile, authRequired)

	// --- Password recovery ---
	e.POST("/auth/reset/request", authHandler.RequestReset)
	e.POST("/auth/reset/verify", authHandler.VerifyReset)
	e.POST("/auth/reset/confirm", authHandler.ConfirmReset)

	// --- User administration (manager only) ---
	users := e.Group("/v1/users", authRequired, managerOnly)
	users.GET("", authHandler.ListUsers)
	users.PUT("/:id/role", authHandler.UpdateRole)

	// --- Trips ---
	trips := e.Group("/v1/trips", authRequired)
	trips.POST("", tripHandler.Create)
	trips.GET("", tripHandler.List)
	trips.GET("/:id", tripHandler.Get)
	trips.PUT("/:id", tripHandler.Update)
	trips.DELETE("/:id", tripHandler.Delete)
	trips.POST("/:id/expenses", expenseHandler.Add)
	trips.GET("/:id/expenses", expenseHandler.List)
	trips.GET("/:id/expenses/summary", expenseHandler.Summary)

	// --- Expense review (manager only) ---
	expenses := e.Group("/v1/expenses", authRequired, managerOnly)
	expenses.POST("/:id/approve", expenseHandler.Approve)
	expenses.POST("/:id/reject", expenseHandler.Reject)
	expenses.POST("/:id/reimburse", expenseHandler.Reimburse)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(cfg.Mongo, cfg.Redis)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
