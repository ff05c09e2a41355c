package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"paylog/internal/config"
	"paylog/internal/handler"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	responseHandler *handler.ResponseHandler,
	sessionHandler *handler.SessionHandler,
	retryHandler *handler.RetryHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Client-facing routes: driven by the checkout UI and gateway
	// redirects, so no bearer token is available here.
	api.POST("/payments/response", responseHandler.ProcessResponse)
	api.POST("/sessions", sessionHandler.CreateSession)
	api.GET("/sessions/:id", sessionHandler.GetSession)
	api.POST("/sessions/:id/select-button", sessionHandler.SelectButton)
	api.POST("/sessions/:id/initiate", sessionHandler.InitiatePayment)

	// Operator routes (require JWT authentication)
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(cfg.JWTSecret),
		TokenLookup: "header:" + echo.HeaderAuthorization,
	}))

	secured.GET("/logs", retryHandler.ListLogs)
	secured.POST("/logs/:id/resync", retryHandler.Resync)
	secured.POST("/logs/bulk-retry", retryHandler.BulkRetry)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
