package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"paylog/internal/errors"
	"paylog/internal/model"
	"paylog/internal/service"
)

// SessionHandler handles checkout session endpoints.
type SessionHandler struct {
	sessionService  service.SessionService
	responseService service.ResponseService
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(sessionService service.SessionService, responseService service.ResponseService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService, responseService: responseService}
}

// CreateSessionRequest represents a checkout session start.
type CreateSessionRequest struct {
	ReferenceDoctype string `json:"reference_doctype" validate:"required"`
	ReferenceID      string `json:"reference_id" validate:"required"`
}

// SelectButtonRequest represents a payment option choice.
type SelectButtonRequest struct {
	Button string `json:"button" validate:"required"`
}

// SelectButtonResponse tells the caller whether to reload the page.
type SelectButtonResponse struct {
	Reload bool `json:"reload"`
}

// InitiatePaymentRequest represents the transaction data captured when
// a payment attempt is opened.
type InitiatePaymentRequest struct {
	Amount   string `json:"amount" validate:"required"`
	Currency string `json:"currency" validate:"required,len=3"`
}

// CreateSession godoc
// @Summary Start a checkout session for a business entity
// @Tags sessions
// @Accept json
// @Produce json
// @Param request body CreateSessionRequest true "Entity reference"
// @Success 201 {object} model.SessionLog
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /sessions [post]
func (h *SessionHandler) CreateSession(c echo.Context) error {
	var req CreateSessionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}

	session, err := h.sessionService.CreateSession(c.Request().Context(), req.ReferenceDoctype, req.ReferenceID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusCreated, session)
}

// GetSession godoc
// @Summary Read a checkout session's current state
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} model.SessionLog
// @Failure 404 {object} errors.ErrorResponse
// @Router /sessions/{id} [get]
func (h *SessionHandler) GetSession(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid session id",
			Code:  "INVALID_UUID",
		})
	}
	session, err := h.sessionService.GetSession(c.Request().Context(), id)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, session)
}

// SelectButton godoc
// @Summary Record the chosen payment option for a session
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body SelectButtonRequest true "Button choice"
// @Success 200 {object} SelectButtonResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /sessions/{id}/select-button [post]
func (h *SessionHandler) SelectButton(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid session id",
			Code:  "INVALID_UUID",
		})
	}

	var req SelectButtonRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}

	reload, err := h.sessionService.SelectButton(c.Request().Context(), id, req.Button)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, SelectButtonResponse{Reload: reload})
}

// InitiatePayment godoc
// @Summary Open a gateway payment attempt for a session
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body InitiatePaymentRequest true "Transaction data"
// @Success 201 {object} service.InitiateResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /sessions/{id}/initiate [post]
func (h *SessionHandler) InitiatePayment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid session id",
			Code:  "INVALID_UUID",
		})
	}

	var req InitiatePaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || amount.LessThanOrEqual(decimal.Zero) {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid amount",
			Code:  "INVALID_AMOUNT",
		})
	}

	session, err := h.sessionService.GetSession(c.Request().Context(), id)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	result, err := h.responseService.InitiatePayment(c.Request().Context(), id, model.TxData{
		Amount:           amount,
		Currency:         req.Currency,
		ReferenceDoctype: session.ReferenceDoctype,
		ReferenceID:      session.ReferenceID,
	})
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusCreated, result)
}
