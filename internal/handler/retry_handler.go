package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"paylog/internal/errors"
	"paylog/internal/model"
	"paylog/internal/service"
)

// RetryHandler handles operator retry endpoints.
type RetryHandler struct {
	retryService service.RetryService
}

// NewRetryHandler creates a new retry handler.
func NewRetryHandler(retryService service.RetryService) *RetryHandler {
	return &RetryHandler{retryService: retryService}
}

// ResyncRequest represents an operator-triggered replay of one record.
type ResyncRequest struct {
	HandlerRef     string `json:"handler_ref" validate:"required"`
	RequestPayload string `json:"request_payload,omitempty"`
}

// BulkRetryRequest represents a bulk replay of failed records.
type BulkRetryRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,uuid"`
}

// BulkRetryResponse wraps per-id outcomes.
type BulkRetryResponse struct {
	Results []service.RetryResult `json:"results"`
}

// Resync godoc
// @Summary Replay a failed gateway interaction
// @Tags logs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Integration log ID"
// @Param request body ResyncRequest true "Handler and payload cross-check"
// @Success 204
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /logs/{id}/resync [post]
func (h *RetryHandler) Resync(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid log id",
			Code:  "INVALID_UUID",
		})
	}

	var req ResyncRequest
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

	if err := h.retryService.Resync(c.Request().Context(), req.HandlerRef, id, req.RequestPayload); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.NoContent(http.StatusNoContent)
}

// BulkRetry godoc
// @Summary Replay multiple failed gateway interactions
// @Tags logs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body BulkRetryRequest true "Integration log IDs"
// @Success 200 {object} BulkRetryResponse
// @Failure 400 {object} errors.ErrorResponse
// @Router /logs/bulk-retry [post]
func (h *RetryHandler) BulkRetry(c echo.Context) error {
	var req BulkRetryRequest
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

	ids := make([]uuid.UUID, 0, len(req.IDs))
	for _, raw := range req.IDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
				Error: "invalid log id: " + raw,
				Code:  "INVALID_UUID",
			})
		}
		ids = append(ids, id)
	}

	results := h.retryService.BulkRetry(c.Request().Context(), ids)
	return c.JSON(http.StatusOK, BulkRetryResponse{Results: results})
}

// ListLogs godoc
// @Summary List integration logs by status
// @Tags logs
// @Produce json
// @Security BearerAuth
// @Param status query string true "Log status" Enums(queued, success, error)
// @Success 200 {array} model.IntegrationLog
// @Failure 400 {object} errors.ErrorResponse
// @Router /logs [get]
func (h *RetryHandler) ListLogs(c echo.Context) error {
	status := model.LogStatus(c.QueryParam("status"))
	switch status {
	case model.LogStatusQueued, model.LogStatusSuccess, model.LogStatusError:
	default:
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid status filter",
			Code:  "INVALID_STATUS",
		})
	}

	logs, err := h.retryService.ListByStatus(c.Request().Context(), status)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, logs)
}
