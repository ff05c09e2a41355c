package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"paylog/internal/errors"
	"paylog/internal/service"
)

// ResponseHandler handles gateway response endpoints.
type ResponseHandler struct {
	responseService service.ResponseService
}

// NewResponseHandler creates a new response handler.
func NewResponseHandler(responseService service.ResponseService) *ResponseHandler {
	return &ResponseHandler{responseService: responseService}
}

// ProcessResponseRequest represents a gateway client-answer delivery.
// Exactly one of session_id and log_id references the pending record.
type ProcessResponseRequest struct {
	SessionID string          `json:"session_id,omitempty"`
	LogID     string          `json:"log_id,omitempty"`
	Data      json.RawMessage `json:"data" validate:"required"`
	Hash      string          `json:"hash" validate:"required"`
}

// ProcessResponse godoc
// @Summary Process a gateway response and compute the client redirect
// @Tags responses
// @Accept json
// @Produce json
// @Param request body ProcessResponseRequest true "Signed gateway answer"
// @Success 200 {object} service.ProcessResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /payments/response [post]
func (h *ResponseHandler) ProcessResponse(c echo.Context) error {
	var req ProcessResponseRequest
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

	ref, err := parseReference(req.SessionID, req.LogID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	result, err := h.responseService.ProcessResponse(
		c.Request().Context(),
		ref,
		service.ResponsePayload{Data: req.Data, Hash: req.Hash},
	)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, result)
}

// parseReference validates that exactly one token field is present and
// well formed.
func parseReference(sessionID, logID string) (service.Reference, error) {
	if (sessionID == "") == (logID == "") {
		return service.Reference{}, errors.ErrAmbiguousReference
	}
	if sessionID != "" {
		id, err := uuid.Parse(sessionID)
		if err != nil {
			return service.Reference{}, errors.ErrAmbiguousReference
		}
		return service.Reference{SessionID: &id}, nil
	}
	id, err := uuid.Parse(logID)
	if err != nil {
		return service.Reference{}, errors.ErrAmbiguousReference
	}
	return service.Reference{LogID: &id}, nil
}
