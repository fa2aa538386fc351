package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/shoptrack/backend/internal/domain/tracking"
	"github.com/shoptrack/backend/internal/infrastructure/httpclient"
	"github.com/shoptrack/backend/internal/interfaces/http/dto"
	"github.com/shoptrack/backend/internal/interfaces/http/middleware"
)

// OrderStatusService resolves an order query to its reconciled status.
type OrderStatusService interface {
	Lookup(ctx context.Context, query tracking.OrderQuery) (*tracking.Result, error)
}

// OrderStatusHandler handles the customer-facing order status lookup.
type OrderStatusHandler struct {
	BaseHandler
	service OrderStatusService
	logger  *zap.Logger
}

// NewOrderStatusHandler creates a new OrderStatusHandler
func NewOrderStatusHandler(service OrderStatusService, logger *zap.Logger) *OrderStatusHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderStatusHandler{
		service: service,
		logger:  logger,
	}
}

// Lookup handles POST /api/v1/order-status.
//
// Error responses never reveal which of the two fields failed to match, and
// upstream failure detail stays in the server logs.
func (h *OrderStatusHandler) Lookup(c *gin.Context) {
	var req dto.OrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			middleware.HandleValidationError(c, err)
			return
		}
		h.ErrorWithCode(c, dto.ErrCodeInvalidJSON, "Request body must be valid JSON")
		return
	}

	query := tracking.NewOrderQuery(req.OrderNumber, req.Email)
	result, err := h.service.Lookup(c.Request.Context(), query)
	if err != nil {
		h.handleLookupError(c, query, err)
		return
	}

	h.Success(c, dto.NewOrderStatusResponse(result))
}

func (h *OrderStatusHandler) handleLookupError(c *gin.Context, query tracking.OrderQuery, err error) {
	switch {
	case errors.Is(err, tracking.ErrInvalidQuery):
		h.ErrorWithCode(c, dto.ErrCodeValidation, "Order number or email is invalid")

	case errors.Is(err, tracking.ErrOrderNotFound):
		h.NotFound(c, "No order found, please check your order number and email")

	case errors.Is(err, tracking.ErrNotConfigured):
		h.logger.Error("order lookup rejected: fulfillment platform not configured")
		h.ErrorWithCode(c, dto.ErrCodeConfiguration, "Order lookup is temporarily unavailable")

	case isUpstreamError(err):
		h.logger.Error("order lookup failed upstream",
			zap.String("order_number", query.OrderNumber),
			zap.Error(err),
		)
		h.ErrorWithCode(c, dto.ErrCodeUpstreamUnavailable, "Order lookup is temporarily unavailable, please try again")

	default:
		h.logger.Error("order lookup failed",
			zap.String("order_number", query.OrderNumber),
			zap.Error(err),
		)
		h.InternalError(c, "An unexpected error occurred")
	}
}

// isUpstreamError reports whether the error came from a fulfillment platform
// call rather than from this service.
func isUpstreamError(err error) bool {
	var upstreamErr *httpclient.UpstreamError
	return errors.Is(err, httpclient.ErrTimeout) ||
		errors.Is(err, httpclient.ErrAuthFailed) ||
		errors.Is(err, httpclient.ErrInvalidResponse) ||
		errors.As(err, &upstreamErr)
}
