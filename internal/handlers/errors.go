package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"storefront-service/internal/dto"
	"storefront-service/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondServiceError переводит доменные ошибки в HTTP-ответ.
// Неопознанные ошибки логируются целиком, наружу уходит общий ответ.
func respondServiceError(c *gin.Context, log *zap.Logger, err error) {
	var (
		notFound      *service.ProductNotFoundError
		noStock       *service.InsufficientStockError
		badTransition *service.InvalidTransitionError
	)

	switch {
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, dto.NewUnauthorizedError("authentication required"))
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, dto.NewUnauthorizedError("invalid email or password"))
	case errors.Is(err, service.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, dto.NewRateLimitedError("too many login attempts, try again later"))
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, dto.NewForbiddenError("not allowed"))
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, dto.NewNotFoundError("user not found"))
	case errors.Is(err, service.ErrCategoryNotFound):
		c.JSON(http.StatusNotFound, dto.NewNotFoundError("category not found"))
	case errors.Is(err, service.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, dto.NewNotFoundError("order not found"))
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, dto.NewNotFoundError(notFound.Error()))
	case errors.As(err, &noStock):
		c.JSON(http.StatusBadRequest, dto.NewInsufficientStockError(
			fmt.Sprintf("insufficient stock for %q", noStock.ProductName),
			fmt.Sprintf("available: %d, requested: %d", noStock.Available, noStock.Requested),
		))
	case errors.As(err, &badTransition):
		c.JSON(http.StatusBadRequest, dto.NewInvalidStateError(badTransition.Error()))
	case errors.Is(err, service.ErrCancelViaUpdate):
		c.JSON(http.StatusBadRequest, dto.NewInvalidStateError(err.Error()))
	case errors.Is(err, service.ErrEmptyOrder):
		c.JSON(http.StatusBadRequest, dto.NewEmptyOrderError(err.Error()))
	case errors.Is(err, service.ErrQuantityInvalid),
		errors.Is(err, service.ErrPriceInvalid),
		errors.Is(err, service.ErrStockInvalid):
		c.JSON(http.StatusBadRequest, dto.NewValidationError(err.Error(), nil))
	case errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, service.ErrCategoryExists):
		c.JSON(http.StatusConflict, dto.NewConflictError(err.Error()))
	case errors.Is(err, service.ErrProductReferenced):
		c.JSON(http.StatusConflict, dto.NewConflictError(err.Error()))
	default:
		log.Error("unexpected service error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
	}
}
