package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"twin-llm/internal/domain"
	"twin-llm/internal/service"
)

// respondError mapea la taxonomia de errores del servicio a status HTTP.
// El detalle del error interno nunca viaja al cliente; solo al log.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var fieldErr *service.FieldError
	if errors.As(err, &fieldErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fieldErr.Reason.Error(),
			"field": fieldErr.Field,
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrMissingField), errors.Is(err, service.ErrInvalidFormat):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrLimitExceeded):
		c.JSON(http.StatusConflict, gin.H{"error": "limit exceeded"})
	case errors.Is(err, service.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
	case errors.Is(err, service.ErrUploadProcessing):
		c.JSON(http.StatusConflict, gin.H{"error": "upload still processing"})
	case errors.Is(err, service.ErrOnboardingReset):
		// La maquina volvio forzada al inicio; el cliente re-renderiza.
		c.JSON(http.StatusConflict, gin.H{
			"error": "onboarding reset",
			"state": domain.StateTypeSelect,
		})
	case errors.Is(err, service.ErrUpstreamTimeout):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "upstream timeout"})
	case errors.Is(err, service.ErrUpstreamFailure):
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream failure"})
	default:
		if logger != nil {
			logger.Error("request failed", zap.Error(err))
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
