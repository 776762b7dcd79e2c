package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"twin-llm/internal/service"
)

// PortraitHandler mantiene dependencias para el Portrait Relay.
type PortraitHandler struct {
	logger       *zap.Logger
	portraitServ *service.PortraitService
}

func NewPortraitHandler(logger *zap.Logger, portraitServ *service.PortraitService) *PortraitHandler {
	return &PortraitHandler{
		logger:       logger,
		portraitServ: portraitServ,
	}
}

// Generate maneja POST /portrait.
func (h *PortraitHandler) Generate(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		Photos   []string `json:"photos"`
		AvatarID string   `json:"avatar_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid portrait request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	imageURL, err := h.portraitServ.Generate(c.Request.Context(), claims.UserID, req.Photos, req.AvatarID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"image_url": imageURL})
}
