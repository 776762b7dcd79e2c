package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"twin-llm/internal/service"
)

// AvatarHandler mantiene dependencias para endpoints de avatares.
type AvatarHandler struct {
	logger     *zap.Logger
	avatarServ *service.AvatarService
	inviteServ *service.InviteService
}

func NewAvatarHandler(logger *zap.Logger, avatarServ *service.AvatarService, inviteServ *service.InviteService) *AvatarHandler {
	return &AvatarHandler{
		logger:     logger,
		avatarServ: avatarServ,
		inviteServ: inviteServ,
	}
}

// List maneja GET /avatars.
func (h *AvatarHandler) List(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	avatars, err := h.avatarServ.List(c.Request.Context(), claims.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"avatars": avatars})
}

// Get maneja GET /avatars/:id.
func (h *AvatarHandler) Get(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	avatar, err := h.avatarServ.Get(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"avatar": avatar})
}

// Update maneja PUT /avatars/:id.
func (h *AvatarHandler) Update(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req service.ProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid avatar update request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	avatar, err := h.avatarServ.Update(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"avatar": avatar})
}

// Invite maneja POST /avatars/:id/invite.
func (h *AvatarHandler) Invite(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid invite request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	code, err := h.inviteServ.Invite(c.Request.Context(), claims.UserID, c.Param("id"), req.Email)
	if err != nil {
		if errors.Is(err, service.ErrEmailSendFailure) {
			// El codigo existe aunque el correo no haya salido.
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error": "email delivery unavailable",
				"code":  code.Code,
			})
			return
		}
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"code": code.Code, "status": "invite_sent"})
}
