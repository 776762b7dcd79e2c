package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"twin-llm/internal/service"
)

// ChatHandler mantiene dependencias para el Completion Relay.
type ChatHandler struct {
	logger   *zap.Logger
	chatServ *service.ChatService
}

// NewChatHandler crea una instancia de ChatHandler con dependencias necesarias.
func NewChatHandler(logger *zap.Logger, chatServ *service.ChatService) *ChatHandler {
	return &ChatHandler{
		logger:   logger,
		chatServ: chatServ,
	}
}

// Chat maneja POST /chat.
func (h *ChatHandler) Chat(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		Message        string               `json:"message"`
		AvatarID       string               `json:"avatar_id"`
		ConversationID string               `json:"conversation_id"`
		PastMessages   []service.PastTurn   `json:"past_messages"`
		Settings       service.ChatSettings `json:"settings"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid chat request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	result, err := h.chatServ.Chat(c.Request.Context(), service.ChatInput{
		UserID:         claims.UserID,
		Message:        req.Message,
		AvatarID:       req.AvatarID,
		ConversationID: req.ConversationID,
		PastMessages:   req.PastMessages,
		Settings:       req.Settings,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// History maneja GET /conversations/:id/messages.
func (h *ChatHandler) History(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	messages, err := h.chatServ.History(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}
