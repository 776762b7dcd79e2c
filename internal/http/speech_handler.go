package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"twin-llm/internal/service"
)

// SpeechHandler mantiene dependencias para el Speech Relay.
type SpeechHandler struct {
	logger     *zap.Logger
	speechServ *service.SpeechService
}

func NewSpeechHandler(logger *zap.Logger, speechServ *service.SpeechService) *SpeechHandler {
	return &SpeechHandler{
		logger:     logger,
		speechServ: speechServ,
	}
}

// Synthesize maneja POST /speech.
func (h *SpeechHandler) Synthesize(c *gin.Context) {
	var req struct {
		Text    string                `json:"text"`
		Profile service.SpeechProfile `json:"avatar_profile"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid speech request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	audio, err := h.speechServ.Synthesize(c.Request.Context(), req.Text, req.Profile)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"audio_data": audio, "format": "mp3"})
}
