package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"twin-llm/internal/domain"
	"twin-llm/internal/service"
)

// sessionHeader identifica la sesion del asistente de onboarding. El
// servidor la emite en /onboarding/start; el cliente la repite en cada
// paso siguiente.
const sessionHeader = "X-Onboarding-Session"

// OnboardingHandler mantiene dependencias para el asistente de onboarding.
type OnboardingHandler struct {
	logger         *zap.Logger
	onboardingServ *service.OnboardingService
}

func NewOnboardingHandler(logger *zap.Logger, onboardingServ *service.OnboardingService) *OnboardingHandler {
	return &OnboardingHandler{
		logger:         logger,
		onboardingServ: onboardingServ,
	}
}

// Start maneja POST /onboarding/start.
func (h *OnboardingHandler) Start(c *gin.Context) {
	sessionID, draft, err := h.onboardingServ.Start(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Header(sessionHeader, sessionID)
	c.JSON(http.StatusCreated, gin.H{"session_id": sessionID, "draft": draft})
}

// SelectType maneja POST /onboarding/type.
func (h *OnboardingHandler) SelectType(c *gin.Context) {
	sessionID, ok := h.session(c)
	if !ok {
		return
	}

	var req struct {
		AvatarType string `json:"avatar_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid type select request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	draft, err := h.onboardingServ.SelectType(c.Request.Context(), sessionID, req.AvatarType)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"draft": draft})
}

// RedeemContribution maneja POST /onboarding/contribution.
func (h *OnboardingHandler) RedeemContribution(c *gin.Context) {
	sessionID, ok := h.session(c)
	if !ok {
		return
	}

	var req struct {
		Code string `json:"code"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid contribution request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	draft, err := h.onboardingServ.RedeemContribution(c.Request.Context(), sessionID, req.Code)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"draft": draft})
}

// Draft maneja GET /onboarding/draft.
func (h *OnboardingHandler) Draft(c *gin.Context) {
	sessionID, ok := h.session(c)
	if !ok {
		return
	}

	draft, err := h.onboardingServ.Draft(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"draft": draft})
}

// SubmitProfile maneja POST /onboarding/profile.
func (h *OnboardingHandler) SubmitProfile(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}
	sessionID, ok := h.session(c)
	if !ok {
		return
	}

	var req struct {
		service.ProfileInput
		EditAvatarID string `json:"edit_avatar_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid profile request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	editID := req.EditAvatarID
	if editID == "" {
		editID = c.Query("edit")
	}

	draft, avatar, err := h.onboardingServ.SubmitProfile(c.Request.Context(), sessionID, claims.UserID, req.ProfileInput, editID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"draft": draft, "avatar": avatar})
}

// CommitTrait maneja PUT /onboarding/personality/:trait.
func (h *OnboardingHandler) CommitTrait(c *gin.Context) {
	sessionID, ok := h.session(c)
	if !ok {
		return
	}

	var req struct {
		Value float64 `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid trait request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	draft, err := h.onboardingServ.CommitTrait(c.Request.Context(), sessionID, c.Param("trait"), req.Value)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"draft": draft})
}

// SubmitPersonality maneja POST /onboarding/personality.
func (h *OnboardingHandler) SubmitPersonality(c *gin.Context) {
	sessionID, ok := h.session(c)
	if !ok {
		return
	}

	var req struct {
		Traits domain.Personality `json:"traits"`
		Skip   bool               `json:"skip"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid personality request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	draft, err := h.onboardingServ.SubmitPersonality(c.Request.Context(), sessionID, req.Traits, req.Skip)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"draft": draft})
}

// Catalog maneja GET /onboarding/upload/catalog.
func (h *OnboardingHandler) Catalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.onboardingServ.Catalog()})
}

// AcknowledgeUpload maneja POST /onboarding/upload/:category.
func (h *OnboardingHandler) AcknowledgeUpload(c *gin.Context) {
	sessionID, ok := h.session(c)
	if !ok {
		return
	}

	category, err := h.onboardingServ.AcknowledgeUpload(c.Request.Context(), sessionID, c.Param("category"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category, "status": "connected"})
}

// UploadProgress maneja GET /onboarding/upload/progress.
func (h *OnboardingHandler) UploadProgress(c *gin.Context) {
	sessionID, ok := h.session(c)
	if !ok {
		return
	}

	tracker, err := h.onboardingServ.UploadProgress(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"progress": tracker.Progress,
		"quality":  tracker.Quality,
		"done":     tracker.Done(),
	})
}

// Complete maneja POST /onboarding/complete.
func (h *OnboardingHandler) Complete(c *gin.Context) {
	sessionID, ok := h.session(c)
	if !ok {
		return
	}

	var req struct {
		Skip bool `json:"skip"`
	}
	// El body es opcional: completar sin skip es el caso comun.
	_ = c.ShouldBindJSON(&req)

	if err := h.onboardingServ.Complete(c.Request.Context(), sessionID, req.Skip); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": domain.StateDashboard})
}

// Dashboard maneja GET /dashboard.
func (h *OnboardingHandler) Dashboard(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	summary, err := h.onboardingServ.Dashboard(c.Request.Context(), claims.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *OnboardingHandler) session(c *gin.Context) (string, bool) {
	sessionID := strings.TrimSpace(c.GetHeader(sessionHeader))
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "missing required field",
			"field": "session",
		})
		return "", false
	}
	return sessionID, true
}
