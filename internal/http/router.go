package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"twin-llm/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	jwtServ *service.JWTService,
	userH *UserHandler,
	chatH *ChatHandler,
	speechH *SpeechHandler,
	portraitH *PortraitHandler,
	onboardingH *OnboardingHandler,
	avatarH *AvatarHandler,
	corsOrigins []string,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	if len(corsOrigins) > 0 {
		corsCfg := cors.DefaultConfig()
		corsCfg.AllowOrigins = corsOrigins
		corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", sessionHeader)
		corsCfg.ExposeHeaders = append(corsCfg.ExposeHeaders, sessionHeader)
		r.Use(cors.New(corsCfg))
	}

	// Rutas publicas.
	users := r.Group("/users")
	users.POST("", userH.CreateUser)

	auth := r.Group("/auth")
	auth.POST("/login", userH.Login)
	auth.POST("/refresh", userH.RefreshToken)
	auth.POST("/logout", userH.Logout)

	// Pasos de entrada del asistente: corren antes de tener cuenta.
	onboarding := r.Group("/onboarding")
	onboarding.POST("/start", onboardingH.Start)
	onboarding.POST("/type", onboardingH.SelectType)
	onboarding.POST("/contribution", onboardingH.RedeemContribution)
	onboarding.GET("/draft", onboardingH.Draft)
	onboarding.PUT("/personality/:trait", onboardingH.CommitTrait)
	onboarding.POST("/personality", onboardingH.SubmitPersonality)
	onboarding.GET("/upload/catalog", onboardingH.Catalog)
	onboarding.POST("/upload/:category", onboardingH.AcknowledgeUpload)
	onboarding.GET("/upload/progress", onboardingH.UploadProgress)
	onboarding.POST("/complete", onboardingH.Complete)

	// Rutas autenticadas.
	authed := r.Group("")
	authed.Use(JWTAuthMiddleware(jwtServ))
	authed.POST("/onboarding/profile", onboardingH.SubmitProfile)
	authed.GET("/dashboard", onboardingH.Dashboard)
	authed.POST("/chat", chatH.Chat)
	authed.POST("/speech", speechH.Synthesize)
	authed.GET("/conversations/:id/messages", chatH.History)
	authed.POST("/portrait", portraitH.Generate)
	authed.GET("/avatars", avatarH.List)
	authed.GET("/avatars/:id", avatarH.Get)
	authed.PUT("/avatars/:id", avatarH.Update)
	authed.POST("/avatars/:id/invite", avatarH.Invite)

	// Ruta historica del asistente; los clientes viejos siguen entrando.
	r.GET("/twin/create", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/onboarding/start")
	})

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
