// Package router wires the HTTP surfaces of the application server and the
// verifier oracle service.
package router

import (
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"scavnger-backend/internal/app"
	"scavnger-backend/internal/config"
	"scavnger-backend/internal/handlers"
	"scavnger-backend/internal/middleware"
)

// corsMiddleware CORS middleware
// Priority: Environment Variable > YAML Config > Default (*)
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		var allowedOrigins []string
		allowCredentials := true
		maxAge := 3600

		envOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if envOrigins != "" {
			for _, o := range strings.Split(envOrigins, ",") {
				if trimmed := strings.TrimSpace(o); trimmed != "" {
					allowedOrigins = append(allowedOrigins, trimmed)
				}
			}
		} else if config.AppConfig != nil && len(config.AppConfig.CORS.AllowedOrigins) > 0 {
			allowedOrigins = config.AppConfig.CORS.AllowedOrigins
			allowCredentials = config.AppConfig.CORS.AllowCredentials
			if config.AppConfig.CORS.MaxAge > 0 {
				maxAge = config.AppConfig.CORS.MaxAge
			}
		} else {
			allowedOrigins = []string{"*"}
		}

		if len(allowedOrigins) == 1 && allowedOrigins[0] == "*" {
			c.Header("Access-Control-Allow-Origin", "*")
		} else if origin != "" {
			for _, allowedOrigin := range allowedOrigins {
				if strings.TrimSpace(allowedOrigin) == origin {
					c.Header("Access-Control-Allow-Origin", origin)
					c.Header("Vary", "Origin")
					break
				}
			}
		}

		if allowCredentials {
			c.Header("Access-Control-Allow-Credentials", "true")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Max-Age", strconv.Itoa(maxAge))

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// NewRouter builds the application server's engine.
func NewRouter(container *app.ServiceContainer, logger *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	proofHandler := handlers.NewProofHandler(container.CheckinService, logger)
	sponsorHandler := handlers.NewSponsorHandler(container.SponsorClient, logger)
	challengeHandler := handlers.NewChallengeHandler(container.ChallengeService, logger)
	profileHandler := handlers.NewProfileHandler(container.ProfileRepo, logger)
	adminAuthHandler := handlers.NewAdminAuthHandler(container.AdminAuthService, logger)
	reviewHandler := handlers.NewReviewHandler(container.ReviewService, logger)
	wsHandler := handlers.NewWebSocketHandler(container.PushService)
	txnHandler := handlers.NewTransactionHandler(container.TxnBuilder, logger)

	r.GET("/ping", handlers.PingHandler)
	r.GET("/health", handlers.HealthCheckHandler(container.ChainClient))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/ws", wsHandler.Connect)

	api := r.Group("/api")
	{
		api.POST("/submit-proof", proofHandler.SubmitProof)
		api.GET("/checkins", proofHandler.History)
		api.GET("/verifier/health", proofHandler.VerifierHealth)
		api.POST("/sponsor-challenge", sponsorHandler.SponsorChallenge)

		api.POST("/challenges", challengeHandler.Create)
		api.GET("/challenges", challengeHandler.List)
		api.GET("/challenges/:id", challengeHandler.Get)
		api.POST("/challenges/:id/join", challengeHandler.Join)
		api.POST("/challenges/:id/onchain", challengeHandler.AssignOnchain)

		api.POST("/transactions/build-join", txnHandler.BuildJoin)
		api.POST("/transactions/build-create", txnHandler.BuildCreate)

		api.GET("/profiles/:address", profileHandler.Get)
		api.PUT("/profiles/:address", profileHandler.Upsert)
		api.POST("/profiles/:address/login", profileHandler.Login)

		api.GET("/ws/stats", wsHandler.Stats)
		api.POST("/admin/login", adminAuthHandler.Login)

		adminAuth := middleware.NewAdminAuthMiddleware(container.AdminAuthService, logger)
		admin := api.Group("/admin", adminAuth.RequireAdminAuth())
		{
			admin.GET("/reviews", reviewHandler.ListPending)
			admin.POST("/reviews/:id", reviewHandler.Decide)
		}
	}

	r.NoRoute(handlers.NotFoundHandler)
	return r
}

// NewOracleRouter builds the standalone verifier oracle's engine. The
// surface is intentionally small: verification plus health.
func NewOracleRouter(checkinHandler *handlers.CheckinHandler, allowedIPs []string, logger *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	if len(allowedIPs) > 0 {
		restrict := middleware.NewLocalhostOnly(logger, allowedIPs)
		r.Use(restrict.Restrict())
	}

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.POST("/verify-checkin", checkinHandler.VerifyCheckin)
		api.GET("/health", checkinHandler.Health)
	}

	r.NoRoute(handlers.NotFoundHandler)
	return r
}
