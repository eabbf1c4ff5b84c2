package router

import (
	"github.com/gin-gonic/gin"

	"github.com/nomadhub/nomadhub-backend/internal/config"
	"github.com/nomadhub/nomadhub-backend/internal/http/handlers"
	"github.com/nomadhub/nomadhub-backend/internal/http/middleware"
	"github.com/nomadhub/nomadhub-backend/internal/service"
)

func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	profileHandler *handlers.ProfileHandler,
	projectHandler *handlers.ProjectHandler,
	proposalHandler *handlers.ProposalHandler,
	contractHandler *handlers.ContractHandler,
	deliveryHandler *handlers.DeliveryHandler,
	disputeHandler *handlers.DisputeHandler,
	paymentHandler *handlers.PaymentHandler,
	fiscalHandler *handlers.FiscalHandler,
	communityHandler *handlers.CommunityHandler,
	notificationHandler *handlers.NotificationHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
		authGroup.POST("/logout", authHandler.Logout)
	}

	protectedAuth := api.Group("/auth")
	protectedAuth.Use(middleware.AuthMiddleware(tokenManager))
	{
		protectedAuth.GET("/sessions", authHandler.ListSessions)
		protectedAuth.DELETE("/sessions/:id", middleware.UUIDValidator("id"), authHandler.DeleteSession)
	}

	// Публичные маршруты
	api.GET("/projects", projectHandler.List)
	api.GET("/projects/:id", middleware.UUIDValidator("id"), projectHandler.Get)
	api.GET("/community/posts", communityHandler.List)
	api.GET("/community/posts/:id", middleware.UUIDValidator("id"), communityHandler.Get)
	api.GET("/ws", wsHandler.Handle)

	// Защищённые маршруты
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		protected.GET("/profile", profileHandler.Me)
		protected.PATCH("/profile", profileHandler.Update)
		protected.POST("/profile/verify", profileHandler.Verify)
		protected.GET("/users/:id", middleware.UUIDValidator("id"), profileHandler.GetUser)

		protected.POST("/projects", projectHandler.Create)
		protected.GET("/projects/mine", projectHandler.ListMine)
		protected.PATCH("/projects/:id", middleware.UUIDValidator("id"), projectHandler.Update)
		protected.POST("/projects/:id/close", middleware.UUIDValidator("id"), projectHandler.Close)

		protected.POST("/projects/:id/proposals", middleware.UUIDValidator("id"), proposalHandler.Submit)
		protected.GET("/projects/:id/proposals", middleware.UUIDValidator("id"), proposalHandler.ListByProject)
		protected.GET("/proposals/mine", proposalHandler.ListMine)
		protected.GET("/proposals/:id", middleware.UUIDValidator("id"), proposalHandler.Get)
		protected.POST("/proposals/:id/accept", middleware.UUIDValidator("id"), proposalHandler.Accept)
		protected.POST("/proposals/:id/reject", middleware.UUIDValidator("id"), proposalHandler.Reject)
		protected.POST("/proposals/:id/withdraw", middleware.UUIDValidator("id"), proposalHandler.Withdraw)

		protected.GET("/contracts", contractHandler.List)
		protected.GET("/contracts/:id", middleware.UUIDValidator("id"), contractHandler.Get)
		protected.POST("/contracts/:id/fund", middleware.UUIDValidator("id"), contractHandler.Fund)
		protected.POST("/contracts/:id/release", middleware.UUIDValidator("id"), contractHandler.Release)
		protected.POST("/contracts/:id/refund", middleware.UUIDValidator("id"), contractHandler.Refund)

		protected.POST("/contracts/:id/deliveries", middleware.UUIDValidator("id"), deliveryHandler.Submit)
		protected.GET("/contracts/:id/deliveries", middleware.UUIDValidator("id"), deliveryHandler.ListByContract)
		protected.POST("/deliveries/:id/accept", middleware.UUIDValidator("id"), deliveryHandler.Accept)
		protected.POST("/deliveries/:id/files", middleware.UUIDValidator("id"), deliveryHandler.AttachFile)

		protected.POST("/contracts/:id/disputes", middleware.UUIDValidator("id"), disputeHandler.Open)
		protected.GET("/contracts/:id/disputes", middleware.UUIDValidator("id"), disputeHandler.ListByContract)
		protected.GET("/disputes", disputeHandler.ListMine)
		protected.GET("/disputes/:id", middleware.UUIDValidator("id"), disputeHandler.Get)
		protected.POST("/disputes/:id/evidence", middleware.UUIDValidator("id"), disputeHandler.AddEvidence)
		protected.POST("/disputes/:id/review", middleware.UUIDValidator("id"), disputeHandler.MarkInReview)
		protected.POST("/disputes/:id/resolve", middleware.UUIDValidator("id"), disputeHandler.Resolve)

		protected.GET("/payments/balance", paymentHandler.Balance)
		protected.GET("/payments/transactions", paymentHandler.Transactions)
		protected.POST("/payments/deposit", paymentHandler.Deposit)
		protected.POST("/payments/withdraw", paymentHandler.Withdraw)

		protected.GET("/fiscal/report", fiscalHandler.Report)
		protected.GET("/fiscal/export", fiscalHandler.ExportCSV)

		protected.POST("/community/posts", communityHandler.Create)
		protected.DELETE("/community/posts/:id", middleware.UUIDValidator("id"), communityHandler.Delete)

		protected.GET("/notifications", notificationHandler.List)
		protected.POST("/notifications/:id/read", middleware.UUIDValidator("id"), notificationHandler.MarkRead)
		protected.POST("/notifications/read-all", notificationHandler.MarkAllRead)
	}

	return r
}
