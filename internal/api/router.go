package api

import (
	"github.com/gin-gonic/gin"

	"github.com/inaciosamuel465/estateflow/internal/api/handlers"
	"github.com/inaciosamuel465/estateflow/internal/api/middleware"
	"github.com/inaciosamuel465/estateflow/internal/config"
	"github.com/inaciosamuel465/estateflow/internal/realtime"
	"github.com/inaciosamuel465/estateflow/internal/services"
	"github.com/inaciosamuel465/estateflow/internal/state"
	"github.com/inaciosamuel465/estateflow/internal/storage"
)

// Deps carries the shared components the HTTP surface is built on.
type Deps struct {
	Cfg             *config.Config
	Controller      *state.Controller
	Hub             *realtime.Hub
	UserService     services.IUserService
	ContractService services.IContractService
	Storage         storage.IS3Storage
	TaskClient      handlers.IAsynqClient
}

// SetupRouter configures and returns the main Gin engine.
func SetupRouter(d Deps) *gin.Engine {
	r := gin.Default()

	rateLimiter := middleware.NewRateLimiterMiddleware(d.Cfg)
	r.Use(middleware.CORSMiddleware(d.Cfg))
	r.Use(rateLimiter.Limit())

	authHandler := handlers.NewAuthHandler(d.Cfg, d.UserService)
	propertyHandler := handlers.NewPropertyHandler(d.Controller)
	contractHandler := handlers.NewContractHandler(d.Cfg, d.Controller, d.ContractService)
	chatHandler := handlers.NewChatHandler(d.Controller)
	notificationHandler := handlers.NewNotificationHandler(d.Controller)
	appHandler := handlers.NewAppHandler(d.Controller, d.Hub)
	reportHandler := handlers.NewReportHandler(d.Controller, d.ContractService)
	uploadHandler := handlers.NewUploadHandler(d.Controller, d.Storage, d.TaskClient)

	v1 := r.Group("/v1")
	{
		v1.GET("/ping", appHandler.Ping)
		v1.POST("/auth/register", authHandler.Register)
		v1.POST("/auth/login", authHandler.Login)
		v1.POST("/auth/logout", authHandler.Logout)

		// Public browsing; optional auth so favorites and chat identity bind
		// to the signed-in user when a token is present.
		public := v1.Group("/")
		public.Use(middleware.OptionalAuthMiddleware(d.Cfg.JwtSecret))
		{
			public.GET("/bootstrap", appHandler.Bootstrap)
			public.GET("/properties", propertyHandler.ListProperties)
			public.GET("/properties/:id", propertyHandler.GetPropertyByID)
			public.POST("/chat/messages", chatHandler.SendMessage)
			public.GET("/chat/conversation", chatHandler.MyConversation)
		}

		authRequired := v1.Group("/")
		authRequired.Use(middleware.AuthMiddleware(d.Cfg.JwtSecret))
		{
			authRequired.GET("/me", authHandler.Me)
			authRequired.PATCH("/me", authHandler.UpdateMe)
			authRequired.POST("/properties/:id/favorite", propertyHandler.ToggleFavorite)
		}

		admin := v1.Group("/admin")
		admin.Use(middleware.AuthMiddleware(d.Cfg.JwtSecret), middleware.AdminMiddleware())
		{
			admin.GET("/stream", appHandler.Stream)

			admin.POST("/properties", propertyHandler.CreateProperty)
			admin.PATCH("/properties/:id", propertyHandler.UpdateProperty)
			admin.DELETE("/properties/:id", propertyHandler.DeleteProperty)
			admin.POST("/properties/:id/images/presign", uploadHandler.PresignUpload)
			admin.POST("/properties/:id/images/complete", uploadHandler.CompleteUpload)

			admin.GET("/contracts", contractHandler.ListContracts)
			admin.GET("/contracts/expiring", contractHandler.ListExpiring)
			admin.POST("/contracts", contractHandler.CreateContract)
			admin.PATCH("/contracts/:id", contractHandler.UpdateContract)
			admin.DELETE("/contracts/:id", contractHandler.DeleteContract)
			admin.POST("/contracts/:id/payments", contractHandler.RecordPayment)
			admin.POST("/contracts/:id/owner-payout", contractHandler.RecordOwnerPayout)
			admin.GET("/contracts/:id/statement", contractHandler.Statement)

			admin.GET("/chat/conversations", chatHandler.ListConversations)
			admin.GET("/chat/conversations/:id", chatHandler.GetConversation)
			admin.POST("/chat/conversations/:id/messages", chatHandler.Reply)
			admin.POST("/chat/conversations/:id/read", chatHandler.MarkRead)

			admin.GET("/notifications", notificationHandler.ListNotifications)
			admin.POST("/notifications/:id/read", notificationHandler.MarkRead)
			admin.POST("/notifications/read-all", notificationHandler.MarkAllRead)
			admin.DELETE("/notifications", notificationHandler.Clear)

			admin.GET("/reports/financials", reportHandler.FinancialSummary)
			admin.GET("/reports/financials.xlsx", reportHandler.FinancialWorkbook)
		}
	}

	return r
}
