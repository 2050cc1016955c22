package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"alcyxob/gym-membership/internal/domain"
	"alcyxob/gym-membership/internal/service"
)

// Services bundles what the HTTP layer needs.
type Services struct {
	Auth      service.AuthService
	Members   service.MemberService
	Payments  service.PaymentService
	Dashboard service.DashboardService
	Broadcast service.BroadcastService
	Exercises service.ExerciseService
}

func SetupRoutes(router *gin.Engine, svc Services, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	authHandler := NewAuthHandler(svc.Auth, logger)
	memberHandler := NewMemberHandler(svc.Members, logger)
	paymentHandler := NewPaymentHandler(svc.Payments, svc.Members, logger)
	dashboardHandler := NewDashboardHandler(svc.Dashboard, svc.Broadcast, svc.Members, logger)
	exerciseHandler := NewExerciseHandler(svc.Exercises, logger)

	router.Use(RequestID(logger))

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(AuthMiddleware(svc.Auth))
	{
		protected.POST("/auth/logout", authHandler.Logout)
		protected.GET("/me", authHandler.Me)

		members := protected.Group("/members")
		{
			members.GET("", memberHandler.ListMembers)
			members.POST("", memberHandler.CreateMember)
			members.GET("/:id", memberHandler.GetMember)
			members.PUT("/:id", memberHandler.UpdateMember)
			members.DELETE("/:id", memberHandler.DeleteMember)
			members.POST("/:id/deactivate", memberHandler.DeactivateMember)
			members.POST("/:id/photo", memberHandler.RequestPhotoUpload)
			members.PUT("/:id/photo", memberHandler.ConfirmPhotoUpload)
			members.GET("/:id/bmi", memberHandler.GetBMI)
			members.GET("/:id/payments", paymentHandler.ListPayments)
			members.POST("/:id/payments", paymentHandler.RecordPayment)
		}

		protected.GET("/dashboard", dashboardHandler.GetDashboard)
		protected.GET("/broadcast/targets", dashboardHandler.GetBroadcastTargets)
		protected.POST("/broadcast/send", dashboardHandler.SendBroadcast)

		// Staff read the catalog; only the owner curates it.
		exercises := protected.Group("/exercises")
		{
			exercises.GET("", exerciseHandler.ListExercises)
			exercises.GET("/:id", exerciseHandler.GetExercise)
			exercises.POST("", RoleMiddleware(domain.RoleOwner), exerciseHandler.CreateExercise)
			exercises.PUT("/:id", RoleMiddleware(domain.RoleOwner), exerciseHandler.UpdateExercise)
			exercises.DELETE("/:id", RoleMiddleware(domain.RoleOwner), exerciseHandler.DeleteExercise)
		}
	}
}
