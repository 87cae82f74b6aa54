package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/deniz/commverse/internal/app/controllers"
	"github.com/deniz/commverse/internal/middleware"
	"github.com/deniz/commverse/internal/pkg/auth"
	"github.com/deniz/commverse/internal/realtime"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	communityController *controllers.CommunityController,
	invitationController *controllers.InvitationController,
	chatController *controllers.ChatController,
	surveyController *controllers.SurveyController,
	postController *controllers.PostController,
	notificationController *controllers.NotificationController,
	realtimeHandler *realtime.Handler,
	jwtService *auth.JWTService,
) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// --- Public auth routes ---
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register", authController.Register)
		authGroup.POST("/login", authController.Login)
	}

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(middleware.AuthMiddleware(jwtService))
	{
		authenticated.GET("/auth/me", authController.Me)

		communities := authenticated.Group("/communities")
		{
			communities.POST("", communityController.Create)
			communities.GET("", communityController.List)
			communities.GET("/mine", communityController.ListMine)
			communities.GET("/:id", communityController.Get)
			communities.PUT("/:id", communityController.Update)
			communities.DELETE("/:id", communityController.Delete)
			communities.POST("/:id/leave", communityController.Leave)

			communities.POST("/:id/invitations", invitationController.Invite)
			communities.GET("/:id/invitations", invitationController.ListByCommunity)

			communities.GET("/:id/chat", chatController.History)
			communities.POST("/:id/chat", chatController.Send)
			communities.DELETE("/:id/chat/:messageId", chatController.Delete)

			communities.POST("/:id/surveys", surveyController.Create)
			communities.GET("/:id/surveys", surveyController.ListByCommunity)

			communities.POST("/:id/posts", postController.Create)
			communities.GET("/:id/posts", postController.ListByCommunity)
		}

		invitations := authenticated.Group("/invitations")
		{
			invitations.GET("", invitationController.ListMine)
			invitations.POST("/:id/accept", invitationController.Accept)
			invitations.POST("/:id/decline", invitationController.Decline)
			invitations.DELETE("/:id", invitationController.Revoke)
		}

		surveys := authenticated.Group("/surveys")
		{
			surveys.GET("/:id", surveyController.Get)
			surveys.POST("/:id/answers", surveyController.Answer)
			surveys.POST("/:id/close", surveyController.Close)
			surveys.DELETE("/:id", surveyController.Delete)
		}

		posts := authenticated.Group("/posts")
		{
			posts.GET("/:id", postController.Get)
			posts.DELETE("/:id", postController.Delete)
			posts.POST("/:id/comments", postController.Comment)
		}

		notifications := authenticated.Group("/notifications")
		{
			notifications.GET("", notificationController.ListUnread)
			notifications.GET("/unread-count", notificationController.UnreadCount)
			notifications.POST("/:id/read", notificationController.MarkRead)
			notifications.POST("/read-all", notificationController.MarkAllRead)
		}

		authenticated.GET("/ws", realtimeHandler.HandleConnection)
	}
}
