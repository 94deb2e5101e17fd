package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/sushilghimire07/Social-Media-App/internal/hub"
	"github.com/sushilghimire07/Social-Media-App/internal/service"
	"github.com/sushilghimire07/Social-Media-App/pkg/middleware"
)

// Handler handles HTTP requests for the API.
type Handler struct {
	userService       service.UserService
	connectionService service.ConnectionService
	postService       service.PostService
	storyService      service.StoryService
	messageService    service.MessageService
	hub               *hub.Hub
	authMiddleware    *middleware.AuthMiddleware
}

// NewHandler creates a new HTTP handler.
func NewHandler(
	userService service.UserService,
	connectionService service.ConnectionService,
	postService service.PostService,
	storyService service.StoryService,
	messageService service.MessageService,
	liveHub *hub.Hub,
	authMiddleware *middleware.AuthMiddleware,
) *Handler {
	return &Handler{
		userService:       userService,
		connectionService: connectionService,
		postService:       postService,
		storyService:      storyService,
		messageService:    messageService,
		hub:               liveHub,
		authMiddleware:    authMiddleware,
	}
}

// RegisterRoutes registers all routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	api.Use(h.authMiddleware.RequireAuth())
	{
		users := api.Group("/users")
		{
			users.GET("/me", h.GetMe)
			users.PUT("/me", h.UpdateMe)
			users.POST("/discover", h.Discover)
			users.POST("/follow", h.Follow)
			users.POST("/unfollow", h.Unfollow)
			users.POST("/profiles", h.GetProfile)
		}

		connections := api.Group("/connections")
		{
			connections.POST("", h.SendConnectionRequest)
			connections.POST("/accept", h.AcceptConnectionRequest)
			connections.GET("", h.GetConnections)
		}

		posts := api.Group("/posts")
		{
			posts.POST("", h.CreatePost)
			posts.GET("/feed", h.GetFeed)
			posts.POST("/like", h.LikePost)
		}

		stories := api.Group("/stories")
		{
			stories.POST("", h.CreateStory)
			stories.GET("", h.GetStories)
		}

		messages := api.Group("/messages")
		{
			messages.POST("", h.SendMessage)
			messages.POST("/chat", h.GetChat)
			messages.GET("/recent", h.GetRecentChats)
			messages.GET("/stream", h.StreamEvents)
		}
	}
}
