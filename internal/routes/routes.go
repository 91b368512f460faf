package routes

import (
	"task-secretary-api/internal/auth"
	"task-secretary-api/internal/handlers"
	"task-secretary-api/internal/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(h *handlers.Handler, tokens *auth.TokenIssuer) *gin.Engine {
	ginRouter := gin.Default()

	// CORS middleware (for frontend integration)
	ginRouter.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check endpoint
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Task Secretary API is running",
		})
	})

	// Public routes (no authentication required)
	api := ginRouter.Group("/api")
	{
		api.POST("/register", h.Register)
		api.POST("/login", h.Login)
	}

	// Protected routes (authentication required)
	protectedRoutes := api.Group("")
	protectedRoutes.Use(middleware.JWTAuthMiddleware(tokens))
	{
		// Task endpoints
		protectedRoutes.GET("/tasks", h.GetTasks)
		protectedRoutes.GET("/tasks/:id", h.GetTaskByID)
		protectedRoutes.POST("/tasks", h.CreateTask)
		protectedRoutes.PATCH("/tasks/:id", h.UpdateTask)
		protectedRoutes.PATCH("/tasks/:id/status", h.UpdateTaskStatus)
		protectedRoutes.DELETE("/tasks/:id", h.DeleteTask)

		// Subtask endpoints
		protectedRoutes.POST("/tasks/:id/subtasks", h.AddSubtask)
		protectedRoutes.PUT("/tasks/:id/subtasks/order", h.ReorderSubtasks)
		protectedRoutes.PATCH("/tasks/:id/subtasks/:index", h.UpdateSubtask)
		protectedRoutes.POST("/tasks/:id/subtasks/:index/toggle", h.ToggleSubtask)
		protectedRoutes.DELETE("/tasks/:id/subtasks/:index", h.DeleteSubtask)

		// Views
		protectedRoutes.GET("/views/daily", h.DailyView)
		protectedRoutes.GET("/views/list", h.ListView)
		protectedRoutes.GET("/views/categories", h.CategoryView)
		protectedRoutes.GET("/views/calendar", h.CalendarView)

		// Categories
		protectedRoutes.GET("/categories", h.GetCategories)
		protectedRoutes.POST("/categories", h.CreateCategory)
		protectedRoutes.DELETE("/categories/:id", h.DeleteCategory)

		protectedRoutes.POST("/assistant", h.Assist)
		protectedRoutes.GET("/me", h.GetCurrentUser)
		protectedRoutes.GET("/ws", h.WebSocket)
	}

	return ginRouter
}
