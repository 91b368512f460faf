package main

import (
	"context"
	"log"

	"task-secretary-api/internal/ai"
	"task-secretary-api/internal/auth"
	"task-secretary-api/internal/category"
	"task-secretary-api/internal/database"
	"task-secretary-api/internal/handlers"
	"task-secretary-api/internal/realtime"
	"task-secretary-api/internal/repository"
	"task-secretary-api/internal/routes"
	"task-secretary-api/internal/storage"
	"task-secretary-api/internal/views"

	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(a)
		},
	}
}

func runServe(a *app) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	db := database.InitDB(cfg.Database.Path, cfg.Database.LogLevel)
	kv := storage.NewGormKV(db)
	hub := realtime.NewHub()

	gen := ai.NewGeminiGenerator(cfg.AI.Endpoint, cfg.AI.APIKey, cfg.AI.Model, cfg.AI.Timeout)
	assistant := ai.NewClient(gen, cfg.AI.CacheTTL)
	go assistant.SweepCache(context.Background(), cfg.AI.CacheTTL)
	if cfg.AI.APIKey == "" {
		log.Println("GEMINI_API_KEY not set: tasks will be split with the local heuristic only")
	}

	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.Audience, cfg.Auth.TokenTTL)
	h := &handlers.Handler{
		Tasks: repository.NewRegistry(kv, repository.Deps{
			Planner: assistant,
			Events:  hub,
		}),
		Categories: category.NewManager(kv),
		Auth:       auth.NewService(auth.NewUserStore(cfg.Auth.UsersFile), tokens),
		Assistant:  assistant,
		Hub:        hub,
		Rules:      views.Rules{LegacyEmptyIsCompleted: cfg.Views.LegacyEmptyIsCompleted},
	}

	// Setup the routes (public and protected routes)
	ginRoutes := routes.SetupRoutes(h, tokens)

	port := ":" + cfg.Server.Port
	log.Printf("Server starting on port %s", port)
	log.Println("API endpoints:")
	log.Println("  POST   /api/register")
	log.Println("  POST   /api/login")
	log.Println("  GET    /api/tasks")
	log.Println("  GET    /api/tasks/:id")
	log.Println("  POST   /api/tasks")
	log.Println("  PATCH  /api/tasks/:id")
	log.Println("  PATCH  /api/tasks/:id/status")
	log.Println("  DELETE /api/tasks/:id")
	log.Println("  POST   /api/tasks/:id/subtasks")
	log.Println("  PUT    /api/tasks/:id/subtasks/order")
	log.Println("  PATCH  /api/tasks/:id/subtasks/:index")
	log.Println("  POST   /api/tasks/:id/subtasks/:index/toggle")
	log.Println("  DELETE /api/tasks/:id/subtasks/:index")
	log.Println("  GET    /api/views/{daily,list,categories,calendar}")
	log.Println("  GET    /api/categories")
	log.Println("  POST   /api/categories")
	log.Println("  DELETE /api/categories/:id")
	log.Println("  POST   /api/assistant")
	log.Println("  GET    /api/me")
	log.Println("  GET    /api/ws")
	log.Println("  GET    /health")

	return ginRoutes.Run(port)
}
