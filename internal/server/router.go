package server

import (
  "github.com/gin-contrib/cors"
  "github.com/gin-gonic/gin"
  "go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

  "github.com/kazika-dev/kazika-studio-sub003/internal/handlers"
  "github.com/kazika-dev/kazika-studio-sub003/internal/middleware"
)

type RouterConfig struct {
  AuthHandler           *handlers.AuthHandler
  AuthMiddleware        *middleware.AuthMiddleware
  HealthcheckHandler    *handlers.HealthcheckHandler
  StudioHandler         *handlers.StudioHandler
  BoardHandler          *handlers.BoardHandler
  StepHandler           *handlers.StepHandler
  WorkflowHandler       *handlers.WorkflowHandler
  PromptQueueHandler    *handlers.PromptQueueHandler
  CharacterSheetHandler *handlers.CharacterSheetHandler
  SceneMasterHandler    *handlers.SceneMasterHandler
  PropMasterHandler     *handlers.PropMasterHandler
  ConversationHandler   *handlers.ConversationHandler
  TagHandler            *handlers.TagHandler
  OutputHandler         *handlers.OutputHandler
  StorageHandler        *handlers.StorageHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
  router := gin.Default()
  router.Use(otelgin.Middleware("kazika-studio"))

  // Cors
  router.Use(cors.New(cors.Config{
    AllowOrigins: []string{
      "http://localhost:80",
      "http://localhost:3000",
      "http://localhost:5174",
    },
    AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
    AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
    AllowCredentials: true,
  }))

// ===============
// || Public    ||
// ===============
  router.GET("/healthcheck", cfg.HealthcheckHandler.Healthcheck)
  api := router.Group("/api")
  {
    api.POST("/register", cfg.AuthHandler.Register)
    api.POST("/login", cfg.AuthHandler.Login)
  }

// ===============
// || Protected ||
// ===============
  protected := api.Group("/")
  protected.Use(cfg.AuthMiddleware.RequireAuth())
  // Auth
  protected.POST("/refresh", cfg.AuthHandler.Refresh)
  protected.POST("/logout", cfg.AuthHandler.Logout)
  protected.POST("/api-keys", cfg.AuthHandler.CreateAPIKey)
  protected.GET("/api-keys", cfg.AuthHandler.ListAPIKeys)
  protected.DELETE("/api-keys/:id", cfg.AuthHandler.RevokeAPIKey)
  // Studios
  protected.POST("/studios", cfg.StudioHandler.Create)
  protected.GET("/studios", cfg.StudioHandler.List)
  protected.GET("/studios/:id", cfg.StudioHandler.Get)
  protected.PATCH("/studios/:id", cfg.StudioHandler.Update)
  protected.DELETE("/studios/:id", cfg.StudioHandler.Delete)
  // Boards
  protected.POST("/boards", cfg.BoardHandler.Create)
  protected.GET("/boards", cfg.BoardHandler.ListByStudio)
  protected.GET("/boards/:id", cfg.BoardHandler.Get)
  protected.PATCH("/boards/:id", cfg.BoardHandler.Update)
  protected.POST("/boards/reorder", cfg.BoardHandler.Reorder)
  protected.DELETE("/boards/:id", cfg.BoardHandler.Delete)
  // Steps
  protected.POST("/steps", cfg.StepHandler.Create)
  protected.GET("/steps", cfg.StepHandler.ListByBoard)
  protected.GET("/steps/:id", cfg.StepHandler.Get)
  protected.POST("/steps/:id/execute", cfg.StepHandler.ExecuteNode)
  protected.DELETE("/steps/:id", cfg.StepHandler.Delete)
  // Workflows
  protected.POST("/workflows", cfg.WorkflowHandler.Create)
  protected.GET("/workflows", cfg.WorkflowHandler.List)
  protected.GET("/workflows/:id", cfg.WorkflowHandler.Get)
  protected.PUT("/workflows/:id", cfg.WorkflowHandler.Update)
  protected.DELETE("/workflows/:id", cfg.WorkflowHandler.Delete)
  // Prompt Queue
  protected.POST("/prompt-queue", cfg.PromptQueueHandler.Create)
  protected.GET("/prompt-queue", cfg.PromptQueueHandler.List)
  protected.GET("/prompt-queue/:id", cfg.PromptQueueHandler.Get)
  protected.POST("/prompt-queue/:id/execute", cfg.PromptQueueHandler.Execute)
  protected.POST("/prompt-queue/execute-batch", cfg.PromptQueueHandler.ExecuteBatch)
  protected.POST("/prompt-queue/:id/cancel", cfg.PromptQueueHandler.Cancel)
  protected.DELETE("/prompt-queue/:id", cfg.PromptQueueHandler.Delete)
  // Character Sheets
  protected.POST("/character-sheets", cfg.CharacterSheetHandler.Create)
  protected.GET("/character-sheets", cfg.CharacterSheetHandler.List)
  protected.GET("/character-sheets/:id", cfg.CharacterSheetHandler.Get)
  protected.PATCH("/character-sheets/:id", cfg.CharacterSheetHandler.Update)
  protected.POST("/character-sheets/:id/image", cfg.CharacterSheetHandler.UploadImage)
  protected.DELETE("/character-sheets/:id", cfg.CharacterSheetHandler.Delete)
  // Scene Masters
  protected.POST("/scene-masters", cfg.SceneMasterHandler.Create)
  protected.GET("/scene-masters", cfg.SceneMasterHandler.List)
  protected.GET("/scene-masters/:id", cfg.SceneMasterHandler.Get)
  protected.PATCH("/scene-masters/:id", cfg.SceneMasterHandler.Update)
  protected.POST("/scene-masters/:id/image", cfg.SceneMasterHandler.UploadImage)
  protected.DELETE("/scene-masters/:id", cfg.SceneMasterHandler.Delete)
  // Prop Masters
  protected.POST("/prop-masters", cfg.PropMasterHandler.Create)
  protected.GET("/prop-masters", cfg.PropMasterHandler.List)
  protected.GET("/prop-masters/:id", cfg.PropMasterHandler.Get)
  protected.PATCH("/prop-masters/:id", cfg.PropMasterHandler.Update)
  protected.POST("/prop-masters/:id/image", cfg.PropMasterHandler.UploadImage)
  protected.DELETE("/prop-masters/:id", cfg.PropMasterHandler.Delete)
  // Conversations
  protected.POST("/conversations", cfg.ConversationHandler.Create)
  protected.GET("/conversations", cfg.ConversationHandler.List)
  protected.GET("/conversations/:id", cfg.ConversationHandler.Get)
  protected.PUT("/conversations/:id", cfg.ConversationHandler.Update)
  protected.POST("/conversations/:id/audio", cfg.ConversationHandler.GenerateAudio)
  protected.DELETE("/conversations/:id", cfg.ConversationHandler.Delete)
  // Tags
  protected.POST("/tags", cfg.TagHandler.Create)
  protected.GET("/tags", cfg.TagHandler.List)
  protected.PATCH("/tags/:id", cfg.TagHandler.Update)
  protected.DELETE("/tags/:id", cfg.TagHandler.Delete)
  protected.POST("/tags/:id/assign", cfg.TagHandler.Assign)
  protected.POST("/tags/:id/unassign", cfg.TagHandler.Unassign)
  protected.POST("/tags/:id/bulk-assign", cfg.TagHandler.BulkAssign)
  protected.GET("/tags/entity", cfg.TagHandler.ListForEntity)
  // Outputs
  protected.GET("/outputs", cfg.OutputHandler.List)
  protected.GET("/outputs/:id", cfg.OutputHandler.Get)
  protected.DELETE("/outputs/:id", cfg.OutputHandler.Delete)
  // Storage
  protected.GET("/storage/signed-url", cfg.StorageHandler.SignedURL)
  protected.GET("/storage/stream", cfg.StorageHandler.Stream)

  return router
}
