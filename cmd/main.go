package main

import (
  "context"
  "fmt"
  "os"
  "time"

  goredis "github.com/redis/go-redis/v9"

  "github.com/kazika-dev/kazika-studio-sub003/internal/db"
  "github.com/kazika-dev/kazika-studio-sub003/internal/handlers"
  "github.com/kazika-dev/kazika-studio-sub003/internal/logger"
  "github.com/kazika-dev/kazika-studio-sub003/internal/middleware"
  "github.com/kazika-dev/kazika-studio-sub003/internal/observability"
  "github.com/kazika-dev/kazika-studio-sub003/internal/repos"
  "github.com/kazika-dev/kazika-studio-sub003/internal/server"
  "github.com/kazika-dev/kazika-studio-sub003/internal/services"
  "github.com/kazika-dev/kazika-studio-sub003/internal/utils"
)

func main() {
  // Logger
  logMode := os.Getenv("LOG_MODE")
  if logMode == "" {
    logMode = "development"
  }
  log, err := logger.New(logMode)
  if err != nil {
    fmt.Printf("Failed to init logger: %v\n", err)
    os.Exit(1)
  }
  defer log.Sync()

  // Env
  log.Info("Loading environment variables from main...")
  jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
  accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
  refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)

  // Postgres
  postgresService, err := db.NewPostgresService(log)
  if err != nil {
    log.Error("Postgres init failed", "error", err)
    os.Exit(1)
  }
  if err = postgresService.AutoMigrateAll(); err != nil {
    log.Warn("Postgres auto migration failed", "error", err)
  }
  thePG := postgresService.DB()

  // Redis (optional, used for signed-url caching)
  var rdb *goredis.Client
  if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
    rdb = goredis.NewClient(&goredis.Options{
      Addr:     redisAddr,
      Password: os.Getenv("REDIS_PASSWORD"),
    })
    if err := rdb.Ping(context.Background()).Err(); err != nil {
      log.Warn("Redis unreachable, continuing without signed-url cache", "error", err)
      rdb = nil
    }
  }

  // Repos
  log.Info("Setting up Repos from main...")
  userRepo := repos.NewUserRepo(thePG, log)
  userTokenRepo := repos.NewUserTokenRepo(thePG, log)
  apiKeyRepo := repos.NewAPIKeyRepo(thePG, log)
  studioRepo := repos.NewStudioRepo(thePG, log)
  boardRepo := repos.NewBoardRepo(thePG, log)
  stepRepo := repos.NewStepRepo(thePG, log)
  workflowRepo := repos.NewWorkflowRepo(thePG, log)
  promptQueueRepo := repos.NewPromptQueueRepo(thePG, log)
  characterSheetRepo := repos.NewCharacterSheetRepo(thePG, log)
  sceneMasterRepo := repos.NewSceneMasterRepo(thePG, log)
  propMasterRepo := repos.NewPropMasterRepo(thePG, log)
  conversationRepo := repos.NewConversationRepo(thePG, log)
  tagRepo := repos.NewTagRepo(thePG, log)
  outputRepo := repos.NewOutputRepo(thePG, log)

  // Services
  log.Info("Setting up Services from main...")
  bucketService, err := services.NewBucketService(log, rdb)
  if err != nil {
    log.Error("Could not init BucketService", "error", err)
    os.Exit(1)
  }
  avatarService, err := services.NewAvatarService(log)
  if err != nil {
    log.Error("Could not init AvatarService", "error", err)
    os.Exit(1)
  }
  geminiClient, err := services.NewGeminiClient(log)
  if err != nil {
    log.Error("Could not init GeminiClient", "error", err)
    os.Exit(1)
  }
  elevenLabsClient, err := services.NewElevenLabsClient(log)
  if err != nil {
    log.Error("Could not init ElevenLabsClient", "error", err)
    os.Exit(1)
  }
  higgsfieldClient, err := services.NewHiggsfieldClient(log)
  if err != nil {
    log.Error("Could not init HiggsfieldClient", "error", err)
    os.Exit(1)
  }
  nodeExecutor := services.NewNodeExecutor(log, geminiClient, elevenLabsClient, higgsfieldClient)
  authService := services.NewAuthService(thePG, log, userRepo, userTokenRepo, apiKeyRepo, avatarService, bucketService, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second)
  studioService := services.NewStudioService(thePG, log, studioRepo, avatarService, bucketService)
  boardService := services.NewBoardService(thePG, log, boardRepo, studioRepo)
  stepService := services.NewStepService(thePG, log, stepRepo, boardRepo, studioRepo, workflowRepo)
  workflowService := services.NewWorkflowService(thePG, log, workflowRepo, stepRepo, boardRepo, studioRepo, nodeExecutor)
  promptQueueService := services.NewPromptQueueService(thePG, log, promptQueueRepo, outputRepo, characterSheetRepo, geminiClient, bucketService)
  characterSheetService := services.NewCharacterSheetService(thePG, log, characterSheetRepo, bucketService)
  sceneMasterService := services.NewSceneMasterService(thePG, log, sceneMasterRepo, bucketService)
  propMasterService := services.NewPropMasterService(thePG, log, propMasterRepo, bucketService)
  conversationService := services.NewConversationService(thePG, log, conversationRepo, elevenLabsClient, bucketService)
  tagService := services.NewTagService(thePG, log, tagRepo)
  outputService := services.NewOutputService(thePG, log, outputRepo, bucketService)

  // Handlers
  log.Info("Setting up handlers from main...")
  authHandler := handlers.NewAuthHandler(authService)
  healthcheckHandler := handlers.NewHealthcheckHandler(thePG)
  studioHandler := handlers.NewStudioHandler(studioService)
  boardHandler := handlers.NewBoardHandler(boardService)
  stepHandler := handlers.NewStepHandler(stepService, workflowService)
  workflowHandler := handlers.NewWorkflowHandler(workflowService)
  promptQueueHandler := handlers.NewPromptQueueHandler(promptQueueService)
  characterSheetHandler := handlers.NewCharacterSheetHandler(characterSheetService)
  sceneMasterHandler := handlers.NewSceneMasterHandler(sceneMasterService)
  propMasterHandler := handlers.NewPropMasterHandler(propMasterService)
  conversationHandler := handlers.NewConversationHandler(conversationService)
  tagHandler := handlers.NewTagHandler(tagService)
  outputHandler := handlers.NewOutputHandler(outputService)
  storageHandler := handlers.NewStorageHandler(log, bucketService)

  // Middleware
  log.Info("Setting up middleware from main...")
  authMiddleware := middleware.NewAuthMiddleware(log, authService)

  // Tracing
  shutdownOTel := observability.InitOTel(context.Background(), log, observability.OtelConfig{
    ServiceName: "kazika-studio",
    Environment: os.Getenv("APP_ENV"),
    Version:     os.Getenv("APP_VERSION"),
  })
  if shutdownOTel != nil {
    defer func() {
      ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
      defer cancel()
      if err := shutdownOTel(ctx); err != nil {
        log.Warn("OTel shutdown failed", "error", err)
      }
    }()
  }

  // Router
  log.Info("Setting up router from main...")
  router := server.NewRouter(server.RouterConfig{
    AuthHandler:           authHandler,
    AuthMiddleware:        authMiddleware,
    HealthcheckHandler:    healthcheckHandler,
    StudioHandler:         studioHandler,
    BoardHandler:          boardHandler,
    StepHandler:           stepHandler,
    WorkflowHandler:       workflowHandler,
    PromptQueueHandler:    promptQueueHandler,
    CharacterSheetHandler: characterSheetHandler,
    SceneMasterHandler:    sceneMasterHandler,
    PropMasterHandler:     propMasterHandler,
    ConversationHandler:   conversationHandler,
    TagHandler:            tagHandler,
    OutputHandler:         outputHandler,
    StorageHandler:        storageHandler,
  })

  port := utils.GetEnv("PORT", "8080", log)
  fmt.Printf("Server listening on :%s\n", port)
  if err := router.Run(":" + port); err != nil {
    log.Warn("Server failed", "error", err)
  }
}
