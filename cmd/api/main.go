package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/geoquiz-api/internal/config"
	"github.com/yourusername/geoquiz-api/internal/handler"
	"github.com/yourusername/geoquiz-api/internal/middleware"
	pgRepo "github.com/yourusername/geoquiz-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/geoquiz-api/internal/repository/redis"
	"github.com/yourusername/geoquiz-api/internal/service"
	"github.com/yourusername/geoquiz-api/internal/service/playlist"
	"github.com/yourusername/geoquiz-api/pkg/database"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к Redis с использованием унифицированной конфигурации
	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Инициализируем репозитории
	questionRepo := pgRepo.NewQuestionRepo(db)
	ruleSetRepo := pgRepo.NewRuleSetRepo(db)
	sessionRepo := pgRepo.NewSessionRepo(db)
	statsRepo := pgRepo.NewStatsRepo(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	// Инициализируем сервисы
	quizConfig := &playlist.Config{
		SessionTTL: cfg.Quiz.SessionTTL(),
		ShuffleTTL: cfg.Quiz.ShuffleTTL(),
	}
	quizService := service.NewQuizService(questionRepo, ruleSetRepo, sessionRepo, statsRepo, cacheRepo, quizConfig)
	ruleSetService := service.NewRuleSetService(ruleSetRepo, sessionRepo, questionRepo)
	questionService := service.NewQuestionService(questionRepo, statsRepo)

	// Инициализируем обработчики
	quizHandler := handler.NewQuizHandler(quizService)
	ruleSetHandler := handler.NewRuleSetHandler(ruleSetService)
	questionHandler := handler.NewQuestionHandler(questionService)

	// Инициализируем rate limiter
	rateLimiter := middleware.NewRateLimiter(redisClient)

	// Настраиваем Gin
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	if trustedProxies := os.Getenv("TRUSTED_PROXIES"); trustedProxies != "" {
		if err := router.SetTrustedProxies([]string{trustedProxies}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		// Development: доверяем localhost
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	// Настройка CORS
	allowedOrigins := cfg.CORS.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Идентичность игрока (анонимная cookie) нужна всем игровым маршрутам
	playerIdentity := middleware.PlayerIdentity(cfg.Quiz.SecureCookies)

	// Настраиваем маршруты API
	api := router.Group("/api")
	{
		// Игровой цикл
		quizGroup := api.Group("/quiz")
		quizGroup.Use(playerIdentity)
		quizGroup.Use(rateLimiter.Limit(middleware.DefaultPlayRateLimitConfig()))
		{
			quizGroup.GET("/next", quizHandler.NextQuestion)
			quizGroup.POST("/answer", quizHandler.SubmitAnswer)
			quizGroup.POST("/cancel", quizHandler.CancelSession)
			quizGroup.GET("/stats", quizHandler.GetPlayerStats)
		}

		// Администрирование наборов правил
		ruleSetGroup := api.Group("/rule-sets")
		ruleSetGroup.Use(rateLimiter.Limit(middleware.AdminRateLimitConfig()))
		{
			ruleSetGroup.GET("", ruleSetHandler.ListRuleSets)
			ruleSetGroup.POST("", ruleSetHandler.CreateRuleSet)
			ruleSetGroup.GET("/slug/:slug", ruleSetHandler.GetRuleSetBySlug)

			withID := ruleSetGroup.Group("/:id")
			withID.Use(middleware.ExtractUintParam("id", "ruleSetID"))
			{
				withID.GET("", ruleSetHandler.GetRuleSet)
				withID.PUT("", ruleSetHandler.UpdateRuleSet)
				withID.DELETE("", ruleSetHandler.DeleteRuleSet)
				withID.GET("/stats", ruleSetHandler.GetRuleSetStats)
				withID.GET("/export", ruleSetHandler.ExportRuleSetSessions)
			}
		}

		// Администрирование банка вопросов
		questionGroup := api.Group("/questions")
		questionGroup.Use(rateLimiter.Limit(middleware.AdminRateLimitConfig()))
		{
			questionGroup.POST("", questionHandler.CreateQuestion)
			questionGroup.POST("/batch", questionHandler.CreateQuestionBatch)

			withQuestionID := questionGroup.Group("/:id")
			withQuestionID.Use(middleware.ExtractUintParam("id", "questionID"))
			{
				withQuestionID.GET("", questionHandler.GetQuestion)
				withQuestionID.PUT("", questionHandler.UpdateQuestion)
				withQuestionID.DELETE("", questionHandler.DeleteQuestion)
				withQuestionID.GET("/answer-stats", questionHandler.GetAnswerDistribution)
			}
		}
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Server started on port %s", cfg.Server.Port)

	// Ждём сигнал остановки
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Создаем контекст с таймаутом для graceful shutdown сервера
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	if err := redisClient.Close(); err != nil {
		log.Printf("Error closing Redis client: %v", err)
	}

	log.Println("Server exited properly")
}
