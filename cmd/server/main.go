package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/hitoha/lifequest-api/internal/calendar"
	"github.com/hitoha/lifequest-api/internal/config"
	"github.com/hitoha/lifequest-api/internal/database"
	"github.com/hitoha/lifequest-api/internal/handlers"
	"github.com/hitoha/lifequest-api/internal/middleware"
	"github.com/hitoha/lifequest-api/internal/repository"
	"github.com/hitoha/lifequest-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	// Configure session options based on environment
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction, // true in production (HTTPS), false in development
		SameSite: 2,            // SameSite=Lax (1=Strict, 2=Lax, 3=None)
	})
	r.Use(sessions.Sessions("lifequest_session", store))

	// Repositories
	db := database.GetDB()
	taskRepo := repository.NewTaskRepository(db)
	templateRepo := repository.NewSubtaskTemplateRepository(db)
	achievementRepo := repository.NewAchievementRepository(db)
	skillRepo := repository.NewSkillRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Services
	var aiService *services.AIService
	if cfg.OpenAIAPIKey != "" {
		aiService = services.NewAIService(cfg.OpenAIAPIKey)
	}
	authService := services.NewAuthService(userRepo)
	recurrenceService := services.NewRecurrenceService(taskRepo, templateRepo)
	lifecycleService := services.NewLifecycleService(taskRepo, recurrenceService)
	progressService := services.NewProgressService(taskRepo)
	achievementService := services.NewAchievementService(achievementRepo, taskRepo, skillRepo, profileRepo)
	analyticsService := services.NewAnalyticsService(taskRepo, achievementRepo)
	taskService := services.NewTaskService(taskRepo, templateRepo, achievementService)
	calendarService := calendar.New(cfg.CalendarDir)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	taskHandler := handlers.NewTaskHandler(taskService, aiService)
	lifecycleHandler := handlers.NewLifecycleHandler(taskService, lifecycleService, progressService, recurrenceService)
	achievementHandler := handlers.NewAchievementHandler(achievementService, achievementRepo, taskService, aiService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)
	profileHandler := handlers.NewProfileHandler(profileRepo, skillRepo, achievementService)
	calendarHandler := handlers.NewCalendarHandler(calendarService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "LifeQuest API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth())
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.POST("/recurring", taskHandler.CreateRecurringTask)
			tasks.POST("/generate", taskHandler.GenerateTasks)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.PATCH("/:id", taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
			tasks.GET("/:id/subtasks", taskHandler.GetSubtasks)
			tasks.GET("/:id/progress", lifecycleHandler.GetProgress)
			tasks.POST("/:id/start", lifecycleHandler.StartTask)
			tasks.POST("/:id/pause", lifecycleHandler.PauseTask)
			tasks.POST("/:id/cancel", lifecycleHandler.CancelTask)
			tasks.POST("/:id/restart", lifecycleHandler.RestartTask)
			tasks.POST("/:id/generate-daily", lifecycleHandler.GenerateDailyTasks)
			tasks.POST("/:id/achievement", achievementHandler.GenerateForTask)
		}

		// Achievement routes (protected)
		achievements := api.Group("/achievements")
		achievements.Use(middleware.RequireAuth())
		{
			achievements.GET("", achievementHandler.ListCatalog)
			achievements.GET("/unlocked", achievementHandler.ListUnlocked)
			achievements.POST("/check", achievementHandler.CheckAchievements)
		}

		// Behavior analytics (protected)
		api.GET("/analytics/summary", middleware.RequireAuth(), analyticsHandler.GetSummary)

		// Profile, attributes and skills (protected)
		profile := api.Group("/profile")
		profile.Use(middleware.RequireAuth())
		{
			profile.GET("", profileHandler.GetProfile)
			profile.GET("/attributes", profileHandler.GetAttributes)
			profile.PATCH("/attributes", profileHandler.UpdateAttributes)
			profile.GET("/skills", profileHandler.ListSkills)
			profile.POST("/skills", profileHandler.CreateSkill)
		}

		// Calendar lookup (public)
		api.GET("/calendar/day-type", calendarHandler.GetDayType)
	}

	// Start server
	log.Println("Server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
