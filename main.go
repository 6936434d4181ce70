package main

import (
	"strings"
	"time"

	"preparedness-service/internal/config"
	"preparedness-service/internal/db"
	"preparedness-service/internal/event"
	"preparedness-service/internal/handlers"
	"preparedness-service/internal/logger"
	"preparedness-service/internal/middleware"
	"preparedness-service/internal/models"
	"preparedness-service/internal/repository"
	"preparedness-service/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig

	logger.InitLogger(cfg.GinMode)
	defer logger.Log.Sync()
	log := logger.Log

	gin.SetMode(cfg.GinMode)

	db.InitMongo(cfg.MongoURI)
	database := db.Client.Database(cfg.MongoDatabase)
	if err := db.EnsureIndexes(database); err != nil {
		log.Fatal("failed to create indexes", zap.Error(err))
	}

	// RabbitMQ event publisher, optional like the rest of the platform
	var publisher *event.Publisher
	if cfg.RabbitMQURI != "" && cfg.RabbitMQExchange != "" {
		var err error
		publisher, err = event.NewPublisher(cfg.RabbitMQURI, cfg.RabbitMQExchange, log)
		if err != nil {
			log.Fatal("failed to connect to RabbitMQ", zap.Error(err))
		}
		defer publisher.Close()
	} else {
		log.Info("RabbitMQ not configured, events will not be published")
	}

	// Repositories
	userRepo := repository.NewUserRepository(database)
	moduleRepo := repository.NewModuleRepository(database)
	lessonRepo := repository.NewLessonRepository(database)
	quizRepo := repository.NewQuizRepository(database)
	attemptRepo := repository.NewAttemptRepository(database)
	drillRepo := repository.NewDrillRepository(database)

	// Services
	authService := service.NewAuthService(userRepo, cfg.JWTSecret, time.Duration(cfg.TokenTTLHours)*time.Hour, log)
	userService := service.NewUserService(userRepo, log)
	moduleService := service.NewModuleService(moduleRepo, lessonRepo, log)
	lessonService := service.NewLessonService(lessonRepo, moduleRepo, log)
	quizService := service.NewQuizService(quizRepo, lessonRepo, moduleRepo, attemptRepo, log)
	attemptService := service.NewAttemptService(attemptRepo, quizRepo, moduleRepo, userRepo, log)
	drillService := service.NewDrillService(drillRepo, log)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	moduleHandler := handlers.NewModuleHandler(moduleService)
	lessonHandler := handlers.NewLessonHandler(lessonService)
	quizHandler := handlers.NewQuizHandler(quizService)
	attemptHandler := handlers.NewAttemptHandler(attemptService)
	drillHandler := handlers.NewDrillHandler(drillService)

	r := gin.Default()
	r.Use(middleware.RequestID())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(cfg.AllowedOrigins, ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token", "Authorization", "accept", "origin", "Cache-Control", "X-Requested-With", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	auth := middleware.Auth([]byte(cfg.JWTSecret))

	authRoutes := r.Group("/api/auth")
	{
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.POST("/signup", authHandler.Signup)
	}

	userRoutes := r.Group("/api/users", auth)
	{
		userRoutes.GET("/profile", userHandler.Profile)

		students := userRoutes.Group("/students", middleware.RequireRole(models.RoleInstituteAdmin))
		{
			students.POST("/", func(c *gin.Context) {
				userHandler.CreateStudent(c)
				if publisher != nil && c.Writer.Status() < 400 {
					publisher.Publish(event.StudentEnrolled, gin.H{"timestamp": time.Now()})
				}
			})
			students.POST("/bulk", func(c *gin.Context) {
				userHandler.CreateBulkStudents(c)
				if publisher != nil && c.Writer.Status() < 400 {
					publisher.Publish(event.StudentEnrolled, gin.H{"bulk": true, "timestamp": time.Now()})
				}
			})
			students.GET("/", userHandler.ListStudents)
			students.PUT("/:id", userHandler.UpdateStudent)
			students.DELETE("/:id", userHandler.DeleteStudent)
		}

		admin := userRoutes.Group("/", middleware.RequireRole(models.RoleAdmin))
		{
			admin.POST("/institute-admins", userHandler.CreateInstituteAdmin)
			admin.PUT("/:id", userHandler.Update)
			admin.DELETE("/:id", userHandler.Delete)
		}
	}

	moduleRoutes := r.Group("/api/modules", auth)
	{
		moduleRoutes.POST("/", middleware.RequireRole(models.RoleAdmin, models.RoleInstituteAdmin), moduleHandler.Create)
		moduleRoutes.GET("/", moduleHandler.List)
		moduleRoutes.GET("/level/:level", moduleHandler.ListByLevel)
		moduleRoutes.GET("/:id", moduleHandler.Get)
		moduleRoutes.PUT("/:id", middleware.RequireRole(models.RoleAdmin, models.RoleInstituteAdmin), moduleHandler.Update)
		moduleRoutes.DELETE("/:id", middleware.RequireRole(models.RoleAdmin, models.RoleInstituteAdmin), moduleHandler.Delete)

		student := moduleRoutes.Group("/student", middleware.RequireRole(models.RoleStudent))
		{
			student.GET("/", moduleHandler.ListForStudent)
			student.GET("/:id", moduleHandler.GetWithLessons)
			student.GET("/:id/lessons", moduleHandler.LessonsByModule)
		}
	}

	lessonRoutes := r.Group("/api/lessons", auth)
	{
		lessonRoutes.POST("/", middleware.RequireRole(models.RoleAdmin, models.RoleInstituteAdmin), lessonHandler.Create)
		lessonRoutes.GET("/", lessonHandler.List)
		lessonRoutes.GET("/:id", lessonHandler.Get)
		lessonRoutes.PUT("/:id", middleware.RequireRole(models.RoleAdmin, models.RoleInstituteAdmin), lessonHandler.Update)
		lessonRoutes.DELETE("/:id", middleware.RequireRole(models.RoleAdmin, models.RoleInstituteAdmin), lessonHandler.Delete)
	}

	quizRoutes := r.Group("/api/quizzes", auth)
	{
		quizRoutes.POST("/", middleware.RequireRole(models.RoleAdmin, models.RoleInstituteAdmin), quizHandler.Create)
		quizRoutes.GET("/", quizHandler.List)
		quizRoutes.GET("/:id", quizHandler.Get)
		quizRoutes.GET("/lesson/:lessonId", quizHandler.ListByLesson)
		quizRoutes.GET("/module/:moduleId", quizHandler.ListByModule)
		quizRoutes.PUT("/:id", middleware.RequireRole(models.RoleAdmin, models.RoleInstituteAdmin), quizHandler.Update)
		quizRoutes.DELETE("/:id", middleware.RequireRole(models.RoleAdmin, models.RoleInstituteAdmin), quizHandler.Delete)
	}

	attemptRoutes := r.Group("/api/attempts", auth)
	{
		attemptRoutes.POST("/start/:quizId", middleware.RequireRole(models.RoleStudent), func(c *gin.Context) {
			attemptHandler.Start(c)
			if publisher != nil && c.Writer.Status() < 400 {
				publisher.Publish(event.AttemptStarted, gin.H{
					"quizId":    c.Param("quizId"),
					"timestamp": time.Now(),
				})
			}
		})
		attemptRoutes.POST("/submit/:attemptId", middleware.RequireRole(models.RoleStudent), func(c *gin.Context) {
			attemptHandler.Submit(c)
			if publisher != nil && c.Writer.Status() < 400 {
				publisher.Publish(event.AttemptCompleted, gin.H{
					"attemptId": c.Param("attemptId"),
					"timestamp": time.Now(),
				})
			}
		})
		attemptRoutes.GET("/quiz/:quizId", middleware.RequireRole(models.RoleStudent), attemptHandler.ListForQuiz)
		attemptRoutes.GET("/user/my-attempts", middleware.RequireRole(models.RoleStudent), attemptHandler.ListMine)
		attemptRoutes.GET("/:attemptId", attemptHandler.Get)
	}

	drillRoutes := r.Group("/api/virtualdrills", auth)
	{
		drillRoutes.POST("/", middleware.RequireRole(models.RoleAdmin, models.RoleInstituteAdmin), drillHandler.Create)
		drillRoutes.GET("/", drillHandler.ListReleased)
		drillRoutes.GET("/my-drills", middleware.RequireRole(models.RoleAdmin, models.RoleInstituteAdmin), drillHandler.ListMine)
		drillRoutes.GET("/institute", middleware.RequireRole(models.RoleInstituteAdmin), drillHandler.ListForInstitute)
		drillRoutes.GET("/admin/all", middleware.RequireRole(models.RoleAdmin), drillHandler.ListAll)
		drillRoutes.GET("/admin/stats", middleware.RequireRole(models.RoleAdmin), drillHandler.Stats)
		drillRoutes.PATCH("/:id/release", middleware.RequireRole(models.RoleAdmin), func(c *gin.Context) {
			drillHandler.SetReleased(c)
			if publisher != nil && c.Writer.Status() < 400 {
				publisher.Publish(event.DrillReleased, gin.H{
					"drillId":   c.Param("id"),
					"timestamp": time.Now(),
				})
			}
		})
		drillRoutes.GET("/:id", drillHandler.Get)
		drillRoutes.PUT("/:id", middleware.RequireRole(models.RoleAdmin, models.RoleInstituteAdmin), drillHandler.Update)
		drillRoutes.DELETE("/:id", middleware.RequireRole(models.RoleAdmin, models.RoleInstituteAdmin), drillHandler.Delete)
	}

	log.Info("starting server",
		zap.String("service", cfg.ServiceName),
		zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
