package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/kkyydd4-lab/certificate/config"
	"github.com/kkyydd4-lab/certificate/database"
	_ "github.com/kkyydd4-lab/certificate/docs" // Swagger docs - auto-generated
	adminctrl "github.com/kkyydd4-lab/certificate/internal/controller/admin"
	userctrl "github.com/kkyydd4-lab/certificate/internal/controller/user"
	"github.com/kkyydd4-lab/certificate/internal/logger"
	"github.com/kkyydd4-lab/certificate/internal/model"
	"github.com/kkyydd4-lab/certificate/internal/repository"
	"github.com/kkyydd4-lab/certificate/internal/service"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title Certification Exam Platform API
// @version 1.0
// @description Exam authoring, timed exam delivery with integrity monitoring, and automatic grading.
// @contact.name API Support
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
func main() {
	logger.Init()

	app := fx.New(
		// Core Application Components
		fx.Provide(
			config.NewConfig,
			database.NewDatabase, // Provides *gorm.DB
			NewGinEngine,         // Provides *gin.Engine
		),

		// Repositories Layer
		fx.Provide(
			repository.NewExamRepository,
			repository.NewQuestionRepository,
			repository.NewExamQuestionRepository,
			repository.NewSubmissionRepository,
		),

		// Services Layer
		fx.Provide(
			service.NewExamService,
			service.NewAdminExamService,
			service.NewGradingService,
			service.NewSessionService,
		),

		// API Controllers Layer
		fx.Provide(
			adminctrl.NewAdminExamController,
			adminctrl.NewQuestionController,
			userctrl.NewExamController,
			userctrl.NewSessionController,
		),

		fx.Invoke(RegisterRoutesAndStartServer),
		fx.Invoke(AutoMigrateDB),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

func NewGinEngine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("user_agent", param.Request.UserAgent()).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-Total-Count"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Swagger UI at /swagger/index.html
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// RegisterRoutesAndStartServer configures API routes and manages server lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	sessionService service.SessionService,
	adminExamCtrl *adminctrl.AdminExamController,
	questionCtrl *adminctrl.QuestionController,
	examCtrl *userctrl.ExamController,
	sessionCtrl *userctrl.SessionController,
) {
	// Admin Routes (prefixed with /api/v1/admin)
	adminAPIGroup := router.Group("/api/v1/admin")
	{
		examsAdminGroup := adminAPIGroup.Group("/exams")
		examsAdminGroup.POST("", adminExamCtrl.CreateExam)
		examsAdminGroup.PUT("/:exam_id", adminExamCtrl.UpdateExam)
		examsAdminGroup.DELETE("/:exam_id", adminExamCtrl.DeleteExam)
		examsAdminGroup.GET("/:exam_id/questions", adminExamCtrl.GetExamQuestions)
		examsAdminGroup.POST("/:exam_id/questions", adminExamCtrl.LinkQuestion)
		examsAdminGroup.DELETE("/:exam_id/questions/:question_id", adminExamCtrl.UnlinkQuestion)

		questionsAdminGroup := adminAPIGroup.Group("/questions")
		questionsAdminGroup.POST("", questionCtrl.CreateQuestion)
		questionsAdminGroup.GET("", questionCtrl.ListQuestions)
		questionsAdminGroup.PUT("/:question_id", questionCtrl.UpdateQuestion)
		questionsAdminGroup.DELETE("/:question_id", questionCtrl.DeleteQuestion)
	}

	// Student Routes (prefixed with /api/v1)
	userAPIGroup := router.Group("/api/v1")
	{
		userAPIGroup.GET("/exams", examCtrl.GetActiveExams)
		userAPIGroup.GET("/exams/:exam_id", examCtrl.GetExamDetails)

		// Exam Sessions
		userAPIGroup.POST("/exams/:exam_id/sessions", sessionCtrl.StartSession)
		userAPIGroup.GET("/sessions/:token", sessionCtrl.GetSessionState)
		userAPIGroup.PUT("/sessions/:token/answers", sessionCtrl.SaveAnswer)
		userAPIGroup.POST("/sessions/:token/events", sessionCtrl.ReportIntegrityEvent)
		userAPIGroup.POST("/sessions/:token/submit", sessionCtrl.SubmitSession)

		// Submissions
		userAPIGroup.GET("/submissions", examCtrl.GetMySubmissions)
		userAPIGroup.GET("/submissions/:submission_id", examCtrl.GetSubmissionDetails)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Certification exam API server starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			// Live exam sessions are in-memory only and are discarded.
			sessionService.Shutdown()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.Exam{},
		&model.Question{},
		&model.ExamQuestion{},
		&model.ExamSubmission{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
