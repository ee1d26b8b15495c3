package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/noorhashem/devflow-backend/internal/cache"
	"github.com/noorhashem/devflow-backend/internal/config"
	"github.com/noorhashem/devflow-backend/internal/database"
	"github.com/noorhashem/devflow-backend/internal/dispatch"
	"github.com/noorhashem/devflow-backend/internal/handlers"
	"github.com/noorhashem/devflow-backend/internal/logger"
	"github.com/noorhashem/devflow-backend/internal/middleware"
	"github.com/noorhashem/devflow-backend/internal/repository"
	"github.com/noorhashem/devflow-backend/internal/service"
)

type Server struct {
	db         database.Service
	dispatcher *dispatch.Dispatcher
	handler    *handlers.Handler
	log        *logger.Logger
}

// New wires the full application: database, repositories, services, the
// post-commit dispatcher, and the HTTP handlers.
func New(logg *logger.Logger) (*Server, error) {
	db, err := database.New(logg)
	if err != nil {
		return nil, err
	}

	dispatcher := dispatch.New(logg, 256)
	s := NewWithDeps(db, dispatcher, logg)
	return s, nil
}

// NewWithDeps builds a server around pre-constructed infrastructure.
// Used by New and by tests.
func NewWithDeps(db database.Service, dispatcher *dispatch.Dispatcher, logg *logger.Logger) *Server {
	gormDB := db.GetDB()

	questionRepo := repository.NewQuestionRepo(gormDB, logg)
	answerRepo := repository.NewAnswerRepo(gormDB, logg)
	voteRepo := repository.NewVoteRepo(gormDB, logg)
	interactionRepo := repository.NewInteractionRepo(gormDB, logg)
	invalidator := cache.NewInvalidator(logg)

	answerSvc := service.NewAnswerService(
		gormDB, questionRepo, answerRepo, voteRepo, interactionRepo,
		dispatcher, invalidator, logg,
	)
	questionSvc := service.NewQuestionService(gormDB, questionRepo, logg)

	return &Server{
		db:         db,
		dispatcher: dispatcher,
		handler:    handlers.NewHandler(answerSvc, questionSvc, logg),
		log:        logg.With("service", "server"),
	}
}

// HTTPServer returns the configured http.Server, ready to listen.
func (s *Server) HTTPServer() *http.Server {
	router := s.RegisterRoutes()
	port := config.GetEnv("PORT", "8080")

	return &http.Server{
		Addr:         "0.0.0.0:" + port,
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * 3600,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.db.Health())
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		// Question routes (public reads)
		api.GET("/questions", s.handler.Question.GetQuestions)
		api.GET("/questions/:id", s.handler.Question.GetQuestion)

		// Answer routes (public reads)
		api.GET("/questions/:id/answers", s.handler.Answer.GetAnswers)

		// Protected routes (authentication required)
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			protected.POST("/questions", s.handler.Question.CreateQuestion)
			protected.POST("/questions/:id/answers", s.handler.Answer.CreateAnswer)
			protected.DELETE("/answers/:answerId", s.handler.Answer.DeleteAnswer)
		}
	}

	return r
}

// Close flushes queued side effects and releases the database.
func (s *Server) Close() error {
	s.dispatcher.Close()
	return s.db.Close()
}

// DB exposes the underlying gorm handle. Used by tests.
func (s *Server) DB() *gorm.DB {
	return s.db.GetDB()
}
