// Package server exposes the coaching operations as a JSON API.
package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/alecf/careerprep/internal/coach"
)

const (
	// UserHeader carries the caller identity. Authentication happens in
	// front of this service.
	UserHeader = "X-User-ID"

	userKey         = "user_id"
	shutdownTimeout = 10 * time.Second
	maxResumeSize   = 5 << 20
)

// Options configures a Server
type Options struct {
	// AdminToken guards the /admin routes as a bearer token. The routes
	// are not registered when it is empty.
	AdminToken string
}

// Server routes HTTP requests to a coaching service
type Server struct {
	svc    *coach.Service
	logger *zap.Logger
	router *gin.Engine
	opts   Options
}

// New creates a server and registers its routes
func New(svc *coach.Service, logger *zap.Logger, opts Options) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))
	router.MaxMultipartMemory = maxResumeSize

	s := &Server{svc: svc, logger: logger, router: router, opts: opts}
	s.routes()
	return s
}

// Handler returns the HTTP handler of the server
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/industries", s.listIndustries)
		v1.GET("/question-bank", s.questionBank)

		if s.opts.AdminToken != "" {
			admin := v1.Group("/admin")
			admin.Use(requireAdmin(s.opts.AdminToken))
			admin.GET("/cache", s.cacheStats)
			admin.DELETE("/cache", s.clearCache)
		}

		user := v1.Group("")
		user.Use(requireUser())
		{
			user.GET("/profile", s.getProfile)
			user.PUT("/profile", s.updateProfile)
			user.POST("/profile/resume", s.uploadResume)

			user.POST("/cover-letters", s.createCoverLetter)
			user.GET("/cover-letters", s.listCoverLetters)
			user.GET("/cover-letters/:id", s.getCoverLetter)
			user.PUT("/cover-letters/:id", s.updateCoverLetter)
			user.DELETE("/cover-letters/:id", s.deleteCoverLetter)

			user.POST("/quiz", s.generateQuiz)
			user.POST("/quiz/results", s.saveQuizResult)
			user.GET("/assessments", s.listAssessments)
			user.POST("/interview/questions", s.generateJobQuestions)

			user.GET("/insights", s.industryInsights)

			user.GET("/roadmap", s.getRoadmap)
			user.POST("/roadmap", s.generateRoadmap)
			user.POST("/roadmap/progress", s.updateRoadmapProgress)

			user.GET("/challenges", s.listChallenges)
			user.POST("/challenges", s.generateChallenges)
			user.GET("/challenges/progress", s.challengeProgress)
			user.GET("/challenges/:id/hints", s.challengeHints)
			user.POST("/challenges/:id/submit", s.submitChallenge)

			user.GET("/question-bank/favorites", s.favoriteQuestions)
			user.GET("/question-bank/progress", s.questionProgress)
			user.POST("/question-bank/:id/favorite", s.toggleFavoriteQuestion)
			user.POST("/question-bank/:id/progress", s.markQuestionProgress)

			user.GET("/dashboard", s.dashboard)
		}
	}
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting API server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// requireAdmin rejects requests without the admin bearer token
func requireAdmin(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		given, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(given), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "admin token required"})
			return
		}
		c.Next()
	}
}

// requireUser rejects requests without a caller identity
func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(UserHeader)
		if id == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing " + UserHeader + " header"})
			return
		}
		c.Set(userKey, id)
		c.Next()
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

func userID(c *gin.Context) string {
	return c.GetString(userKey)
}

// fail writes the status code an error maps to
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, coach.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, coach.ErrUserNotFound),
		errors.Is(err, coach.ErrNotFound),
		errors.Is(err, coach.ErrRoadmapNotFound):
		status = http.StatusNotFound
	case errors.Is(err, coach.ErrNoIndustry):
		status = http.StatusConflict
	case errors.Is(err, coach.ErrInvalidInput):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
